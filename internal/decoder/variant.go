package decoder

// Variant is known shape of incoming payload.
type Variant int

const (
	// VariantUnknown is payload which doesn't match any known shape.
	VariantUnknown Variant = iota
	// VariantTestPing is connectivity check payload without records.
	VariantTestPing
	// VariantFlatArrays is payload with data items whose fields are one-element arrays.
	VariantFlatArrays
	// VariantNestedResults is payload with per-url data items containing results arrays.
	VariantNestedResults
	// VariantLegacyKeyValue is single key_num/value pair.
	VariantLegacyKeyValue
)

func (v Variant) String() string {
	switch v {
	case VariantTestPing:
		return "TestPing"
	case VariantFlatArrays:
		return "FlatArrays"
	case VariantNestedResults:
		return "NestedResults"
	case VariantLegacyKeyValue:
		return "LegacyKeyValue"
	default:
		return "Unknown"
	}
}
