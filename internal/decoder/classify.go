package decoder

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"

	"github.com/ryanlhy/webhook-ingest/internal/platform"
	"github.com/samber/lo"
)

// sentinelTokens mark connectivity check payloads. Compared case-insensitively.
var sentinelTokens = []string{"TEST", "PING"}

// Classify returns variant of raw payload.
// Rules are evaluated in order and the first match wins, so sentinel payloads
// are always recognized before any shape-based rule.
// It returns error of kind UnknownSchema when no rule matches.
func Classify(raw []byte) (Variant, error) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil || env == nil {
		return VariantUnknown, platform.NewError(platform.KindUnknownSchema, "payload is not a JSON object")
	}

	data, hasData := env["data"]

	if hasData && isSentinel(data) {
		return VariantTestPing, nil
	}

	if eventType, ok := env["eventType"]; ok && isSentinel(eventType) {
		return VariantTestPing, nil
	}

	if hasData {
		if items, ok := sequence(data); ok {
			flat, nested := countShapes(items)
			switch {
			case nested == 0 && (flat > 0 || len(items) == 0):
				return VariantFlatArrays, nil
			case flat == 0 && nested > 0:
				return VariantNestedResults, nil
			}
		}
	}

	// exactly the key/value pair, any other key makes the shape unknown
	if _, hasKey := env["key_num"]; hasKey && len(env) == 2 {
		if _, hasValue := env["value"]; hasValue {
			return VariantLegacyKeyValue, nil
		}
	}

	return VariantUnknown, platform.NewError(platform.KindUnknownSchema, "payload with keys %v matches no known shape", keys(env))
}

func isSentinel(raw json.RawMessage) bool {
	var token string
	if err := json.Unmarshal(raw, &token); err != nil {
		return false
	}

	for _, sentinel := range sentinelTokens {
		if strings.EqualFold(strings.TrimSpace(token), sentinel) {
			return true
		}
	}

	return false
}

// sequence decodes raw JSON array into its elements.
// Unlike json.Unmarshal it doesn't accept null as an empty array.
func sequence(raw json.RawMessage) ([]json.RawMessage, bool) {
	if !isArray(raw) {
		return nil, false
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}

	return items, true
}

func countShapes(items []json.RawMessage) (flat int, nested int) {
	for _, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			continue
		}

		switch {
		case isNestedShaped(fields):
			nested++
		case isFlatShaped(fields):
			flat++
		}
	}

	return flat, nested
}

func isNestedShaped(fields map[string]json.RawMessage) bool {
	results, ok := fields["results"]
	return ok && isArray(results)
}

func isFlatShaped(fields map[string]json.RawMessage) bool {
	if _, ok := fields["results"]; ok {
		return false
	}

	arrays := 0
	for _, value := range fields {
		switch {
		case isNull(value):
			continue
		case isArray(value):
			arrays++
		default:
			return false
		}
	}

	return arrays > 0
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func keys(env map[string]json.RawMessage) []string {
	names := lo.Keys(env)
	slices.Sort(names)
	return names
}
