package decoder

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ryanlhy/webhook-ingest/internal/coerce"
	"github.com/ryanlhy/webhook-ingest/internal/platform"
	"github.com/ryanlhy/webhook-ingest/internal/platform/models"
	"github.com/samber/lo"
)

// ebayNumberSeparator separates prefix from ebay number in NestedResults composite identifiers.
const ebayNumberSeparator = "-"

// Decoder classifies payloads and extracts canonical records from them.
type Decoder struct{}

// Classify returns variant of raw payload. See Classify.
func (d Decoder) Classify(raw []byte) (Variant, error) {
	return Classify(raw)
}

// Extract extracts records from raw payload of provided variant.
// It returns one result per item in payload order. Item failures are reported in results,
// returned error means the payload as a whole can't be extracted.
func (d Decoder) Extract(variant Variant, raw []byte) ([]models.ExtractionResult, error) {
	switch variant {
	case VariantTestPing:
		return nil, nil
	case VariantFlatArrays:
		data, err := payloadData(raw)
		if err != nil {
			return nil, err
		}
		return extractFlat(data)
	case VariantNestedResults:
		data, err := payloadData(raw)
		if err != nil {
			return nil, err
		}
		return d.ExtractNested(data)
	case VariantLegacyKeyValue:
		return extractLegacy(raw), nil
	default:
		return nil, platform.NewError(platform.KindUnknownSchema, "can't extract records from %s payload", variant)
	}
}

// ExtractNested extracts price records from JSON array of per-url items with nested results.
// It returns ErrNotSequence when items is not a JSON array.
func (d Decoder) ExtractNested(items []byte) ([]models.ExtractionResult, error) {
	elements, ok := sequence(items)
	if !ok {
		return nil, ErrNotSequence
	}

	results := make([]models.ExtractionResult, 0, len(elements))
	for ix := range elements {
		results = append(results, extractNestedItem(fmt.Sprintf("data[%d]", ix), elements[ix])...)
	}

	return results, nil
}

func payloadData(raw []byte) (json.RawMessage, error) {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, platform.WrapError(platform.KindUnknownSchema, fmt.Errorf("can't decode payload: %w", err))
	}

	if !isArray(env.Data) {
		return nil, platform.NewError(platform.KindUnknownSchema, "payload data is not a sequence")
	}

	return env.Data, nil
}

func extractFlat(data json.RawMessage) ([]models.ExtractionResult, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, platform.WrapError(platform.KindUnknownSchema, fmt.Errorf("can't decode data items: %w", err))
	}

	results := make([]models.ExtractionResult, 0, len(items))
	for ix := range items {
		path := fmt.Sprintf("data[%d]", ix)
		record, err := extractFlatItem(items[ix])
		results = append(results, models.ExtractionResult{
			Record: record,
			Path:   path,
			Error:  err,
		})
	}

	return results, nil
}

func extractFlatItem(raw json.RawMessage) (models.Record, error) {
	var item flatItem
	if err := json.Unmarshal(raw, &item); err != nil || item == nil {
		return nil, platform.NewError(platform.KindMissingRequiredField, "item is not an object")
	}

	fields := make(map[string]string, 4)
	for _, field := range []string{"Date", "ebay_number", "price", "title"} {
		value, ok, err := item.unwrap(field)
		if err != nil {
			return nil, platform.WrapError(platform.KindMissingRequiredField, err)
		}
		if !ok {
			return nil, platform.NewError(platform.KindMissingRequiredField, "item has no %q field", field)
		}
		fields[field] = value
	}

	date, err := coerce.ParseDate(fields["Date"])
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(fields["ebay_number"]) == "" {
		return nil, platform.NewError(platform.KindMissingRequiredField, "item has empty %q field", "ebay_number")
	}

	url, hasURL, err := item.unwrap("__url")
	if err != nil {
		return nil, platform.WrapError(platform.KindMissingRequiredField, err)
	}

	record := models.PriceRecord{
		Date:       date,
		EbayNumber: strings.TrimSpace(fields["ebay_number"]),
		Price:      coerce.ParsePrice(fields["price"]),
		Title:      coerce.NormalizeTitle(fields["title"]),
	}
	if hasURL {
		record.URL = lo.ToPtr(url)
	}

	return record, nil
}

func extractNestedItem(path string, raw json.RawMessage) []models.ExtractionResult {
	var item nestedItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return []models.ExtractionResult{{
			Path:  path,
			Error: platform.WrapError(platform.KindMissingRequiredField, fmt.Errorf("can't decode item: %w", err)),
		}}
	}

	var url *string
	if item.URL != nil {
		url = lo.ToPtr(item.URL.String())
	}

	results := make([]models.ExtractionResult, 0, len(item.Results))
	for ix := range item.Results {
		resultPath := fmt.Sprintf("%s.results[%d]", path, ix)
		record, err := extractNestedResult(item.Results[ix], url)
		results = append(results, models.ExtractionResult{
			Record: record,
			Path:   resultPath,
			Error:  err,
		})
	}

	return results
}

func extractNestedResult(raw json.RawMessage, url *string) (models.Record, error) {
	var result nestedResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, platform.WrapError(platform.KindMissingRequiredField, fmt.Errorf("can't decode result: %w", err))
	}

	if result.Date == nil {
		return nil, platform.NewError(platform.KindMissingRequiredField, "result has no %q field", "date")
	}

	// upstream already sends ISO dates, they are only validated
	date := strings.TrimSpace(result.Date.String())
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return nil, platform.NewError(platform.KindMalformedDate, "date %q is not in YYYY-MM-DD format", date)
	}

	if result.EbayNumber == nil {
		return nil, platform.NewError(platform.KindMissingRequiredField, "result has no %q field", "ebay_number")
	}

	ebayNumber := coerce.SplitComposite(result.EbayNumber.String(), ebayNumberSeparator)
	if ebayNumber == "" {
		return nil, platform.NewError(platform.KindMissingRequiredField, "result has empty ebay number in %q", result.EbayNumber.String())
	}

	return models.PriceRecord{
		Date:       date,
		URL:        url,
		EbayNumber: ebayNumber,
		Price:      coerce.ParsePrice(result.Price.String()),
		Title:      coerce.NormalizeTitle(result.Text.String()),
	}, nil
}

func extractLegacy(raw []byte) []models.ExtractionResult {
	var body legacyBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return []models.ExtractionResult{{
			Path:  "body",
			Error: platform.WrapError(platform.KindMissingRequiredField, fmt.Errorf("can't decode key/value pair: %w", err)),
		}}
	}

	if body.KeyNum == nil || body.Value == nil {
		return []models.ExtractionResult{{
			Path:  "body",
			Error: platform.NewError(platform.KindMissingRequiredField, "payload needs both key_num and value"),
		}}
	}

	keyNum, err := body.keyNum()
	if err != nil {
		return []models.ExtractionResult{{
			Path:  "body",
			Error: platform.WrapError(platform.KindMissingRequiredField, fmt.Errorf("key_num is not an integer: %w", err)),
		}}
	}

	return []models.ExtractionResult{{
		Record: models.KeyValueRecord{
			KeyNum: keyNum,
			Value:  body.Value.String(),
		},
		Path: "body",
	}}
}
