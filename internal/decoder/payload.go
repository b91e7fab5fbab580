package decoder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// flatItem is FlatArrays data item. Every field is serialized as one-element array.
type flatItem map[string]json.RawMessage

// nestedItem is NestedResults data item, results share item's url.
type nestedItem struct {
	URL     *scalar           `json:"url"`
	Results []json.RawMessage `json:"results"`
}

// nestedResult is single sale of NestedResults data item.
type nestedResult struct {
	Date       *scalar `json:"date"`
	EbayNumber *scalar `json:"ebay_number"`
	Price      *scalar `json:"price"`
	Text       *scalar `json:"text"`
}

// legacyBody is LegacyKeyValue payload.
type legacyBody struct {
	KeyNum *scalar `json:"key_num"`
	Value  *scalar `json:"value"`
}

// scalar is JSON string or number decoded into its textual form.
type scalar string

// UnmarshalJSON accepts JSON strings and numbers. Null leaves scalar untouched.
func (s *scalar) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var str string
	if err := json.Unmarshal(trimmed, &str); err == nil {
		*s = scalar(str)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(trimmed, &num); err == nil {
		*s = scalar(num.String())
		return nil
	}

	return fmt.Errorf("can't decode %s as string or number", trimmed)
}

func (s *scalar) String() string {
	if s == nil {
		return ""
	}
	return string(*s)
}

// unwrap returns first element of field's one-element array.
// The boolean is false when field is absent, null, an empty array or its element is null.
func (item flatItem) unwrap(field string) (string, bool, error) {
	raw, ok := item[field]
	if !ok || isNull(raw) {
		return "", false, nil
	}

	var values []*scalar
	if err := json.Unmarshal(raw, &values); err != nil {
		return "", false, fmt.Errorf("can't unwrap field %q: %w", field, err)
	}

	if len(values) == 0 || values[0] == nil {
		return "", false, nil
	}

	return values[0].String(), true, nil
}

// keyNum parses legacy key_num as integer.
func (b legacyBody) keyNum() (int64, error) {
	return strconv.ParseInt(b.KeyNum.String(), 10, 64)
}
