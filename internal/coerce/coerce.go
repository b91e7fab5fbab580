package coerce

import (
	"fmt"
	"strings"
	"time"

	"github.com/ryanlhy/webhook-ingest/internal/platform"
	"github.com/ryanlhy/webhook-ingest/internal/platform/models"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// century is prepended to two-digit years. Dates before 2000 or after 2099 can't be represented.
const century = "20"

// maxPrice is exclusive upper bound of accepted prices.
var maxPrice = decimal.New(1, 15)

// ParseDate converts DD-MM-YY date into YYYY-MM-DD. Day and month need two digits each.
// It returns error of kind MalformedDate when raw is not a valid DD-MM-YY date.
func ParseDate(raw string) (string, error) {
	parts := strings.Split(strings.TrimSpace(raw), "-")
	if len(parts) != 3 {
		return "", platform.NewError(platform.KindMalformedDate, "date %q is not in DD-MM-YY format", raw)
	}

	day, month, year := parts[0], parts[1], parts[2]
	if !isDigits(day, 2) || !isDigits(month, 2) || !isDigits(year, 2) {
		return "", platform.NewError(platform.KindMalformedDate, "date %q is not in DD-MM-YY format", raw)
	}

	date := fmt.Sprintf("%s%s-%s-%s", century, year, month, day)

	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return "", platform.NewError(platform.KindMalformedDate, "date %q is not a calendar date: %w", raw, err)
	}

	return date, nil
}

// ParsePrice parses price like "$1,299.99" into decimal.
// It never fails: unparseable, negative and out of range prices are returned as zero.
func ParsePrice(raw string) decimal.Decimal {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)

	price, err := decimal.NewFromString(cleaned)
	if err != nil || price.IsNegative() || price.GreaterThanOrEqual(maxPrice) {
		return decimal.Zero
	}

	return price
}

// SplitComposite returns part of raw after the first occurrence of sep.
// Raw without sep is returned trimmed.
func SplitComposite(raw string, sep string) string {
	_, after, found := strings.Cut(raw, sep)
	if !found {
		return strings.TrimSpace(raw)
	}

	return strings.TrimSpace(after)
}

// NormalizeTitle returns title in Unicode normalization form C.
// Whitespace and visible characters are kept as received.
func NormalizeTitle(raw string) string {
	return norm.NFC.String(raw)
}

func isDigits(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
