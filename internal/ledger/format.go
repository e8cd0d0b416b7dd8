package ledger

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatValue renders a monetary amount with two decimals and a comma decimal
// separator, no thousands separator.
func FormatValue(v decimal.Decimal) string {
	return strings.Replace(v.StringFixed(2), ".", ",", 1)
}

// FormatDate renders a day as dd/mm/yyyy. The zero time renders empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

// FormatDocumentID coerces numeric document identifiers to bare integer
// strings. Non-numeric identifiers pass through as literal text.
func FormatDocumentID(id string) string {
	s := strings.TrimSpace(id)
	if s == "" {
		return ""
	}
	if d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ".")); err == nil {
		return strconv.FormatInt(d.IntPart(), 10)
	}
	return s
}
