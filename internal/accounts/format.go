package accounts

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCode coerces an account code to a bare integer string, stripping the
// decimal artifacts spreadsheet parsing leaves behind ("271.0", "271,0" -> "271").
func FormatCode(code string) string {
	s := strings.TrimSpace(code)
	if s == "" {
		return ""
	}
	if d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ".")); err == nil {
		return strconv.FormatInt(d.IntPart(), 10)
	}
	if i := strings.IndexAny(s, ",."); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// FormatHistory coerces a history code to a bare integer string when numeric,
// otherwise returns the literal text.
func FormatHistory(hist string) string {
	s := strings.TrimSpace(hist)
	if s == "" {
		return ""
	}
	if d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ".")); err == nil {
		return strconv.FormatInt(d.IntPart(), 10)
	}
	return s
}
