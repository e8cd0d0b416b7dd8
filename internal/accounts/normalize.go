package accounts

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Normalize canonicalizes a free-text name for chart lookups: diacritics
// stripped, upper-cased, everything except letters, digits and spaces dropped,
// whitespace runs collapsed.
func Normalize(name string) string {
	stripped, _, err := transform.String(stripDiacritics, name)
	if err != nil {
		stripped = name
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range strings.ToUpper(stripped) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
