package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// Fold lowercases and strips combining marks so "Temporário" matches
// "temporario". Portal text mixes accented and unaccented spellings freely.
func Fold(s string) string {
	out, _, err := transform.String(deaccent, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(out)
}
