package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD and removes combining marks, so "Almodóvar"
// and "Almodovar" normalize identically.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var punctuationReplacer = strings.NewReplacer(
	".", "", ",", "", "-", "", "_", "", ":", "", ";", "", "(", "", ")", "",
)

// Normalize applies the canonical text normalization used for every
// equality on titles, director names and month names: lowercase, Unicode
// decomposition, diacritic stripping, punctuation stripping and whitespace
// collapsing.
func Normalize(s string) string {
	lowered := strings.ToLower(s)

	stripped, _, err := transform.String(stripMarks, lowered)
	if err != nil {
		stripped = lowered
	}

	stripped = punctuationReplacer.Replace(stripped)

	return strings.Join(strings.Fields(stripped), " ")
}
