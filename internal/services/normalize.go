package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const tatweel = 'ـ'

// foldText makes s comparable ignoring case, diacritics (Arabic harakat,
// Latin accents) and Arabic tatweel.
func foldText(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.Predicate(func(r rune) bool { return r == tatweel })),
		cases.Fold(),
		norm.NFC,
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.TrimSpace(out)
}

func containsFolded(haystack, foldedNeedle string) bool {
	return strings.Contains(foldText(haystack), foldedNeedle)
}
