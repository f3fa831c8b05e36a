// Package naming derives canonical project identifiers from free-form names.
package naming

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// foldReplacer folds the accented vowels seen in registry names. Anything
// outside this table passes through unchanged.
var foldReplacer = strings.NewReplacer(
	" ", "-",
	"\t", "-",
	"\n", "-",
	"é", "e",
	"è", "e",
	"ê", "e",
	"ë", "e",
	"ó", "o",
	"à", "a",
)

// Normalize maps a raw project name to its canonical id.
//
// The name is lower-cased, space, tab and newline characters become a
// hyphen, and a fixed set of accented vowels is folded to ASCII.
// Normalize is total and idempotent.
func Normalize(raw string) string {
	// cases.Caser is stateful, so one is created per call.
	lower := cases.Lower(language.Und).String(raw)
	return foldReplacer.Replace(lower)
}
