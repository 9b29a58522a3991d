package utils

import (
    "strings"

    "golang.org/x/text/cases"
    "golang.org/x/text/language"
)

// Slugify lower-cases name and replaces every run of whitespace with a
// single hyphen.  Leading and trailing whitespace is dropped.  Whitespace
// is anything unicode.IsSpace accepts, so vertical tabs and no-break
// spaces separate words too.  No other characters are touched, so
// "Open  Source Hub" becomes "open-source-hub".
func Slugify(name string) string {
    s := cases.Lower(language.Und).String(name)
    return strings.Join(strings.Fields(s), "-")
}
