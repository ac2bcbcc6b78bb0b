package gallery

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a display name into a URL segment: "Côte d'Ivoire" becomes
// "cote-d-ivoire".
func Slug(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}
	result = strings.ToLower(result)
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}
