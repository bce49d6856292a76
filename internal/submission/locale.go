package submission

import (
	"strings"

	"golang.org/x/text/language"
)

// CanonicalLocale returns the BCP 47 canonical form of the lang tag. Tags
// that do not parse are kept as submitted so the intake record still shows
// what the caller sent; an absent tag becomes "".
func CanonicalLocale(lang string) string {
	trimmed := strings.TrimSpace(lang)
	if trimmed == "" {
		return ""
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return trimmed
	}
	return tag.String()
}
