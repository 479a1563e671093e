package persistence

import (
	"regexp"
	"strings"
)

const maxSlugLength = 80

var nonSlugRunPattern = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeSlug maps arbitrary text to the canonical URL-safe form used for
// public blog identifiers: lowercase, hyphen-separated, at most 80 characters.
// An empty or whitespace-only input yields an empty string; callers are
// expected to fall back to another source (e.g. the title) in that case.
func NormalizeSlug(input string) string {
	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = nonSlugRunPattern.ReplaceAllString(normalized, "-")
	normalized = strings.Trim(normalized, "-")

	if len(normalized) > maxSlugLength {
		normalized = strings.Trim(normalized[:maxSlugLength], "-")
	}

	return normalized
}
