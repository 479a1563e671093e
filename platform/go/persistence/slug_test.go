package persistence

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "already normalized",
			input:  "my-first-post",
			expect: "my-first-post",
		},
		{
			name:   "trims whitespace and lowercases",
			input:  "  Release Notes ",
			expect: "release-notes",
		},
		{
			name:   "punctuation collapses to single hyphens",
			input:  "Hello, World!",
			expect: "hello-world",
		},
		{
			name:   "consecutive separators",
			input:  "a  --  b",
			expect: "a-b",
		},
		{
			name:   "leading and trailing separators stripped",
			input:  "!!weekly update!!",
			expect: "weekly-update",
		},
		{
			name:   "empty input",
			input:  "   ",
			expect: "",
		},
		{
			name:   "only separators",
			input:  "-- ~~ --",
			expect: "",
		},
		{
			name:   "truncates to eighty characters",
			input:  strings.Repeat("abcde ", 20),
			expect: strings.TrimSuffix(strings.Repeat("abcde-", 13), "-") + "-ab",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tt.expect, NormalizeSlug(tt.input))
		})
	}
}

func TestNormalizeSlugShape(t *testing.T) {
	t.Parallel()

	shape := regexp.MustCompile(`^[a-z0-9-]{0,80}$`)

	inputs := []string{
		"Hello, World!",
		"çafé ünïcode",
		"TABS\tand\nnewlines",
		strings.Repeat("x-", 200),
		"trailing cut off exactly at a hyphen boundary " + strings.Repeat("y", 40),
	}

	for _, input := range inputs {
		slug := NormalizeSlug(input)
		require.True(t, shape.MatchString(slug), "slug %q from %q", slug, input)
		require.False(t, strings.HasPrefix(slug, "-"))
		require.False(t, strings.HasSuffix(slug, "-"))
	}
}
