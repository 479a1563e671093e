package persistence

import "strings"

// TagInputKind discriminates the accepted shapes of raw tag input.
type TagInputKind int

const (
	// TagInputAbsent means no tags were supplied at all.
	TagInputAbsent TagInputKind = iota
	// TagInputList means tags arrived as an ordered list of raw values.
	TagInputList
	// TagInputDelimited means tags arrived as a single comma-delimited string.
	TagInputDelimited
)

// TagInput is a tagged variant over the shapes tag input may take on the
// wire: a list of values, one comma-delimited string, or nothing.
type TagInput struct {
	Kind   TagInputKind
	Values []string
	Text   string
}

// TagList wraps an ordered list of raw tag values.
func TagList(values []string) TagInput {
	return TagInput{Kind: TagInputList, Values: values}
}

// TagText wraps a comma-delimited tag string.
func TagText(text string) TagInput {
	return TagInput{Kind: TagInputDelimited, Text: text}
}

// NoTags represents absent tag input.
func NoTags() TagInput {
	return TagInput{Kind: TagInputAbsent}
}

// NormalizeTags canonicalizes raw tag input: each element is trimmed, empty
// elements are dropped, and survivors are lowercased with their input order
// preserved. Duplicates are kept as provided. Absent input yields an empty
// list, never nil.
func NormalizeTags(input TagInput) []string {
	var raw []string
	switch input.Kind {
	case TagInputList:
		raw = input.Values
	case TagInputDelimited:
		raw = strings.Split(input.Text, ",")
	default:
		return []string{}
	}

	tags := make([]string, 0, len(raw))
	for _, value := range raw {
		tag := strings.TrimSpace(value)
		if tag == "" {
			continue
		}
		tags = append(tags, strings.ToLower(tag))
	}

	return tags
}
