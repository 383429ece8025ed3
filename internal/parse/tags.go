package parse

import "strings"

// Tags travel through the API and the database as a single comma-delimited
// string. The set semantics live here: splitting trims whitespace, drops
// empty entries and deduplicates while preserving first-seen order.

// SplitTags parses a raw delimited tag string into its member tags.
func SplitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// JoinTags encodes a tag set back into the delimited storage form.
func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}

// NormalizeTags canonicalizes a raw tag string: stable order, no blanks,
// no duplicates. Round-tripping a normalized string is the identity.
func NormalizeTags(raw string) string {
	return JoinTags(SplitTags(raw))
}
