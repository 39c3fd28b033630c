package util

import "strings"

// =============================================================================
// Tag Extraction Helpers
// =============================================================================

// GetTagValue returns the first value for the given tag name, or empty string if not found.
// Example: GetTagValue(tags, "subject") returns the NIP-14 subject line.
func GetTagValue(tags [][]string, tagName string) string {
	for _, tag := range tags {
		if len(tag) >= 2 && tag[0] == tagName {
			return tag[1]
		}
	}
	return ""
}

// GetTag returns the first full tag with the given name.
func GetTag(tags [][]string, tagName string) ([]string, bool) {
	for _, tag := range tags {
		if len(tag) >= 1 && tag[0] == tagName {
			return tag, true
		}
	}
	return nil, false
}

// GetTagValues returns all values for the given tag name.
// Example: GetTagValues(tags, "p") returns all mentioned pubkeys.
func GetTagValues(tags [][]string, tagName string) []string {
	var results []string
	for _, tag := range tags {
		if len(tag) >= 2 && tag[0] == tagName {
			results = append(results, tag[1])
		}
	}
	return results
}

// IsHex64 reports whether s is a 64-character lowercase hex string
// (event ids and x-only pubkeys).
func IsHex64(s string) bool {
	if len(s) != 64 {
		return false
	}
	return strings.Trim(s, "0123456789abcdef") == ""
}
