// Package strings provides small string-slice helpers for parsing
// comma-separated configuration values such as broker lists.
package strings

import "strings"

// DedupeAndTrim removes duplicates and empty entries from a slice, trimming
// whitespace from each element. Order is preserved.
//
//	DedupeAndTrim([]string{" kafka-1:9092 ", "kafka-2:9092", "kafka-1:9092", ""})
//	// Returns: []string{"kafka-1:9092", "kafka-2:9092"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}
	return result
}
