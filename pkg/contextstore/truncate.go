package contextstore

import "fmt"

// Truncate recursively shortens strings, slices, and maps so their
// rendering stays under maxChars (invariant: "the framework
// recursively truncates large values above a configured budget when
// building prompts"). Scalars other than strings pass through unchanged;
// maxChars <= 0 disables truncation entirely.
func Truncate(value any, maxChars int) any {
	if maxChars <= 0 {
 return value
	}
	switch v := value.(type) {
	case string:
 return truncateString(v, maxChars)
	case []any:
 out := make([]any, len(v))
 for i, item := range v {
 out[i] = Truncate(item, maxChars)
 }
 return out
	case map[string]any:
 out := make(map[string]any, len(v))
 for k, item := range v {
 out[k] = Truncate(item, maxChars)
 }
 return out
	default:
 return value
	}
}

func truncateString(s string, maxChars int) string {
	if len(s) <= maxChars {
 return s
	}
	const suffix = "... [truncated]"
	if maxChars <= len(suffix) {
 return s[:maxChars]
	}
	return fmt.Sprintf("%s%s", s[:maxChars-len(suffix)], suffix)
}
