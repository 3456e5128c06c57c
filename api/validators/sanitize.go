package validators

import "strings"

func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len([]rune(trimmed)) > maxLen {
		return string([]rune(trimmed)[:maxLen])
	}
	return trimmed
}

// SafeReturn accepts only same-site absolute paths, so redirect targets taken
// from forms cannot send the browser elsewhere.
func SafeReturn(target, fallback string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	return target
}
