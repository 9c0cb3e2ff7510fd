package gate

import (
	"regexp"
	"strings"
)

var scriptTagPattern = regexp.MustCompile(`(?is)<script\b.*?</script>`)

// Sanitize truncates s to maxLen runes and strips embedded script tags.
// Stored question text and prompts forwarded upstream both pass through it.
func Sanitize(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) > maxLen {
		s = string(runes[:maxLen])
	}
	return scriptTagPattern.ReplaceAllString(s, "")
}

// MissingFields returns the names of required fields whose values are empty
// after trimming, in the order given.
func MissingFields(fields map[string]string, required []string) []string {
	var missing []string
	for _, name := range required {
		if strings.TrimSpace(fields[name]) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
