package generation

import (
	"strings"
	"unicode"
)

// sanitizeFilename makes a paper name safe for Content-Disposition and
// object keys. Letters of any script are kept.
func sanitizeFilename(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsSpace(r), unicode.IsControl(r), strings.ContainsRune(`/\"'<>:|?*`, r):
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		default:
			b.WriteRune(r)
			lastUnderscore = false
		}
	}
	out := strings.Trim(b.String(), "_.")
	if out == "" {
		return "paper"
	}
	return out
}
