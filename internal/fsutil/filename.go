package fsutil

import "strings"

// maxFilenameLen bounds names derived from input paths.
const maxFilenameLen = 128

// SanitizeFilename makes a safe artefact name from an arbitrary string. Any
// character other than an ASCII letter, digit, dot, underscore or dash
// becomes an underscore; runs of underscores collapse and leading or
// trailing dots and underscores are trimmed.
func SanitizeFilename(s string) string {
	if s == "" {
		return "unknown"
	}
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		if b.Len() >= maxFilenameLen {
			break
		}
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
			r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
			lastUnderscore = r == '_'
		default:
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}
