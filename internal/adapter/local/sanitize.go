package local

import "strings"

// SanitizeRepoName turns a repository URL into a filesystem-safe directory
// name for the mirror store. Scheme and credentials are stripped and every
// character outside [a-zA-Z0-9._-] becomes an underscore.
func SanitizeRepoName(repoURL string) string {
	name := repoURL
	if idx := strings.Index(name, "://"); idx >= 0 {
		name = name[idx+3:]
	}
	if idx := strings.LastIndex(name, "@"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.TrimSuffix(name, "/")
	name = strings.TrimSuffix(name, ".git")

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := strings.Trim(b.String(), "._")
	if out == "" {
		out = "repo"
	}
	// Keep paths well under common filesystem limits.
	if len(out) > 200 {
		out = out[:200]
	}
	return out
}
