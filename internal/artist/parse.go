package artist

import "strings"

// ParseKeywords splits comma-separated form input, dropping blank entries.
func ParseKeywords(s string) []string {
	return splitNonEmpty(s, ",")
}

// ParseExamples splits one-per-line form input, dropping blank lines.
func ParseExamples(s string) []string {
	return splitNonEmpty(s, "\n")
}

// JoinKeywords renders keywords back into their form representation.
func JoinKeywords(keywords []string) string {
	return strings.Join(keywords, ", ")
}

// JoinExamples renders examples back into their form representation.
func JoinExamples(examples []string) string {
	return strings.Join(examples, "\n")
}

// DefaultID derives an id from a display name: lowercase, spaces to underscores.
func DefaultID(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "novo_id"
	}
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

func splitNonEmpty(s, sep string) []string {
	out := []string{}
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
