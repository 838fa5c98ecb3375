package pygen

import "strings"

// indentBlock prefixes every line of text with levels*4 spaces, the way
// Python's own grammar demands for nesting a statement block (unlike Go,
// where gofmt would re-indent braces regardless of the source spacing).
func indentBlock(text string, levels int) string {
	prefix := strings.Repeat("    ", levels)

	out := prefix

	for i := 0; i < len(text); i++ {
		out += string(text[i])

		if text[i] == '\n' && i+1 < len(text) {
			out += prefix
		}
	}

	return out
}

func dedupStrings(ss []string) []string {
	seen := make(map[string]bool, len(ss))
	out := make([]string, 0, len(ss))

	for _, s := range ss {
		if seen[s] {
			continue
		}

		seen[s] = true
		out = append(out, s)
	}

	return out
}
