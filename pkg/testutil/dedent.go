package testutil

import "strings"

// Dedent removes the longest common leading whitespace of the non-blank lines
// of text, and empties blank lines. A leading newline is dropped first, so raw
// strings can start on the line after the opening backtick:
//
//	Dedent(`
//		Document
//		  Paragraph
//		`)
//
// returns "Document\n  Paragraph\n".
func Dedent(text string) string {
	lines := strings.Split(strings.TrimPrefix(text, "\n"), "\n")
	margin, found := "", false
	for i, line := range lines {
		rest := strings.TrimLeft(line, " \t")
		if rest == "" {
			lines[i] = ""
			continue
		}
		indent := line[:len(line)-len(rest)]
		if !found {
			margin, found = indent, true
		} else {
			margin = commonPrefix(margin, indent)
		}
	}
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, margin)
	}
	return strings.Join(lines, "\n")
}

func commonPrefix(a, b string) string {
	i := 0
	for i < len(a) && i < len(b) && a[i] == b[i] {
		i++
	}
	return a[:i]
}
