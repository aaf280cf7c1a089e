package mdutil

import (
	"strings"

	"golang.org/x/text/cases"
)

// NormalizeLabel normalizes a link label for reference lookup. A surrounding
// pair of brackets is stripped, leading and trailing whitespace is removed,
// internal whitespace runs are collapsed into one space and the result is
// case-folded.
func NormalizeLabel(s string) string {
	if len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']' {
		s = s[1 : len(s)-1]
	}
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	// A Caser keeps state and must not be shared between goroutines.
	return cases.Fold().String(s)
}

// Fragments of regular expressions matching HTML tags.
const (
	tagName        = `[A-Za-z][A-Za-z0-9-]*`
	attributeName  = `[a-zA-Z_:][a-zA-Z0-9:._-]*`
	attributeValue = `(?:[^"'=<>` + "`" + `\x00-\x20]+|'[^']*'|"[^"]*")`
	attribute      = `(?:\s+` + attributeName + `(?:\s*=\s*` + attributeValue + `)?)`

	// OpenTag matches an HTML open tag.
	OpenTag = `<` + tagName + attribute + `*\s*/?>`
	// CloseTag matches an HTML closing tag.
	CloseTag = `</` + tagName + `\s*>`
)
