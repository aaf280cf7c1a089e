// Package mdutil contains text utilities shared by the Markdown parser and its
// renderers: character classification, tab stops, escaping and label
// normalization.
package mdutil

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CodeBlockIndent is the number of columns of indentation that starts an
// indented code block.
const CodeBlockIndent = 4

// ColumnsToNextTabStop returns the number of columns a tab at the given column
// expands to. Tab stops are 4 columns apart.
func ColumnsToNextTabStop(column int) int {
	return 4 - column%4
}

// FindLineBreak returns the index of the first '\n' or '\r' in s at or after
// start, or -1.
func FindLineBreak(s string, start int) int {
	if i := strings.IndexAny(s[start:], "\n\r"); i != -1 {
		return start + i
	}
	return -1
}

// IsBlank returns whether s consists only of spaces, tabs, line feeds, line
// tabulations, form feeds and carriage returns.
func IsBlank(s string) bool {
	return FindNonSpace(s, 0) == -1
}

// FindNonSpace returns the index of the first byte at or after start that is
// not ASCII whitespace, or -1.
func FindNonSpace(s string, start int) int {
	for i := start; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\v', '\f', '\r':
		default:
			return i
		}
	}
	return -1
}

// IsSpaceOrTab returns whether the byte at index i of s is a space or a tab. It
// returns false when i is out of range.
func IsSpaceOrTab(s string, i int) bool {
	return i < len(s) && (s[i] == ' ' || s[i] == '\t')
}

// IsLetter returns whether the code point starting at index i of s is a
// letter.
func IsLetter(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsLetter(r)
}

// PrepareLine replaces NUL characters with U+FFFD.
func PrepareLine(line string) string {
	if strings.IndexByte(line, 0) == -1 {
		return line
	}
	return strings.ReplaceAll(line, "\x00", "�")
}

// IsEscapable returns whether b can be escaped with a backslash.
func IsEscapable(b byte) bool {
	return asciiPunct[b]
}

var asciiPunct = [128]bool{
	'!': true, '"': true, '#': true, '$': true, '%': true, '&': true,
	'\'': true, '(': true, ')': true, '*': true, '+': true, ',': true,
	'-': true, '.': true, '/': true, ':': true, ';': true, '<': true,
	'=': true, '>': true, '?': true, '@': true, '[': true, '\\': true,
	']': true, '^': true, '_': true, '`': true, '{': true, '|': true,
	'}': true, '~': true,
}

// IsPunctuation returns whether r counts as punctuation when classifying
// delimiter runs: any ASCII punctuation character or any Unicode code point in
// the P categories.
func IsPunctuation(r rune) bool {
	if r < 128 {
		return asciiPunct[r]
	}
	return unicode.IsPunct(r)
}

// IsWhitespace returns whether r counts as whitespace when classifying
// delimiter runs: Unicode Zs, tab, line feed, form feed or carriage return.
func IsWhitespace(r rune) bool {
	switch r {
	case '\t', '\n', '\f', '\r':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}
