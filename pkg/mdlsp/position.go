package mdlsp

import (
	lsp "github.com/sourcegraph/go-lsp"

	"src.mdkit.sh/pkg/md/mdutil"
)

// Returns the byte offsets of the start of each line in s. Line breaks are
// recognized the same way as the parser does.
func lineStarts(s string) []int {
	starts := []int{0}
	for i := 0; ; {
		lb := mdutil.FindLineBreak(s, i)
		if lb == -1 {
			return starts
		}
		if s[lb] == '\r' && lb+1 < len(s) && s[lb+1] == '\n' {
			lb++
		}
		i = lb + 1
		starts = append(starts, i)
	}
}

// Returns the range spanning lines from to to, inclusive, excluding the final
// line break.
func lspRangeFromLines(s string, from, to int) lsp.Range {
	starts := lineStarts(s)
	if from >= len(starts) {
		from = len(starts) - 1
	}
	if to >= len(starts) {
		to = len(starts) - 1
	}
	end := len(s)
	if lb := mdutil.FindLineBreak(s, starts[to]); lb != -1 {
		end = lb
	}
	return lsp.Range{
		Start: lspPositionFromIdx(s, starts[from]),
		End:   lspPositionFromIdx(s, end),
	}
}

func lspRangeFromIdx(s string, from, to int) lsp.Range {
	return lsp.Range{
		Start: lspPositionFromIdx(s, from),
		End:   lspPositionFromIdx(s, to),
	}
}

func lspPositionToIdx(s string, pos lsp.Position) int {
	var idx int
	walkString(s, func(i int, p lsp.Position) bool {
		idx = i
		return p.Line < pos.Line || (p.Line == pos.Line && p.Character < pos.Character)
	})
	return idx
}

func lspPositionFromIdx(s string, idx int) lsp.Position {
	var pos lsp.Position
	walkString(s, func(i int, p lsp.Position) bool {
		pos = p
		return i < idx
	})
	return pos
}

// Generates (index, lspPosition) pairs in s, stopping if f returns false.
func walkString(s string, f func(i int, p lsp.Position) bool) {
	var p lsp.Position
	lastCR := false

	for i, r := range s {
		if !f(i, p) {
			return
		}
		switch {
		case r == '\r':
			p.Line++
			p.Character = 0
		case r == '\n':
			if lastCR {
				// Ignore \n if it's part of a \r\n sequence
			} else {
				p.Line++
				p.Character = 0
			}
		case r <= 0xFFFF:
			// Encoded in UTF-16 with one unit
			p.Character++
		default:
			// Encoded in UTF-16 with two units
			p.Character += 2
		}
		lastCR = r == '\r'
	}
	f(len(s), p)
}
