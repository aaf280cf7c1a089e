package md

import (
	"regexp"
	"strings"

	"src.mdkit.sh/pkg/md/mdutil"
)

type fencedCodeBlockParser struct {
	BaseBlockParser
	block      *Node
	firstLine  *string
	otherLines strings.Builder
}

func (p *fencedCodeBlockParser) Block() *Node { return p.block }

func (p *fencedCodeBlockParser) TryContinue(state ParserState) *BlockContinue {
	line, i := state.Line(), state.NextNonSpaceIndex()
	if state.Indent() < mdutil.CodeBlockIndent && i < len(line) && line[i] == p.block.FenceChar {
		if n := closingFenceLength(line[i:], p.block.FenceChar); n >= p.block.FenceLength {
			return ContinueFinished()
		}
	}
	// Skip up to the indentation of the opening fence.
	newIndex := state.Index()
	for n := p.block.FenceIndent; n > 0 && newIndex < len(line) && line[newIndex] == ' '; n-- {
		newIndex++
	}
	return ContinueAtIndex(newIndex)
}

func (p *fencedCodeBlockParser) AddLine(line string) {
	if p.firstLine == nil {
		p.firstLine = &line
		return
	}
	p.otherLines.WriteString(line)
	p.otherLines.WriteByte('\n')
}

func (p *fencedCodeBlockParser) CloseBlock() {
	if p.firstLine != nil {
		p.block.Info = mdutil.UnescapeString(strings.TrimSpace(*p.firstLine))
	}
	p.block.Literal = p.otherLines.String()
}

// Returns the length of the fence if s is an opening fence, or 0. An opening
// fence is a run of at least 3 backticks or tildes, and its character may not
// appear again on the same line.
func openingFenceLength(s string) int {
	if s == "" || (s[0] != '`' && s[0] != '~') {
		return 0
	}
	c := s[0]
	n := 1
	for n < len(s) && s[n] == c {
		n++
	}
	if n < 3 || strings.IndexByte(s[n:], c) != -1 {
		return 0
	}
	return n
}

// Returns the length of the fence if s is a closing fence consisting of c, or
// 0. A closing fence may only be followed by spaces.
func closingFenceLength(s string, c byte) int {
	n := 0
	for n < len(s) && s[n] == c {
		n++
	}
	if n < 3 || strings.TrimRight(s[n:], " ") != "" {
		return 0
	}
	return n
}

func tryStartFencedCodeBlock(state ParserState, matched MatchedBlockParser) *BlockStart {
	if state.Indent() >= mdutil.CodeBlockIndent {
		return nil
	}
	i := state.NextNonSpaceIndex()
	n := openingFenceLength(state.Line()[i:])
	if n == 0 {
		return nil
	}
	block := NewNode(KindFencedCodeBlock)
	block.FenceChar = state.Line()[i]
	block.FenceLength = n
	block.FenceIndent = state.Indent()
	return StartWith(&fencedCodeBlockParser{block: block}).AtIndex(i + n)
}

type indentedCodeBlockParser struct {
	BaseBlockParser
	block   *Node
	content blockContent
}

func (p *indentedCodeBlockParser) Block() *Node { return p.block }

func (p *indentedCodeBlockParser) TryContinue(state ParserState) *BlockContinue {
	if state.Indent() >= mdutil.CodeBlockIndent {
		return ContinueAtColumn(state.Column() + mdutil.CodeBlockIndent)
	} else if state.IsBlank() {
		return ContinueAtIndex(state.NextNonSpaceIndex())
	}
	return nil
}

func (p *indentedCodeBlockParser) AddLine(line string) { p.content.add(line) }

var trailingBlankLinesRegexp = regexp.MustCompile(`(?:\n[ \t]*)+$`)

func (p *indentedCodeBlockParser) CloseBlock() {
	p.content.add("")
	p.block.Literal = trailingBlankLinesRegexp.ReplaceAllString(p.content.String(), "\n")
}

func tryStartIndentedCodeBlock(state ParserState, matched MatchedBlockParser) *BlockStart {
	// An indented code block cannot interrupt a paragraph.
	if state.Indent() < mdutil.CodeBlockIndent || state.IsBlank() ||
		state.ActiveBlockParser().Block().Kind == KindParagraph {
		return nil
	}
	return StartWith(&indentedCodeBlockParser{block: NewNode(KindIndentedCodeBlock)}).
		AtColumn(state.Column() + mdutil.CodeBlockIndent)
}
