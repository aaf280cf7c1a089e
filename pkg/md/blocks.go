package md

import (
	"regexp"
	"strings"

	"src.mdkit.sh/pkg/md/mdutil"
)

type documentBlockParser struct {
	BaseBlockParser
	block *Node
}

func newDocumentBlockParser() *documentBlockParser {
	return &documentBlockParser{block: NewNode(KindDocument)}
}

func (p *documentBlockParser) Block() *Node                { return p.block }
func (p *documentBlockParser) IsContainer() bool           { return true }
func (p *documentBlockParser) CanContain(child *Node) bool { return true }

func (p *documentBlockParser) TryContinue(state ParserState) *BlockContinue {
	return ContinueAtIndex(state.Index())
}

type blockQuoteParser struct {
	BaseBlockParser
	block *Node
}

func (p *blockQuoteParser) Block() *Node                { return p.block }
func (p *blockQuoteParser) IsContainer() bool           { return true }
func (p *blockQuoteParser) CanContain(child *Node) bool { return true }

func (p *blockQuoteParser) TryContinue(state ParserState) *BlockContinue {
	if col, ok := blockQuoteMarker(state); ok {
		return ContinueAtColumn(col)
	}
	return nil
}

// Returns the column after the block quote marker and the optional space
// following it.
func blockQuoteMarker(state ParserState) (int, bool) {
	line, i := state.Line(), state.NextNonSpaceIndex()
	if state.Indent() >= mdutil.CodeBlockIndent || i >= len(line) || line[i] != '>' {
		return 0, false
	}
	col := state.Column() + state.Indent() + 1
	if mdutil.IsSpaceOrTab(line, i+1) {
		col++
	}
	return col, true
}

func tryStartBlockQuote(state ParserState, matched MatchedBlockParser) *BlockStart {
	if col, ok := blockQuoteMarker(state); ok {
		return StartWith(&blockQuoteParser{block: NewNode(KindBlockQuote)}).AtColumn(col)
	}
	return nil
}

type thematicBreakParser struct {
	BaseBlockParser
	block *Node
}

func (p *thematicBreakParser) Block() *Node { return p.block }

func (p *thematicBreakParser) TryContinue(state ParserState) *BlockContinue { return nil }

var thematicBreakRegexp = regexp.MustCompile(
	`^(?:(?:\*[ \t]*){3,}|(?:_[ \t]*){3,}|(?:-[ \t]*){3,})[ \t]*$`)

func tryStartThematicBreak(state ParserState, matched MatchedBlockParser) *BlockStart {
	if state.Indent() >= mdutil.CodeBlockIndent {
		return nil
	}
	line := state.Line()
	if thematicBreakRegexp.MatchString(line[state.NextNonSpaceIndex():]) {
		return StartWith(&thematicBreakParser{block: NewNode(KindThematicBreak)}).AtIndex(len(line))
	}
	return nil
}

type headingParser struct {
	BaseBlockParser
	block   *Node
	content string
}

func (p *headingParser) Block() *Node { return p.block }

// Both kinds of headings are complete with the line that starts them.
func (p *headingParser) TryContinue(state ParserState) *BlockContinue { return nil }

func (p *headingParser) ParseInlines(ip InlineParser) { ip.Parse(p.content, p.block) }

var (
	atxHeadingRegexp    = regexp.MustCompile(`^#{1,6}(?:[ \t]+|$)`)
	atxClosingRegexp    = regexp.MustCompile(`(?:^| ) *#+ *$`)
	setextHeadingRegexp = regexp.MustCompile(`^(?:=+|-+) *$`)
)

func tryStartHeading(state ParserState, matched MatchedBlockParser) *BlockStart {
	if state.Indent() >= mdutil.CodeBlockIndent {
		return nil
	}
	line, i := state.Line(), state.NextNonSpaceIndex()
	if marker := atxHeadingRegexp.FindString(line[i:]); marker != "" {
		content := atxClosingRegexp.ReplaceAllString(line[i+len(marker):], "")
		h := &headingParser{block: NewNode(KindHeading), content: content}
		h.block.Level = len(strings.TrimRight(marker, " \t"))
		return StartWith(h).AtIndex(len(line))
	}
	paragraph, ok := matched.ParagraphContent()
	if ok && setextHeadingRegexp.MatchString(line[i:]) {
		h := &headingParser{block: NewNode(KindHeading), content: paragraph}
		if line[i] == '=' {
			h.block.Level = 1
		} else {
			h.block.Level = 2
		}
		return StartWith(h).AtIndex(len(line)).ReplaceActiveBlockParser()
	}
	return nil
}

type paragraphParser struct {
	BaseBlockParser
	block   *Node
	content blockContent
	// Set when the paragraph is closed, after reference definitions are
	// stripped.
	closed      bool
	finalString string
}

func newParagraphParser() *paragraphParser {
	return &paragraphParser{block: NewNode(KindParagraph)}
}

func (p *paragraphParser) Block() *Node { return p.block }

func (p *paragraphParser) TryContinue(state ParserState) *BlockContinue {
	if state.IsBlank() {
		return nil
	}
	return ContinueAtIndex(state.Index())
}

func (p *paragraphParser) AddLine(line string) { p.content.add(line) }

func (p *paragraphParser) contentString() string {
	if p.closed {
		return p.finalString
	}
	return p.content.String()
}

// Strips reference definitions from the start of the paragraph, adding them
// to refs. The paragraph is unlinked if nothing else is left.
func (p *paragraphParser) closeWithReferences(refs *ReferenceMap) {
	content := p.content.String()
	line := p.block.StartLine
	found := false
	for len(content) > 3 && content[0] == '[' {
		n, ref := parseReference(content)
		if n == 0 {
			break
		}
		ref.Line = line
		refs.Add(ref)
		line += strings.Count(content[:n], "\n")
		content = content[n:]
		found = true
	}
	p.closed = true
	p.finalString = content
	if found && mdutil.IsBlank(content) {
		p.block.Unlink()
	}
}

func (p *paragraphParser) ParseInlines(ip InlineParser) {
	if p.block.parent == nil {
		return
	}
	ip.Parse(p.contentString(), p.block)
}
