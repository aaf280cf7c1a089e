package md

import (
	"regexp"

	"src.mdkit.sh/pkg/md/mdutil"
)

type htmlBlockParser struct {
	BaseBlockParser
	block    *Node
	closer   *regexp.Regexp
	finished bool
	content  blockContent
}

func (p *htmlBlockParser) Block() *Node { return p.block }

func (p *htmlBlockParser) TryContinue(state ParserState) *BlockContinue {
	if p.finished {
		return nil
	}
	// Blocks without a closing pattern end at a blank line.
	if state.IsBlank() && p.closer == nil {
		return nil
	}
	return ContinueAtIndex(state.Index())
}

func (p *htmlBlockParser) AddLine(line string) {
	p.content.add(line)
	if p.closer != nil && p.closer.MatchString(line) {
		p.finished = true
	}
}

func (p *htmlBlockParser) CloseBlock() { p.block.Literal = p.content.String() }

// Opening and closing patterns of the 7 kinds of HTML blocks. The opening
// patterns are matched at the first non-space byte.
var htmlBlockPatterns = [...]struct{ opener, closer *regexp.Regexp }{
	{
		regexp.MustCompile(`(?i)^<(?:script|pre|style)(?:\s|>|$)`),
		regexp.MustCompile(`(?i)</(?:script|pre|style)>`),
	},
	{regexp.MustCompile(`^<!--`), regexp.MustCompile(`-->`)},
	{regexp.MustCompile(`^<[?]`), regexp.MustCompile(`\?>`)},
	{regexp.MustCompile(`^<![A-Z]`), regexp.MustCompile(`>`)},
	{regexp.MustCompile(`^<!\[CDATA\[`), regexp.MustCompile(`\]\]>`)},
	{
		regexp.MustCompile(`(?i)^</?(?:` +
			`address|article|aside|` +
			`base|basefont|blockquote|body|` +
			`caption|center|col|colgroup|` +
			`dd|details|dialog|dir|div|dl|dt|` +
			`fieldset|figcaption|figure|footer|form|frame|frameset|` +
			`h1|h2|h3|h4|h5|h6|head|header|hr|html|` +
			`iframe|` +
			`legend|li|link|` +
			`main|menu|menuitem|meta|` +
			`nav|noframes|` +
			`ol|optgroup|option|` +
			`p|param|` +
			`section|source|summary|` +
			`table|tbody|td|tfoot|th|thead|title|tr|track|` +
			`ul` +
			`)(?:\s|/?>|$)`),
		nil,
	},
	{
		regexp.MustCompile(`(?i)^(?:` + mdutil.OpenTag + `|` + mdutil.CloseTag + `)\s*$`),
		nil,
	},
}

func tryStartHTMLBlock(state ParserState, matched MatchedBlockParser) *BlockStart {
	line, i := state.Line(), state.NextNonSpaceIndex()
	if state.Indent() >= mdutil.CodeBlockIndent || i >= len(line) || line[i] != '<' {
		return nil
	}
	for typ, pattern := range htmlBlockPatterns {
		// The last kind cannot interrupt a paragraph.
		if typ == len(htmlBlockPatterns)-1 &&
			matched.MatchedBlockParser().Block().Kind == KindParagraph {
			continue
		}
		if pattern.opener.MatchString(line[i:]) {
			p := &htmlBlockParser{block: NewNode(KindHTMLBlock), closer: pattern.closer}
			return StartWith(p).AtIndex(state.Index())
		}
	}
	return nil
}
