package md

import (
	"strings"

	"src.mdkit.sh/pkg/md/mdutil"
)

// The state of parsing one document. It implements ParserState.
type documentParser struct {
	config *Parser

	line       string
	lineNumber int
	// Current byte index and column.
	index  int
	column int
	// Whether the current column is inside a partially consumed tab.
	columnIsInTab bool

	nextNonSpace       int
	nextNonSpaceColumn int
	indent             int
	blank              bool

	document *documentBlockParser
	// Open block parsers, outermost first. The first one is always document.
	active []BlockParser
	// All block parsers ever activated, in the order of activation.
	all []BlockParser
	// Whether each block ended with a blank line.
	lastLineBlank map[*Node]bool

	refs   *ReferenceMap
	inline *inlineParser
}

func newDocumentParser(config *Parser) *documentParser {
	p := &documentParser{
		config:        config,
		document:      newDocumentBlockParser(),
		lastLineBlank: make(map[*Node]bool),
		refs:          NewReferenceMap(),
	}
	p.inline = newInlineParser(config, p.refs)
	p.activate(p.document)
	return p
}

func (p *documentParser) Line() string                   { return p.line }
func (p *documentParser) Index() int                     { return p.index }
func (p *documentParser) NextNonSpaceIndex() int         { return p.nextNonSpace }
func (p *documentParser) Column() int                    { return p.column }
func (p *documentParser) Indent() int                    { return p.indent }
func (p *documentParser) IsBlank() bool                  { return p.blank }
func (p *documentParser) ActiveBlockParser() BlockParser { return p.active[len(p.active)-1] }

func (p *documentParser) parse(source string) *Node {
	lineStart := 0
	for {
		lineBreak := mdutil.FindLineBreak(source, lineStart)
		if lineBreak == -1 {
			break
		}
		p.incorporateLine(source[lineStart:lineBreak])
		p.lineNumber++
		if source[lineBreak] == '\r' && lineBreak+1 < len(source) && source[lineBreak+1] == '\n' {
			lineStart = lineBreak + 2
		} else {
			lineStart = lineBreak + 1
		}
	}
	if len(source) > 0 && (lineStart == 0 || lineStart < len(source)) {
		p.incorporateLine(source[lineStart:])
		p.lineNumber++
	}

	p.finalizeBlocks(p.active)
	for _, bp := range p.all {
		bp.ParseInlines(p.inline)
	}
	doc := p.document.block
	doc.refs = p.refs
	return doc
}

// Analyzes a line of text and updates the document.
func (p *documentParser) incorporateLine(line string) {
	p.line = mdutil.PrepareLine(line)
	p.index = 0
	p.column = 0
	p.columnIsInTab = false

	// Try to continue each open block except the document, which always
	// matches, stopping at the first one that does not continue.
	matches := 1
	for _, bp := range p.active[1:] {
		p.findNextNonSpace()
		result := bp.TryContinue(p)
		if result == nil {
			break
		}
		if result.finalize {
			bp.Block().EndLine = p.lineNumber
			p.finalize(bp)
			return
		}
		if result.newIndex != -1 {
			p.setNewIndex(result.newIndex)
		} else if result.newColumn != -1 {
			p.setNewColumn(result.newColumn)
		}
		matches++
	}

	unmatched := append([]BlockParser(nil), p.active[matches:]...)
	lastMatched := p.active[matches-1]
	bp := lastMatched
	allClosed := len(unmatched) == 0

	// Unless the last matched block is a leaf other than a paragraph, try to
	// start new blocks.
	tryStarts := bp.Block().Kind == KindParagraph || bp.IsContainer()
	for tryStarts {
		p.findNextNonSpace()
		// Shortcut for the common case of text continuing a paragraph.
		if p.blank || (p.indent < mdutil.CodeBlockIndent && mdutil.IsLetter(p.line, p.nextNonSpace)) {
			p.setNewIndex(p.nextNonSpace)
			break
		}
		start := p.findBlockStart(bp)
		if start == nil {
			p.setNewIndex(p.nextNonSpace)
			break
		}
		if !allClosed {
			p.finalizeBlocks(unmatched)
			allClosed = true
		}
		if start.newIndex != -1 {
			p.setNewIndex(start.newIndex)
		} else if start.newColumn != -1 {
			p.setNewColumn(start.newColumn)
		}
		startLine := p.lineNumber
		if start.replaceActive {
			startLine = p.removeActiveBlockParser().Block().StartLine
		}
		for _, newBP := range start.parsers {
			newBP.Block().StartLine = startLine
			bp = p.addChild(newBP)
			tryStarts = newBP.IsContainer()
		}
	}

	// What is left of the line is text. Add it to the appropriate block.
	if !allClosed && !p.blank && isParagraph(p.ActiveBlockParser()) {
		// Lazy continuation of a paragraph.
		p.addLine()
	} else {
		if !allClosed {
			p.finalizeBlocks(unmatched)
		}
		p.propagateLastLineBlank(bp, lastMatched)
		if !bp.IsContainer() {
			p.addLine()
		} else if !p.blank {
			bp = p.addChild(newParagraphParser())
			bp.Block().StartLine = p.lineNumber
			p.addLine()
		}
	}

	if !p.blank {
		for _, bp := range p.active {
			bp.Block().EndLine = p.lineNumber
		}
	} else if active := p.ActiveBlockParser(); !active.IsContainer() {
		active.Block().EndLine = p.lineNumber
	}
}

func isParagraph(bp BlockParser) bool {
	_, ok := bp.(*paragraphParser)
	return ok
}

func (p *documentParser) findNextNonSpace() {
	i := p.index
	col := p.column
	p.blank = true
loop:
	for i < len(p.line) {
		switch p.line[i] {
		case ' ':
			i++
			col++
		case '\t':
			i++
			col += mdutil.ColumnsToNextTabStop(col)
		default:
			p.blank = false
			break loop
		}
	}
	p.nextNonSpace = i
	p.nextNonSpaceColumn = col
	p.indent = col - p.column
}

func (p *documentParser) setNewIndex(newIndex int) {
	if newIndex >= p.nextNonSpace {
		// Skip the spaces already scanned by findNextNonSpace.
		p.index = p.nextNonSpace
		p.column = p.nextNonSpaceColumn
	}
	for p.index < newIndex && p.index != len(p.line) {
		p.advance()
	}
	// An index is never inside a tab.
	p.columnIsInTab = false
}

func (p *documentParser) setNewColumn(newColumn int) {
	if newColumn >= p.nextNonSpaceColumn {
		p.index = p.nextNonSpace
		p.column = p.nextNonSpaceColumn
	}
	for p.column < newColumn && p.index != len(p.line) {
		p.advance()
	}
	if p.column > newColumn {
		// The last byte was a tab and the target column is inside it.
		p.index--
		p.column = newColumn
		p.columnIsInTab = true
	} else {
		p.columnIsInTab = false
	}
}

func (p *documentParser) advance() {
	if p.line[p.index] == '\t' {
		p.column += mdutil.ColumnsToNextTabStop(p.column)
	} else {
		p.column++
	}
	p.index++
}

// Adds the rest of the line to the innermost open block.
func (p *documentParser) addLine() {
	var content string
	if p.columnIsInTab {
		// Expand the rest of the partially consumed tab to spaces.
		spaces := mdutil.ColumnsToNextTabStop(p.column)
		content = strings.Repeat(" ", spaces) + p.line[p.index+1:]
	} else {
		content = p.line[p.index:]
	}
	p.ActiveBlockParser().AddLine(content)
}

type matchedBlockParser struct{ bp BlockParser }

func (m matchedBlockParser) MatchedBlockParser() BlockParser { return m.bp }

func (m matchedBlockParser) ParagraphContent() (string, bool) {
	if pp, ok := m.bp.(*paragraphParser); ok {
		return pp.contentString(), true
	}
	return "", false
}

func (p *documentParser) findBlockStart(bp BlockParser) *BlockStart {
	matched := matchedBlockParser{bp}
	for _, f := range p.config.blockFactories {
		if start := f.TryStart(p, matched); start != nil {
			return start
		}
	}
	return nil
}

// Closes a block and does the necessary postprocessing: extracting reference
// definitions from paragraphs and determining whether lists are tight.
func (p *documentParser) finalize(bp BlockParser) {
	if p.ActiveBlockParser() == bp {
		p.active = p.active[:len(p.active)-1]
	}
	bp.CloseBlock()
	switch bp := bp.(type) {
	case *paragraphParser:
		bp.closeWithReferences(p.refs)
	case *listBlockParser:
		p.finalizeListTight(bp)
	}
}

func (p *documentParser) finalizeBlocks(bps []BlockParser) {
	for i := len(bps) - 1; i >= 0; i-- {
		p.finalize(bps[i])
	}
}

func (p *documentParser) finalizeListTight(bp *listBlockParser) {
	for item := bp.block.firstChild; item != nil; item = item.next {
		// An item ending with a blank line that is followed by another item.
		if p.endsWithBlankLine(item) && item.next != nil {
			bp.block.Tight = false
			return
		}
		// Blank lines between children of an item.
		for sub := item.firstChild; sub != nil; sub = sub.next {
			if p.endsWithBlankLine(sub) && (item.next != nil || sub.next != nil) {
				bp.block.Tight = false
				return
			}
		}
	}
}

func (p *documentParser) endsWithBlankLine(n *Node) bool {
	for n != nil {
		if p.lastLineBlank[n] {
			return true
		}
		if n.Kind != KindBulletList && n.Kind != KindOrderedList && n.Kind != KindListItem {
			break
		}
		n = n.lastChild
	}
	return false
}

// Adds the block of bp as a child of the innermost open block that can
// contain it, finalizing open blocks that cannot.
func (p *documentParser) addChild(bp BlockParser) BlockParser {
	for !p.ActiveBlockParser().CanContain(bp.Block()) {
		p.finalize(p.ActiveBlockParser())
	}
	p.ActiveBlockParser().Block().AppendChild(bp.Block())
	p.activate(bp)
	return bp
}

func (p *documentParser) activate(bp BlockParser) {
	p.active = append(p.active, bp)
	p.all = append(p.all, bp)
}

// Removes the innermost open block from the document and returns its parser.
func (p *documentParser) removeActiveBlockParser() BlockParser {
	old := p.ActiveBlockParser()
	p.active = p.active[:len(p.active)-1]
	for i, bp := range p.all {
		if bp == old {
			p.all = append(p.all[:i], p.all[i+1:]...)
			break
		}
	}
	old.Block().Unlink()
	return old
}

func (p *documentParser) propagateLastLineBlank(bp, lastMatched BlockParser) {
	block := bp.Block()
	if p.blank && block.lastChild != nil {
		p.lastLineBlank[block.lastChild] = true
	}
	// Block quote lines are never blank as they start with ">". Blank lines in
	// fenced code blocks do not count for the tightness of lists, and neither
	// do blank lines after an empty list item that did not match.
	blank := p.blank &&
		!(block.Kind == KindBlockQuote || block.Kind == KindFencedCodeBlock ||
			(block.Kind == KindListItem && block.firstChild == nil && bp != lastMatched))
	for n := block; n != nil; n = n.parent {
		p.lastLineBlank[n] = blank
	}
}
