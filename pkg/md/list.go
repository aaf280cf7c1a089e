package md

import (
	"strconv"

	"src.mdkit.sh/pkg/md/mdutil"
)

type listBlockParser struct {
	BaseBlockParser
	block *Node
}

func (p *listBlockParser) Block() *Node      { return p.block }
func (p *listBlockParser) IsContainer() bool { return true }

func (p *listBlockParser) CanContain(child *Node) bool { return child.Kind == KindListItem }

// A list has no markers of its own. Another block starting closes the list
// because it cannot contain anything but list items.
func (p *listBlockParser) TryContinue(state ParserState) *BlockContinue {
	return ContinueAtIndex(state.Index())
}

type listItemParser struct {
	BaseBlockParser
	block *Node
	// Minimum number of columns the content must be indented by, relative to
	// the containing block.
	contentIndent int
}

func (p *listItemParser) Block() *Node                { return p.block }
func (p *listItemParser) IsContainer() bool           { return true }
func (p *listItemParser) CanContain(child *Node) bool { return true }

func (p *listItemParser) TryContinue(state ParserState) *BlockContinue {
	if state.IsBlank() {
		if p.block.firstChild == nil {
			// A blank line after an empty list item ends it.
			return nil
		}
		return ContinueAtIndex(state.NextNonSpaceIndex())
	}
	if state.Indent() >= p.contentIndent {
		return ContinueAtColumn(state.Column() + p.contentIndent)
	}
	return nil
}

// Parses the list marker at line[i:], which is at column col. It returns a
// new list node describing the marker and the column where the content of the
// item starts, or nil.
func parseListMarker(line string, i, col int, inParagraph bool) (*Node, int) {
	list, markerLen := parseMarker(line[i:])
	if list == nil {
		return nil, 0
	}
	// Markers never contain tabs, so their length is also their width.
	colAfterMarker := col + markerLen
	contentCol := colAfterMarker
	hasContent := false
	for _, b := range []byte(line[i+markerLen:]) {
		if b == '\t' {
			contentCol += mdutil.ColumnsToNextTabStop(contentCol)
		} else if b == ' ' {
			contentCol++
		} else {
			hasContent = true
			break
		}
	}
	if inParagraph {
		// Only ordered lists starting with 1 and non-empty items may
		// interrupt a paragraph.
		if list.Kind == KindOrderedList && list.StartNumber != 1 || !hasContent {
			return nil, 0
		}
	}
	if !hasContent || contentCol-colAfterMarker > mdutil.CodeBlockIndent {
		// Blank items and items starting with indented code have the content
		// one column after the marker.
		contentCol = colAfterMarker + 1
	}
	return list, contentCol
}

// Parses a bullet marker or an ordered marker of 1 to 9 digits, which must be
// followed by a space, a tab or the end of the line.
func parseMarker(s string) (*Node, int) {
	followedBySpace := func(i int) bool {
		return i == len(s) || s[i] == ' ' || s[i] == '\t'
	}
	if s == "" {
		return nil, 0
	}
	switch s[0] {
	case '*', '+', '-':
		if !followedBySpace(1) {
			return nil, 0
		}
		list := NewNode(KindBulletList)
		list.BulletMarker = s[0]
		return list, 1
	}
	n := 0
	for n < len(s) && n < 10 && '0' <= s[n] && s[n] <= '9' {
		n++
	}
	if n == 0 || n > 9 || n == len(s) || (s[n] != '.' && s[n] != ')') || !followedBySpace(n+1) {
		return nil, 0
	}
	start, _ := strconv.Atoi(s[:n])
	list := NewNode(KindOrderedList)
	list.StartNumber = start
	list.OrderedDelimiter = s[n]
	return list, n + 1
}

// Reports whether list items of b can be added to list a.
func listsMatch(a, b *Node) bool {
	switch {
	case a.Kind == KindBulletList && b.Kind == KindBulletList:
		return a.BulletMarker == b.BulletMarker
	case a.Kind == KindOrderedList && b.Kind == KindOrderedList:
		return a.OrderedDelimiter == b.OrderedDelimiter
	}
	return false
}

func tryStartList(state ParserState, matched MatchedBlockParser) *BlockStart {
	matchedList, inList := matched.MatchedBlockParser().(*listBlockParser)
	if state.Indent() >= mdutil.CodeBlockIndent && !inList {
		return nil
	}
	i := state.NextNonSpaceIndex()
	col := state.Column() + state.Indent()
	_, inParagraph := matched.ParagraphContent()
	list, contentCol := parseListMarker(state.Line(), i, col, inParagraph)
	if list == nil {
		return nil
	}
	item := &listItemParser{
		block: NewNode(KindListItem), contentIndent: contentCol - state.Column()}
	if !inList || !listsMatch(matchedList.block, list) {
		list.Tight = true
		return StartWith(&listBlockParser{block: list}, item).AtColumn(contentCol)
	}
	return StartWith(item).AtColumn(contentCol)
}
