package md

import "strings"

// BlockParser parses one block. A new BlockParser is created by a
// BlockParserFactory each time a block starts, and receives the lines that
// belong to the block.
type BlockParser interface {
	// Block returns the node of the block.
	Block() *Node
	// IsContainer returns whether the block can contain other blocks.
	IsContainer() bool
	// CanContain returns whether child can be a child of the block.
	CanContain(child *Node) bool
	// TryContinue is called for every line after the first one while the
	// block is open. It returns nil if the line does not continue the block.
	TryContinue(state ParserState) *BlockContinue
	// AddLine adds a line to a leaf block. The line has the markers of all
	// containing blocks removed.
	AddLine(line string)
	// CloseBlock is called when the block is finalized.
	CloseBlock()
	// ParseInlines is called after all blocks are finalized.
	ParseInlines(p InlineParser)
}

// BaseBlockParser provides default implementations for all methods of
// BlockParser except Block and TryContinue. It describes a leaf block that
// ignores lines and has no inline content.
type BaseBlockParser struct{}

func (BaseBlockParser) IsContainer() bool           { return false }
func (BaseBlockParser) CanContain(child *Node) bool { return false }
func (BaseBlockParser) AddLine(line string)         {}
func (BaseBlockParser) CloseBlock()                 {}
func (BaseBlockParser) ParseInlines(p InlineParser) {}

// BlockParserFactory starts new blocks.
type BlockParserFactory interface {
	// TryStart is called for the rest of a line not consumed by open blocks.
	// It returns nil if no block starts here.
	TryStart(state ParserState, matched MatchedBlockParser) *BlockStart
}

// BlockParserFactoryFunc adapts a function to a BlockParserFactory.
type BlockParserFactoryFunc func(state ParserState, matched MatchedBlockParser) *BlockStart

func (f BlockParserFactoryFunc) TryStart(state ParserState, matched MatchedBlockParser) *BlockStart {
	return f(state, matched)
}

// ParserState is the state of the block parser on the current line.
type ParserState interface {
	// Line returns the current line.
	Line() string
	// Index returns the current byte index in the line.
	Index() int
	// NextNonSpaceIndex returns the index of the next byte that is not a
	// space or tab, or the length of the line.
	NextNonSpaceIndex() int
	// Column returns the current column. Tabs advance the column to the next
	// multiple of 4.
	Column() int
	// Indent returns the number of columns between the current column and
	// the column of the next non-space byte.
	Indent() int
	// IsBlank returns whether the rest of the line is blank.
	IsBlank() bool
	// ActiveBlockParser returns the innermost open block parser.
	ActiveBlockParser() BlockParser
}

// MatchedBlockParser gives a BlockParserFactory access to the innermost block
// that matched the current line.
type MatchedBlockParser interface {
	MatchedBlockParser() BlockParser
	// ParagraphContent returns the lines accumulated so far if the matched
	// block is a paragraph.
	ParagraphContent() (string, bool)
}

// BlockContinue is the result of BlockParser.TryContinue. A nil
// *BlockContinue means the block does not continue.
type BlockContinue struct {
	newIndex  int
	newColumn int
	finalize  bool
}

// ContinueAtIndex continues the block, with the parser advancing to the given
// index.
func ContinueAtIndex(i int) *BlockContinue {
	return &BlockContinue{newIndex: i, newColumn: -1}
}

// ContinueAtColumn continues the block, with the parser advancing to the given
// column.
func ContinueAtColumn(col int) *BlockContinue {
	return &BlockContinue{newIndex: -1, newColumn: col}
}

// ContinueFinished marks the block as complete with the current line, as is
// the case for the closing fence of a fenced code block.
func ContinueFinished() *BlockContinue {
	return &BlockContinue{newIndex: -1, newColumn: -1, finalize: true}
}

// BlockStart is the result of BlockParserFactory.TryStart.
type BlockStart struct {
	parsers       []BlockParser
	newIndex      int
	newColumn     int
	replaceActive bool
}

// StartWith starts the given blocks. Each block is nested inside the
// previous one.
func StartWith(parsers ...BlockParser) *BlockStart {
	return &BlockStart{parsers: parsers, newIndex: -1, newColumn: -1}
}

// AtIndex makes the parser continue at the given index. It returns s.
func (s *BlockStart) AtIndex(i int) *BlockStart {
	s.newIndex = i
	return s
}

// AtColumn makes the parser continue at the given column. It returns s.
func (s *BlockStart) AtColumn(col int) *BlockStart {
	s.newColumn = col
	return s
}

// ReplaceActiveBlockParser makes the new block replace the innermost open
// block, which is removed from the document. It returns s.
func (s *BlockStart) ReplaceActiveBlockParser() *BlockStart {
	s.replaceActive = true
	return s
}

// InlineParser parses the inline content of blocks.
type InlineParser interface {
	// Parse parses content and appends the resulting inline nodes to block.
	Parse(content string, block *Node)
}

// blockContent accumulates the lines of a block, separated by "\n".
type blockContent struct {
	lines []string
}

func (c *blockContent) add(line string) { c.lines = append(c.lines, line) }

func (c *blockContent) String() string { return strings.Join(c.lines, "\n") }
