package md

// DelimiterProcessor handles runs of a delimiter character in inline content,
// such as the "*" and "_" of emphasis.
//
// Processors must be stateless, since a Parser may be used concurrently.
type DelimiterProcessor interface {
	// OpeningChar returns the character that opens a delimited span.
	OpeningChar() byte
	// ClosingChar returns the character that closes a delimited span. It may
	// be the same as the opening character.
	ClosingChar() byte
	// MinLength returns the minimum length of a delimiter run, at least 1.
	MinLength() int
	// DelimiterUse returns how many characters of the opener and closer runs
	// are used to form a span, or 0 if they cannot form one. The result must
	// not exceed the length of either run.
	DelimiterUse(opener, closer DelimiterRun) int
	// Process forms a span from the nodes between the opener and closer Text
	// nodes, using n characters from each of them. The delimiter characters
	// have already been removed from the Text nodes.
	Process(opener, closer *Node, n int)
}

// DelimiterRun describes a run of delimiter characters.
type DelimiterRun struct {
	CanOpen  bool
	CanClose bool
	// Len is the number of characters left in the run.
	Len int
}

// EmphasisDelimiterProcessor is the DelimiterProcessor for emphasis and strong
// emphasis.
type EmphasisDelimiterProcessor struct {
	char byte
}

// NewEmphasisDelimiterProcessor returns a processor for emphasis delimited by
// c, which is normally '*' or '_'.
func NewEmphasisDelimiterProcessor(c byte) *EmphasisDelimiterProcessor {
	return &EmphasisDelimiterProcessor{c}
}

func (p *EmphasisDelimiterProcessor) OpeningChar() byte { return p.char }
func (p *EmphasisDelimiterProcessor) ClosingChar() byte { return p.char }
func (p *EmphasisDelimiterProcessor) MinLength() int    { return 1 }

func (p *EmphasisDelimiterProcessor) DelimiterUse(opener, closer DelimiterRun) int {
	// The "multiple of 3" rule for runs that can both open and close.
	if (opener.CanClose || closer.CanOpen) && (opener.Len+closer.Len)%3 == 0 {
		return 0
	}
	if opener.Len < 3 || closer.Len < 3 {
		return min(opener.Len, closer.Len)
	}
	if closer.Len%2 == 0 {
		return 2
	}
	return 1
}

func (p *EmphasisDelimiterProcessor) Process(opener, closer *Node, n int) {
	var emphasis *Node
	if n == 1 {
		emphasis = NewNode(KindEmphasis)
		emphasis.Delimiter = string(p.char)
	} else {
		emphasis = NewNode(KindStrongEmphasis)
		emphasis.Delimiter = string([]byte{p.char, p.char})
	}
	WrapBetween(opener, closer, emphasis)
}

// WrapBetween moves all siblings between opener and closer into wrapper, and
// inserts wrapper after opener. It is a helper for implementing
// DelimiterProcessor.Process.
func WrapBetween(opener, closer, wrapper *Node) {
	for n := opener.next; n != nil && n != closer; {
		next := n.next
		wrapper.AppendChild(n)
		n = next
	}
	opener.InsertAfter(wrapper)
}
