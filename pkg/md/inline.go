package md

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"src.mdkit.sh/pkg/md/mdutil"
)

// A delimiter run on the delimiter stack, which is a doubly linked list whose
// top is inlineParser.lastDelimiter.
type delimiter struct {
	node       *Node
	char       byte
	canOpen    bool
	canClose   bool
	length     int
	prev, next *delimiter
}

func (d *delimiter) run() DelimiterRun {
	return DelimiterRun{CanOpen: d.canOpen, CanClose: d.canClose, Len: d.length}
}

// An opening "[" or "![" on the bracket stack, which is a linked list whose
// top is inlineParser.lastBracket.
type bracket struct {
	node *Node
	// Index of the "[" in the input.
	index int
	image bool
	prev  *bracket
	// The top of the delimiter stack when the bracket was pushed.
	prevDelimiter *delimiter
	// Cleared when the bracket is inside a link, since links can't nest.
	allowed bool
	// Whether another bracket was pushed after this one.
	bracketAfter bool
}

// Parses inline content. One inlineParser is used for all the blocks of a
// document, since it holds the document's reference definitions.
type inlineParser struct {
	config *Parser
	refs   *ReferenceMap

	block *Node
	input string
	pos   int

	lastDelimiter *delimiter
	lastBracket   *bracket
}

func newInlineParser(config *Parser, refs *ReferenceMap) *inlineParser {
	return &inlineParser{config: config, refs: refs}
}

const escapable = `[!"#$%&'()*+,./:;<=>?@\[\\\]^_` + "`" + `{|}~-]`

var (
	entityHereRegexp     = regexp.MustCompile(`^` + mdutil.Entity)
	linkTitleRegexp      = regexp.MustCompile(`^(?:"(?:\\` + escapable + `|[^"\x00])*"|'(?:\\` + escapable + `|[^'\x00])*'|\((?:\\` + escapable + `|[^)\x00])*\))`)
	linkDestBracesRegexp = regexp.MustCompile(`^<(?:[^<>\n\\\x00]|\\` + escapable + `|\\)*>`)
	autolinkRegexp       = regexp.MustCompile(`^<[a-zA-Z][a-zA-Z0-9.+-]{1,31}:[^<>\x00-\x20]*>`)
	emailAutolinkRegexp  = regexp.MustCompile(`^<([a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*)>`)
)

var htmlTagRegexp = regexp.MustCompile(`(?i)^(?:` +
	mdutil.OpenTag + `|` + mdutil.CloseTag + `|` +
	`<!---->|<!--(?:-?[^>-])(?:-?[^-])*-->|` + // comment
	`<[?].*?[?]>|` + // processing instruction
	`<![A-Z]+\s+[^>]*>|` + // declaration
	`<!\[CDATA\[[\s\S]*?\]\]>)`)

// Parse parses content into inline nodes and appends them to block.
func (p *inlineParser) Parse(content string, block *Node) {
	p.block = block
	p.input = strings.TrimSpace(content)
	p.pos = 0
	p.lastDelimiter = nil
	p.lastBracket = nil

	for p.pos < len(p.input) {
		p.parseInline()
	}

	p.processDelimiters(nil)
	mergeTextNodes(block.firstChild, block.lastChild)
}

func (p *inlineParser) peek() byte {
	if p.pos < len(p.input) {
		return p.input[p.pos]
	}
	return 0
}

func (p *inlineParser) appendText(s string) *Node {
	n := NewText(s)
	p.block.AppendChild(n)
	return n
}

// Parses the next inline element and advances the position.
func (p *inlineParser) parseInline() {
	c := p.input[p.pos]
	ok := true
	switch c {
	case '\n':
		p.parseNewline()
	case '\\':
		p.parseBackslash()
	case '`':
		p.parseBackticks()
	case '[':
		p.parseOpenBracket()
	case '!':
		p.parseBang()
	case ']':
		p.parseCloseBracket()
	case '<':
		ok = p.parseAutolink() || p.parseHTMLInline()
	case '&':
		ok = p.parseEntity()
	default:
		if proc, isDelim := p.config.delimProcessors[c]; isDelim {
			ok = p.parseDelimiters(proc, c)
		} else {
			ok = p.parseString()
		}
	}
	if !ok {
		// A special character without a special meaning here.
		p.pos++
		p.appendText(string(c))
	}
}

// Parses a newline. It is a hard line break if preceded by at least two
// spaces, and a soft line break otherwise.
func (p *inlineParser) parseNewline() {
	p.pos++
	last := p.block.lastChild
	br := NewNode(KindSoftLineBreak)
	if last != nil && last.Kind == KindText && strings.HasSuffix(last.Literal, " ") {
		trimmed := strings.TrimRight(last.Literal, " ")
		if len(last.Literal)-len(trimmed) >= 2 {
			br = NewNode(KindHardLineBreak)
		}
		last.Literal = trimmed
	}
	p.block.AppendChild(br)
	// Leading spaces of the next line are not part of the content.
	for p.peek() == ' ' {
		p.pos++
	}
}

// Parses a backslash, which may escape a punctuation character, form a hard
// line break, or be literal.
func (p *inlineParser) parseBackslash() {
	p.pos++
	switch {
	case p.peek() == '\n':
		p.block.AppendChild(NewNode(KindHardLineBreak))
		p.pos++
	case p.pos < len(p.input) && mdutil.IsEscapable(p.input[p.pos]):
		p.appendText(p.input[p.pos : p.pos+1])
		p.pos++
	default:
		p.appendText(`\`)
	}
}

// Parses a run of backticks, which starts a code span if there is a closing
// run of the same length.
func (p *inlineParser) parseBackticks() {
	start := p.pos
	for p.peek() == '`' {
		p.pos++
	}
	ticks := p.input[start:p.pos]
	closer := findBacktickRun(p.input, ticks, p.pos)
	if closer == -1 {
		p.appendText(ticks)
		return
	}
	code := NewNode(KindCode)
	code.Literal = strings.Join(strings.Fields(p.input[p.pos:closer]), " ")
	p.block.AppendChild(code)
	p.pos = closer + len(ticks)
}

// Returns the index of the first occurrence of the backtick run in s at or
// after i that is not part of a longer run, or -1.
func findBacktickRun(s, run string, i int) int {
	for i < len(s) {
		j := strings.Index(s[i:], run)
		if j == -1 {
			return -1
		}
		j += i
		if j+len(run) == len(s) || s[j+len(run)] != '`' {
			return j
		}
		for j < len(s) && s[j] == '`' {
			j++
		}
		i = j
	}
	return -1
}

func (p *inlineParser) parseOpenBracket() {
	start := p.pos
	p.pos++
	node := p.appendText("[")
	p.addBracket(&bracket{node: node, index: start})
}

func (p *inlineParser) parseBang() {
	start := p.pos
	p.pos++
	if p.peek() != '[' {
		p.appendText("!")
		return
	}
	p.pos++
	node := p.appendText("![")
	p.addBracket(&bracket{node: node, index: start + 1, image: true})
}

func (p *inlineParser) addBracket(b *bracket) {
	if p.lastBracket != nil {
		p.lastBracket.bracketAfter = true
	}
	b.prev = p.lastBracket
	b.prevDelimiter = p.lastDelimiter
	b.allowed = true
	p.lastBracket = b
}

// Tries to match a "]" with the last opening bracket, producing a link or
// image if it is followed by a link tail or the label matches a reference.
func (p *inlineParser) parseCloseBracket() {
	p.pos++
	startIndex := p.pos

	opener := p.lastBracket
	if opener == nil {
		p.appendText("]")
		return
	}
	if !opener.allowed {
		p.appendText("]")
		p.lastBracket = opener.prev
		return
	}

	var dest, title string
	hasTitle, found := false, false

	// Inline link, like [foo](/uri "title").
	if p.peek() == '(' {
		p.pos++
		p.spnl()
		if d, ok := p.parseLinkDestination(); ok {
			dest = d
			p.spnl()
			// The title must be preceded by whitespace.
			if isASCIISpace(p.input[p.pos-1]) {
				title, hasTitle = p.parseLinkTitle()
				p.spnl()
			}
			if p.peek() == ')' {
				p.pos++
				found = true
			} else {
				p.pos = startIndex
			}
		} else {
			p.pos = startIndex
		}
	}

	// Reference link, like [foo][bar], [foo][] or [foo].
	if !found {
		beforeLabel := p.pos
		labelLen := p.parseLinkLabel()
		var label string
		hasLabel := false
		if labelLen > 2 {
			label, hasLabel = p.input[beforeLabel:beforeLabel+labelLen], true
		} else if !opener.bracketAfter {
			// With an empty or missing second label, the first label is the
			// reference. It can't be one if it contains brackets.
			label, hasLabel = p.input[opener.index:startIndex], true
		}
		if hasLabel {
			if ref, ok := p.refs.Get(label); ok {
				dest, title, hasTitle = ref.Destination, ref.Title, ref.HasTitle
				found = true
			}
		}
	}

	if !found {
		p.appendText("]")
		p.lastBracket = opener.prev
		p.pos = startIndex
		return
	}

	link := NewNode(KindLink)
	if opener.image {
		link.Kind = KindImage
	}
	link.Destination = dest
	link.Title, link.HasTitle = title, hasTitle
	for n := opener.node.next; n != nil; {
		next := n.next
		link.AppendChild(n)
		n = next
	}
	p.block.AppendChild(link)

	// Resolve emphasis inside the link text.
	p.processDelimiters(opener.prevDelimiter)
	mergeTextNodes(link.firstChild, link.lastChild)
	opener.node.Unlink()
	p.lastBracket = opener.prev

	// Links can't contain other links, so the enclosing brackets can no
	// longer form links.
	if !opener.image {
		for b := p.lastBracket; b != nil; b = b.prev {
			if !b.image {
				b.allowed = false
			}
		}
	}
}

// Skips spaces, with at most one newline.
func (p *inlineParser) spnl() {
	for p.peek() == ' ' {
		p.pos++
	}
	if p.peek() == '\n' {
		p.pos++
		for p.peek() == ' ' {
			p.pos++
		}
	}
}

func isASCIISpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// Parses a link destination, either enclosed in "<" and ">", or bare with
// balanced parentheses. The returned destination is unescaped.
func (p *inlineParser) parseLinkDestination() (string, bool) {
	if m := linkDestBracesRegexp.FindString(p.input[p.pos:]); m != "" {
		p.pos += len(m)
		return mdutil.UnescapeString(m[1 : len(m)-1]), true
	}
	start := p.pos
	parens := 0
loop:
	for p.pos < len(p.input) {
		switch c := p.input[p.pos]; {
		case c == '\\' && p.pos+1 < len(p.input) && mdutil.IsEscapable(p.input[p.pos+1]):
			p.pos += 2
		case c == '(':
			parens++
			p.pos++
		case c == ')':
			if parens == 0 {
				break loop
			}
			parens--
			p.pos++
		case c <= ' ':
			break loop
		default:
			p.pos++
		}
	}
	if parens != 0 {
		p.pos = start
		return "", false
	}
	return mdutil.UnescapeString(p.input[start:p.pos]), true
}

// Parses a link title enclosed in double quotes, single quotes or
// parentheses. The returned title is unescaped.
func (p *inlineParser) parseLinkTitle() (string, bool) {
	m := linkTitleRegexp.FindString(p.input[p.pos:])
	if m == "" {
		return "", false
	}
	p.pos += len(m)
	return mdutil.UnescapeString(m[1 : len(m)-1]), true
}

// Parses a link label and returns its length including the brackets, or 0.
func (p *inlineParser) parseLinkLabel() int {
	n := linkLabelLength(p.input[p.pos:])
	p.pos += n
	return n
}

const maxLinkLabelLength = 999

func linkLabelLength(s string) int {
	if s == "" || s[0] != '[' {
		return 0
	}
	for i, count := 1, 0; i < len(s) && count <= maxLinkLabelLength; count++ {
		switch s[i] {
		case ']':
			return i + 1
		case '[':
			return 0
		case '\\':
			if i+1 < len(s) && mdutil.IsEscapable(s[i+1]) {
				i += 2
			} else {
				i++
			}
		default:
			i++
		}
	}
	return 0
}

// Parses an autolink, a URI or email address enclosed in "<" and ">".
func (p *inlineParser) parseAutolink() bool {
	s := p.input[p.pos:]
	var dest, text string
	if m := emailAutolinkRegexp.FindString(s); m != "" {
		text = m[1 : len(m)-1]
		dest = "mailto:" + text
	} else if m := autolinkRegexp.FindString(s); m != "" {
		text = m[1 : len(m)-1]
		dest = text
	} else {
		return false
	}
	p.pos += len(text) + 2
	link := NewNode(KindLink)
	link.Destination = dest
	link.AppendChild(NewText(text))
	p.block.AppendChild(link)
	return true
}

func (p *inlineParser) parseHTMLInline() bool {
	m := htmlTagRegexp.FindString(p.input[p.pos:])
	if m == "" {
		return false
	}
	p.pos += len(m)
	n := NewNode(KindHTMLInline)
	n.Literal = m
	p.block.AppendChild(n)
	return true
}

func (p *inlineParser) parseEntity() bool {
	m := entityHereRegexp.FindString(p.input[p.pos:])
	if m == "" {
		return false
	}
	p.pos += len(m)
	p.appendText(mdutil.DecodeEntity(m))
	return true
}

// Parses a run of characters that are not special.
func (p *inlineParser) parseString() bool {
	start := p.pos
	for p.pos < len(p.input) && !p.config.specialChars[p.input[p.pos]] {
		p.pos++
	}
	if p.pos == start {
		return false
	}
	p.appendText(p.input[start:p.pos])
	return true
}

// Parses a run of a delimiter character and pushes it on the delimiter stack.
func (p *inlineParser) parseDelimiters(proc DelimiterProcessor, c byte) bool {
	n, canOpen, canClose := p.scanDelimiters(proc, c)
	if n == 0 {
		return false
	}
	start := p.pos
	p.pos += n
	d := &delimiter{
		node: p.appendText(p.input[start:p.pos]), char: c,
		canOpen: canOpen, canClose: canClose, length: n,
		prev: p.lastDelimiter,
	}
	if d.prev != nil {
		d.prev.next = d
	}
	p.lastDelimiter = d
	return true
}

// Scans a run of c at the current position, and determines whether it can
// open or close spans from the characters around it. It returns 0 if the run
// is shorter than the minimum length of the processor.
func (p *inlineParser) scanDelimiters(proc DelimiterProcessor, c byte) (n int, canOpen, canClose bool) {
	start := p.pos
	end := start
	for end < len(p.input) && p.input[end] == c {
		end++
	}
	n = end - start
	if n < proc.MinLength() {
		return 0, false, false
	}

	before, after := '\n', '\n'
	if start > 0 {
		before, _ = utf8.DecodeLastRuneInString(p.input[:start])
	}
	if end < len(p.input) {
		after, _ = utf8.DecodeRuneInString(p.input[end:])
	}
	beforeIsPunct, beforeIsSpace := mdutil.IsPunctuation(before), mdutil.IsWhitespace(before)
	afterIsPunct, afterIsSpace := mdutil.IsPunctuation(after), mdutil.IsWhitespace(after)

	leftFlanking := !afterIsSpace && !(afterIsPunct && !beforeIsSpace && !beforeIsPunct)
	rightFlanking := !beforeIsSpace && !(beforeIsPunct && !afterIsSpace && !afterIsPunct)
	if c == '_' {
		// Intraword "_" can neither open nor close.
		canOpen = leftFlanking && (!rightFlanking || beforeIsPunct)
		canClose = rightFlanking && (!leftFlanking || afterIsPunct)
	} else {
		canOpen = leftFlanking && c == proc.OpeningChar()
		canClose = rightFlanking && c == proc.ClosingChar()
	}
	return n, canOpen, canClose
}

// Matches closers on the delimiter stack above stackBottom with openers,
// asking the processors to form spans, and then removes all delimiters above
// stackBottom.
func (p *inlineParser) processDelimiters(stackBottom *delimiter) {
	// For each delimiter character, the delimiter below which no opener can
	// be found.
	openersBottom := make(map[byte]*delimiter)

	closer := p.lastDelimiter
	for closer != nil && closer.prev != stackBottom {
		closer = closer.prev
	}
	for closer != nil {
		c := closer.char
		proc := p.config.delimProcessors[c]
		if !closer.canClose || proc == nil {
			closer = closer.next
			continue
		}
		openingChar := proc.OpeningChar()

		use := 0
		openerFound, potentialOpenerFound := false, false
		opener := closer.prev
		for opener != nil && opener != stackBottom && opener != openersBottom[c] {
			if opener.canOpen && opener.char == openingChar {
				potentialOpenerFound = true
				use = proc.DelimiterUse(opener.run(), closer.run())
				if use > 0 {
					openerFound = true
					break
				}
			}
			opener = opener.prev
		}

		if !openerFound {
			// Only set a lower bound when there is no potential opener at all.
			// An opener rejected because of the lengths of the runs may still
			// match a later closer.
			if !potentialOpenerFound {
				openersBottom[c] = closer.prev
				if !closer.canOpen {
					p.removeDelimiter(closer)
				}
			}
			closer = closer.next
			continue
		}

		openerNode, closerNode := opener.node, closer.node
		opener.length -= use
		closer.length -= use
		openerNode.Literal = openerNode.Literal[:len(openerNode.Literal)-use]
		closerNode.Literal = closerNode.Literal[:len(closerNode.Literal)-use]

		p.removeDelimitersBetween(opener, closer)
		// The processor may move the nodes between opener and closer, so
		// merge them first.
		if openerNode.next != closerNode {
			mergeTextNodes(openerNode.next, closerNode.prev)
		}
		proc.Process(openerNode, closerNode, use)

		if opener.length == 0 {
			p.removeDelimiterAndNode(opener)
		}
		if closer.length == 0 {
			next := closer.next
			p.removeDelimiterAndNode(closer)
			closer = next
		}
	}

	for p.lastDelimiter != nil && p.lastDelimiter != stackBottom {
		p.removeDelimiter(p.lastDelimiter)
	}
}

func (p *inlineParser) removeDelimitersBetween(opener, closer *delimiter) {
	for d := closer.prev; d != nil && d != opener; {
		prev := d.prev
		p.removeDelimiter(d)
		d = prev
	}
}

// Removes a used-up delimiter and its Text node.
func (p *inlineParser) removeDelimiterAndNode(d *delimiter) {
	d.node.Unlink()
	p.removeDelimiter(d)
}

// Removes a delimiter from the stack, keeping its Text node as literal text.
func (p *inlineParser) removeDelimiter(d *delimiter) {
	if d.prev != nil {
		d.prev.next = d.next
	}
	if d.next == nil {
		p.lastDelimiter = d.prev
	} else {
		d.next.prev = d.prev
	}
}

// Merges runs of adjacent Text nodes between from and to, inclusive.
func mergeTextNodes(from, to *Node) {
	var first, last *Node
	for n := from; n != nil; n = n.next {
		if n.Kind == KindText {
			if first == nil {
				first = n
			}
			last = n
		} else {
			mergeTextRun(first, last)
			first, last = nil, nil
		}
		if n == to {
			break
		}
	}
	mergeTextRun(first, last)
}

func mergeTextRun(first, last *Node) {
	if first == nil || first == last {
		return
	}
	var sb strings.Builder
	sb.WriteString(first.Literal)
	stop := last.next
	for n := first.next; n != stop; {
		next := n.next
		sb.WriteString(n.Literal)
		n.Unlink()
		n = next
	}
	first.Literal = sb.String()
}

// ParseReference parses a link reference definition at the start of s. If
// there is one, it is added to refs and the number of bytes it spans is
// returned, including the trailing newline if any. Otherwise it returns 0.
func ParseReference(s string, refs *ReferenceMap) int {
	n, ref := parseReference(s)
	if n > 0 {
		refs.Add(ref)
	}
	return n
}

func parseReference(s string) (int, Reference) {
	p := &inlineParser{input: s}

	n := p.parseLinkLabel()
	if n == 0 {
		return 0, Reference{}
	}
	label := s[:n]
	if p.peek() != ':' {
		return 0, Reference{}
	}
	p.pos++
	p.spnl()

	dest, ok := p.parseLinkDestination()
	if !ok || dest == "" {
		return 0, Reference{}
	}

	beforeTitle := p.pos
	p.spnl()
	title, hasTitle := p.parseLinkTitle()
	if !hasTitle {
		p.pos = beforeTitle
	}

	atLineEnd := true
	if p.pos != len(s) && !p.matchLineEnd() {
		if !hasTitle {
			atLineEnd = false
		} else {
			// The title is not followed by the end of the line. The
			// definition is still valid without the title if the destination
			// is.
			title, hasTitle = "", false
			p.pos = beforeTitle
			atLineEnd = p.matchLineEnd()
		}
	}
	if !atLineEnd || mdutil.NormalizeLabel(label) == "" {
		return 0, Reference{}
	}
	return p.pos, Reference{Label: label, Destination: dest, Title: title, HasTitle: hasTitle}
}

// Matches spaces followed by a newline or the end of the input, and advances
// past them.
func (p *inlineParser) matchLineEnd() bool {
	i := p.pos
	for i < len(p.input) && p.input[i] == ' ' {
		i++
	}
	if i == len(p.input) {
		p.pos = i
		return true
	}
	if p.input[i] == '\n' {
		p.pos = i + 1
		return true
	}
	return false
}
