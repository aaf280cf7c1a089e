package md

import (
	"fmt"
	"strings"
	"sync"
)

// Kind identifies the kind of a Node.
type Kind uint16

// Core node kinds.
const (
	KindDocument Kind = iota
	KindBlockQuote
	KindHeading
	KindParagraph
	KindFencedCodeBlock
	KindIndentedCodeBlock
	KindHTMLBlock
	KindThematicBreak
	KindBulletList
	KindOrderedList
	KindListItem

	KindText
	KindEmphasis
	KindStrongEmphasis
	KindLink
	KindImage
	KindCode
	KindHTMLInline
	KindSoftLineBreak
	KindHardLineBreak

	numCoreKinds
)

type kindInfo struct {
	name  string
	block bool
}

var (
	kindsMutex sync.RWMutex
	kinds      = []kindInfo{
		KindDocument:          {"Document", true},
		KindBlockQuote:        {"BlockQuote", true},
		KindHeading:           {"Heading", true},
		KindParagraph:         {"Paragraph", true},
		KindFencedCodeBlock:   {"FencedCodeBlock", true},
		KindIndentedCodeBlock: {"IndentedCodeBlock", true},
		KindHTMLBlock:         {"HTMLBlock", true},
		KindThematicBreak:     {"ThematicBreak", true},
		KindBulletList:        {"BulletList", true},
		KindOrderedList:       {"OrderedList", true},
		KindListItem:          {"ListItem", true},

		KindText:           {"Text", false},
		KindEmphasis:       {"Emphasis", false},
		KindStrongEmphasis: {"StrongEmphasis", false},
		KindLink:           {"Link", false},
		KindImage:          {"Image", false},
		KindCode:           {"Code", false},
		KindHTMLInline:     {"HTMLInline", false},
		KindSoftLineBreak:  {"SoftLineBreak", false},
		KindHardLineBreak:  {"HardLineBreak", false},
	}
)

// NewKind registers a new node kind for use by extensions and returns it.
// Kinds are usually registered in package-level variable declarations.
func NewKind(name string, block bool) Kind {
	kindsMutex.Lock()
	defer kindsMutex.Unlock()
	kinds = append(kinds, kindInfo{name, block})
	return Kind(len(kinds) - 1)
}

func (k Kind) info() kindInfo {
	kindsMutex.RLock()
	defer kindsMutex.RUnlock()
	if int(k) < len(kinds) {
		return kinds[k]
	}
	return kindInfo{fmt.Sprintf("Kind(%d)", k), false}
}

func (k Kind) String() string { return k.info().name }

// IsBlock returns whether nodes of this kind are blocks.
func (k Kind) IsBlock() bool { return k.info().block }

// IsCore returns whether k is one of the kinds defined by this package.
func (k Kind) IsCore() bool { return k < numCoreKinds }

// Node is a node in a Markdown document tree.
//
// All kinds of nodes share this struct. Which of the payload fields are used
// depends on the kind, as documented on each field.
type Node struct {
	Kind Kind

	parent     *Node
	firstChild *Node
	lastChild  *Node
	prev       *Node
	next       *Node

	// Literal is the content of Text, Code, HTMLInline, HTMLBlock,
	// FencedCodeBlock and IndentedCodeBlock nodes.
	Literal string
	// Info is the info string of a FencedCodeBlock.
	Info string
	// Destination and Title are used by Link and Image. HasTitle
	// distinguishes an empty title from a missing one.
	Destination string
	Title       string
	HasTitle    bool
	// Delimiter is the delimiter string of Emphasis ("*" or "_") and
	// StrongEmphasis ("**" or "__").
	Delimiter string
	// Level is the level of a Heading, from 1 to 6.
	Level int

	// FenceChar, FenceLength and FenceIndent describe the opening fence of a
	// FencedCodeBlock.
	FenceChar   byte
	FenceLength int
	FenceIndent int

	// BulletMarker is the marker of a BulletList: '-', '+' or '*'.
	BulletMarker byte
	// StartNumber and OrderedDelimiter ('.' or ')') are used by OrderedList.
	StartNumber      int
	OrderedDelimiter byte
	// Tight is used by BulletList and OrderedList.
	Tight bool

	// StartLine and EndLine are the 0-based source lines spanned by a block.
	StartLine int
	EndLine   int

	// Data holds the payload of extension kinds.
	Data any

	refs *ReferenceMap
}

// NewNode returns a new node of the given kind with no links.
func NewNode(k Kind) *Node { return &Node{Kind: k} }

// NewText returns a new Text node.
func NewText(literal string) *Node { return &Node{Kind: KindText, Literal: literal} }

// IsBlock returns whether n is a block.
func (n *Node) IsBlock() bool { return n.Kind.IsBlock() }

// Parent returns the parent of n, or nil.
func (n *Node) Parent() *Node { return n.parent }

// FirstChild returns the first child of n, or nil.
func (n *Node) FirstChild() *Node { return n.firstChild }

// LastChild returns the last child of n, or nil.
func (n *Node) LastChild() *Node { return n.lastChild }

// Next returns the next sibling of n, or nil.
func (n *Node) Next() *Node { return n.next }

// Prev returns the previous sibling of n, or nil.
func (n *Node) Prev() *Node { return n.prev }

// References returns the reference definitions of a Document node produced by
// a Parser. It returns nil for other nodes.
func (n *Node) References() *ReferenceMap { return n.refs }

// AppendChild makes child the last child of n, unlinking it first.
func (n *Node) AppendChild(child *Node) {
	child.Unlink()
	child.parent = n
	if n.lastChild != nil {
		n.lastChild.next = child
		child.prev = n.lastChild
		n.lastChild = child
	} else {
		n.firstChild = child
		n.lastChild = child
	}
}

// PrependChild makes child the first child of n, unlinking it first.
func (n *Node) PrependChild(child *Node) {
	child.Unlink()
	child.parent = n
	if n.firstChild != nil {
		n.firstChild.prev = child
		child.next = n.firstChild
		n.firstChild = child
	} else {
		n.firstChild = child
		n.lastChild = child
	}
}

// InsertAfter makes sibling the next sibling of n, unlinking it first.
func (n *Node) InsertAfter(sibling *Node) {
	sibling.Unlink()
	sibling.next = n.next
	if sibling.next != nil {
		sibling.next.prev = sibling
	}
	sibling.prev = n
	n.next = sibling
	sibling.parent = n.parent
	if sibling.next == nil && sibling.parent != nil {
		sibling.parent.lastChild = sibling
	}
}

// InsertBefore makes sibling the previous sibling of n, unlinking it first.
func (n *Node) InsertBefore(sibling *Node) {
	sibling.Unlink()
	sibling.prev = n.prev
	if sibling.prev != nil {
		sibling.prev.next = sibling
	}
	sibling.next = n
	n.prev = sibling
	sibling.parent = n.parent
	if sibling.prev == nil && sibling.parent != nil {
		sibling.parent.firstChild = sibling
	}
}

// Unlink removes n from its parent and siblings. The children of n are kept.
func (n *Node) Unlink() {
	if n.prev != nil {
		n.prev.next = n.next
	} else if n.parent != nil {
		n.parent.firstChild = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else if n.parent != nil {
		n.parent.lastChild = n.prev
	}
	n.parent = nil
	n.next = nil
	n.prev = nil
}

// Text returns the concatenated literals of all Text and Code descendants of
// n.
func (n *Node) Text() string {
	var sb strings.Builder
	Walk(n, func(n *Node, entering bool) WalkStatus {
		if entering && (n.Kind == KindText || n.Kind == KindCode) {
			sb.WriteString(n.Literal)
		}
		return WalkContinue
	})
	return sb.String()
}
