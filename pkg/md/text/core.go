package text

import (
	"strconv"

	"src.mdkit.sh/pkg/md"
)

// Renders all the core node kinds.
type coreRenderer struct {
	ctx *Context
	w   Writer
	// Lists being rendered, innermost last.
	lists []*listState
}

type listState struct {
	ordered   bool
	counter   int
	delimiter byte
	marker    byte
}

func newCoreRenderer(ctx *Context) *coreRenderer {
	return &coreRenderer{ctx: ctx, w: ctx.Writer()}
}

func (r *coreRenderer) NodeKinds() []md.Kind {
	return []md.Kind{
		md.KindDocument, md.KindHeading, md.KindParagraph, md.KindBlockQuote,
		md.KindBulletList, md.KindOrderedList, md.KindListItem,
		md.KindFencedCodeBlock, md.KindIndentedCodeBlock, md.KindHTMLBlock,
		md.KindThematicBreak,
		md.KindLink, md.KindImage, md.KindEmphasis, md.KindStrongEmphasis,
		md.KindText, md.KindCode, md.KindHTMLInline,
		md.KindSoftLineBreak, md.KindHardLineBreak,
	}
}

func (r *coreRenderer) Render(n *md.Node) {
	w := r.w
	strip := r.ctx.StripNewlines()
	switch n.Kind {
	case md.KindDocument, md.KindEmphasis, md.KindStrongEmphasis:
		r.ctx.RenderChildren(n)
	case md.KindBlockQuote:
		w.Text("«")
		r.ctx.RenderChildren(n)
		w.Text("»")
		r.endOfLine(n, 0)
	case md.KindBulletList, md.KindOrderedList:
		r.lists = append(r.lists, &listState{
			ordered: n.Kind == md.KindOrderedList, counter: n.StartNumber,
			delimiter: n.OrderedDelimiter, marker: n.BulletMarker})
		r.ctx.RenderChildren(n)
		r.lists = r.lists[:len(r.lists)-1]
		r.endOfLine(n, 0)
	case md.KindListItem:
		if len(r.lists) > 0 {
			list := r.lists[len(r.lists)-1]
			if list.ordered {
				w.Text(strconv.Itoa(list.counter) + string(list.delimiter) + " ")
				list.counter++
			} else if !strip {
				w.Text(string(list.marker) + " ")
			}
		}
		r.ctx.RenderChildren(n)
		r.endOfLine(n, 0)
	case md.KindCode:
		w.Text(`"`)
		w.Text(n.Literal)
		w.Text(`"`)
	case md.KindFencedCodeBlock, md.KindIndentedCodeBlock:
		if strip {
			w.Stripped(n.Literal)
			r.endOfLine(n, 0)
		} else {
			w.Text(n.Literal)
		}
	case md.KindHardLineBreak, md.KindSoftLineBreak:
		r.endOfLine(n, 0)
	case md.KindHeading:
		r.ctx.RenderChildren(n)
		r.endOfLine(n, ':')
	case md.KindThematicBreak:
		if !strip {
			w.Text("***")
		}
		r.endOfLine(n, 0)
	case md.KindHTMLInline, md.KindHTMLBlock, md.KindText:
		r.writeText(n.Literal)
	case md.KindLink, md.KindImage:
		r.writeLink(n)
	case md.KindParagraph:
		r.ctx.RenderChildren(n)
		// Paragraphs that end a list item or block quote leave the line
		// ending to it.
		if p := n.Parent(); p == nil || p.Kind == md.KindDocument || n.Next() != nil {
			r.endOfLine(n, 0)
		}
	}
}

func (r *coreRenderer) writeText(s string) {
	if r.ctx.StripNewlines() {
		r.w.Stripped(s)
	} else {
		r.w.Text(s)
	}
}

// Writes a link or image as "text" (title: destination).
func (r *coreRenderer) writeLink(n *md.Node) {
	hasChild := n.FirstChild() != nil
	hasTitle := n.HasTitle
	hasDest := n.Destination != ""

	if hasChild {
		r.w.Text(`"`)
		r.ctx.RenderChildren(n)
		r.w.Text(`"`)
		if hasTitle || hasDest {
			r.w.Whitespace()
			r.w.Text("(")
		}
	}
	if hasTitle {
		r.w.Text(n.Title)
		if hasDest {
			r.w.Colon()
			r.w.Whitespace()
		}
	}
	if hasDest {
		r.w.Text(n.Destination)
	}
	if hasChild && (hasTitle || hasDest) {
		r.w.Text(")")
	}
}

// Ends a line after n unless it is the last sibling. With stripped newlines,
// suffix (if not 0) is written and lines are separated by spaces instead.
func (r *coreRenderer) endOfLine(n *md.Node, suffix byte) {
	if r.ctx.StripNewlines() {
		if suffix != 0 {
			r.w.Text(string(suffix))
		}
		if n.Next() != nil {
			r.w.Whitespace()
		}
	} else if n.Next() != nil {
		r.w.Line()
	}
}
