package html

import (
	"strconv"
	"strings"

	"src.mdkit.sh/pkg/md"
)

// Renders all the core node kinds.
type coreRenderer struct {
	ctx *Context
	w   Writer
}

func newCoreRenderer(ctx *Context) *coreRenderer {
	return &coreRenderer{ctx, ctx.Writer()}
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

func (r *coreRenderer) attrs(n *md.Node, tag string, attrs *Attributes) *Attributes {
	return r.ctx.ExtendAttributes(n, tag, attrs)
}

func (r *coreRenderer) Render(n *md.Node) {
	w := r.w
	switch n.Kind {
	case md.KindDocument:
		r.ctx.RenderChildren(n)
	case md.KindHeading:
		tag := "h" + strconv.Itoa(n.Level)
		w.Line()
		w.Tag(tag, r.attrs(n, tag, nil))
		r.ctx.RenderChildren(n)
		w.Tag("/"+tag, nil)
		w.Line()
	case md.KindParagraph:
		tight := inTightList(n)
		if !tight {
			w.Line()
			w.Tag("p", r.attrs(n, "p", nil))
		}
		r.ctx.RenderChildren(n)
		if !tight {
			w.Tag("/p", nil)
			w.Line()
		}
	case md.KindBlockQuote:
		w.Line()
		w.Tag("blockquote", r.attrs(n, "blockquote", nil))
		w.Line()
		r.ctx.RenderChildren(n)
		w.Line()
		w.Tag("/blockquote", nil)
		w.Line()
	case md.KindBulletList:
		r.renderList(n, "ul", r.attrs(n, "ul", nil))
	case md.KindOrderedList:
		attrs := NewAttributes()
		if n.StartNumber != 1 {
			attrs.Set("start", strconv.Itoa(n.StartNumber))
		}
		r.renderList(n, "ol", r.attrs(n, "ol", attrs))
	case md.KindListItem:
		w.Tag("li", r.attrs(n, "li", nil))
		r.ctx.RenderChildren(n)
		w.Tag("/li", nil)
		w.Line()
	case md.KindFencedCodeBlock:
		attrs := NewAttributes()
		if n.Info != "" {
			language := n.Info
			if i := strings.IndexByte(language, ' '); i != -1 {
				language = language[:i]
			}
			attrs.Set("class", "language-"+language)
		}
		r.renderCodeBlock(n, attrs)
	case md.KindIndentedCodeBlock:
		r.renderCodeBlock(n, nil)
	case md.KindHTMLBlock:
		w.Line()
		if r.ctx.ShouldEscapeHTML() {
			w.Tag("p", r.attrs(n, "p", nil))
			w.Text(n.Literal)
			w.Tag("/p", nil)
		} else {
			w.Raw(n.Literal)
		}
		w.Line()
	case md.KindThematicBreak:
		w.Line()
		w.VoidTag("hr", r.attrs(n, "hr", nil))
		w.Line()
	case md.KindLink:
		attrs := NewAttributes()
		attrs.Set("href", r.ctx.EncodeURL(n.Destination))
		if n.HasTitle {
			attrs.Set("title", n.Title)
		}
		w.Tag("a", r.attrs(n, "a", attrs))
		r.ctx.RenderChildren(n)
		w.Tag("/a", nil)
	case md.KindImage:
		attrs := NewAttributes()
		attrs.Set("src", r.ctx.EncodeURL(n.Destination))
		attrs.Set("alt", altText(n))
		if n.HasTitle {
			attrs.Set("title", n.Title)
		}
		w.VoidTag("img", r.attrs(n, "img", attrs))
	case md.KindEmphasis:
		w.Tag("em", r.attrs(n, "em", nil))
		r.ctx.RenderChildren(n)
		w.Tag("/em", nil)
	case md.KindStrongEmphasis:
		w.Tag("strong", r.attrs(n, "strong", nil))
		r.ctx.RenderChildren(n)
		w.Tag("/strong", nil)
	case md.KindText:
		w.Text(n.Literal)
	case md.KindCode:
		w.Tag("code", r.attrs(n, "code", nil))
		w.Text(n.Literal)
		w.Tag("/code", nil)
	case md.KindHTMLInline:
		if r.ctx.ShouldEscapeHTML() {
			w.Text(n.Literal)
		} else {
			w.Raw(n.Literal)
		}
	case md.KindSoftLineBreak:
		w.Raw(r.ctx.Softbreak())
	case md.KindHardLineBreak:
		w.VoidTag("br", r.attrs(n, "br", nil))
		w.Line()
	}
}

func (r *coreRenderer) renderCodeBlock(n *md.Node, attrs *Attributes) {
	r.w.Line()
	r.w.Tag("pre", r.attrs(n, "pre", nil))
	r.w.Tag("code", r.attrs(n, "code", attrs))
	r.w.Text(n.Literal)
	r.w.Tag("/code", nil)
	r.w.Tag("/pre", nil)
	r.w.Line()
}

func (r *coreRenderer) renderList(n *md.Node, tag string, attrs *Attributes) {
	r.w.Line()
	r.w.Tag(tag, attrs)
	r.w.Line()
	r.ctx.RenderChildren(n)
	r.w.Line()
	r.w.Tag("/"+tag, nil)
	r.w.Line()
}

// Paragraphs directly in items of tight lists are rendered without <p>.
func inTightList(paragraph *md.Node) bool {
	if item := paragraph.Parent(); item != nil {
		if list := item.Parent(); list != nil &&
			(list.Kind == md.KindBulletList || list.Kind == md.KindOrderedList) {
			return list.Tight
		}
	}
	return false
}

// Returns the plain text content of an image description.
func altText(n *md.Node) string {
	var sb strings.Builder
	md.Walk(n, func(n *md.Node, entering bool) md.WalkStatus {
		if entering {
			switch n.Kind {
			case md.KindText, md.KindCode:
				sb.WriteString(n.Literal)
			case md.KindSoftLineBreak, md.KindHardLineBreak:
				sb.WriteByte('\n')
			}
		}
		return md.WalkContinue
	})
	return sb.String()
}
