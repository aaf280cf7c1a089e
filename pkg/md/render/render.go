// Package render contains the parts shared by the renderers of Markdown
// documents.
package render

import (
	"io"

	"src.mdkit.sh/pkg/md"
)

// Renderer renders a document tree.
type Renderer interface {
	// Render renders the tree rooted at n into a string.
	Render(n *md.Node) string
	// RenderTo renders the tree rooted at n to w. It returns the first error
	// from w.
	RenderTo(w io.Writer, n *md.Node) error
}

// NodeRenderer renders nodes of some kinds. A NodeRenderer is created for each
// rendering, so it may keep state.
type NodeRenderer interface {
	// NodeKinds returns the kinds of nodes handled by the renderer.
	NodeKinds() []md.Kind
	// Render renders a node of one of the kinds returned by NodeKinds.
	Render(n *md.Node)
}

// NodeRendererMap dispatches nodes to renderers by kind.
type NodeRendererMap struct {
	renderers map[md.Kind]NodeRenderer
}

// NewNodeRendererMap returns an empty NodeRendererMap.
func NewNodeRendererMap() *NodeRendererMap {
	return &NodeRendererMap{make(map[md.Kind]NodeRenderer)}
}

// Add registers r for all the kinds it handles, replacing earlier renderers
// for the same kinds.
func (m *NodeRendererMap) Add(r NodeRenderer) {
	for _, k := range r.NodeKinds() {
		m.renderers[k] = r
	}
}

// Render renders n with the renderer registered for its kind. Nodes of kinds
// without a renderer are skipped along with their children.
func (m *NodeRendererMap) Render(n *md.Node) {
	if r, ok := m.renderers[n.Kind]; ok {
		r.Render(n)
	}
}

// RenderChildren renders each child of n in order.
func (m *NodeRendererMap) RenderChildren(n *md.Node) {
	for c := n.FirstChild(); c != nil; {
		next := c.Next()
		m.Render(c)
		c = next
	}
}

// Writer wraps an io.Writer, remembering the last byte written and the first
// error. Writes after an error are dropped.
type Writer struct {
	w    io.Writer
	last byte
	err  error
}

// NewWriter returns a Writer writing to w.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

// WriteString writes s.
func (w *Writer) WriteString(s string) {
	if w.err != nil || s == "" {
		return
	}
	_, w.err = io.WriteString(w.w, s)
	w.last = s[len(s)-1]
}

// LastByte returns the last byte written, or 0 if nothing has been written.
func (w *Writer) LastByte() byte { return w.last }

// Err returns the first error from the underlying io.Writer.
func (w *Writer) Err() error { return w.err }
