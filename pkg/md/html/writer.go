package html

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"

	"src.mdkit.sh/pkg/md/mdutil"
	"src.mdkit.sh/pkg/md/render"
)

// Attributes is an ordered set of HTML attributes. Attributes are written in
// the order they were first set.
type Attributes struct {
	m *linkedhashmap.Map
}

// NewAttributes returns an empty set of attributes.
func NewAttributes() *Attributes { return &Attributes{linkedhashmap.New()} }

// Set sets an attribute. An existing attribute keeps its position.
func (a *Attributes) Set(name, value string) { a.m.Put(name, value) }

// Get returns the value of an attribute.
func (a *Attributes) Get(name string) (string, bool) {
	v, ok := a.m.Get(name)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Remove removes an attribute.
func (a *Attributes) Remove(name string) { a.m.Remove(name) }

// Len returns the number of attributes.
func (a *Attributes) Len() int { return a.m.Size() }

// Each calls f with each attribute in order.
func (a *Attributes) Each(f func(name, value string)) {
	it := a.m.Iterator()
	for it.Next() {
		f(it.Key().(string), it.Value().(string))
	}
}

// Clone returns a copy of a.
func (a *Attributes) Clone() *Attributes {
	b := NewAttributes()
	a.Each(b.Set)
	return b
}

// Writer writes HTML.
type Writer struct {
	*render.Writer
}

// Raw writes s as is.
func (w Writer) Raw(s string) { w.WriteString(s) }

// Text writes s with HTML special characters escaped.
func (w Writer) Text(s string) { w.WriteString(mdutil.EscapeHTML(s, false)) }

// Tag writes a start tag, or an end tag if name starts with "/". The
// attributes may be nil.
func (w Writer) Tag(name string, attrs *Attributes) { w.tag(name, attrs, false) }

// VoidTag writes a tag of a void element, such as <br />.
func (w Writer) VoidTag(name string, attrs *Attributes) { w.tag(name, attrs, true) }

func (w Writer) tag(name string, attrs *Attributes, void bool) {
	w.WriteString("<")
	w.WriteString(name)
	if attrs != nil {
		attrs.Each(func(k, v string) {
			w.WriteString(" ")
			w.WriteString(mdutil.EscapeHTML(k, true))
			w.WriteString(`="`)
			w.WriteString(mdutil.EscapeHTML(v, true))
			w.WriteString(`"`)
		})
	}
	if void {
		w.WriteString(" /")
	}
	w.WriteString(">")
}

// Line starts a new line unless the output is empty or already at the start
// of a line.
func (w Writer) Line() {
	if b := w.LastByte(); b != 0 && b != '\n' {
		w.WriteString("\n")
	}
}
