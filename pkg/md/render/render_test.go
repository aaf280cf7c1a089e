package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"src.mdkit.sh/pkg/md"
)

type recorder struct {
	name  string
	kinds []md.Kind
	log   *[]string
}

func (r recorder) NodeKinds() []md.Kind { return r.kinds }

func (r recorder) Render(n *md.Node) { *r.log = append(*r.log, r.name+":"+n.Kind.String()) }

func TestNodeRendererMap(t *testing.T) {
	var log []string
	m := NewNodeRendererMap()
	m.Add(recorder{"a", []md.Kind{md.KindText, md.KindCode}, &log})
	m.Add(recorder{"b", []md.Kind{md.KindCode}, &log})

	p := md.NewNode(md.KindParagraph)
	p.AppendChild(md.NewText("x"))
	p.AppendChild(md.NewNode(md.KindCode))
	p.AppendChild(md.NewNode(md.KindEmphasis))
	m.RenderChildren(p)

	want := []string{"a:Text", "b:Code"}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

type failingWriter struct{ n int }

var errFail = errors.New("fail")

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.n == 0 {
		return 0, errFail
	}
	w.n--
	return len(p), nil
}

func TestWriter(t *testing.T) {
	var sb strings.Builder
	w := NewWriter(&sb)
	if w.LastByte() != 0 {
		t.Errorf("LastByte of new writer = %q, want 0", w.LastByte())
	}
	w.WriteString("ab")
	w.WriteString("")
	if w.LastByte() != 'b' {
		t.Errorf("LastByte = %q, want 'b'", w.LastByte())
	}
	if sb.String() != "ab" || w.Err() != nil {
		t.Errorf("got (%q, %v), want (%q, nil)", sb.String(), w.Err(), "ab")
	}
}

func TestWriter_StickyError(t *testing.T) {
	fw := &failingWriter{n: 1}
	w := NewWriter(fw)
	w.WriteString("a")
	w.WriteString("b")
	w.WriteString("c")
	if !errors.Is(w.Err(), errFail) {
		t.Errorf("Err() = %v, want %v", w.Err(), errFail)
	}
}
