package md_test

import (
	"testing"

	. "src.mdkit.sh/pkg/md"
)

func TestNode_Links(t *testing.T) {
	p := NewNode(KindParagraph)
	a, b, c := NewText("a"), NewText("b"), NewText("c")
	p.AppendChild(b)
	p.PrependChild(a)
	b.InsertAfter(c)

	if p.FirstChild() != a || p.LastChild() != c {
		t.Errorf("children of p are %v...%v, want a...c", p.FirstChild(), p.LastChild())
	}
	if a.Prev() != nil || a.Next() != b || b.Prev() != a || b.Next() != c || c.Next() != nil {
		t.Errorf("siblings are not a, b, c in order")
	}
	for _, n := range []*Node{a, b, c} {
		if n.Parent() != p {
			t.Errorf("parent of %q is %v, want p", n.Literal, n.Parent())
		}
	}

	b.Unlink()
	if b.Parent() != nil || b.Prev() != nil || b.Next() != nil {
		t.Errorf("unlinked node still has links")
	}
	if a.Next() != c || c.Prev() != a {
		t.Errorf("siblings after Unlink are not a, c")
	}
	if got := p.Text(); got != "ac" {
		t.Errorf("Text() = %q, want %q", got, "ac")
	}

	if NewNode(KindDocument).FirstChild() != nil {
		t.Errorf("FirstChild of an empty node is not nil")
	}
}
