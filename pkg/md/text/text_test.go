package text_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"src.mdkit.sh/pkg/md"
	"src.mdkit.sh/pkg/md/render"
	"src.mdkit.sh/pkg/md/text"
)

const sample = "# Title\n\nSome *text* and `code`.\n\n> quoted\n\n---\n\n" +
	"1. one\n2. two\n\n- a\n- b\n\n[link](/u \"T\")"

var renderTests = []struct {
	name     string
	opts     []text.Option
	markdown string
	want     string
}{
	{
		name:     "all blocks",
		markdown: sample,
		want: "Title\nSome text and \"code\".\n«quoted»\n***\n" +
			"1. one\n2. two\n- a\n- b\n\"link\" (T: /u)",
	},
	{
		name:     "all blocks with stripped newlines",
		opts:     []text.Option{text.WithStripNewlines(true)},
		markdown: sample,
		want:     `Title: Some text and "code". «quoted» 1. one 2. two a b "link" (T: /u)`,
	},
	{
		name:     "soft break",
		markdown: "a\nb",
		want:     "a\nb",
	},
	{
		name:     "soft break with stripped newlines",
		opts:     []text.Option{text.WithStripNewlines(true)},
		markdown: "a\nb",
		want:     "a b",
	},
	{
		name:     "nested lists keep their own numbering",
		markdown: "3) a\n   - b\n4) c\n",
		want:     "3) a\n- b\n4) c",
	},
	{
		name:     "link without title",
		markdown: "[a](/u) ![](/i)",
		want:     `"a" (/u) /i`,
	},
	{
		name:     "link with empty title",
		markdown: `[a](/u "")`,
		want:     `"a" (: /u)`,
	},
	{
		name:     "code block",
		markdown: "```\nx  y\n```\n\nz",
		want:     "x  y\nz",
	},
	{
		name:     "code block with stripped newlines",
		opts:     []text.Option{text.WithStripNewlines(true)},
		markdown: "```\nx  y\n```\n\nz",
		want:     "x y z",
	},
}

func TestRenderer(t *testing.T) {
	for _, tc := range renderTests {
		t.Run(tc.name, func(t *testing.T) {
			got := text.New(tc.opts...).Render(md.Parse(tc.markdown))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

type hiddenCode struct{ ctx *text.Context }

func (hiddenCode) NodeKinds() []md.Kind { return []md.Kind{md.KindCode} }

func (r hiddenCode) Render(n *md.Node) { r.ctx.Writer().Text("…") }

func TestWithNodeRendererFactory(t *testing.T) {
	r := text.New(text.WithNodeRendererFactory(
		func(ctx *text.Context) render.NodeRenderer { return hiddenCode{ctx} }))
	if got, want := r.Render(md.Parse("a `b` c")), "a … c"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
