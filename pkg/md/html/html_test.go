package html_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"src.mdkit.sh/pkg/md"
	"src.mdkit.sh/pkg/md/html"
	"src.mdkit.sh/pkg/md/render"
)

var renderTests = []struct {
	name     string
	opts     []html.Option
	markdown string
	want     string
}{
	{
		name:     "heading and emphasis",
		markdown: "# Hi\n\nA *b* **c**\n",
		want:     "<h1>Hi</h1>\n<p>A <em>b</em> <strong>c</strong></p>\n",
	},
	{
		name:     "tight list paragraphs have no p tags",
		markdown: "- a\n- b\n",
		want:     "<ul>\n<li>a</li>\n<li>b</li>\n</ul>\n",
	},
	{
		name:     "ordered list start",
		markdown: "3. a\n4. b\n",
		want:     "<ol start=\"3\">\n<li>a</li>\n<li>b</li>\n</ol>\n",
	},
	{
		name:     "language class from first word of info",
		markdown: "```go extra\nx\n```\n",
		want:     "<pre><code class=\"language-go\">x\n</code></pre>\n",
	},
	{
		name:     "image alt text is plain",
		markdown: "![a *b* `c`](/i \"t\")",
		want:     "<p><img src=\"/i\" alt=\"a b c\" title=\"t\" /></p>\n",
	},
	{
		name:     "empty title is kept",
		markdown: `[a](/u "")`,
		want:     "<p><a href=\"/u\" title=\"\">a</a></p>\n",
	},
	{
		name:     "missing title has no attribute",
		markdown: "[a](/u)\n\n[b]\n\n[b]: /v",
		want:     "<p><a href=\"/u\">a</a></p>\n<p><a href=\"/v\">b</a></p>\n",
	},
	{
		name:     "empty title from a reference definition",
		markdown: "[b]\n\n[b]: /v ''",
		want:     "<p><a href=\"/v\" title=\"\">b</a></p>\n",
	},
	{
		name:     "text is escaped",
		markdown: `a < b & "c"`,
		want:     "<p>a &lt; b &amp; &quot;c&quot;</p>\n",
	},
	{
		name:     "raw HTML escaped",
		opts:     []html.Option{html.WithEscapeHTML(true)},
		markdown: "<div>x</div>\n\na <b>c</b>",
		want:     "<p>&lt;div&gt;x&lt;/div&gt;</p>\n<p>a &lt;b&gt;c&lt;/b&gt;</p>\n",
	},
	{
		name:     "softbreak",
		opts:     []html.Option{html.WithSoftbreak("<br />")},
		markdown: "a\nb",
		want:     "<p>a<br />b</p>\n",
	},
	{
		name:     "percent-encoded URLs",
		opts:     []html.Option{html.WithPercentEncodeURLs(true)},
		markdown: "[a](</ä b%20>)",
		want:     "<p><a href=\"/%C3%A4%20b%20\">a</a></p>\n",
	},
	{
		name:     "URLs kept by default",
		markdown: "[a](</ä b>)",
		want:     "<p><a href=\"/ä b\">a</a></p>\n",
	},
}

func TestRenderer(t *testing.T) {
	for _, tc := range renderTests {
		t.Run(tc.name, func(t *testing.T) {
			got := html.New(tc.opts...).Render(md.Parse(tc.markdown))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

// Inputs on which the output agrees with goldmark configured for XHTML.
var goldmarkSamples = []string{
	"",
	"# Title\n\nSome *emphasis* and **strong**.\n",
	"Setext\n======\n\nSub\n---\n",
	"> quote\n> more\n\n> > nested\n",
	"- a\n- b\n  - c\n",
	"1. one\n\n2. two\n",
	"7) seven\n8) eight\n",
	"    indented\n    code\n",
	"```go\nfmt.Println(\"hi\")\n```\n",
	"~~~\nplain\n~~~\n",
	"a  \nhard\\\nbreaks\nand soft\n",
	"[inline](/url \"title\") and ![image](/img.png)\n",
	"[ref] and [full][ref] and [collapsed][]\n\n[ref]: /r\n[collapsed]: /c 'C'\n",
	"<https://example.com> and <me@example.com>\n",
	"<div>\nblock\n</div>\n\ninline <span class=\"x\">html</span>\n",
	"`code` and \\*escaped\\* and &amp;\n",
	"***\n---\n___\n",
	"*foo**bar**baz*\n",
	"_a_b_ and __strong__\n",
}

func TestRenderer_MatchesGoldmark(t *testing.T) {
	gm := goldmark.New(goldmark.WithRendererOptions(gmhtml.WithXHTML(), gmhtml.WithUnsafe()))
	r := html.New()
	for _, sample := range goldmarkSamples {
		var want bytes.Buffer
		if err := gm.Convert([]byte(sample), &want); err != nil {
			t.Fatalf("goldmark failed on %q: %v", sample, err)
		}
		got := r.Render(md.Parse(sample))
		if diff := cmp.Diff(want.String(), got); diff != "" {
			t.Errorf("Render(%q) differs from goldmark (-goldmark +got):\n%s", sample, diff)
		}
	}
}

func TestRenderer_Deterministic(t *testing.T) {
	doc := md.Parse(goldmarkSamples[12])
	r := html.New()
	first := r.Render(doc)
	for i := 0; i < 5; i++ {
		if got := r.Render(doc); got != first {
			t.Fatalf("got %q, then %q", first, got)
		}
	}
}

type classProvider struct{}

func (classProvider) SetAttributes(n *md.Node, tag string, attrs *html.Attributes) {
	if tag == "p" {
		attrs.Set("class", "para")
	}
	if n.Kind == md.KindLink {
		attrs.Set("rel", "nofollow")
	}
}

func TestWithAttributeProviderFactory(t *testing.T) {
	r := html.New(html.WithAttributeProviderFactory(
		func(*html.Context) html.AttributeProvider { return classProvider{} }))
	got := r.Render(md.Parse(`[a](/u "t")`))
	want := `<p class="para"><a href="/u" title="t" rel="nofollow">a</a></p>` + "\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

type upperText struct{ ctx *html.Context }

func (upperText) NodeKinds() []md.Kind { return []md.Kind{md.KindText} }

func (r upperText) Render(n *md.Node) { r.ctx.Writer().Text(strings.ToUpper(n.Literal)) }

type lowerText struct{ ctx *html.Context }

func (lowerText) NodeKinds() []md.Kind { return []md.Kind{md.KindText} }

func (r lowerText) Render(n *md.Node) { r.ctx.Writer().Text(strings.ToLower(n.Literal)) }

func TestWithNodeRendererFactory_FirstWins(t *testing.T) {
	r := html.New(
		html.WithNodeRendererFactory(func(ctx *html.Context) render.NodeRenderer { return upperText{ctx} }),
		html.WithNodeRendererFactory(func(ctx *html.Context) render.NodeRenderer { return lowerText{ctx} }))
	got := r.Render(md.Parse("Hello *World*"))
	want := "<p>HELLO <em>WORLD</em></p>\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

type failingWriter struct{}

var errWrite = errors.New("write failed")

func (failingWriter) Write([]byte) (int, error) { return 0, errWrite }

func TestRenderTo_WriterError(t *testing.T) {
	err := html.New().RenderTo(failingWriter{}, md.Parse("a"))
	if !errors.Is(err, errWrite) {
		t.Errorf("got error %v, want one wrapping %v", err, errWrite)
	}
}

func TestAttributes(t *testing.T) {
	a := html.NewAttributes()
	a.Set("b", "1")
	a.Set("a", "2")
	a.Set("b", "3")
	c := a.Clone()
	a.Remove("a")

	var got []string
	c.Each(func(k, v string) { got = append(got, k+"="+v) })
	if diff := cmp.Diff([]string{"b=3", "a=2"}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if _, ok := a.Get("a"); ok || a.Len() != 1 {
		t.Errorf("Remove did not remove the attribute")
	}
}
