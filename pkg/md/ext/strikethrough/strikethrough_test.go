package strikethrough_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"src.mdkit.sh/pkg/md"
	"src.mdkit.sh/pkg/md/ext/strikethrough"
	"src.mdkit.sh/pkg/md/html"
	"src.mdkit.sh/pkg/md/text"
	"src.mdkit.sh/pkg/must"
)

var (
	ext    = strikethrough.Extension()
	parser = must.OK1(md.NewParser(md.WithExtensions(ext)))
)

var tests = []struct {
	markdown string
	html     string
	text     string
}{
	{"~~gone~~", "<p><del>gone</del></p>\n", "/gone/"},
	{"a ~~*b*~~ c", "<p>a <del><em>b</em></del> c</p>\n", "a /b/ c"},
	{"a ~~~~b~~~~", "<p>a <del><del>b</del></del></p>\n", "a //b//"},
	{"~one~", "<p>~one~</p>\n", "~one~"},
	{"~~unclosed", "<p>~~unclosed</p>\n", "~~unclosed"},
}

func TestStrikethrough(t *testing.T) {
	htmlRenderer := html.New(html.WithExtensions(ext))
	textRenderer := text.New(text.WithExtensions(ext))
	for _, test := range tests {
		doc := parser.Parse(test.markdown)
		if diff := cmp.Diff(test.html, htmlRenderer.Render(doc)); diff != "" {
			t.Errorf("HTML of %q (-want +got):\n%s", test.markdown, diff)
		}
		if diff := cmp.Diff(test.text, textRenderer.Render(doc)); diff != "" {
			t.Errorf("text of %q (-want +got):\n%s", test.markdown, diff)
		}
	}
}

func TestStrikethrough_Tree(t *testing.T) {
	got := md.Dump(parser.Parse("~~a~~"))
	want := "Document\n  Paragraph\n    Strikethrough\n      Text Literal=\"a\""
	if got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
}

func TestStrikethrough_NotEnabledByDefault(t *testing.T) {
	got := html.New().Render(md.Parse("~~a~~"))
	if want := "<p>~~a~~</p>\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtensionName(t *testing.T) {
	if got := ext.ExtensionName(); got != "strikethrough" {
		t.Errorf("got %q, want %q", got, "strikethrough")
	}
}
