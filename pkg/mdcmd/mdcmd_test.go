package mdcmd_test

import (
	"testing"

	"src.mdkit.sh/pkg/mdcache"
	. "src.mdkit.sh/pkg/mdcmd"
	"src.mdkit.sh/pkg/mdconf"
	"src.mdkit.sh/pkg/must"
	. "src.mdkit.sh/pkg/prog/progtest"
	"src.mdkit.sh/pkg/testutil"
)

func TestProgram_Formats(t *testing.T) {
	Test(t, Program,
		ThatProgram().WithStdin("# Hi *there*\n").
			WritesStdout("<h1>Hi <em>there</em></h1>\n"),
		ThatProgram("-").WithStdin("a\nb").
			WritesStdout("<p>a\nb</p>\n"),
		ThatProgram("-format", "text").WithStdin("# Hi *there*\n\ntext").
			WritesStdout("Hi there\ntext\n"),
		ThatProgram("-format", "tree").WithStdin("*a*").
			WritesStdout("Document\n  Paragraph\n    Emphasis Delimiter=\"*\"\n      Text Literal=\"a\"\n"),
		ThatProgram("-format", "text").WithStdin("").WritesStdout(""),
		ThatProgram("-format", "pdf").
			ExitsWith(2).
			WritesStderrContaining("unknown format \"pdf\"; supported formats: html, text, tree\nUsage:"),
	)
}

func TestProgram_Options(t *testing.T) {
	Test(t, Program,
		ThatProgram("-softbreak", "<br />\n").WithStdin("a\nb").
			WritesStdout("<p>a<br />\nb</p>\n"),
		ThatProgram("-escape-html").WithStdin("<b>x</b>").
			WritesStdout("<p>&lt;b&gt;x&lt;/b&gt;</p>\n"),
		ThatProgram("-percent-encode-urls").WithStdin("[a](/ä b)").
			WritesStdout("<p>[a](/ä b)</p>\n"),
		ThatProgram("-percent-encode-urls").WithStdin("[a](</ä b>)").
			WritesStdout("<p><a href=\"/%C3%A4%20b\">a</a></p>\n"),
		ThatProgram("-format", "text", "-strip-newlines").WithStdin("# A\n\nb\nc").
			WritesStdout("A: b c\n"),
		ThatProgram("-ext", "strikethrough").WithStdin("~~x~~").
			WritesStdout("<p><del>x</del></p>\n"),
		ThatProgram("-ext", "tables").
			ExitsWith(2).
			WritesStderrContaining(`unknown extension "tables"`),
	)
}

func TestProgram_Config(t *testing.T) {
	testutil.InTempDir(t)
	testutil.ApplyDir(testutil.Dir{
		"conf.yaml": "html:\n  escape_html: true\nextensions: [strikethrough]\n",
		"bad.yaml":  "html: {unknown: 1}\n",
	})

	Test(t, Program,
		ThatProgram("-config", "conf.yaml").WithStdin("~~<i>~~").
			WritesStdout("<p><del>&lt;i&gt;</del></p>\n"),
		ThatProgram("-config", "conf.yaml", "-escape-html=false").WithStdin("~~<i>~~").
			WritesStdout("<p><del><i></del></p>\n"),
		ThatProgram("-config", "bad.yaml").
			ExitsWith(2).
			WritesStderrContaining("bad.yaml: yaml: unmarshal errors"),
	)
}

func TestProgram_Files(t *testing.T) {
	testutil.InTempDir(t)
	testutil.ApplyDir(testutil.Dir{
		"a.md": "# A\n",
		"b.md": "*b*\n",
	})

	Test(t, Program,
		ThatProgram("a.md", "b.md").
			WritesStdout("<h1>A</h1>\n<p><em>b</em></p>\n"),
		ThatProgram("a.md", "-", "b.md").WithStdin("stdin").
			WritesStdout("<h1>A</h1>\n<p>stdin</p>\n<p><em>b</em></p>\n"),
		// Failures don't stop the remaining files.
		ThatProgram("missing.md", "a.md", "missing2.md").
			ExitsWith(2).
			WritesStdout("<h1>A</h1>\n").
			WritesStderr("multiple errors: open missing.md: no such file or directory; " +
				"open missing2.md: no such file or directory\n"),
	)
}

func TestProgram_TerminalStdin(t *testing.T) {
	Test(t, Program,
		ThatProgram().WithTTYStdin().
			ExitsWith(2).
			WritesStderrContaining("no input files and stdin is a terminal"),
	)
}

func TestProgram_Cache(t *testing.T) {
	dir := testutil.InTempDir(t)
	cachePath := dir + "/cache.db"

	Test(t, Program,
		ThatProgram("-cache", cachePath).WithStdin("*a*").
			WritesStdout("<p><em>a</em></p>\n"),
		ThatProgram("-cache", cachePath, "-format", "text").WithStdin("*a*").
			WritesStdout("a\n"),
		// Served from the cache.
		ThatProgram("-cache", cachePath).WithStdin("*a*").
			WritesStdout("<p><em>a</em></p>\n"),
		ThatProgram("-cache", dir+"/no/such/dir/cache.db").WithStdin("x").
			ExitsWith(2).
			WritesStderrContaining("open cache"),
	)

	cache := must.OK1(mdcache.Open(cachePath))
	defer cache.Close()
	if n := must.OK1(cache.Len()); n != 2 {
		t.Errorf("cache has %d entries, want 2", n)
	}
}

func TestProgram_CacheIsUsed(t *testing.T) {
	dir := testutil.InTempDir(t)
	cachePath := dir + "/cache.db"

	Test(t, Program,
		ThatProgram("-cache", cachePath).WithStdin("*a*").
			WritesStdout("<p><em>a</em></p>\n"))

	// Replace the entry, so that the next run shows whether it is served from
	// the cache. Without flags, the default configuration is used.
	cache := must.OK1(mdcache.Open(cachePath))
	key := mdcache.Key("html", mdconf.Default().Marshal(), "*a*")
	if _, found := must.OK2(cache.Get(key)); !found {
		t.Errorf("no entry with key %s", key)
	}
	must.OK(cache.Put(key, "cached\n"))
	must.OK(cache.Close())

	Test(t, Program,
		ThatProgram("-cache", cachePath).WithStdin("*a*").WritesStdout("cached\n"))
}
