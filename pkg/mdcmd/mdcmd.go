// Package mdcmd implements the conversion subprogram, which renders Markdown
// files as HTML, plain text or a tree dump.
package mdcmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"src.mdkit.sh/pkg/errutil"
	"src.mdkit.sh/pkg/logutil"
	"src.mdkit.sh/pkg/md"
	"src.mdkit.sh/pkg/mdcache"
	"src.mdkit.sh/pkg/mdconf"
	"src.mdkit.sh/pkg/prog"
	"src.mdkit.sh/pkg/sys"
)

var logger = logutil.GetLogger("[mdcmd] ")

// Program is the conversion subprogram.
var Program prog.Program = program{}

type program struct{}

// Output formats.
const (
	formatHTML = "html"
	formatText = "text"
	formatTree = "tree"
)

func (program) Run(fds [3]*os.File, f *prog.Flags, args []string) (err error) {
	render, err := newRenderFunc(f)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		if sys.IsATTY(fds[0].Fd()) {
			return prog.BadUsage("no input files and stdin is a terminal; use - to read stdin")
		}
		args = []string{"-"}
	}

	var cache *mdcache.Cache
	if f.Cache != "" {
		cache, err = mdcache.Open(f.Cache)
		if err != nil {
			return err
		}
		defer func() { err = errutil.Multi(err, cache.Close()) }()
	}

	var errs []error
	for _, name := range args {
		source, err := readInput(fds[0], name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		output, err := render.cached(cache, source)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		if _, err := io.WriteString(fds[1], output); err != nil {
			return errutil.Multi(append(errs, err)...)
		}
	}
	return errutil.Multi(errs...)
}

func readInput(stdin *os.File, name string) (string, error) {
	if name == "-" {
		content, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(content), nil
	}
	content, err := os.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// Renders a source to the output of the program in one format.
type renderFunc struct {
	format  string
	options []byte
	render  func(source string) string
}

func newRenderFunc(f *prog.Flags) (*renderFunc, error) {
	conf, err := mdconf.Resolve(f)
	if err != nil {
		return nil, err
	}
	parser, err := conf.NewParser()
	if err != nil {
		return nil, err
	}
	rf := &renderFunc{format: f.Format, options: conf.Marshal()}
	switch f.Format {
	case formatHTML:
		r := conf.NewHTMLRenderer()
		rf.render = func(s string) string { return r.Render(parser.Parse(s)) }
	case formatText:
		r := conf.NewTextRenderer()
		rf.render = func(s string) string { return endLine(r.Render(parser.Parse(s))) }
	case formatTree:
		rf.render = func(s string) string { return endLine(md.Dump(parser.Parse(s))) }
	default:
		return nil, prog.BadUsage(fmt.Sprintf(
			"unknown format %q; supported formats: %s, %s, %s",
			f.Format, formatHTML, formatText, formatTree))
	}
	return rf, nil
}

// Renders source, consulting and updating cache if it is not nil.
func (rf *renderFunc) cached(cache *mdcache.Cache, source string) (string, error) {
	if cache == nil {
		return rf.render(source), nil
	}
	key := mdcache.Key(rf.format, rf.options, source)
	output, found, err := cache.Get(key)
	if err != nil {
		return "", err
	}
	if found {
		logger.Println("cache hit", key)
		return output, nil
	}
	output = rf.render(source)
	return output, cache.Put(key, output)
}

func endLine(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
