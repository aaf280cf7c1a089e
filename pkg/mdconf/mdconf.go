// Package mdconf reads the configuration of mdkit from YAML files.
//
// A configuration file looks like this:
//
//	html:
//	  softbreak: "<br />\n"
//	  escape_html: true
//	  percent_encode_urls: true
//	text:
//	  strip_newlines: true
//	extensions: [strikethrough]
//
// All keys are optional. Unknown keys are errors.
package mdconf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"src.mdkit.sh/pkg/md"
	"src.mdkit.sh/pkg/md/ext/strikethrough"
	"src.mdkit.sh/pkg/md/html"
	"src.mdkit.sh/pkg/md/text"
	"src.mdkit.sh/pkg/prog"
)

// Config is the configuration of the parser and the renderers.
type Config struct {
	HTML       HTMLConfig `yaml:"html"`
	Text       TextConfig `yaml:"text"`
	Extensions []string   `yaml:"extensions"`
}

// HTMLConfig configures the HTML renderer.
type HTMLConfig struct {
	Softbreak         string `yaml:"softbreak"`
	EscapeHTML        bool   `yaml:"escape_html"`
	PercentEncodeURLs bool   `yaml:"percent_encode_urls"`
}

// TextConfig configures the text renderer.
type TextConfig struct {
	StripNewlines bool `yaml:"strip_newlines"`
}

// Known extensions, by name.
var extensions = map[string]func() md.Extension{
	strikethrough.Name: strikethrough.Extension,
}

// ErrUnknownExtension is wrapped by errors about unknown extension names.
var ErrUnknownExtension = errors.New("unknown extension")

// Default returns the default configuration.
func Default() *Config {
	return &Config{HTML: HTMLConfig{Softbreak: "\n"}}
}

// Load reads the configuration file at path. Values not in the file keep
// their defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse reads a configuration from r. Values not in the input keep their
// defaults.
func Parse(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Resolve returns the configuration selected by command-line flags: the file
// named by -config (or the defaults), overridden by the renderer flags given
// on the command line, with the extensions of -ext added.
func Resolve(f *prog.Flags) (*Config, error) {
	c := Default()
	if f.Config != "" {
		var err error
		c, err = Load(f.Config)
		if err != nil {
			return nil, err
		}
	}
	if f.IsSet("softbreak") {
		c.HTML.Softbreak = f.Softbreak
	}
	if f.IsSet("escape-html") {
		c.HTML.EscapeHTML = f.EscapeHTML
	}
	if f.IsSet("percent-encode-urls") {
		c.HTML.PercentEncodeURLs = f.PercentEncodeURLs
	}
	if f.IsSet("strip-newlines") {
		c.Text.StripNewlines = f.StripNewlines
	}
	c.Extensions = append(c.Extensions, f.Exts...)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that all the extensions are known.
func (c *Config) Validate() error {
	for _, name := range c.Extensions {
		if _, ok := extensions[name]; !ok {
			return fmt.Errorf("%w %q; known extensions: %v",
				ErrUnknownExtension, name, ExtensionNames())
		}
	}
	return nil
}

// ExtensionNames returns the names of all known extensions, sorted.
func ExtensionNames() []string {
	names := make([]string, 0, len(extensions))
	for name := range extensions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExtensionList returns the configured extensions. Each extension is only
// returned once, even if named several times. Unknown names are skipped; use
// Validate to find them.
func (c *Config) ExtensionList() []md.Extension {
	var exts []md.Extension
	seen := make(map[string]bool)
	for _, name := range c.Extensions {
		if newExt, ok := extensions[name]; ok && !seen[name] {
			seen[name] = true
			exts = append(exts, newExt())
		}
	}
	return exts
}

// NewParser returns a parser with the configured extensions.
func (c *Config) NewParser() (*md.Parser, error) {
	return md.NewParser(md.WithExtensions(c.ExtensionList()...))
}

// NewHTMLRenderer returns an HTML renderer with the configured options and
// extensions.
func (c *Config) NewHTMLRenderer() *html.Renderer {
	return html.New(
		html.WithSoftbreak(c.HTML.Softbreak),
		html.WithEscapeHTML(c.HTML.EscapeHTML),
		html.WithPercentEncodeURLs(c.HTML.PercentEncodeURLs),
		html.WithExtensions(c.ExtensionList()...))
}

// NewTextRenderer returns a text renderer with the configured options and
// extensions.
func (c *Config) NewTextRenderer() *text.Renderer {
	return text.New(
		text.WithStripNewlines(c.Text.StripNewlines),
		text.WithExtensions(c.ExtensionList()...))
}

// Marshal serializes c as YAML. Equal configurations serialize to the same
// bytes.
func (c *Config) Marshal() []byte {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	if err := enc.Encode(c); err != nil {
		// Config only contains strings and bools.
		panic(err)
	}
	enc.Close()
	return buf.Bytes()
}
