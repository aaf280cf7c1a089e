package md

import (
	"errors"
	"fmt"

	"src.mdkit.sh/pkg/must"
)

// ErrInvalidArgument is wrapped by errors caused by invalid configuration.
var ErrInvalidArgument = errors.New("invalid argument")

// Extension is implemented by all extensions. The name identifies the
// extension in configuration files and on the command line.
type Extension interface {
	ExtensionName() string
}

// ParserExtension is an Extension that configures the parser.
type ParserExtension interface {
	Extension
	ParserOptions() []ParserOption
}

// PostProcessor transforms a document after parsing.
type PostProcessor interface {
	Process(doc *Node) *Node
}

// ParserOption configures a Parser.
type ParserOption func(*parserConfig)

type parserConfig struct {
	blockFactories  []BlockParserFactory
	delimProcessors []DelimiterProcessor
	postProcessors  []PostProcessor
	enabledKinds    []Kind
	enabledSet      bool
}

// WithBlockParserFactories adds factories for custom blocks. They are tried
// in order before the factories of the core blocks, so they can override core
// syntax.
func WithBlockParserFactories(fs ...BlockParserFactory) ParserOption {
	return func(c *parserConfig) { c.blockFactories = append(c.blockFactories, fs...) }
}

// WithDelimiterProcessors adds processors for custom delimiters. There can only
// be one processor for each delimiter character.
func WithDelimiterProcessors(ps ...DelimiterProcessor) ParserOption {
	return func(c *parserConfig) { c.delimProcessors = append(c.delimProcessors, ps...) }
}

// WithPostProcessors adds post-processors, which are run in order after the
// document is parsed.
func WithPostProcessors(ps ...PostProcessor) ParserOption {
	return func(c *parserConfig) { c.postProcessors = append(c.postProcessors, ps...) }
}

// WithEnabledBlockTypes restricts the core blocks that can be started to the
// given kinds. Paragraphs are always enabled. KindBulletList and
// KindOrderedList both enable lists of either kind.
func WithEnabledBlockTypes(kinds ...Kind) ParserOption {
	return func(c *parserConfig) {
		c.enabledKinds = kinds
		c.enabledSet = true
	}
}

// WithExtensions applies the options of the given extensions that implement
// ParserExtension. Other extensions are ignored, so the same list can be passed
// to the parser and the renderers.
func WithExtensions(exts ...Extension) ParserOption {
	return func(c *parserConfig) {
		for _, ext := range exts {
			if ext, ok := ext.(ParserExtension); ok {
				for _, opt := range ext.ParserOptions() {
					opt(c)
				}
			}
		}
	}
}

// Parser parses Markdown into a tree of nodes. A Parser is immutable, and may
// be used concurrently if all the configured extension points are.
type Parser struct {
	blockFactories  []BlockParserFactory
	delimProcessors map[byte]DelimiterProcessor
	specialChars    [256]bool
	postProcessors  []PostProcessor
}

// Core block factories and the kinds that enable them, in the order they are
// tried.
var coreBlockFactories = []struct {
	kind    Kind
	factory BlockParserFactory
}{
	{KindBlockQuote, BlockParserFactoryFunc(tryStartBlockQuote)},
	{KindHeading, BlockParserFactoryFunc(tryStartHeading)},
	{KindFencedCodeBlock, BlockParserFactoryFunc(tryStartFencedCodeBlock)},
	{KindHTMLBlock, BlockParserFactoryFunc(tryStartHTMLBlock)},
	{KindThematicBreak, BlockParserFactoryFunc(tryStartThematicBreak)},
	{KindBulletList, BlockParserFactoryFunc(tryStartList)},
	{KindIndentedCodeBlock, BlockParserFactoryFunc(tryStartIndentedCodeBlock)},
}

// NewParser creates a new Parser. It returns an error wrapping
// ErrInvalidArgument if two delimiter processors use the same character, or
// if a kind passed to WithEnabledBlockTypes is not a core block kind.
func NewParser(opts ...ParserOption) (*Parser, error) {
	var cfg parserConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Parser{postProcessors: cfg.postProcessors}

	p.blockFactories = append(p.blockFactories, cfg.blockFactories...)
	enabled := make(map[Kind]bool)
	for _, k := range cfg.enabledKinds {
		if k == KindOrderedList {
			k = KindBulletList
		}
		if !k.IsCore() || !k.IsBlock() {
			return nil, fmt.Errorf("%w: %v is not a core block kind", ErrInvalidArgument, k)
		}
		enabled[k] = true
	}
	for _, f := range coreBlockFactories {
		if !cfg.enabledSet || enabled[f.kind] {
			p.blockFactories = append(p.blockFactories, f.factory)
		}
	}

	p.delimProcessors = make(map[byte]DelimiterProcessor)
	procs := append([]DelimiterProcessor{
		NewEmphasisDelimiterProcessor('*'), NewEmphasisDelimiterProcessor('_'),
	}, cfg.delimProcessors...)
	for _, proc := range procs {
		if err := p.addDelimiterProcessor(proc.OpeningChar(), proc); err != nil {
			return nil, err
		}
		if proc.ClosingChar() != proc.OpeningChar() {
			if err := p.addDelimiterProcessor(proc.ClosingChar(), proc); err != nil {
				return nil, err
			}
		}
	}

	for _, c := range []byte("\n`[]\\!<&") {
		p.specialChars[c] = true
	}
	for c := range p.delimProcessors {
		p.specialChars[c] = true
	}
	return p, nil
}

func (p *Parser) addDelimiterProcessor(c byte, proc DelimiterProcessor) error {
	if _, exists := p.delimProcessors[c]; exists {
		return fmt.Errorf("%w: delimiter processor conflict with delimiter char %q",
			ErrInvalidArgument, c)
	}
	p.delimProcessors[c] = proc
	return nil
}

// Parse parses a Markdown document and returns the Document node. Every input
// produces a document; constructs that are not well-formed are kept as text.
func (p *Parser) Parse(source string) *Node {
	doc := newDocumentParser(p).parse(source)
	for _, pp := range p.postProcessors {
		doc = pp.Process(doc)
	}
	return doc
}

var defaultParser = must.OK1(NewParser())

// Parse parses a Markdown document with the default configuration.
func Parse(source string) *Node { return defaultParser.Parse(source) }
