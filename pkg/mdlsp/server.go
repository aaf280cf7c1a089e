package mdlsp

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"

	"src.mdkit.sh/pkg/md"
	"src.mdkit.sh/pkg/md/mdutil"
	"src.mdkit.sh/pkg/md/text"
	"src.mdkit.sh/pkg/mdconf"
)

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

const diagnosticSource = "mdkit"

type server struct {
	parser  *md.Parser
	text    *text.Renderer
	content map[lsp.DocumentURI]string
}

func newServer(conf *mdconf.Config) (*server, error) {
	p, err := conf.NewParser()
	if err != nil {
		return nil, err
	}
	return &server{p, conf.NewTextRenderer(), make(map[lsp.DocumentURI]string)}, nil
}

func handler(s *server) jsonrpc2.Handler {
	return routingHandler(map[string]method{
		"initialize":                  s.initialize,
		"textDocument/didOpen":        s.didOpen,
		"textDocument/didChange":      s.didChange,
		"textDocument/didClose":       s.didClose,
		"textDocument/hover":          s.hover,
		"textDocument/documentSymbol": s.documentSymbol,
		"textDocument/completion":     s.completion,

		// Required by the protocol.
		"initialized": noop,
		// Called by clients even when server doesn't advertise support:
		// https://microsoft.github.io/language-server-protocol/specification#workspace_didChangeWatchedFiles
		"workspace/didChangeWatchedFiles": noop,
	})
}

type method func(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (any, error)

func noop(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return nil, nil
}

func routingHandler(methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		fn, ok := methods[req.Method]
		if !ok {
			logger.Println("unknown method", req.Method)
			return nil, errMethodNotFound
		}
		var params json.RawMessage
		if req.Params != nil {
			params = *req.Params
		}
		return fn(ctx, conn, params)
	})
}

// Handler implementations. These are all called synchronously.

func (s *server) initialize(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return &lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
				Options: &lsp.TextDocumentSyncOptions{
					OpenClose: true,
					Change:    lsp.TDSKFull,
				},
			},
			HoverProvider:          true,
			DocumentSymbolProvider: true,
			CompletionProvider: &lsp.CompletionOptions{
				TriggerCharacters: []string{"["},
			},
		},
	}, nil
}

func (s *server) didOpen(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidOpenTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	uri, content := params.TextDocument.URI, params.TextDocument.Text
	s.content[uri] = content
	go s.publishDiagnostics(ctx, conn, uri, content)
	return nil, nil
}

func (s *server) didChange(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidChangeTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil || len(params.ContentChanges) == 0 {
		return nil, errInvalidParams
	}

	// ContentChanges includes full text since the server is only advertised to
	// support that; see the initialize method.
	uri, content := params.TextDocument.URI, params.ContentChanges[0].Text
	s.content[uri] = content
	go s.publishDiagnostics(ctx, conn, uri, content)
	return nil, nil
}

func (s *server) didClose(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidCloseTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	delete(s.content, params.TextDocument.URI)
	return nil, nil
}

func (s *server) hover(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.TextDocumentPositionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	content := s.content[params.TextDocument.URI]
	block := innermostBlock(s.parser.Parse(content), params.Position.Line)
	if block == nil {
		return nil, nil
	}
	rendered := s.text.Render(block)
	if rendered == "" {
		return nil, nil
	}
	rg := lspRangeFromLines(content, block.StartLine, block.EndLine)
	return lsp.Hover{
		Contents: []lsp.MarkedString{lsp.RawMarkedString(rendered)},
		Range:    &rg,
	}, nil
}

// Returns the deepest block other than the document that spans the given
// line, or nil.
func innermostBlock(doc *md.Node, line int) *md.Node {
	var block *md.Node
	md.Walk(doc, func(n *md.Node, entering bool) md.WalkStatus {
		if !entering || !n.IsBlock() {
			return md.WalkContinue
		}
		if n.StartLine > line || n.EndLine < line {
			return md.WalkSkipChildren
		}
		if n.Kind != md.KindDocument {
			block = n
		}
		return md.WalkContinue
	})
	return block
}

func (s *server) documentSymbol(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DocumentSymbolParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	uri := params.TextDocument.URI
	content := s.content[uri]
	symbols := []lsp.SymbolInformation{}
	md.Walk(s.parser.Parse(content), func(n *md.Node, entering bool) md.WalkStatus {
		if !entering || n.Kind != md.KindHeading {
			return md.WalkContinue
		}
		if name := n.Text(); name != "" {
			symbols = append(symbols, lsp.SymbolInformation{
				Name: name,
				Kind: lsp.SKString,
				Location: lsp.Location{
					URI:   uri,
					Range: lspRangeFromLines(content, n.StartLine, n.EndLine),
				},
			})
		}
		return md.WalkSkipChildren
	})
	return symbols, nil
}

func (s *server) completion(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.CompletionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	content := s.content[params.TextDocument.URI]
	dot := lspPositionToIdx(content, params.Position)
	lineStart := strings.LastIndexAny(content[:dot], "\n\r") + 1
	open := strings.LastIndexByte(content[lineStart:dot], '[')
	if open == -1 || strings.IndexByte(content[lineStart+open:dot], ']') != -1 {
		return []lsp.CompletionItem{}, nil
	}
	replace := lspRangeFromIdx(content, lineStart+open+1, dot)

	refs := s.parser.Parse(content).References().All()
	items := make([]lsp.CompletionItem, len(refs))
	for i, ref := range refs {
		label := ref.Label[1 : len(ref.Label)-1]
		items[i] = lsp.CompletionItem{
			Label:  label,
			Kind:   lsp.CIKReference,
			Detail: ref.Destination,
			TextEdit: &lsp.TextEdit{
				Range:   replace,
				NewText: label,
			},
		}
	}
	return items, nil
}

func (s *server) publishDiagnostics(ctx context.Context, conn jsonrpc2.JSONRPC2, uri lsp.DocumentURI, content string) {
	err := conn.Notify(ctx, "textDocument/publishDiagnostics",
		lsp.PublishDiagnosticsParams{URI: uri, Diagnostics: s.diagnostics(content)})
	if err != nil {
		logger.Println("publish diagnostics:", err)
	}
}

// Matches bracketed text in the literal of text nodes, optionally followed by
// a second bracketed label.
var bracketedRegexp = regexp.MustCompile(`\[([^\[\]]*)\](?:\[([^\[\]]*)\])?`)

func (s *server) diagnostics(content string) []lsp.Diagnostic {
	doc := s.parser.Parse(content)
	refs := doc.References()
	starts := lineStarts(content)
	diags := []lsp.Diagnostic{}

	md.Walk(doc, func(n *md.Node, entering bool) md.WalkStatus {
		if !entering || (n.Kind != md.KindParagraph && n.Kind != md.KindHeading) {
			return md.WalkContinue
		}
		// Brackets that form links have been turned into Link nodes, so the
		// ones left in text nodes are references to undefined labels.
		blockStart := starts[n.StartLine]
		blockEnd := len(content)
		if n.EndLine+1 < len(starts) {
			blockEnd = starts[n.EndLine+1]
		}
		block := content[blockStart:blockEnd]
		cursor := 0
		md.Walk(n, func(t *md.Node, entering bool) md.WalkStatus {
			if !entering || t.Kind != md.KindText {
				return md.WalkContinue
			}
			for _, m := range bracketedRegexp.FindAllStringSubmatch(t.Literal, -1) {
				label := m[1]
				if m[2] != "" {
					label = m[2]
				}
				if mdutil.NormalizeLabel(label) == "" {
					continue
				}
				if _, ok := refs.Get(label); ok {
					continue
				}
				i := strings.Index(block[cursor:], m[0])
				if i == -1 {
					continue
				}
				from := blockStart + cursor + i
				cursor += i + len(m[0])
				// Brackets escaped in the source are not references.
				if from > 0 && content[from-1] == '\\' {
					continue
				}
				diags = append(diags, lsp.Diagnostic{
					Range:    lspRangeFromIdx(content, from, from+len(m[0])),
					Severity: lsp.Warning,
					Source:   diagnosticSource,
					Message:  fmt.Sprintf("undefined reference [%s]", label),
				})
			}
			return md.WalkContinue
		})
		return md.WalkSkipChildren
	})

	for _, ref := range refs.Duplicates() {
		diags = append(diags, lsp.Diagnostic{
			Range:    lspRangeFromLines(content, ref.Line, ref.Line),
			Severity: lsp.Warning,
			Source:   diagnosticSource,
			Message:  fmt.Sprintf("duplicate definition of %s; the first one is used", ref.Label),
		})
	}
	return diags
}
