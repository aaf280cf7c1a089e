package mdlsp

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"

	"src.mdkit.sh/pkg/mdconf"
	"src.mdkit.sh/pkg/must"
	"src.mdkit.sh/pkg/testutil"
)

const testURI = lsp.DocumentURI("file:///test.md")

type client struct {
	t     *testing.T
	conn  *jsonrpc2.Conn
	diags chan lsp.PublishDiagnosticsParams
}

func setup(t *testing.T) *client {
	conf := mdconf.Default()
	conf.Extensions = []string{"strikethrough"}
	s := must.OK1(newServer(conf))

	ctx := context.Background()
	serverSide, clientSide := net.Pipe()
	serverConn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(serverSide, jsonrpc2.VSCodeObjectCodec{}), handler(s))
	c := &client{t: t, diags: make(chan lsp.PublishDiagnosticsParams, 10)}
	c.conn = jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(clientSide, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(c.handle))
	t.Cleanup(func() {
		c.conn.Close()
		serverConn.Close()
	})
	return c
}

func (c *client) handle(_ context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	if req.Method == "textDocument/publishDiagnostics" {
		var params lsp.PublishDiagnosticsParams
		must.OK(json.Unmarshal(*req.Params, &params))
		c.diags <- params
	}
	return nil, nil
}

func (c *client) call(method string, params, result any) error {
	return c.conn.Call(context.Background(), method, params, result)
}

func (c *client) open(content string) {
	must.OK(c.conn.Notify(context.Background(), "textDocument/didOpen",
		lsp.DidOpenTextDocumentParams{
			TextDocument: lsp.TextDocumentItem{URI: testURI, Text: content}}))
}

func (c *client) nextDiagnostics() []lsp.Diagnostic {
	c.t.Helper()
	select {
	case params := <-c.diags:
		if params.URI != testURI {
			c.t.Errorf("got diagnostics for %v, want %v", params.URI, testURI)
		}
		return params.Diagnostics
	case <-time.After(testutil.Scaled(5 * time.Second)):
		c.t.Fatal("timed out waiting for diagnostics")
		return nil
	}
}

func pos(line, char int) lsp.Position { return lsp.Position{Line: line, Character: char} }

func rng(l1, c1, l2, c2 int) lsp.Range { return lsp.Range{Start: pos(l1, c1), End: pos(l2, c2)} }

func TestInitialize(t *testing.T) {
	c := setup(t)
	var result lsp.InitializeResult
	must.OK(c.call("initialize", lsp.InitializeParams{}, &result))
	caps := result.Capabilities
	if !caps.HoverProvider || !caps.DocumentSymbolProvider {
		t.Errorf("hover or document symbols not advertised")
	}
	if caps.CompletionProvider == nil ||
		!cmp.Equal(caps.CompletionProvider.TriggerCharacters, []string{"["}) {
		t.Errorf("got completion options %+v", caps.CompletionProvider)
	}
	if caps.TextDocumentSync == nil || caps.TextDocumentSync.Options == nil ||
		caps.TextDocumentSync.Options.Change != lsp.TDSKFull {
		t.Errorf("full sync not advertised")
	}
}

func TestUnknownMethod(t *testing.T) {
	c := setup(t)
	err := c.call("textDocument/rename", struct{}{}, nil)
	if rpcErr, ok := err.(*jsonrpc2.Error); !ok || rpcErr.Code != jsonrpc2.CodeMethodNotFound {
		t.Errorf("got error %v, want method not found", err)
	}
}

func TestInvalidParams(t *testing.T) {
	c := setup(t)
	err := c.call("textDocument/hover", []int{1}, nil)
	if rpcErr, ok := err.(*jsonrpc2.Error); !ok || rpcErr.Code != jsonrpc2.CodeInvalidParams {
		t.Errorf("got error %v, want invalid params", err)
	}
}

func TestDiagnostics(t *testing.T) {
	c := setup(t)
	c.open("See [a][missing], [b][] and [c].\n" +
		"Also \\[escaped] and [ok] and [x](/inline).\n" +
		"\n" +
		"[ok]: /ok\n" +
		"[OK]: /again\n")

	want := []lsp.Diagnostic{
		{Range: rng(0, 4, 0, 16), Severity: lsp.Warning, Source: "mdkit",
			Message: "undefined reference [missing]"},
		{Range: rng(0, 18, 0, 23), Severity: lsp.Warning, Source: "mdkit",
			Message: "undefined reference [b]"},
		{Range: rng(0, 28, 0, 31), Severity: lsp.Warning, Source: "mdkit",
			Message: "undefined reference [c]"},
		{Range: rng(4, 0, 4, 12), Severity: lsp.Warning, Source: "mdkit",
			Message: "duplicate definition of [OK]; the first one is used"},
	}
	if diff := cmp.Diff(want, c.nextDiagnostics()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	must.OK(c.conn.Notify(context.Background(), "textDocument/didChange",
		lsp.DidChangeTextDocumentParams{
			TextDocument: lsp.VersionedTextDocumentIdentifier{
				TextDocumentIdentifier: lsp.TextDocumentIdentifier{URI: testURI}},
			ContentChanges: []lsp.TextDocumentContentChangeEvent{{Text: "fine\n"}},
		}))
	if diags := c.nextDiagnostics(); len(diags) != 0 {
		t.Errorf("got diagnostics %v, want none", diags)
	}
}

func TestHover(t *testing.T) {
	c := setup(t)
	c.open("# Title\n\n- item *one*\n- ~~two~~\n")
	c.nextDiagnostics()

	var hover lsp.Hover
	must.OK(c.call("textDocument/hover", lsp.TextDocumentPositionParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: testURI}, Position: pos(3, 3)}, &hover))
	want := lsp.Hover{
		Contents: []lsp.MarkedString{lsp.RawMarkedString("/two/")},
		Range:    &lsp.Range{Start: pos(3, 0), End: pos(3, 9)},
	}
	// MarkedString has unexported fields; compare the JSON.
	if got, want := string(must.OK1(json.Marshal(hover))), string(must.OK1(json.Marshal(want))); got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	var none *lsp.Hover
	must.OK(c.call("textDocument/hover", lsp.TextDocumentPositionParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: testURI}, Position: pos(1, 0)}, &none))
	if none != nil {
		t.Errorf("got hover %v on blank line, want none", none)
	}
}

func TestDocumentSymbol(t *testing.T) {
	c := setup(t)
	c.open("# One\n\ntext\n\nTwo *2*\n===\n\n## `three`\n#\n")
	c.nextDiagnostics()

	var symbols []lsp.SymbolInformation
	must.OK(c.call("textDocument/documentSymbol", lsp.DocumentSymbolParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: testURI}}, &symbols))
	loc := func(r lsp.Range) lsp.Location { return lsp.Location{URI: testURI, Range: r} }
	want := []lsp.SymbolInformation{
		{Name: "One", Kind: lsp.SKString, Location: loc(rng(0, 0, 0, 5))},
		{Name: "Two 2", Kind: lsp.SKString, Location: loc(rng(4, 0, 5, 3))},
		{Name: "three", Kind: lsp.SKString, Location: loc(rng(7, 0, 7, 10))},
	}
	if diff := cmp.Diff(want, symbols); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestCompletion(t *testing.T) {
	c := setup(t)
	c.open("[zeta]: /z\n[alpha]: /a \"A\"\n\nsee [al and [done] x\n")
	c.nextDiagnostics()

	complete := func(p lsp.Position) []lsp.CompletionItem {
		var items []lsp.CompletionItem
		must.OK(c.call("textDocument/completion", lsp.CompletionParams{
			TextDocumentPositionParams: lsp.TextDocumentPositionParams{
				TextDocument: lsp.TextDocumentIdentifier{URI: testURI}, Position: p}}, &items))
		return items
	}

	replace := rng(3, 5, 3, 7)
	want := []lsp.CompletionItem{
		{Label: "zeta", Kind: lsp.CIKReference, Detail: "/z",
			TextEdit: &lsp.TextEdit{Range: replace, NewText: "zeta"}},
		{Label: "alpha", Kind: lsp.CIKReference, Detail: "/a",
			TextEdit: &lsp.TextEdit{Range: replace, NewText: "alpha"}},
	}
	if diff := cmp.Diff(want, complete(pos(3, 7))); diff != "" {
		t.Errorf("after unclosed bracket (-want +got):\n%s", diff)
	}
	if items := complete(pos(3, 20)); len(items) != 0 {
		t.Errorf("after closed bracket, got %v, want none", items)
	}
	if items := complete(pos(0, 0)); len(items) != 0 {
		t.Errorf("at start of document, got %v, want none", items)
	}
}

func TestDidClose(t *testing.T) {
	c := setup(t)
	c.open("# A\n")
	c.nextDiagnostics()
	must.OK(c.conn.Notify(context.Background(), "textDocument/didClose",
		lsp.DidCloseTextDocumentParams{TextDocument: lsp.TextDocumentIdentifier{URI: testURI}}))

	var symbols []lsp.SymbolInformation
	must.OK(c.call("textDocument/documentSymbol", lsp.DocumentSymbolParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: testURI}}, &symbols))
	if len(symbols) != 0 {
		t.Errorf("got symbols %v after closing, want none", symbols)
	}
}
