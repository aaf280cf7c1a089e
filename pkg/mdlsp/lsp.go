// Package mdlsp implements a language server for Markdown.
package mdlsp

import (
	"context"
	"os"

	"github.com/sourcegraph/jsonrpc2"

	"src.mdkit.sh/pkg/logutil"
	"src.mdkit.sh/pkg/mdconf"
	"src.mdkit.sh/pkg/prog"
)

var logger = logutil.GetLogger("[mdlsp] ")

// Program is the LSP subprogram.
var Program prog.Program = program{}

type program struct{}

func (program) Run(fds [3]*os.File, f *prog.Flags, args []string) error {
	if !f.LSP {
		return prog.ErrNotSuitable
	}
	if len(args) > 0 {
		return prog.BadUsage("arguments are not allowed with -lsp")
	}
	conf, err := mdconf.Resolve(f)
	if err != nil {
		return err
	}
	s, err := newServer(conf)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger.Println("serving on stdio")
	conn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(transport{fds[0], fds[1]}, jsonrpc2.VSCodeObjectCodec{}),
		handler(s))
	<-conn.DisconnectNotify()
	logger.Println("client disconnected")
	return nil
}

type transport struct{ in, out *os.File }

func (c transport) Read(p []byte) (int, error)  { return c.in.Read(p) }
func (c transport) Write(p []byte) (int, error) { return c.out.Write(p) }

func (c transport) Close() error {
	if err := c.in.Close(); err != nil {
		c.out.Close()
		return err
	}
	return c.out.Close()
}
