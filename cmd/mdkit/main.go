// Mdkit converts CommonMark Markdown to HTML or plain text, and serves as a
// Markdown language server.
package main

import (
	"os"

	"src.mdkit.sh/pkg/buildinfo"
	"src.mdkit.sh/pkg/mdcmd"
	"src.mdkit.sh/pkg/mdlsp"
	"src.mdkit.sh/pkg/prog"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(buildinfo.Program, mdlsp.Program, mdcmd.Program)))
}
