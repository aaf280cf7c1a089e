//go:build !windows && !plan9

package progtest

import (
	"os"

	"github.com/creack/pty"

	"src.mdkit.sh/pkg/testutil"
)

// Opens a pseudo-terminal and returns its slave end, closing both ends when
// the test finishes.
func openTTY(c testutil.Cleanuper) (*os.File, error) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		return nil, err
	}
	c.Cleanup(func() {
		tty.Close()
		ptmx.Close()
	})
	return tty, nil
}
