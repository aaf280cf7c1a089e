//go:build windows || plan9

package progtest

import (
	"errors"
	"os"

	"src.mdkit.sh/pkg/testutil"
)

func openTTY(testutil.Cleanuper) (*os.File, error) {
	return nil, errors.New("pseudo-terminals not supported")
}
