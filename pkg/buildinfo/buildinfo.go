// Package buildinfo holds build information and the subprogram that prints
// it.
//
// Build information can be set at link time with
// -ldflags "-X src.mdkit.sh/pkg/buildinfo.Var=value".
package buildinfo

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strings"

	"src.mdkit.sh/pkg/mdconf"
	"src.mdkit.sh/pkg/prog"
)

// Version identifies the version of mdkit. On development commits, it
// identifies the next release.
const Version = "v0.1.0"

// VersionSuffix is appended to Version to build the full version string.
var VersionSuffix = "-dev.unknown"

// Reproducible identifies whether the build is reproducible.
var Reproducible = "false"

// Info is the build information printed by "mdkit -buildinfo".
type Info struct {
	Version      string   `json:"version"`
	GoVersion    string   `json:"goversion"`
	Reproducible bool     `json:"reproducible"`
	Extensions   []string `json:"extensions"`
}

// Value returns the build information of the running binary.
func Value() Info {
	return Info{
		Version:      Version + VersionSuffix,
		GoVersion:    runtime.Version(),
		Reproducible: Reproducible == "true",
		Extensions:   mdconf.ExtensionNames(),
	}
}

// Program is the buildinfo subprogram. It handles -version and -buildinfo.
var Program prog.Program = program{}

type program struct{}

func (program) Run(fds [3]*os.File, f *prog.Flags, _ []string) error {
	if !f.Version && !f.BuildInfo {
		return prog.ErrNotSuitable
	}
	info := Value()
	switch {
	case f.Version:
		fmt.Fprintln(fds[1], info.Version)
	case f.JSON:
		return json.NewEncoder(fds[1]).Encode(info)
	default:
		fmt.Fprintln(fds[1], "Version:", info.Version)
		fmt.Fprintln(fds[1], "Go version:", info.GoVersion)
		fmt.Fprintln(fds[1], "Reproducible build:", info.Reproducible)
		fmt.Fprintln(fds[1], "Extensions:", strings.Join(info.Extensions, ", "))
	}
	return nil
}
