// Package progtest contains utilities for testing subprograms.
package progtest

import (
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"src.mdkit.sh/pkg/must"
	"src.mdkit.sh/pkg/prog"
)

// Case is a test case that can be used in Test.
type Case struct {
	args  []string
	stdin string
	tty   bool
	want  result
}

type result struct {
	exitStatus int
	stdout     output
	stderr     output
}

type output struct {
	content string
	partial bool
}

func (o output) String() string {
	if o.partial {
		return fmt.Sprintf("text containing %q", o.content)
	}
	return fmt.Sprintf("%q", o.content)
}

// ThatProgram returns a new Case with the specified CLI arguments. The first
// argument, the name of the program, is "mdkit" and need not be given.
//
// The new Case expects the program run to exit with 0, and write nothing to
// stdout or stderr.
//
// When combined with subsequent method calls, a test case reads like English.
// For example, a test for the fact that "mdkit -bad-flag" exits with 2 reads
// like:
//
//	ThatProgram("-bad-flag").ExitsWith(2)
func ThatProgram(args ...string) Case {
	return Case{args: append([]string{"mdkit"}, args...)}
}

// WithStdin returns an altered Case that provides the given input to the
// program's stdin.
func (c Case) WithStdin(s string) Case {
	c.stdin = s
	return c
}

// WithTTYStdin returns an altered Case whose stdin is a terminal. The test is
// skipped where terminals cannot be opened.
func (c Case) WithTTYStdin() Case {
	c.tty = true
	return c
}

// DoesNothing returns c itself. It is useful to mark tests that otherwise
// don't have any expectations, for example:
//
//	ThatProgram("-help").DoesNothing()
func (c Case) DoesNothing() Case {
	return c
}

// ExitsWith returns an altered Case that requires the program run to return
// with the given exit status.
func (c Case) ExitsWith(code int) Case {
	c.want.exitStatus = code
	return c
}

// WritesStdout returns an altered Case that requires the program run to write
// exactly the given text to stdout.
func (c Case) WritesStdout(s string) Case {
	c.want.stdout = output{content: s}
	return c
}

// WritesStdoutContaining returns an altered Case that requires the program run
// to write output to stdout that contains the given text as a substring.
func (c Case) WritesStdoutContaining(s string) Case {
	c.want.stdout = output{content: s, partial: true}
	return c
}

// WritesStderr returns an altered Case that requires the program run to write
// exactly the given text to stderr.
func (c Case) WritesStderr(s string) Case {
	c.want.stderr = output{content: s}
	return c
}

// WritesStderrContaining returns an altered Case that requires the program run
// to write output to stderr that contains the given text as a substring.
func (c Case) WritesStderrContaining(s string) Case {
	c.want.stderr = output{content: s, partial: true}
	return c
}

// Test runs test cases against a given program.
func Test(t *testing.T, p prog.Program, cases ...Case) {
	t.Helper()
	for _, c := range cases {
		t.Run(strings.Join(c.args, " "), func(t *testing.T) {
			t.Helper()
			var stdin *os.File
			if c.tty {
				tty, err := openTTY(t)
				if err != nil {
					t.Skip("cannot open terminal:", err)
				}
				stdin = tty
			} else {
				r, w := must.Pipe()
				go func() {
					io.WriteString(w, c.stdin)
					w.Close()
				}()
				defer r.Close()
				stdin = r
			}
			r := run(p, stdin, c.args...)
			if r.exitStatus != c.want.exitStatus {
				t.Errorf("got exit status %v, want %v", r.exitStatus, c.want.exitStatus)
			}
			if !matchOutput(r.stdout.content, c.want.stdout) {
				t.Errorf("got stdout %v, want %v", r.stdout, c.want.stdout)
			}
			if !matchOutput(r.stderr.content, c.want.stderr) {
				t.Errorf("got stderr %v, want %v", r.stderr, c.want.stderr)
			}
		})
	}
}

// Run runs a Program with the given arguments. It returns the Program's exit
// status and its stdout and stderr outputs. The program reads an empty stdin.
func Run(p prog.Program, args ...string) (exit int, stdout, stderr string) {
	r, w := must.Pipe()
	w.Close()
	defer r.Close()
	res := run(p, r, append([]string{"mdkit"}, args...)...)
	return res.exitStatus, res.stdout.content, res.stderr.content
}

func run(p prog.Program, stdin *os.File, args ...string) result {
	r1, w1 := must.Pipe()
	r2, w2 := must.Pipe()
	stdout := readAllAsync(r1)
	stderr := readAllAsync(r2)

	exit := prog.Run([3]*os.File{stdin, w1, w2}, args, p)
	w1.Close()
	w2.Close()
	return result{exit, output{content: <-stdout}, output{content: <-stderr}}
}

// Reads from r in the background, so that the program is not blocked on a
// full pipe.
func readAllAsync(r *os.File) <-chan string {
	ch := make(chan string, 1)
	go func() {
		ch <- string(must.ReadAllAndClose(r))
	}()
	return ch
}

func matchOutput(got string, want output) bool {
	if want.partial {
		return strings.Contains(got, want.content)
	}
	return got == want.content
}
