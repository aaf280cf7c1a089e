// Package tt runs table-driven tests of plain functions.
//
// A table lists argument tuples with their expected return values:
//
//	tt.Test(t, tt.Fn("Add", Add), tt.Table{
//		tt.Args(1, 2).Rets(3),
//	})
package tt

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
)

// Table is a list of test cases.
type Table []*Case

// Case holds the arguments of one call and the return values it must produce.
type Case struct {
	args []any
	rets [][]any
}

// Args starts a Case that calls the function with args.
func Args(args ...any) *Case { return &Case{args: args} }

// Rets adds an expectation on the return values and returns c. Values are
// compared with cmp.Equal.
func (c *Case) Rets(rets ...any) *Case {
	c.rets = append(c.rets, rets)
	return c
}

// FnToTest is a function under test with a name for error messages.
type FnToTest struct {
	name string
	body any
}

// Fn returns a FnToTest.
func Fn(name string, body any) *FnToTest { return &FnToTest{name, body} }

// T is the subset of testing.TB used by Test.
type T interface {
	Helper()
	Errorf(format string, args ...any)
}

// Test calls fn with the arguments of each case and reports return values
// that do not match.
func Test(t T, fn *FnToTest, tests Table) {
	t.Helper()
	for _, test := range tests {
		got := call(fn.body, test.args)
		for _, want := range test.rets {
			if !cmp.Equal(want, got) {
				t.Errorf("%s(%s) returns (-want +got):\n%s",
					fn.name, join(test.args), cmp.Diff(want, got))
			}
		}
	}
}

func join(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%#v", v)
	}
	return strings.Join(parts, ", ")
}

func call(fn any, args []any) []any {
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			// A zero interface value, not an invalid reflect.Value.
			var v any
			in[i] = reflect.ValueOf(&v).Elem()
		} else {
			in[i] = reflect.ValueOf(arg)
		}
	}
	out := reflect.ValueOf(fn).Call(in)
	rets := make([]any, len(out))
	for i, v := range out {
		rets[i] = v.Interface()
	}
	return rets
}
