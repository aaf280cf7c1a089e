package tt

import (
	"fmt"
	"strings"
	"testing"
)

type recordingT []string

func (t *recordingT) Helper() {}

func (t *recordingT) Errorf(format string, args ...any) {
	*t = append(*t, fmt.Sprintf(format, args...))
}

func splitLines(s string) []string { return strings.Split(s, "\n") }

func cut(s, sep string) (string, string) {
	before, after, _ := strings.Cut(s, sep)
	return before, after
}

func TestTest_Pass(t *testing.T) {
	var rt recordingT
	Test(&rt, Fn("cut", cut), Table{
		Args("a=b", "=").Rets("a", "b"),
		Args("ab", "=").Rets("ab", ""),
	})
	Test(&rt, Fn("splitLines", splitLines), Table{
		Args("a\nb").Rets([]string{"a", "b"}),
	})
	if len(rt) > 0 {
		t.Errorf("got errors %q, want none", rt)
	}
}

func TestTest_Fail(t *testing.T) {
	var rt recordingT
	Test(&rt, Fn("cut", cut), Table{
		Args("a=b", "=").Rets("a", "c"),
		Args("a=b", "=").Rets("a", "b").Rets("x", "b"),
	})
	if len(rt) != 2 {
		t.Fatalf("got %d errors, want 2", len(rt))
	}
	for _, msg := range rt {
		if want := `cut("a=b", "=") returns (-want +got):` + "\n"; !strings.HasPrefix(msg, want) {
			t.Errorf("got message %q, want prefix %q", msg, want)
		}
	}
}

func TestTest_NilArgument(t *testing.T) {
	var rt recordingT
	isNil := func(v any) bool { return v == nil }
	Test(&rt, Fn("isNil", isNil), Table{
		Args(nil).Rets(true),
		Args(0).Rets(false),
	})
	if len(rt) > 0 {
		t.Errorf("got errors %q, want none", rt)
	}
}
