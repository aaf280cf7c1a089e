package logutil_test

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	. "src.mdkit.sh/pkg/logutil"
	"src.mdkit.sh/pkg/must"
	"src.mdkit.sh/pkg/testutil"
)

func TestLogger(t *testing.T) {
	logger := GetLogger("foo ")
	var sb strings.Builder
	SetOutput(&sb)
	t.Cleanup(func() { SetOutput(io.Discard) })

	logger.Print("message")
	if !strings.Contains(sb.String(), "foo message\n") {
		t.Errorf("got %q, want it to contain %q", sb.String(), "foo message\n")
	}
}

func TestSetOutputFile(t *testing.T) {
	logger := GetLogger("bar ")
	path := filepath.Join(testutil.TempDir(t), "log")
	if err := SetOutputFile(path); err != nil {
		t.Fatal(err)
	}
	logger.Print("to file")
	// Closes the file.
	if err := SetOutputFile(""); err != nil {
		t.Fatal(err)
	}
	logger.Print("discarded")

	if s := must.ReadFileString(path); !strings.Contains(s, "bar to file\n") || strings.Contains(s, "discarded") {
		t.Errorf("log file contains %q", s)
	}
}

func TestSetOutputFile_BadPath(t *testing.T) {
	err := SetOutputFile(filepath.Join(testutil.TempDir(t), "no", "such", "dir"))
	if err == nil {
		t.Errorf("got nil error, want non-nil")
	}
}
