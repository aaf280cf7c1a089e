package testutil

import (
	"os"
	"path/filepath"
)

// TempDir creates a directory removed when the test finishes, and returns its
// path with symlinks resolved. It panics on failure.
func TempDir(c Cleanuper) string {
	dir := mustString(os.MkdirTemp("", "mdkittest."))
	dir = mustString(filepath.EvalSymlinks(dir))
	c.Cleanup(func() {
		if err := os.RemoveAll(dir); err != nil {
			println("failed to remove temp dir", dir)
		}
	})
	return dir
}

// InTempDir creates a directory like TempDir and changes into it until the
// test finishes. It returns the directory.
func InTempDir(c Cleanuper) string {
	dir := TempDir(c)
	oldWd := mustString(os.Getwd())
	mustOK(os.Chdir(dir))
	c.Cleanup(func() { mustOK(os.Chdir(oldWd)) })
	return dir
}

// Dir is a directory layout for ApplyDir. Keys are file names. A string value
// is the content of a regular file, and a Dir value is a subdirectory.
type Dir map[string]any

// ApplyDir creates the layout in the working directory. Existing directories
// are reused.
func ApplyDir(dir Dir) { applyDir(dir, "") }

func applyDir(dir Dir, prefix string) {
	for name, file := range dir {
		path := filepath.Join(prefix, name)
		switch file := file.(type) {
		case string:
			mustOK(os.WriteFile(path, []byte(file), 0644))
		case Dir:
			mustOK(os.MkdirAll(path, 0755))
			applyDir(file, path)
		default:
			panic("file is neither string nor Dir")
		}
	}
}

func mustString(s string, err error) string {
	mustOK(err)
	return s
}

func mustOK(err error) {
	if err != nil {
		panic(err)
	}
}
