package indexer

import (
	"path/filepath"
	"strings"
	"testing"
)

func FuzzIsUnderRoot(f *testing.F) {
	f.Add("/root", "foo.go")
	f.Add("/root", "..foo.go")
	f.Add("/root/pkg", "")
	f.Add("/", "sub")
	f.Fuzz(func(t *testing.T, root, name string) {
		isUnderRoot(name, root) // must not panic

		if !filepath.IsAbs(root) || name == ".." || strings.ContainsRune(name, filepath.Separator) {
			return
		}
		if path := filepath.Join(root, name); !isUnderRoot(path, root) {
			t.Errorf("isUnderRoot(%q, %q) = false for a direct child", path, root)
		}
	})
}
