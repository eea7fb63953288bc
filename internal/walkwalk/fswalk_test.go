package walkwalk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, body string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
}

func relPaths(files []FileInfo) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.RelPath)
	}
	return out
}

func TestCollectFilesAppliesDefaultSkipRules(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "pkg/util.go", "package pkg\n")
	writeFile(t, root, "node_modules/x/index.js", "x")
	writeFile(t, root, "lib.egg-info/PKG-INFO", "x")
	writeFile(t, root, "README.md", "# readme\n")
	writeFile(t, root, "yarn.lock", "x")
	writeFile(t, root, "assets/logo.png", "x")

	files, err := CollectFiles(root, Options{Skip: DefaultSkipRules()})
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go", "pkg/util.go"}, relPaths(files))
}

func TestCollectFilesIncludeOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "1- Intro.md", "a")
	writeFile(t, root, "2- Guides/1- Setup.md", "b")
	writeFile(t, root, "notes.txt", "c")

	files, err := CollectFiles(root, Options{Include: []string{"*.md"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"1- Intro.md", "2- Guides/1- Setup.md"}, relPaths(files))
}

func TestCollectFilesPathPatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/gen/a.go", "a")
	writeFile(t, root, "docs/keep.go", "b")

	rules := SkipRules{Dirs: []string{"docs/gen"}}
	files, err := CollectFiles(root, Options{Skip: rules})
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/keep.go"}, relPaths(files))
}

func TestCollectFilesGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "# comment\n/generated/\n*.gen.go\n!keep.gen.go\n")
	writeFile(t, root, "generated/a.go", "a")
	writeFile(t, root, "x.gen.go", "b")
	writeFile(t, root, "sub/keep.gen.go", "c")
	writeFile(t, root, "main.go", "d")

	files, err := CollectFiles(root, Options{UseGitignore: true})
	require.NoError(t, err)
	assert.Equal(t, []string{".gitignore", "main.go", "sub/keep.gen.go"}, relPaths(files))
}

func TestCollectFilesRejectsBadPattern(t *testing.T) {
	_, err := CollectFiles(t.TempDir(), Options{Skip: SkipRules{Files: []string{"[abc"}}})
	require.Error(t, err)
}

func TestCollectFilesRequiresDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "f.txt", "x")
	_, err := CollectFiles(filepath.Join(root, "f.txt"), Options{})
	require.Error(t, err)
}
