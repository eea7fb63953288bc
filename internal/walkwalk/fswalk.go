// Package walkwalk provides a deterministic, filterable filesystem walker
// used to gather the files that make up a tree snapshot.
package walkwalk

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"
)

// FileInfo is a minimal, deterministic descriptor of a collected file.
type FileInfo struct {
	RelPath string // project-relative path with forward slashes
	AbsPath string // absolute filesystem path
	Size    int64  // size in bytes
}

// Options controls which entries CollectFiles keeps.
type Options struct {
	// Skip is the deny-list applied to directory and file names.
	Skip SkipRules
	// Include, when non-empty, keeps only files whose base name matches one
	// of the globs (for example "*.md" for the documentation tree).
	Include []string
	// MaxFileBytes drops files larger than the limit (0 = no limit).
	MaxFileBytes   int64
	UseGitignore   bool
	FollowSymlinks bool
}

type walkState struct {
	opt      Options
	root     string
	patterns []gitPattern
	files    []FileInfo
}

// CollectFiles walks src and returns the surviving files sorted by RelPath.
func CollectFiles(src string, opt Options) ([]FileInfo, error) {
	if err := opt.Skip.Validate(); err != nil {
		return nil, err
	}
	if err := validatePatterns("include", opt.Include); err != nil {
		return nil, err
	}
	root, err := filepath.Abs(src)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("walk %s: not a directory", src)
	}
	state := &walkState{opt: opt, root: root}
	if opt.UseGitignore {
		// A missing or unreadable .gitignore simply means no extra patterns.
		state.patterns, _ = parseGitignore(filepath.Join(root, ".gitignore"))
	}
	if err := filepath.WalkDir(root, state.visit); err != nil {
		return nil, err
	}
	sort.Slice(state.files, func(i, j int) bool { return state.files[i].RelPath < state.files[j].RelPath })
	return state.files, nil
}

func (ws *walkState) visit(path string, d fs.DirEntry, err error) error {
	if err != nil {
		// Unreadable subtrees are skipped; the root itself must be readable.
		if path == ws.root {
			return err
		}
		if d != nil && d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	}
	rel, ok := ws.relative(path)
	if !ok {
		return nil
	}
	if rel == "." {
		return nil
	}
	if ws.shouldSkip(rel, d) {
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	}
	if d.IsDir() {
		if !ws.opt.FollowSymlinks && isSymlink(d) {
			return filepath.SkipDir
		}
		return nil
	}
	return ws.handleFile(path, rel, d)
}

func (ws *walkState) relative(path string) (string, bool) {
	rel, err := filepath.Rel(ws.root, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "../") || rel == ".." {
		return "", false
	}
	return rel, true
}

func (ws *walkState) shouldSkip(rel string, d fs.DirEntry) bool {
	if d.IsDir() {
		if ws.opt.Skip.MatchDir(rel) {
			return true
		}
	} else if ws.opt.Skip.MatchFile(rel) {
		return true
	}
	return ws.opt.UseGitignore && matchGitignore(ws.patterns, rel, d.IsDir())
}

func (ws *walkState) handleFile(path, rel string, d fs.DirEntry) error {
	if !ws.opt.FollowSymlinks && isSymlink(d) {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}
	if ws.opt.MaxFileBytes > 0 && info.Size() > ws.opt.MaxFileBytes {
		return nil
	}
	if len(ws.opt.Include) > 0 && !matchAny(ws.opt.Include, rel) {
		return nil
	}
	ws.files = append(ws.files, FileInfo{
		RelPath: rel,
		AbsPath: path,
		Size:    info.Size(),
	})
	return nil
}

// isSymlink reports whether the DirEntry is a symlink (file or directory).
func isSymlink(d fs.DirEntry) bool {
	return d.Type()&fs.ModeSymlink != 0
}

// ---------------- .gitignore support ----------------

type gitPattern struct {
	neg     bool   // pattern starts with '!'
	dirOnly bool   // pattern ends with '/'
	glob    string // doublestar pattern matched against the relative path
}

// parseGitignore reads a .gitignore file and translates each rule into a
// doublestar glob. Supported: comments, blank lines, '!' negation, leading '/'
// anchoring, trailing '/' for directories, '*', '?' and '**'.
func parseGitignore(path string) ([]gitPattern, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var res []gitPattern
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p := gitPattern{}
		if strings.HasPrefix(line, "!") {
			p.neg = true
			line = strings.TrimSpace(line[1:])
		}
		if strings.HasSuffix(line, "/") {
			p.dirOnly = true
			line = strings.TrimSuffix(line, "/")
		}
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			p.glob = strings.TrimPrefix(line, "/")
		} else {
			p.glob = "**/" + line
		}
		res = append(res, p)
	}
	return res, s.Err()
}

func matchGitignore(pats []gitPattern, rel string, isDir bool) bool {
	ignored := false
	for _, p := range pats {
		if p.dirOnly && !isDir {
			continue
		}
		ok, err := doublestar.Match(p.glob, rel)
		if err != nil || !ok {
			continue
		}
		ignored = !p.neg
	}
	return ignored
}
