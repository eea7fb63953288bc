// Package validate performs lightweight structural validation of the inputs
// and outputs of a sync run: section trees before any oracle call, and
// snapshots before they are persisted.
//
// Goals:
//   - Aggregate multiple issues into a single error for better UX
//   - Deterministic, strict-enough checks without being overbearing
package validate

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"docsync/internal/cache"
	"docsync/internal/locale"
	"docsync/internal/sections"
)

// SectionTree validates a parsed section tree:
//
//   - The tree has at least one section.
//   - Every title is non-empty after sanitizing (it names a file or directory).
//   - Leaf descriptions are non-empty.
//
// Sibling names cannot collide because each carries its own index prefix.
func SectionTree(tree []sections.Node) error {
	var errs errlist
	if len(tree) == 0 {
		errs.add("sections: tree must contain at least one section")
	}
	checkNodes(&errs, tree, "")
	return errs.err()
}

func checkNodes(errs *errlist, nodes []sections.Node, where string) {
	for i, n := range nodes {
		prefix := fmt.Sprintf("sections%s[%d] (%s)", where, i+1, n.Title)
		if sections.Sanitize(n.Title) == "" {
			errs.add("%s: title is empty once illegal characters are removed", prefix)
		}
		if n.IsLeaf() {
			if strings.TrimSpace(n.Description) == "" {
				errs.add("%s: description must be non-empty", prefix)
			}
			continue
		}
		checkNodes(errs, n.Children, where+"/"+n.Title)
	}
}

// Snapshot validates a snapshot before it is persisted:
//
//   - Each path is relative, uses forward slashes and has no ".." segments.
//   - No path equals the reserved metadata key.
//   - Each hash is 64 lowercase hex chars (sha256) and matches the content.
//   - Each language is a known locale code, listed once.
func Snapshot(s *cache.Snapshot) error {
	var errs errlist
	if s == nil {
		errs.add("snapshot must not be nil")
		return errs.err()
	}
	for _, p := range s.Paths() {
		f := s.Files[p]
		prefix := fmt.Sprintf("files[%s]", p)
		if p == "" {
			errs.add("%s: path must be non-empty", prefix)
			continue
		}
		if filepath.IsAbs(p) || strings.HasPrefix(p, "/") {
			errs.add("%s: path must be relative", prefix)
		}
		if strings.Contains(p, `\`) {
			errs.add("%s: path must use forward slashes ('/'), found backslash", prefix)
		}
		if hasDotDot(p) {
			errs.add("%s: path must not contain '..' segments", prefix)
		}
		if p == cache.LanguagesKey {
			errs.add("%s: path collides with the reserved metadata key", prefix)
		}
		if !reHex64.MatchString(f.Hash) {
			errs.add("%s: hash must be 64 lowercase hex chars (sha256), got %q", prefix, f.Hash)
		} else if f.Hash != cache.HashContent(f.Content) {
			errs.add("%s: hash does not match content", prefix)
		}
	}
	seen := make(map[string]struct{}, len(s.Languages))
	for i, code := range s.Languages {
		if _, ok := locale.Label(code); !ok {
			errs.add("languages[%d]: unknown locale %q", i, code)
		}
		if _, dup := seen[code]; dup {
			errs.add("languages[%d]: duplicate locale %q", i, code)
		}
		seen[code] = struct{}{}
	}
	return errs.err()
}

// --- helpers -----------------------------------------------------------------

var reHex64 = regexp.MustCompile(`^[0-9a-f]{64}$`)

func hasDotDot(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

// errlist aggregates multiple validation issues into a single error.
type errlist struct {
	msgs []string
}

func (e *errlist) add(format string, args ...any) {
	if e == nil {
		return
	}
	e.msgs = append(e.msgs, fmt.Sprintf(format, args...))
}

func (e *errlist) err() error {
	if e == nil || len(e.msgs) == 0 {
		return nil
	}
	// Join with newline for readability.
	return errors.New(strings.Join(e.msgs, "\n"))
}
