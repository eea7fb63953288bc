package bundle

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"docsync/internal/cache"
	"docsync/internal/textutil"
)

// ErrBudgetExceeded marks a document that does not fit the line budget.
var ErrBudgetExceeded = errors.New("document exceeds line budget")

// CodebaseDocument concatenates every file of snap as
//
//	# File: <path>
//
//	<content>
//
// in path order. It fails with ErrBudgetExceeded when the result would
// contain more than budget newlines.
func CodebaseDocument(snap *cache.Snapshot, budget int) (string, error) {
	if budget <= 0 {
		budget = DefaultLineBudget
	}
	var b strings.Builder
	lines := 0
	for _, p := range snap.Paths() {
		block := "# File: " + p + "\n\n" + textutil.EnsureTrailingLF(snap.Files[p].Content) + "\n"
		lines += textutil.CountNewlines(block)
		if lines > budget {
			return "", fmt.Errorf("codebase: %d+ lines at %s, budget %d: %w", lines, p, budget, ErrBudgetExceeded)
		}
		b.WriteString(block)
	}
	return b.String(), nil
}

// ExistingDocs renders the documentation snapshot as
//
//	# Directory: <dir>
//	# File: <base>
//
//	<content>
//
// blocks in path order. An empty snapshot yields "". It fails with
// ErrBudgetExceeded when the result would not fit the budget.
func ExistingDocs(snap *cache.Snapshot, budget int) (string, error) {
	if snap.Empty() {
		return "", nil
	}
	if budget <= 0 {
		budget = DefaultLineBudget
	}
	var b strings.Builder
	lines := 0
	for _, p := range snap.Paths() {
		dir := path.Dir(p)
		if dir == "." {
			dir = ""
		}
		block := "# Directory: " + dir + "\n# File: " + path.Base(p) + "\n\n" + snap.Files[p].Content + "\n\n"
		lines += textutil.CountNewlines(block)
		if lines > budget {
			return "", fmt.Errorf("existing docs: %d+ lines at %s, budget %d: %w", lines, p, budget, ErrBudgetExceeded)
		}
		b.WriteString(block)
	}
	return b.String(), nil
}
