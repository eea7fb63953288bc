// Package cache defines the core data types used by snapshotting and change
// detection.
package cache

// TreeKind names one of the two independently keyed snapshot trees.
type TreeKind string

const (
	// Codebase is the source tree the documentation is generated from.
	Codebase TreeKind = "codebase"
	// Documentation is the generated Markdown tree.
	Documentation TreeKind = "documentation"
)

// SnapFile is a single file entry in a snapshot.
// Hash is the lowercase hex sha256 of Content.
type SnapFile struct {
	Hash    string `json:"hash"`
	Content string `json:"content"`
}

// Snapshot captures the state of a tree at a specific moment.
// Files is keyed by tree-relative, forward-slash path. Languages is the
// ordered list of locale codes selected when the snapshot was taken.
type Snapshot struct {
	Files     map[string]SnapFile
	Languages []string
}

// NewSnapshot returns an empty snapshot ready for use.
func NewSnapshot() *Snapshot {
	return &Snapshot{Files: make(map[string]SnapFile)}
}

// Empty reports whether the snapshot tracks no files.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Files) == 0
}

// Paths returns the tracked paths in sorted order.
func (s *Snapshot) Paths() []string {
	if s == nil {
		return nil
	}
	return sortedKeys(s.Files)
}

// FileChange is one entry of a ChangeSet: the path and its current content.
type FileChange struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// ChangeSet is the partition of the current files that differ from a
// previous snapshot. Both lists are sorted by path and are disjoint.
//
//   - Modified: same path, different content hash
//   - New: path absent from the previous snapshot
type ChangeSet struct {
	Modified []FileChange `json:"modified"`
	New      []FileChange `json:"new"`
}

// Empty reports whether nothing changed.
func (c ChangeSet) Empty() bool {
	return len(c.Modified) == 0 && len(c.New) == 0
}

// Len is the total number of changed files.
func (c ChangeSet) Len() int {
	return len(c.Modified) + len(c.New)
}
