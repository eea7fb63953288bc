package cache

// Detect computes the change set of current relative to previous.
// Files only present in previous are not reported. A nil previous is treated
// as empty, so every current file is new.
func Detect(current, previous *Snapshot) ChangeSet {
	cs := ChangeSet{Modified: []FileChange{}, New: []FileChange{}}
	if current == nil {
		return cs
	}
	var prevFiles map[string]SnapFile
	if previous != nil {
		prevFiles = previous.Files
	}
	// Paths() is sorted, so both lists come out ordered by path.
	for _, p := range current.Paths() {
		cf := current.Files[p]
		pf, ok := prevFiles[p]
		switch {
		case !ok:
			cs.New = append(cs.New, FileChange{Path: p, Content: cf.Content})
		case pf.Hash != cf.Hash:
			cs.Modified = append(cs.Modified, FileChange{Path: p, Content: cf.Content})
		}
	}
	return cs
}
