package diff

import (
	"bytes"

	godiff "github.com/sourcegraph/go-diff/diff"
)

// Hunks converts the record into go-diff hunks. Paired modified lines stay
// adjacent in the body, so a hunk's Stat counts them as changed lines.
func (r Record) Hunks() []*godiff.Hunk {
	var (
		hunks []*godiff.Hunk
		cur   *godiff.Hunk
		body  bytes.Buffer
	)
	flush := func() {
		if cur != nil {
			cur.Body = append([]byte(nil), body.Bytes()...)
			hunks = append(hunks, cur)
		}
		body.Reset()
	}
	for _, e := range r {
		switch e.Kind {
		case KindHeader:
			flush()
			cur = &godiff.Hunk{
				OrigStartLine: int32(e.Old.Start),
				OrigLines:     int32(e.Old.Count),
				NewStartLine:  int32(e.New.Start),
				NewLines:      int32(e.New.Count),
			}
		case KindDeleted, KindModifiedOld:
			body.WriteString("-" + e.Text + "\n")
		case KindModifiedNew, KindAdded:
			body.WriteString("+" + e.Text + "\n")
		}
	}
	flush()
	return hunks
}

// Patch renders the record as a unified patch between oldName and newName.
// An empty record yields an empty patch.
func (r Record) Patch(oldName, newName string) ([]byte, error) {
	if r.Empty() {
		return nil, nil
	}
	return godiff.PrintFileDiff(&godiff.FileDiff{
		OrigName: oldName,
		NewName:  newName,
		Hunks:    r.Hunks(),
	})
}

// Stat summarizes the record as added/changed/deleted line counts.
func (r Record) Stat() godiff.Stat {
	fd := godiff.FileDiff{Hunks: r.Hunks()}
	return fd.Stat()
}
