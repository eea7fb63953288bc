// Package diff turns two versions of a file into a line-numbered change
// record. Hunks come from the line matcher in
// github.com/pmezard/go-difflib/difflib with zero context lines; patches and
// stats are rendered with github.com/sourcegraph/go-diff.
package diff

import (
	difflib "github.com/pmezard/go-difflib/difflib"

	"docsync/internal/textutil"
)

// Kind tags one entry of a Record.
type Kind string

const (
	KindHeader      Kind = "context-header"
	KindDeleted     Kind = "deleted"
	KindModifiedOld Kind = "modified-old"
	KindModifiedNew Kind = "modified-new"
	KindAdded       Kind = "added"
)

// Range is a unified hunk range: Start is the 1-based first line, or the
// line before the hunk when Count is 0.
type Range struct {
	Start int `json:"start"`
	Count int `json:"count"`
}

// Entry is one tagged line of a Record.
//
// Line is the 1-based line number in the old version for deleted and
// modified-old entries, and in the new version for modified-new and added
// entries. Header entries leave Line and Text empty and carry the hunk ranges
// in Old and New instead.
type Entry struct {
	Kind Kind   `json:"kind"`
	Line int    `json:"line,omitempty"`
	Text string `json:"text,omitempty"`
	Old  Range  `json:"old,omitempty"`
	New  Range  `json:"new,omitempty"`
}

// Record is the ordered change log of one file.
type Record []Entry

// Describe compares oldLines with newLines and returns their change record.
//
// Within each hunk the deleted run is paired 1:1 with the inserted run:
// the first k lines of each (k being the shorter run) become adjacent
// modified-old/modified-new pairs, leftover old lines are deleted and
// leftover new lines are added. Identical inputs yield an empty record.
//
// Lines carry no terminators, so a change that only adds or removes the
// final newline also yields an empty record.
func Describe(oldLines, newLines []string) Record {
	rec := Record{}
	m := difflib.NewMatcher(oldLines, newLines)
	for _, group := range m.GetGroupedOpCodes(0) {
		first, last := group[0], group[len(group)-1]
		rec = append(rec, Entry{
			Kind: KindHeader,
			Old:  unifiedRange(first.I1, last.I2),
			New:  unifiedRange(first.J1, last.J2),
		})
		for _, op := range group {
			switch op.Tag {
			case 'r':
				rec = appendRun(rec, oldLines, newLines, op)
			case 'd':
				rec = appendLines(rec, KindDeleted, oldLines, op.I1, op.I2)
			case 'i':
				rec = appendLines(rec, KindAdded, newLines, op.J1, op.J2)
			}
		}
	}
	return rec
}

// DescribeText is Describe over the lines of two strings.
func DescribeText(oldText, newText string) Record {
	return Describe(textutil.SplitLines(oldText), textutil.SplitLines(newText))
}

func appendRun(rec Record, a, b []string, op difflib.OpCode) Record {
	pairs := min(op.I2-op.I1, op.J2-op.J1)
	for k := 0; k < pairs; k++ {
		i, j := op.I1+k, op.J1+k
		rec = append(rec,
			Entry{Kind: KindModifiedOld, Line: i + 1, Text: a[i]},
			Entry{Kind: KindModifiedNew, Line: j + 1, Text: b[j]},
		)
	}
	rec = appendLines(rec, KindDeleted, a, op.I1+pairs, op.I2)
	return appendLines(rec, KindAdded, b, op.J1+pairs, op.J2)
}

func appendLines(rec Record, kind Kind, lines []string, from, to int) Record {
	for i := from; i < to; i++ {
		rec = append(rec, Entry{Kind: kind, Line: i + 1, Text: lines[i]})
	}
	return rec
}

// unifiedRange mirrors the "start,count" convention of unified hunk markers.
func unifiedRange(start, stop int) Range {
	n := stop - start
	if n == 0 {
		return Range{Start: start, Count: 0}
	}
	return Range{Start: start + 1, Count: n}
}

// Empty reports whether the record holds no changes.
func (r Record) Empty() bool { return len(r) == 0 }

// Count returns the number of entries of the given kind.
func (r Record) Count(kind Kind) int {
	n := 0
	for _, e := range r {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Apply replays the record against oldLines and returns the new version.
// Old lines referenced by deleted and modified-old entries are dropped; the
// text of modified-new and added entries is inserted at its new line number.
func (r Record) Apply(oldLines []string) []string {
	drop := make(map[int]bool)
	insert := make(map[int]string)
	for _, e := range r {
		switch e.Kind {
		case KindDeleted, KindModifiedOld:
			drop[e.Line] = true
		case KindModifiedNew, KindAdded:
			insert[e.Line] = e.Text
		}
	}
	kept := make([]string, 0, len(oldLines))
	for i, ln := range oldLines {
		if !drop[i+1] {
			kept = append(kept, ln)
		}
	}
	// Unchanged lines keep their relative order and fill every slot that no
	// inserted line claims.
	total := len(kept) + len(insert)
	out := make([]string, 0, total)
	k := 0
	for n := 1; n <= total; n++ {
		if text, ok := insert[n]; ok {
			out = append(out, text)
			continue
		}
		if k < len(kept) {
			out = append(out, kept[k])
			k++
		}
	}
	return out
}
