package diff

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsync/internal/textutil"
)

func TestDescribeIdenticalIsEmpty(t *testing.T) {
	for _, text := range []string{"", "a\n", "a\nb\nc\n", "no trailing newline"} {
		rec := DescribeText(text, text)
		assert.True(t, rec.Empty(), "text %q", text)
		assert.Equal(t, "", rec.Format())
	}
}

func TestDescribeAppendedLine(t *testing.T) {
	rec := DescribeText("hello\n", "hello\nworld\n")

	require.Len(t, rec, 2)
	assert.Equal(t, KindHeader, rec[0].Kind)
	assert.Equal(t, Entry{Kind: KindAdded, Line: 2, Text: "world"}, rec[1])
	assert.Equal(t, 1, rec.Count(KindAdded))
	assert.Equal(t, 0, rec.Count(KindDeleted))
	assert.Equal(t, 0, rec.Count(KindModifiedOld))
	assert.Equal(t, "Change Context: @@ -1,0 +2 @@\nAdded - New Line 2: world", rec.Format())
}

func TestDescribeNewFileIsAllAdded(t *testing.T) {
	rec := Describe(nil, []string{"a", "b", "c"})
	assert.Equal(t, 3, rec.Count(KindAdded))
	assert.Equal(t, 0, rec.Count(KindModifiedNew))
	assert.Equal(t, "@@ -0,0 +1,3 @@", rec[0].HunkMarker())
}

func TestDescribeSubstitutionPairsAdjacent(t *testing.T) {
	rec := Describe([]string{"a", "b", "c"}, []string{"a", "B", "c"})
	require.Len(t, rec, 3)
	assert.Equal(t, Entry{Kind: KindModifiedOld, Line: 2, Text: "b"}, rec[1])
	assert.Equal(t, Entry{Kind: KindModifiedNew, Line: 2, Text: "B"}, rec[2])
}

func TestDescribeUnevenRuns(t *testing.T) {
	rec := Describe([]string{"x", "old1", "old2", "old3", "y"}, []string{"x", "new1", "y"})
	kinds := make([]Kind, 0, len(rec))
	for _, e := range rec {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []Kind{KindHeader, KindModifiedOld, KindModifiedNew, KindDeleted, KindDeleted}, kinds)
	assert.Equal(t, 3, rec[3].Line)
	assert.Equal(t, 4, rec[4].Line)

	rec = Describe([]string{"x", "y"}, []string{"x", "n1", "n2", "y"})
	assert.Equal(t, 2, rec.Count(KindAdded))
	assert.Equal(t, 0, rec.Count(KindModifiedOld))
}

func TestFormatAllKinds(t *testing.T) {
	rec := Describe([]string{"keep", "  before ", "gone", "tail"}, []string{"keep", "after", "tail", "fresh"})
	out := rec.Format()
	assert.Contains(t, out, "Modified - Old Line 2: before")
	assert.Contains(t, out, "Modified - New Line 2: after")
	assert.Contains(t, out, "Deleted - Old Line 3: gone")
	assert.Contains(t, out, "Added - New Line 4: fresh")
	assert.True(t, strings.HasPrefix(out, "Change Context: @@ -2,2 +2 @@"))
}

var roundTripCases = []struct{ old, new string }{
	{"", ""},
	{"", "a\nb\n"},
	{"a\nb\n", ""},
	{"hello\n", "hello\nworld\n"},
	{"a\nb\nc\nd\ne\n", "a\nB\nc\ne\nf\ng\n"},
	{"1\n2\n3\n4\n5\n6\n7\n8\n", "0\n1\n3\n4\nx\ny\nz\n8\n9\n"},
	{"same\nsame\nsame\n", "same\nother\nsame\nsame\n"},
	{"func a() {\n}\n\nfunc b() {\n}\n", "func b() {\n}\n\nfunc a() {\n\treturn\n}\n"},
}

func TestRecordReplaysToNewVersion(t *testing.T) {
	for i, tc := range roundTripCases {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			oldLines := textutil.SplitLines(tc.old)
			newLines := textutil.SplitLines(tc.new)
			rec := Describe(oldLines, newLines)
			assert.Equal(t, newLines, rec.Apply(oldLines))
		})
	}
}

func TestLineNumbersNonDecreasingPerVersion(t *testing.T) {
	for i, tc := range roundTripCases {
		rec := DescribeText(tc.old, tc.new)
		lastOld, lastNew := 0, 0
		for k, e := range rec {
			switch e.Kind {
			case KindDeleted, KindModifiedOld:
				assert.GreaterOrEqual(t, e.Line, lastOld, "case %d entry %d", i, k)
				lastOld = e.Line
			case KindAdded, KindModifiedNew:
				assert.GreaterOrEqual(t, e.Line, lastNew, "case %d entry %d", i, k)
				lastNew = e.Line
			}
			if e.Kind == KindModifiedOld {
				require.Less(t, k+1, len(rec))
				assert.Equal(t, KindModifiedNew, rec[k+1].Kind)
			}
		}
	}
}

func TestPatchAndStat(t *testing.T) {
	rec := Describe([]string{"a", "b", "c"}, []string{"a", "B", "c", "d"})
	patch, err := rec.Patch("a/x.go", "b/x.go")
	require.NoError(t, err)
	assert.Equal(t, "--- a/x.go\n+++ b/x.go\n@@ -2,1 +2,1 @@\n-b\n+B\n@@ -3,0 +4,1 @@\n+d\n", string(patch))

	st := rec.Stat()
	assert.EqualValues(t, 1, st.Changed)
	assert.EqualValues(t, 1, st.Added)
	assert.EqualValues(t, 0, st.Deleted)

	empty, err := Record{}.Patch("a", "b")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
