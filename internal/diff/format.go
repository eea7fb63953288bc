package diff

import (
	"fmt"
	"strings"
)

// Format renders the record as the plain-text change log handed to the
// oracle, one entry per line:
//
//	Change Context: @@ -3,2 +3,3 @@
//	Modified - Old Line 3: before
//	Modified - New Line 3: after
//	Deleted - Old Line 4: gone
//	Added - New Line 5: fresh
//
// Line text is trimmed of surrounding whitespace. There is no trailing
// newline; an empty record formats to "".
func (r Record) Format() string {
	var b strings.Builder
	for i, e := range r {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch e.Kind {
		case KindHeader:
			fmt.Fprintf(&b, "Change Context: %s", e.HunkMarker())
		case KindModifiedOld:
			fmt.Fprintf(&b, "Modified - Old Line %d: %s", e.Line, strings.TrimSpace(e.Text))
		case KindModifiedNew:
			fmt.Fprintf(&b, "Modified - New Line %d: %s", e.Line, strings.TrimSpace(e.Text))
		case KindDeleted:
			fmt.Fprintf(&b, "Deleted - Old Line %d: %s", e.Line, strings.TrimSpace(e.Text))
		case KindAdded:
			fmt.Fprintf(&b, "Added - New Line %d: %s", e.Line, strings.TrimSpace(e.Text))
		}
	}
	return b.String()
}

// HunkMarker renders a header entry as "@@ -a,b +c,d @@", dropping a count
// of 1 the way unified diffs do.
func (e Entry) HunkMarker() string {
	return fmt.Sprintf("@@ -%s +%s @@", formatRange(e.Old), formatRange(e.New))
}

func formatRange(r Range) string {
	if r.Count == 1 {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d,%d", r.Start, r.Count)
}
