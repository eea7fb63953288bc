package sections

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	illegalNameRe = regexp.MustCompile(`[<>:"/\\|?*]`)
	spaceRunRe    = regexp.MustCompile(`\s{2,}`)
)

// Sanitize makes a section title usable as a file or directory name: path
// separators and characters illegal on common filesystems are removed, runs
// of whitespace collapse to one space, and the ends are trimmed.
func Sanitize(title string) string {
	s := illegalNameRe.ReplaceAllString(title, "")
	s = spaceRunRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// DirName is the directory name of the index-th sibling titled title.
func DirName(index int, title string) string {
	return strconv.Itoa(index) + "- " + Sanitize(title)
}

// FileName is the page name of the index-th sibling titled title.
func FileName(index int, title string) string {
	return DirName(index, title) + ".md"
}
