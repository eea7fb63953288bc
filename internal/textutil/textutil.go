// Package textutil holds the small line-oriented helpers shared by the diff
// and bundle packages.
package textutil

import "strings"

// SplitLines splits s into lines without their terminators. A trailing "\n"
// does not produce an empty final element, so "a\nb\n" and "a\nb" both yield
// two lines. An empty string yields no lines.
func SplitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// CountNewlines returns the number of '\n' bytes in s.
func CountNewlines(s string) int {
	return strings.Count(s, "\n")
}

// EnsureTrailingLF appends a single \n if not already present.
func EnsureTrailingLF(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
