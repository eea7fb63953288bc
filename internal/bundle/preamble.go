// Package bundle assembles the documents handed to the oracle: the full
// codebase dump, the existing documentation, and the budget-bounded change
// document built from per-file diff records. It also writes the optional
// change archive.
package bundle

import (
	"bytes"
	"strings"
	"text/template"
)

type preambleCtx struct {
	Project string
}

const changePreambleTemplate = `Please review the following changes between the old and new versions of the files in the codebase{{if .Project}} of the project '{{.Project}}'{{end}}. Each change is shown with the original line number and content, followed by the new line number and content.

Format:
Change Context: @@ -<old start>,<old count> +<new start>,<new count> @@
Modified - Old Line <line_number>: <original content>
Modified - New Line <line_number>: <new content>

Types of Changes:
- 'Modified': A line that existed in the old version but has been changed.
- 'Deleted': A line that existed in the old version and has been removed.
- 'Added': A completely new line that did not exist in the old version.

Changes:
`

var changePreamble = template.Must(template.New("preamble").Parse(changePreambleTemplate))

// ChangePreamble renders the fixed explanation that opens every change
// document. The result ends with a single newline.
func ChangePreamble(project string) string {
	var buf bytes.Buffer
	_ = changePreamble.Execute(&buf, preambleCtx{Project: strings.TrimSpace(project)})
	lines := strings.Split(buf.String(), "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimRight(ln, " \t")
	}
	out := strings.Join(lines, "\n")
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}
