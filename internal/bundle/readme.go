package bundle

import (
	"bytes"
	"strings"
	"text/template"
)

// ReadmeOptions configures the README of a change archive.
// All fields are rendered deterministically; no timestamps or environment data.
type ReadmeOptions struct {
	Project  string
	Outcome  Outcome
	Lines    int
	Budget   int
	Modified int
	New      int
}

type rdCtx struct {
	Project  string
	Outcome  string
	Ready    bool
	Lines    int
	Budget   int
	Modified int
	New      int
}

const archiveReadmeTemplate = `
# {{.Project}}: pending documentation changes

This archive previews the change document that an update run would send for
**{{.Project}}**: {{.Modified}} modified and {{.New}} new file(s).

## Layout
- **change.md** - the change document{{if not .Ready}}; here only a note, the outcome is *{{.Outcome}}*{{end}}.
- **index.json** - per-file status, diff stats and patch name.
- **patches/** - one unified patch per changed file; new files diff against ` + "`/dev/null`" + `.

## Budget
The document holds **{{.Lines}}** of at most **{{.Budget}}** lines.
{{- if not .Ready}}
A document over budget is dropped as a whole, never truncated.
{{- end}}

## Conventions
- Encoding: **UTF-8**; newlines: **\n** only.
- Line numbers are **1-based**; patches carry no context lines.
- Deleted files are not listed.
`

var archiveReadme = template.Must(template.New("readme").Parse(archiveReadmeTemplate))

// ArchiveReadme renders README.md for a change archive.
func ArchiveReadme(opts ReadmeOptions) []byte {
	name := strings.TrimSpace(opts.Project)
	if name == "" {
		name = "project"
	}
	budget := opts.Budget
	if budget <= 0 {
		budget = DefaultLineBudget
	}
	ctx := rdCtx{
		Project:  name,
		Outcome:  opts.Outcome.String(),
		Ready:    opts.Outcome == OutcomeReady,
		Lines:    opts.Lines,
		Budget:   budget,
		Modified: opts.Modified,
		New:      opts.New,
	}

	var buf bytes.Buffer
	_ = archiveReadme.Execute(&buf, ctx)
	// Normalize lines: strip trailing spaces and ensure a single final \n.
	lines := strings.Split(strings.TrimLeft(buf.String(), "\n"), "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimRight(ln, " \t")
	}
	out := strings.TrimRight(strings.Join(lines, "\n"), "\n") + "\n"
	return []byte(out)
}
