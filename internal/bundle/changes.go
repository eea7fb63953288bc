package bundle

import (
	"log/slog"
	"strings"

	"docsync/internal/cache"
	"docsync/internal/diff"
	"docsync/internal/textutil"
)

// DefaultLineBudget is the largest number of newlines any single document
// handed to the oracle may contain.
const DefaultLineBudget = 29000

// Outcome says what Aggregate produced.
type Outcome int

const (
	// OutcomeReady: Document holds the complete change document.
	OutcomeReady Outcome = iota
	// OutcomeEmpty: the change set was empty; nothing to send.
	OutcomeEmpty
	// OutcomeNoPriorContext: the oracle has no prior full context, so no
	// delta is built and regeneration runs on whatever it already knows.
	OutcomeNoPriorContext
	// OutcomeTooLarge: the document crossed the line budget and was
	// abandoned; the oracle falls back to the context it already holds.
	OutcomeTooLarge
)

func (o Outcome) String() string {
	switch o {
	case OutcomeReady:
		return "ready"
	case OutcomeEmpty:
		return "empty"
	case OutcomeNoPriorContext:
		return "no-prior-context"
	case OutcomeTooLarge:
		return "too-large"
	default:
		return "unknown"
	}
}

// Status of a file inside a change document.
const (
	StatusModified = "modified"
	StatusNew      = "new"
)

// FileBlock is one file's contribution to a change document.
type FileBlock struct {
	Path    string
	Status  string
	Content string
	Record  diff.Record
}

// Result is the outcome of one aggregation.
type Result struct {
	Outcome  Outcome
	Document string
	// Lines is the newline count of Document, or of the partial document at
	// the moment the budget was crossed.
	Lines int
	// Blocks lists every changed file with its record. It is kept when the
	// document is abandoned so callers can still report per-file stats.
	Blocks []FileBlock
}

// Aggregator builds change documents bounded by Budget newlines.
type Aggregator struct {
	// Budget is the newline ceiling (DefaultLineBudget when <= 0).
	Budget int
	// Previous supplies the old content of modified files.
	Previous *cache.Snapshot
	Project  string
	Logger   *slog.Logger
}

func (a *Aggregator) budget() int {
	if a.Budget <= 0 {
		return DefaultLineBudget
	}
	return a.Budget
}

func (a *Aggregator) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

func (a *Aggregator) oldContent(path string) string {
	if a.Previous == nil {
		return ""
	}
	return a.Previous.Files[path].Content
}

// Aggregate concatenates the preamble and one block per changed file,
// modified files first, then new files. The budget is checked after every
// block; crossing it abandons the whole document rather than truncating it.
// A modified file whose only change is its final newline keeps its block
// with the full new content and an empty change list.
func (a *Aggregator) Aggregate(cs cache.ChangeSet, hasPriorContext bool) Result {
	log := a.logger()
	if cs.Empty() {
		return Result{Outcome: OutcomeEmpty}
	}
	if !hasPriorContext {
		log.Warn("no prior documentation context; skipping change document", "files", cs.Len())
		return Result{Outcome: OutcomeNoPriorContext}
	}

	limit := a.budget()
	var doc strings.Builder
	doc.WriteString(ChangePreamble(a.Project))
	lines := textutil.CountNewlines(doc.String())
	if lines > limit {
		log.Warn("change preamble alone exceeds line budget", "lines", lines, "budget", limit)
		return Result{Outcome: OutcomeTooLarge, Lines: lines}
	}

	blocks := make([]FileBlock, 0, cs.Len())
	for _, fc := range cs.Modified {
		blocks = append(blocks, FileBlock{Path: fc.Path, Status: StatusModified, Content: fc.Content,
			Record: diff.DescribeText(a.oldContent(fc.Path), fc.Content)})
	}
	for _, fc := range cs.New {
		blocks = append(blocks, FileBlock{Path: fc.Path, Status: StatusNew, Content: fc.Content,
			Record: diff.DescribeText("", fc.Content)})
	}

	for _, b := range blocks {
		block := renderBlock(b)
		lines += textutil.CountNewlines(block)
		if lines > limit {
			log.Warn("change document exceeds line budget; relying on prior context",
				"path", b.Path, "lines", lines, "budget", limit)
			return Result{Outcome: OutcomeTooLarge, Lines: lines, Blocks: blocks}
		}
		doc.WriteString(block)
	}
	log.Info("change document ready", "files", len(blocks), "lines", lines)
	return Result{Outcome: OutcomeReady, Document: doc.String(), Lines: lines, Blocks: blocks}
}

func renderBlock(b FileBlock) string {
	var sb strings.Builder
	sb.WriteString("File: " + b.Path + "\n")
	sb.WriteString("New Content:\n" + b.Content + "\n")
	sb.WriteString("Changes:\n" + b.Record.Format() + "\n\n")
	return sb.String()
}
