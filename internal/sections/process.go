package sections

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// EmitFunc produces the page content for one leaf section.
type EmitFunc func(ctx context.Context, title, description, locale string) (string, error)

// Processor writes a section tree to disk, one page per leaf.
type Processor struct {
	Emit   EmitFunc
	Logger *slog.Logger
}

// Stats counts what a Process call wrote.
type Stats struct {
	Pages int
	Dirs  int
}

// Process walks tree depth-first under outputDir. Every key at one level takes
// the next sibling index starting at 1, whether it becomes a page or a
// directory. Leaves call Emit exactly once and their content is written
// verbatim to "<i>- <title>.md", replacing any existing file. Internal nodes
// become "<i>- <title>/" and restart numbering at 1 inside.
func (p *Processor) Process(ctx context.Context, tree []Node, outputDir, locale string) (Stats, error) {
	if p.Emit == nil {
		return Stats{}, errors.New("sections: Emit is nil")
	}
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}
	var st Stats
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return st, err
	}
	err := p.walk(ctx, log, tree, outputDir, locale, &st)
	return st, err
}

func (p *Processor) walk(ctx context.Context, log *slog.Logger, nodes []Node, dir, locale string, st *Stats) error {
	for i, n := range nodes {
		if err := ctx.Err(); err != nil {
			return err
		}
		index := i + 1
		if !n.IsLeaf() {
			sub := filepath.Join(dir, DirName(index, n.Title))
			if err := os.MkdirAll(sub, 0o755); err != nil {
				return err
			}
			st.Dirs++
			if err := p.walk(ctx, log, n.Children, sub, locale, st); err != nil {
				return err
			}
			continue
		}
		content, err := p.Emit(ctx, n.Title, n.Description, locale)
		if err != nil {
			return fmt.Errorf("section %q: %w", n.Title, err)
		}
		page := filepath.Join(dir, FileName(index, n.Title))
		if err := os.WriteFile(page, []byte(content), 0o644); err != nil {
			return err
		}
		st.Pages++
		log.Debug("section written", "path", page)
	}
	return nil
}
