// Package workflow ties the snapshot store, change detection, the oracle
// protocol and the section processor into the generate and update runs.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"docsync/internal/bundle"
	"docsync/internal/cache"
	"docsync/internal/config"
	"docsync/internal/locale"
	"docsync/internal/oracle"
	"docsync/internal/sections"
	"docsync/internal/validate"
	"docsync/internal/walkwalk"
)

// Runner executes documentation runs for one configuration. Runs of the same
// project must not overlap.
type Runner struct {
	Store    *cache.Store
	Oracle   *oracle.Client
	Sections []sections.Node
	Config   config.Config
	Logger   *slog.Logger
}

// Report summarizes one run.
type Report struct {
	Project   string
	Languages []string
	Files     int
	Modified  int
	New       int
	Pages     int
	// Outcome is the change aggregation outcome of an update run.
	Outcome bundle.Outcome
	// FullGeneration is set when the run regenerated from the whole codebase,
	// including an update that found no previous snapshot.
	FullGeneration bool
	UpToDate       bool
}

func (r *Runner) log() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Runner) check() error {
	if r.Store == nil {
		return errors.New("workflow: store is nil")
	}
	if r.Oracle == nil {
		return errors.New("workflow: oracle is nil")
	}
	return validate.SectionTree(r.Sections)
}

// Generate documents src from scratch: every section is requested against
// the full codebase, once per language in langs (default English).
func (r *Runner) Generate(ctx context.Context, src, project string, langs []string) (Report, error) {
	if err := r.check(); err != nil {
		return Report{}, err
	}
	codes, err := locale.Resolve(langs)
	if err != nil {
		return Report{}, err
	}
	snap, err := r.snapshotSource(ctx, src, codes)
	if err != nil {
		return Report{}, err
	}
	rep := Report{Project: project, Languages: codes, Files: len(snap.Files), New: len(snap.Files), FullGeneration: true}

	codebase, err := bundle.CodebaseDocument(snap, r.Config.LineBudget)
	if err != nil {
		return rep, fmt.Errorf("generate %s: %w", project, err)
	}
	r.Oracle.Reset()
	if err := r.Oracle.DefineFormat(ctx); err != nil {
		return rep, err
	}
	if err := r.Oracle.SendCodebase(ctx, codebase); err != nil {
		return rep, err
	}
	if rep.Pages, err = r.writeSections(ctx, project, codes, false); err != nil {
		return rep, err
	}
	if err := r.persist(ctx, project, snap); err != nil {
		return rep, err
	}
	r.log().Info("documentation generated", "project", project, "files", rep.Files, "pages", rep.Pages)
	return rep, nil
}

// Update regenerates the documentation of src from the changes since the
// last run. Without a previous snapshot it falls back to Generate with langs;
// otherwise the languages recorded in that snapshot are reused.
func (r *Runner) Update(ctx context.Context, src, project string, langs []string) (Report, error) {
	if err := r.check(); err != nil {
		return Report{}, err
	}
	log := r.log()
	found, err := r.Store.Exists(ctx, project, cache.Codebase)
	if err != nil {
		return Report{}, err
	}
	if !found {
		log.Warn("no previous codebase snapshot; running full generation instead", "project", project)
		return r.Generate(ctx, src, project, langs)
	}
	prev, err := r.Store.Load(ctx, project, cache.Codebase)
	if err != nil {
		return Report{}, err
	}
	codes, err := r.updateLanguages(prev.Languages, langs)
	if err != nil {
		return Report{}, err
	}

	current, err := r.snapshotSource(ctx, src, codes)
	if err != nil {
		return Report{}, err
	}
	cs := cache.Detect(current, prev)
	rep := Report{Project: project, Languages: codes, Files: len(current.Files), Modified: len(cs.Modified), New: len(cs.New)}
	if cs.Empty() {
		log.Info("documentation is up to date", "project", project)
		rep.Outcome = bundle.OutcomeEmpty
		rep.UpToDate = true
		return rep, r.persist(ctx, project, current)
	}
	log.Info("changes detected", "project", project, "modified", rep.Modified, "new", rep.New)

	r.Oracle.Reset()
	if err := r.Oracle.DefineFormat(ctx); err != nil {
		return rep, err
	}
	hasPrior, err := r.sendExistingDocs(ctx, project)
	if err != nil {
		return rep, err
	}
	agg := bundle.Aggregator{Budget: r.Config.LineBudget, Previous: prev, Project: project, Logger: log}
	res := agg.Aggregate(cs, hasPrior)
	rep.Outcome = res.Outcome
	switch res.Outcome {
	case bundle.OutcomeReady:
		if _, err := r.Oracle.SubmitChangeDocument(ctx, res.Document); err != nil {
			return rep, err
		}
	case bundle.OutcomeNoPriorContext:
		if err := r.sendCodebaseFallback(ctx, current); err != nil {
			return rep, err
		}
	case bundle.OutcomeTooLarge:
		log.Warn("change document dropped; sections are regenerated from existing documentation only",
			"lines", res.Lines, "budget", r.Config.LineBudget)
	}

	if rep.Pages, err = r.writeSections(ctx, project, codes, true); err != nil {
		return rep, err
	}
	if err := r.persist(ctx, project, current); err != nil {
		return rep, err
	}
	log.Info("documentation updated", "project", project, "pages", rep.Pages, "outcome", res.Outcome)
	return rep, nil
}

// updateLanguages normalizes the languages stored with the last snapshot,
// which may be codes or labels. langs applies when none are stored or the
// stored ones cannot be resolved.
func (r *Runner) updateLanguages(stored, langs []string) ([]string, error) {
	if len(stored) > 0 {
		codes, err := locale.Resolve(stored)
		if err == nil {
			return codes, nil
		}
		r.log().Warn("stored languages not recognized; using requested languages", "stored", stored, "err", err)
	}
	return locale.Resolve(langs)
}

// Changes previews the change document of src against the last codebase
// snapshot without contacting the oracle or persisting anything. A missing
// snapshot reports every file as new.
func (r *Runner) Changes(ctx context.Context, src, project string) (bundle.Result, error) {
	if r.Store == nil {
		return bundle.Result{}, errors.New("workflow: store is nil")
	}
	prev, err := r.Store.Load(ctx, project, cache.Codebase)
	if err != nil {
		return bundle.Result{}, err
	}
	current, err := r.snapshotSource(ctx, src, prev.Languages)
	if err != nil {
		return bundle.Result{}, err
	}
	agg := bundle.Aggregator{Budget: r.Config.LineBudget, Previous: prev, Project: project, Logger: r.log()}
	return agg.Aggregate(cache.Detect(current, prev), true), nil
}

func (r *Runner) snapshotSource(ctx context.Context, src string, codes []string) (*cache.Snapshot, error) {
	return cache.Create(ctx, src, cache.CreateOptions{
		Walk:           r.Config.Walk(),
		Languages:      codes,
		SkipUnreadable: r.Config.SkipUnreadable,
		Logger:         r.log(),
	})
}

// sendExistingDocs uploads the stored documentation snapshot and reports
// whether the oracle now holds prior documentation context.
func (r *Runner) sendExistingDocs(ctx context.Context, project string) (bool, error) {
	log := r.log()
	docs, err := r.Store.Load(ctx, project, cache.Documentation)
	if err != nil {
		return false, err
	}
	doc, err := bundle.ExistingDocs(docs, r.Config.LineBudget)
	if errors.Is(err, bundle.ErrBudgetExceeded) {
		log.Warn("existing documentation exceeds line budget; not sent", "err", err)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if doc == "" {
		log.Warn("no documentation snapshot for project", "project", project)
		return false, nil
	}
	if err := r.Oracle.SendExistingDocs(ctx, project, doc); err != nil {
		return false, err
	}
	return true, nil
}

// sendCodebaseFallback gives the oracle the whole codebase when no change
// document could be built on prior documentation.
func (r *Runner) sendCodebaseFallback(ctx context.Context, snap *cache.Snapshot) error {
	codebase, err := bundle.CodebaseDocument(snap, r.Config.LineBudget)
	if errors.Is(err, bundle.ErrBudgetExceeded) {
		r.log().Warn("codebase exceeds line budget; sections are regenerated without context", "err", err)
		return nil
	}
	if err != nil {
		return err
	}
	return r.Oracle.SendCodebase(ctx, codebase)
}

func (r *Runner) writeSections(ctx context.Context, project string, codes []string, update bool) (int, error) {
	pages := 0
	for _, t := range locale.Targets(r.Config.DocsRoot(project), project, codes) {
		hint := t.Hint
		p := sections.Processor{
			Logger: r.log(),
			Emit: func(ctx context.Context, title, description, _ string) (string, error) {
				return r.Oracle.RequestSection(ctx, title, description, hint, update)
			},
		}
		st, err := p.Process(ctx, r.Sections, t.Dir, t.Code)
		pages += st.Pages
		if err != nil {
			return pages, fmt.Errorf("sections for %s: %w", t.Code, err)
		}
		r.log().Info("sections written", "locale", t.Code, "dir", t.Dir, "pages", st.Pages)
	}
	return pages, nil
}

// persist validates and stores the codebase snapshot together with a fresh
// snapshot of the generated documentation tree.
func (r *Runner) persist(ctx context.Context, project string, snap *cache.Snapshot) error {
	if err := validate.Snapshot(snap); err != nil {
		return err
	}
	docs, err := r.snapshotDocs(ctx, project, snap.Languages)
	if err != nil {
		return err
	}
	if err := validate.Snapshot(docs); err != nil {
		return err
	}
	if err := r.Store.Persist(ctx, snap, project, cache.Codebase); err != nil {
		return err
	}
	return r.Store.Persist(ctx, docs, project, cache.Documentation)
}

// snapshotDocs captures the markdown pages under the documentation root. A
// root that does not exist yet yields an empty snapshot.
func (r *Runner) snapshotDocs(ctx context.Context, project string, codes []string) (*cache.Snapshot, error) {
	root := r.Config.DocsRoot(project)
	if !dirExists(root) {
		snap := cache.NewSnapshot()
		snap.Languages = append([]string(nil), codes...)
		return snap, nil
	}
	return cache.Create(ctx, root, cache.CreateOptions{
		Walk: walkwalk.Options{
			Skip:    walkwalk.SkipRules{Dirs: r.Config.Skip.Dirs},
			Include: []string{"*.md"},
		},
		Languages:      codes,
		SkipUnreadable: true,
		Logger:         r.log(),
	})
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
