// Package main provides the docsync CLI. It keeps a project's generated
// documentation in sync with its source tree.
//
// Commands:
//   - generate : docsync generate <src_dir> [--project NAME] [--lang en,de]
//   - update   : docsync update <src_dir> [--project NAME]
//   - changes  : docsync changes <src_dir> [--project NAME] [--archive out.zip]
//
// Settings come from an optional YAML file (--config), a .env file and the
// environment; see internal/config.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"docsync/internal/bundle"
	"docsync/internal/config"
	"docsync/internal/meta"
	"docsync/internal/oracle"
	"docsync/internal/sections"
	"docsync/internal/workflow"
)

type options struct {
	configPath   string
	project      string
	sectionsFile string
	langs        []string
	fakeOracle   bool
	archive      string
	verbose      bool
	logFormat    string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "docsync",
		Short:         "Generate and update project documentation from source code",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	pf.StringVarP(&opts.project, "project", "p", "", "project name (default: detected from build files)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&opts.logFormat, "log-format", "auto", "log format: auto, text or json (auto: text on a terminal)")

	generateCmd := &cobra.Command{
		Use:   "generate <src_dir>",
		Short: "Generate the documentation of a project from its whole codebase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, opts, args[0], false)
		},
	}
	updateCmd := &cobra.Command{
		Use:   "update <src_dir>",
		Short: "Regenerate the documentation from the changes since the last run",
		Long: `Detects the files changed since the last generate or update, sends them
as a change document and regenerates every section. Without a previous run
it performs a full generation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, opts, args[0], true)
		},
	}
	for _, c := range []*cobra.Command{generateCmd, updateCmd} {
		c.Flags().StringSliceVar(&opts.langs, "lang", nil, "documentation languages, codes or labels (default en)")
		c.Flags().StringVar(&opts.sectionsFile, "sections", "", "section tree file (overrides sections_file)")
		c.Flags().BoolVar(&opts.fakeOracle, "fake-oracle", false, "answer every request offline with a placeholder page")
	}

	changesCmd := &cobra.Command{
		Use:   "changes <src_dir>",
		Short: "Preview the change document without contacting the oracle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChanges(cmd, opts, args[0])
		},
	}
	changesCmd.Flags().StringVar(&opts.archive, "archive", "", "also write a ZIP with the document, an index and per-file patches")

	root.AddCommand(generateCmd, updateCmd, changesCmd)
	return root
}

func newLogger(w io.Writer, format string, verbose bool) (*slog.Logger, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}
	switch format {
	case "text":
	case "json":
		return slog.New(slog.NewJSONHandler(w, hopts)), nil
	case "auto", "":
		if f, ok := w.(*os.File); ok && !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
			return slog.New(slog.NewJSONHandler(w, hopts)), nil
		}
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return slog.New(slog.NewTextHandler(w, hopts)), nil
}

// prepare loads the configuration and opens the snapshot store shared by
// every command.
func prepare(cmd *cobra.Command, opts *options, src string) (*workflow.Runner, func() error, string, error) {
	log, err := newLogger(cmd.ErrOrStderr(), opts.logFormat, opts.verbose)
	if err != nil {
		return nil, nil, "", err
	}
	log = log.With("run", uuid.NewString())
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, "", err
	}
	if st, err := os.Stat(src); err != nil {
		return nil, nil, "", err
	} else if !st.IsDir() {
		return nil, nil, "", fmt.Errorf("%s is not a directory", src)
	}
	project := strings.TrimSpace(opts.project)
	if project == "" {
		p := meta.Detect(src)
		if p.Name == "" {
			return nil, nil, "", fmt.Errorf("cannot infer a project name for %s; use --project", src)
		}
		project = p.Name
		log.Info("project name detected", "project", project, "build", p.Build)
	}
	store, closeStore, err := config.OpenStore(cmd.Context(), cfg, log)
	if err != nil {
		return nil, nil, "", err
	}
	return &workflow.Runner{Store: store, Config: cfg, Logger: log}, closeStore, project, nil
}

func runSync(cmd *cobra.Command, opts *options, srcArg string, update bool) error {
	src := filepath.Clean(srcArg)
	r, closeStore, project, err := prepare(cmd, opts, src)
	if err != nil {
		return err
	}
	defer closeStore()

	sectionsFile := r.Config.SectionsFile
	if opts.sectionsFile != "" {
		sectionsFile = opts.sectionsFile
	}
	if r.Sections, err = sections.Load(sectionsFile); err != nil {
		return err
	}

	var session oracle.Session
	if opts.fakeOracle {
		session = &oracle.Fake{}
	} else {
		g, err := oracle.NewGeminiSession(cmd.Context(), r.Config.Gemini())
		if err != nil {
			return err
		}
		session = g
	}
	r.Oracle = oracle.NewClient(oracle.Throttled(session, r.Config.Oracle.RequestsPerMinute), r.Logger)

	var rep workflow.Report
	if update {
		rep, err = r.Update(cmd.Context(), src, project, opts.langs)
	} else {
		rep, err = r.Generate(cmd.Context(), src, project, opts.langs)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case rep.UpToDate:
		fmt.Fprintf(out, "Documentation for %s is up to date (%d files)\n", project, rep.Files)
	case rep.FullGeneration:
		fmt.Fprintf(out, "Wrote %d pages for %s [%s] from %d files into %s\n",
			rep.Pages, project, strings.Join(rep.Languages, ","), rep.Files, r.Config.DocsRoot(project))
	default:
		fmt.Fprintf(out, "Updated %d pages for %s [%s]: %d modified, %d new, change document %s\n",
			rep.Pages, project, strings.Join(rep.Languages, ","), rep.Modified, rep.New, rep.Outcome)
	}
	return nil
}

func runChanges(cmd *cobra.Command, opts *options, srcArg string) error {
	src := filepath.Clean(srcArg)
	r, closeStore, project, err := prepare(cmd, opts, src)
	if err != nil {
		return err
	}
	defer closeStore()

	res, err := r.Changes(cmd.Context(), src, project)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch res.Outcome {
	case bundle.OutcomeReady:
		fmt.Fprint(out, res.Document)
	case bundle.OutcomeEmpty:
		fmt.Fprintf(out, "No changes for %s\n", project)
	default:
		fmt.Fprintf(out, "Change document for %s is %s: %d lines, budget %d\n",
			project, res.Outcome, res.Lines, r.Config.LineBudget)
	}
	if opts.archive != "" {
		if err := bundle.WriteChangeArchive(opts.archive, project, r.Config.LineBudget, res); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d files)\n", opts.archive, len(res.Blocks))
	}
	return nil
}
