package main

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type env struct {
	dir, src, config string
}

func setup(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	e := env{dir: dir, src: filepath.Join(dir, "src"), config: filepath.Join(dir, "docsync.yaml")}
	mustWrite(t, filepath.Join(e.src, "a.txt"), "hello\n")
	mustWrite(t, filepath.Join(dir, "sections.json"), `{"Intro": "desc1", "Guides": {"Setup": "desc2"}}`)
	cfg := "output_dir: " + filepath.ToSlash(filepath.Join(dir, "site", "{project}")) + "\n" +
		"sections_file: " + filepath.ToSlash(filepath.Join(dir, "sections.json")) + "\n" +
		"store:\n  backend: file\n  dir: " + filepath.ToSlash(filepath.Join(dir, "snapshots")) + "\n"
	mustWrite(t, e.config, cfg)
	t.Setenv("DOCSYNC_STORE_BACKEND", "")
	t.Setenv("DOCSYNC_OUTPUT_DIR", "")
	t.Setenv("DOCSYNC_SNAPSHOT_DIR", "")
	t.Setenv("DOCSYNC_SECTIONS_FILE", "")
	t.Setenv("DOCSYNC_LINE_BUDGET", "")
	return e
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestGenerateThenUpdate(t *testing.T) {
	e := setup(t)
	out, _, err := run(t, "generate", e.src, "--project", "demo", "--config", e.config, "--fake-oracle")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(out, "Wrote 2 pages for demo [en]") {
		t.Fatalf("unexpected output %q", out)
	}
	page := filepath.Join(e.dir, "site", "demo", "2- Guides", "1- Setup.md")
	if _, err := os.Stat(page); err != nil {
		t.Fatalf("missing page: %v", err)
	}

	out, _, err = run(t, "update", e.src, "-p", "demo", "--config", e.config, "--fake-oracle")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !strings.Contains(out, "is up to date") {
		t.Fatalf("expected up to date, got %q", out)
	}

	mustWrite(t, filepath.Join(e.src, "a.txt"), "hello\nworld\n")
	out, _, err = run(t, "update", e.src, "-p", "demo", "--config", e.config, "--fake-oracle")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !strings.Contains(out, "1 modified, 0 new, change document ready") {
		t.Fatalf("unexpected update output %q", out)
	}
}

func TestChangesPreviewAndArchive(t *testing.T) {
	e := setup(t)
	archive := filepath.Join(e.dir, "changes.zip")
	out, _, err := run(t, "changes", e.src, "--project", "demo", "--config", e.config, "--archive", archive)
	if err != nil {
		t.Fatalf("changes: %v", err)
	}
	if !strings.Contains(out, "File: a.txt\nNew Content:\nhello\n") {
		t.Fatalf("unexpected document %q", out)
	}
	zr, err := zip.OpenReader(archive)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{"index.json", "change.md"} {
		if !names[want] {
			t.Fatalf("archive lacks %s: %v", want, names)
		}
	}
}

func TestProjectDetectedFromBuildFiles(t *testing.T) {
	e := setup(t)
	mustWrite(t, filepath.Join(e.src, "go.mod"), "module example.com/widget\n")
	_, stderr, err := run(t, "changes", e.src, "--config", e.config)
	if err != nil {
		t.Fatalf("changes: %v", err)
	}
	if !strings.Contains(stderr, "project=widget") {
		t.Fatalf("expected detected project in logs, got %q", stderr)
	}
	if !strings.Contains(stderr, "run=") {
		t.Fatalf("expected a run id in logs, got %q", stderr)
	}
}

func TestJSONLogs(t *testing.T) {
	e := setup(t)
	_, stderr, err := run(t, "changes", e.src, "-p", "demo", "--config", e.config, "--log-format", "json")
	if err != nil {
		t.Fatalf("changes: %v", err)
	}
	if !strings.Contains(stderr, `"msg":"change document ready"`) {
		t.Fatalf("expected JSON logs, got %q", stderr)
	}
	if _, _, err := run(t, "changes", e.src, "-p", "demo", "--config", e.config, "--log-format", "xml"); err == nil {
		t.Fatalf("expected error for unknown log format")
	}
}

func TestErrors(t *testing.T) {
	e := setup(t)
	if _, _, err := run(t, "generate"); err == nil {
		t.Fatalf("expected error for missing <src_dir>")
	}
	if _, _, err := run(t, "changes", filepath.Join(e.dir, "nope"), "-p", "demo", "--config", e.config); err == nil {
		t.Fatalf("expected error for missing source dir")
	}
	if _, _, err := run(t, "generate", e.src, "-p", "demo", "--config", e.config, "--fake-oracle", "--lang", "klingon"); err == nil {
		t.Fatalf("expected error for unsupported language")
	}
}
