package bundle

// This file implements the change archive writer. It creates a reproducible
// ZIP with the following layout:
//
//	README.md             # layout and budget summary
//	index.json            # per-file status, stats and patch name
//	change.md             # the change document, or a note on why there is none
//	patches/<name>.patch  # unified patch per changed file (sorted by name)

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ArchiveIndex is written to index.json.
type ArchiveIndex struct {
	Project string         `json:"project"`
	Outcome string         `json:"outcome"`
	Lines   int            `json:"lines"`
	Budget  int            `json:"budget"`
	Files   []ArchiveEntry `json:"files"`
}

// ArchiveEntry describes one changed file.
type ArchiveEntry struct {
	Path    string `json:"path"`
	Status  string `json:"status"`
	Patch   string `json:"patch,omitempty"`
	Added   int32  `json:"added"`
	Changed int32  `json:"changed"`
	Deleted int32  `json:"deleted"`
}

// fixedZipTime ensures byte-for-byte reproducible archives.
// (ZIP epoch start: 1980-01-01)
var fixedZipTime = time.Unix(315532800, 0).UTC()

// WriteChangeArchive writes res to zipPath. Entries are sorted and carry fixed
// timestamps, so equal results produce identical archives.
func WriteChangeArchive(zipPath, project string, budget int, res Result) error {
	if budget <= 0 {
		budget = DefaultLineBudget
	}
	idx := ArchiveIndex{
		Project: project,
		Outcome: res.Outcome.String(),
		Lines:   res.Lines,
		Budget:  budget,
		Files:   make([]ArchiveEntry, 0, len(res.Blocks)),
	}
	patches := make(map[string][]byte, len(res.Blocks))
	used := make(map[string]struct{}, len(res.Blocks))
	readme := ReadmeOptions{Project: project, Outcome: res.Outcome, Lines: res.Lines, Budget: budget}
	for _, b := range res.Blocks {
		if b.Status == StatusNew {
			readme.New++
		} else {
			readme.Modified++
		}
		oldName := "a/" + b.Path
		if b.Status == StatusNew {
			oldName = "/dev/null"
		}
		body, err := b.Record.Patch(oldName, "b/"+b.Path)
		if err != nil {
			return err
		}
		st := b.Record.Stat()
		e := ArchiveEntry{Path: b.Path, Status: b.Status, Added: st.Added, Changed: st.Changed, Deleted: st.Deleted}
		if len(body) > 0 {
			e.Patch = "patches/" + uniquePatchName(safeDiffBase(b.Path), used)
			patches[e.Patch] = body
		}
		idx.Files = append(idx.Files, e)
	}
	sort.Slice(idx.Files, func(i, j int) bool { return idx.Files[i].Path < idx.Files[j].Path })

	if err := os.MkdirAll(filepath.Dir(zipPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	defer f.Close()
	zw := zip.NewWriter(f)

	if err := writeTextEntry(zw, "README.md", ArchiveReadme(readme)); err != nil {
		return err
	}
	if err := writeJSONEntry(zw, "index.json", idx); err != nil {
		return err
	}
	if err := writeTextEntry(zw, "change.md", []byte(changeBody(res))); err != nil {
		return err
	}
	names := make([]string, 0, len(patches))
	for n := range patches {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if err := writeTextEntry(zw, n, patches[n]); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return f.Close()
}

func changeBody(res Result) string {
	if res.Outcome == OutcomeReady {
		return res.Document
	}
	return "# No change document\n\nOutcome: " + res.Outcome.String() + "\n"
}

// writeJSONEntry writes a JSON-encoded value with fixed timestamp/mode.
func writeJSONEntry(zw *zip.Writer, name string, v any) error {
	h := &zip.FileHeader{Name: sanitizeZipPath(name), Method: zip.Deflate}
	h.SetMode(0o644)
	h.Modified = fixedZipTime

	w, err := zw.CreateHeader(h)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeTextEntry writes a raw text blob as a ZIP entry.
func writeTextEntry(zw *zip.Writer, name string, data []byte) error {
	h := &zip.FileHeader{Name: sanitizeZipPath(name), Method: zip.Deflate}
	h.SetMode(0o644)
	h.Modified = fixedZipTime

	w, err := zw.CreateHeader(h)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// sanitizeZipPath:
//   - normalizes separators to '/'
//   - strips drive letters and leading slashes
//   - prevents path traversal by resolving "." and ".." without escaping root
func sanitizeZipPath(p string) string {
	s := filepath.ToSlash(p)
	if len(s) > 1 && s[1] == ':' {
		s = s[2:]
	}
	s = strings.TrimLeft(s, "/")

	parts := strings.Split(s, "/")
	stack := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		if part == ".." {
			if n := len(stack); n > 0 {
				stack = stack[:n-1]
			}
			continue
		}
		stack = append(stack, part)
	}
	s = strings.Join(stack, "/")
	if s == "" {
		return "entry"
	}
	return s
}

// invalidFileCharsRe contains characters that are invalid in Windows filenames.
var invalidFileCharsRe = regexp.MustCompile(`[\\:*?"<>|]`)

// safeDiffBase flattens a relative path into a filesystem-safe patch base name.
func safeDiffBase(p string) string {
	base := filepath.ToSlash(p)
	base = strings.ReplaceAll(base, "/", "_")
	base = invalidFileCharsRe.ReplaceAllString(base, "_")
	base = strings.TrimLeft(base, "._")
	if base == "" {
		base = "patch"
	}
	return base
}

// uniquePatchName returns base+".patch", or a suffixed variant when that name
// is already taken. It mutates used.
func uniquePatchName(base string, used map[string]struct{}) string {
	name := base + ".patch"
	if _, ok := used[name]; !ok {
		used[name] = struct{}{}
		return name
	}
	sum := sha256.Sum256([]byte(base))
	hint := hex.EncodeToString(sum[:])[:8]
	for n := 0; ; n++ {
		alt := base + "-" + hint + ".patch"
		if n > 0 {
			alt = base + "-" + hint + "-" + strconv.Itoa(n) + ".patch"
		}
		if _, ok := used[alt]; !ok {
			used[alt] = struct{}{}
			return alt
		}
	}
}
