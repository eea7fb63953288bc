package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"unicode/utf8"

	"docsync/internal/walkwalk"
)

// ReadError reports a file that could not be captured as text.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string { return fmt.Sprintf("read %s: %v", e.Path, e.Err) }

func (e *ReadError) Unwrap() error { return e.Err }

// ErrNotText marks files whose bytes are not valid UTF-8.
var ErrNotText = errors.New("not valid UTF-8 text")

// CreateOptions configures Create.
type CreateOptions struct {
	Walk      walkwalk.Options
	Languages []string
	// SkipUnreadable logs and skips files that fail to read as text instead of
	// aborting the whole walk.
	SkipUnreadable bool
	Logger         *slog.Logger
}

// Create walks root and captures every surviving file's hash and content.
// A file that fails to read never yields an entry: it is either skipped with
// a warning or the walk aborts with a *ReadError.
func Create(ctx context.Context, root string, opt CreateOptions) (*Snapshot, error) {
	log := opt.Logger
	if log == nil {
		log = slog.Default()
	}
	files, err := walkwalk.CollectFiles(root, opt.Walk)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", root, err)
	}
	snap := NewSnapshot()
	snap.Languages = append([]string(nil), opt.Languages...)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := readText(f.AbsPath)
		if err != nil {
			rerr := &ReadError{Path: f.RelPath, Err: err}
			if !opt.SkipUnreadable {
				return nil, rerr
			}
			log.Warn("skipping unreadable file", "path", f.RelPath, "err", err)
			continue
		}
		snap.Files[f.RelPath] = SnapFile{Hash: HashContent(content), Content: content}
	}
	log.Debug("snapshot created", "root", root, "files", len(snap.Files))
	return snap, nil
}

// HashContent returns the lowercase hex sha256 of content.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func readText(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrNotText
	}
	return string(b), nil
}
