package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrNotFound is returned by backends when a key holds no snapshot.
var ErrNotFound = errors.New("snapshot not found")

// Backend is the durable byte store behind a Store.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}

// Store persists and loads snapshots keyed by (project, kind).
// Loaded snapshots are kept in a small LRU so a run that reads the same
// snapshot twice only decodes it once.
type Store struct {
	backend Backend
	cache   *lru.Cache[string, *Snapshot]
	log     *slog.Logger
}

// StoreOptions configures NewStore.
type StoreOptions struct {
	// CacheEntries bounds the decoded-snapshot cache (0 disables it).
	CacheEntries int
	Logger       *slog.Logger
}

// NewStore wraps a backend.
func NewStore(b Backend, opt StoreOptions) (*Store, error) {
	if b == nil {
		return nil, errors.New("snapshot store: backend is nil")
	}
	s := &Store{backend: b, log: opt.Logger}
	if s.log == nil {
		s.log = slog.Default()
	}
	if opt.CacheEntries > 0 {
		c, err := lru.New[string, *Snapshot](opt.CacheEntries)
		if err != nil {
			return nil, fmt.Errorf("snapshot store: %w", err)
		}
		s.cache = c
	}
	return s, nil
}

// Key returns the storage key for a project's snapshot of the given kind:
// <kind>-snapshot/<project>/<project>_<kind>_snapshot.json
func Key(project string, kind TreeKind) (string, error) {
	p := strings.TrimSpace(project)
	if p == "" {
		return "", errors.New("project name is required")
	}
	if strings.ContainsAny(p, `/\`) || p == "." || p == ".." {
		return "", fmt.Errorf("project name %q must not contain path separators", project)
	}
	switch kind {
	case Codebase, Documentation:
	default:
		return "", fmt.Errorf("unknown tree kind %q", kind)
	}
	k := string(kind)
	return path.Join(k+"-snapshot", p, p+"_"+k+"_snapshot.json"), nil
}

// Persist writes snap under (project, kind), replacing any previous state.
func (s *Store) Persist(ctx context.Context, snap *Snapshot, project string, kind TreeKind) error {
	key, err := Key(project, kind)
	if err != nil {
		return err
	}
	data, err := Marshal(snap)
	if err != nil {
		return err
	}
	if err := s.backend.Put(ctx, key, data); err != nil {
		if s.cache != nil {
			s.cache.Remove(key)
		}
		return fmt.Errorf("persist %s: %w", key, err)
	}
	if s.cache != nil {
		s.cache.Add(key, snap)
	}
	s.log.Info("snapshot persisted", "project", project, "kind", kind, "files", len(snap.Files))
	return nil
}

// Load returns the snapshot stored under (project, kind). A missing snapshot
// is not an error: an empty snapshot is returned instead.
func (s *Store) Load(ctx context.Context, project string, kind TreeKind) (*Snapshot, error) {
	snap, _, err := s.load(ctx, project, kind)
	return snap, err
}

// Exists reports whether a snapshot is stored under (project, kind).
func (s *Store) Exists(ctx context.Context, project string, kind TreeKind) (bool, error) {
	_, found, err := s.load(ctx, project, kind)
	return found, err
}

func (s *Store) load(ctx context.Context, project string, kind TreeKind) (*Snapshot, bool, error) {
	key, err := Key(project, kind)
	if err != nil {
		return nil, false, err
	}
	if s.cache != nil {
		if snap, ok := s.cache.Get(key); ok {
			return snap, true, nil
		}
	}
	data, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return NewSnapshot(), false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", key, err)
	}
	snap, err := Unmarshal(data)
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", key, err)
	}
	if s.cache != nil {
		s.cache.Add(key, snap)
	}
	return snap, true, nil
}
