package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsync/internal/bundle"
	"docsync/internal/cache"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DOCSYNC_OUTPUT_DIR", "DOCSYNC_SECTIONS_FILE", "DOCSYNC_MODEL", "GOOGLE_API_KEY", "GEMINI_API_KEY",
		"DOCSYNC_STORE_BACKEND", "DOCSYNC_SNAPSHOT_DIR", "DOCSYNC_PG_DSN", "DATABASE_URL",
		"DOCSYNC_S3_ENDPOINT", "DOCSYNC_S3_REGION", "DOCSYNC_S3_BUCKET", "DOCSYNC_S3_PREFIX",
		"DOCSYNC_S3_ACCESS_KEY", "DOCSYNC_S3_SECRET_KEY", "MINIO_ROOT_USER", "MINIO_ROOT_PASSWORD",
		"DOCSYNC_S3_USE_SSL", "DOCSYNC_LINE_BUDGET", "DOCSYNC_GCS_BUCKET", "DOCSYNC_GCS_PREFIX",
		"DOCSYNC_GCS_CREDENTIALS", "GOOGLE_APPLICATION_CREDENTIALS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 29000, cfg.LineBudget)
	assert.Equal(t, bundle.DefaultLineBudget, cfg.LineBudget)
	assert.Equal(t, BackendFile, cfg.Store.Backend)
	assert.Equal(t, "../demo-doc/src/content/docs", cfg.DocsRoot("demo"))
	assert.True(t, cfg.SkipUnreadable)
	assert.Contains(t, cfg.Skip.Dirs, "node_modules")
	assert.Equal(t, "gemini-2.5-pro", cfg.Gemini().Model)
}

func TestLoadFileAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "docsync.yaml")
	yml := `output_dir: out/{project}
line_budget: 500
skip:
  dirs: [vendor]
  files: ["*.lock"]
oracle:
  model: gemini-2.5-flash
store:
  backend: s3
  s3:
    endpoint: localhost:9000
    bucket: snaps
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	t.Setenv("DOCSYNC_S3_USE_SSL", "false")
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("DOCSYNC_LINE_BUDGET", "700")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "out/p", cfg.DocsRoot("p"))
	assert.Equal(t, 700, cfg.LineBudget)
	assert.Equal(t, []string{"vendor"}, cfg.Skip.Dirs)
	assert.Equal(t, "gemini-2.5-flash", cfg.Oracle.Model)
	assert.Equal(t, "k", cfg.Gemini().APIKey)
	assert.False(t, cfg.Store.S3.UseSSL)
	assert.Equal(t, "snaps", cfg.Store.S3.Bucket)
	// unset fields keep their defaults
	assert.Equal(t, "us-east-1", cfg.Store.S3.Region)
	assert.InDelta(t, 0.8, cfg.Oracle.Temperature, 1e-6)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"budget":   func(c *Config) { c.LineBudget = 0 },
		"backend":  func(c *Config) { c.Store.Backend = "redis" },
		"postgres": func(c *Config) { c.Store.Backend = BackendPostgres },
		"s3":       func(c *Config) { c.Store.Backend = BackendS3; c.Store.S3.Endpoint = "" },
		"skip":     func(c *Config) { c.Skip.Files = []string{"["} },
		"model":    func(c *Config) { c.Oracle.Model = " " },
		"gcs":      func(c *Config) { c.Store.Backend = BackendGCS },
		"temp":     func(c *Config) { c.Oracle.Temperature = 3 },
		"rpm":      func(c *Config) { c.Oracle.RequestsPerMinute = -1 },
		"dir":      func(c *Config) { c.Store.Dir = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, Default().Validate())

	err := func() error { c := Default(); c.LineBudget = -5; return c.Validate() }()
	assert.ErrorContains(t, err, "LineBudget")
}

func TestBadEnvValue(t *testing.T) {
	clearEnv(t)
	t.Setenv("DOCSYNC_LINE_BUDGET", "lots")
	_, err := Load("")
	assert.Error(t, err)
}

func TestOpenFileStore(t *testing.T) {
	cfg := Default()
	cfg.Store.Dir = t.TempDir()
	st, closeFn, err := OpenStore(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer closeFn()

	snap := cache.NewSnapshot()
	snap.Files["a.txt"] = cache.SnapFile{Hash: cache.HashContent("x"), Content: "x"}
	require.NoError(t, st.Persist(context.Background(), snap, "demo", cache.Codebase))
	ok, err := st.Exists(context.Background(), "demo", cache.Codebase)
	require.NoError(t, err)
	assert.True(t, ok)
}
