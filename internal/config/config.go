// Package config loads docsync settings from an optional YAML file, a .env
// file and the process environment, in that order of increasing precedence.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"docsync/internal/bundle"
	"docsync/internal/cache"
	"docsync/internal/oracle"
	"docsync/internal/walkwalk"
)

// ProjectPlaceholder is replaced by the project name in OutputDir.
const ProjectPlaceholder = "{project}"

// Config is the full set of run settings.
type Config struct {
	// OutputDir is the documentation root; ProjectPlaceholder is expanded.
	OutputDir      string             `yaml:"output_dir" validate:"required"`
	SectionsFile   string             `yaml:"sections_file" validate:"required"`
	LineBudget     int                `yaml:"line_budget" validate:"gt=0"`
	Skip           walkwalk.SkipRules `yaml:"skip"`
	UseGitignore   bool               `yaml:"use_gitignore"`
	SkipUnreadable bool               `yaml:"skip_unreadable"`
	Oracle         OracleConfig       `yaml:"oracle"`
	Store          StoreConfig        `yaml:"store"`
}

// OracleConfig selects the generation model and its sampling settings.
type OracleConfig struct {
	Model           string  `yaml:"model" validate:"notblank"`
	Temperature     float32 `yaml:"temperature" validate:"gte=0,lte=2"`
	TopP            float32 `yaml:"top_p" validate:"gte=0,lte=1"`
	TopK            float32 `yaml:"top_k" validate:"gte=0"`
	MaxOutputTokens int32   `yaml:"max_output_tokens" validate:"gte=0"`
	// RequestsPerMinute throttles oracle calls (0 = unlimited).
	RequestsPerMinute int `yaml:"requests_per_minute" validate:"gte=0"`
	// APIKey is never read from the YAML file.
	APIKey string `yaml:"-"`
}

// StoreConfig selects where snapshots are persisted.
type StoreConfig struct {
	Backend      string          `yaml:"backend" validate:"oneof=file s3 gcs postgres"`
	Dir          string          `yaml:"dir" validate:"required_if=Backend file"`
	S3           cache.S3Config  `yaml:"s3"`
	GCS          cache.GCSConfig `yaml:"gcs"`
	PostgresDSN  string          `yaml:"postgres_dsn" validate:"required_if=Backend postgres"`
	CacheEntries int             `yaml:"cache_entries" validate:"gte=0"`
}

// Snapshot store backends.
const (
	BackendFile     = "file"
	BackendS3       = "s3"
	BackendGCS      = "gcs"
	BackendPostgres = "postgres"
)

// Default returns the settings used when nothing is configured.
func Default() Config {
	g := oracle.DefaultGeminiConfig()
	return Config{
		OutputDir:      "../" + ProjectPlaceholder + "-doc/src/content/docs",
		SectionsFile:   "documentation_sections.json",
		LineBudget:     bundle.DefaultLineBudget,
		Skip:           walkwalk.DefaultSkipRules(),
		SkipUnreadable: true,
		Oracle: OracleConfig{
			Model:           g.Model,
			Temperature:     g.Temperature,
			TopP:            g.TopP,
			TopK:            g.TopK,
			MaxOutputTokens: g.MaxOutputTokens,
		},
		Store: StoreConfig{
			Backend:      BackendFile,
			Dir:          "snapshots",
			CacheEntries: 8,
			S3:           cache.S3Config{Region: "us-east-1", Bucket: "docsync-snapshots", UseSSL: true},
		},
	}
}

// Load reads path (skipped when empty) over the defaults, then applies .env
// and environment overrides and validates the result.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.OutputDir = firstNonEmpty(env("DOCSYNC_OUTPUT_DIR"), cfg.OutputDir)
	cfg.SectionsFile = firstNonEmpty(env("DOCSYNC_SECTIONS_FILE"), cfg.SectionsFile)
	cfg.Oracle.Model = firstNonEmpty(env("DOCSYNC_MODEL"), cfg.Oracle.Model)
	cfg.Oracle.APIKey = firstNonEmpty(env("GOOGLE_API_KEY"), env("GEMINI_API_KEY"))

	st := &cfg.Store
	st.Backend = firstNonEmpty(env("DOCSYNC_STORE_BACKEND"), st.Backend)
	st.Dir = firstNonEmpty(env("DOCSYNC_SNAPSHOT_DIR"), st.Dir)
	st.PostgresDSN = firstNonEmpty(env("DOCSYNC_PG_DSN"), env("DATABASE_URL"), st.PostgresDSN)
	st.GCS.Bucket = firstNonEmpty(env("DOCSYNC_GCS_BUCKET"), st.GCS.Bucket)
	st.GCS.Prefix = firstNonEmpty(env("DOCSYNC_GCS_PREFIX"), st.GCS.Prefix)
	st.GCS.CredentialsFile = firstNonEmpty(env("DOCSYNC_GCS_CREDENTIALS"), env("GOOGLE_APPLICATION_CREDENTIALS"), st.GCS.CredentialsFile)
	st.S3.Endpoint = firstNonEmpty(env("DOCSYNC_S3_ENDPOINT"), st.S3.Endpoint)
	st.S3.Region = firstNonEmpty(env("DOCSYNC_S3_REGION"), st.S3.Region)
	st.S3.Bucket = firstNonEmpty(env("DOCSYNC_S3_BUCKET"), st.S3.Bucket)
	st.S3.Prefix = firstNonEmpty(env("DOCSYNC_S3_PREFIX"), st.S3.Prefix)
	st.S3.AccessKey = firstNonEmpty(env("DOCSYNC_S3_ACCESS_KEY"), env("MINIO_ROOT_USER"), st.S3.AccessKey)
	st.S3.SecretKey = firstNonEmpty(env("DOCSYNC_S3_SECRET_KEY"), env("MINIO_ROOT_PASSWORD"), st.S3.SecretKey)
	if raw := env("DOCSYNC_S3_USE_SSL"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("DOCSYNC_S3_USE_SSL: %w", err)
		}
		st.S3.UseSSL = v
	}
	if raw := env("DOCSYNC_LINE_BUDGET"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("DOCSYNC_LINE_BUDGET: %w", err)
		}
		cfg.LineBudget = v
	}
	return nil
}

// Validate checks field constraints first, then the settings that depend on
// the selected store backend.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("config: %s fails %q (value %v)", f.Namespace(), f.Tag(), f.Value())
		}
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Skip.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Store.Backend {
	case BackendS3:
		if strings.TrimSpace(c.Store.S3.Endpoint) == "" || strings.TrimSpace(c.Store.S3.Bucket) == "" {
			return errors.New("config: store.s3 needs endpoint and bucket")
		}
	case BackendGCS:
		if strings.TrimSpace(c.Store.GCS.Bucket) == "" {
			return errors.New("config: store.gcs needs a bucket")
		}
	}
	return nil
}

// DocsRoot returns the documentation root for project.
func (c Config) DocsRoot(project string) string {
	return strings.ReplaceAll(c.OutputDir, ProjectPlaceholder, project)
}

// Walk returns the traversal options for the codebase tree.
func (c Config) Walk() walkwalk.Options {
	return walkwalk.Options{Skip: c.Skip, UseGitignore: c.UseGitignore}
}

// Gemini returns the session settings for the configured model.
func (c Config) Gemini() oracle.GeminiConfig {
	return oracle.GeminiConfig{
		APIKey:          c.Oracle.APIKey,
		Model:           c.Oracle.Model,
		Temperature:     c.Oracle.Temperature,
		TopP:            c.Oracle.TopP,
		TopK:            c.Oracle.TopK,
		MaxOutputTokens: c.Oracle.MaxOutputTokens,
	}
}

// OpenStore builds the configured snapshot store. The returned close func
// releases backend resources and is never nil.
func OpenStore(ctx context.Context, c Config, log *slog.Logger) (*cache.Store, func() error, error) {
	var (
		backend cache.Backend
		closer  = func() error { return nil }
	)
	switch c.Store.Backend {
	case BackendS3:
		b, err := cache.NewS3Backend(c.Store.S3)
		if err != nil {
			return nil, nil, err
		}
		backend = b
	case BackendGCS:
		b, err := cache.NewGCSBackend(ctx, c.Store.GCS)
		if err != nil {
			return nil, nil, err
		}
		backend, closer = b, b.Close
	case BackendPostgres:
		b, err := cache.NewPostgresBackend(ctx, c.Store.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		backend, closer = b, b.Close
	default:
		backend = cache.NewFileBackend(c.Store.Dir)
	}
	st, err := cache.NewStore(backend, cache.StoreOptions{CacheEntries: c.Store.CacheEntries, Logger: log})
	if err != nil {
		_ = closer()
		return nil, nil, err
	}
	if log != nil {
		log.Debug("snapshot store ready", "backend", c.Store.Backend)
	}
	return st, closer, nil
}

var configValidate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
