package walkwalk

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar"
)

// SkipRules is the single deny-list shared by every tree walk. Patterns
// without a '/' are matched against the entry's base name; patterns with a
// '/' are matched against the project-relative path ('**' allowed).
type SkipRules struct {
	Dirs  []string `yaml:"dirs"`
	Files []string `yaml:"files"`
}

// DefaultSkipRules returns the built-in deny-list: VCS and IDE metadata,
// build output, vendored dependencies, lockfiles, binaries, media, archives,
// generated web assets and key material.
func DefaultSkipRules() SkipRules {
	return SkipRules{
		Dirs: []string{
			".git", ".svn", ".hg", "node_modules", "vendor", "bin", "obj", "__pycache__",
			"venv", "env", "*.egg-info", "dist", "build", "target", "Debug", "Release",
			".idea", ".vscode", ".settings", "out", "coverage", "tmp", "log", ".astro",
			"cache", "logs", ".mypy_cache", "site", "static", "public", "media",
		},
		Files: []string{
			"*.log", "*.log.*", "*.tmp", "*.bak", "*.backup", "*.swp", "*.swo", "*.old", "*.orig",
			"*.pyc", "*.pyo", "*.class", "*.dll", "*.so", "*.a", "*.o", "*.exe", "*.bin", "*.out",
			"*.pid", "*.seed", "*.lock", "*.pdb", "*.iml", "package-lock.json", "yarn.lock",
			"composer.lock", "*.map", "*.jar", "*.war", "*.ear", "*.lib", "*.ilk", "*.exp", "*.gem",
			".bundle", "*.xcuserstate", "*.xcscheme", "*.app", "*.ipa", "*.dSYM", "*.apk", "*.aab",
			"*.jks", "*.csv", "*.json", "*.xml", "*.md", "Dockerfile", "docker-compose.yml",
			"*.webp", "*.svg", "*.gif", "*.jpg", "*.jpeg", "*.png", "*.bmp", "*.ico", "*.tiff",
			"*.ai", "*.psd", "*.xcf", "*.mov", "*.mp4", "*.avi", "*.mkv", "*.mp3", "*.wav",
			"*.flac", "*.aac", "*.ogg", "*.m4a", "*.3gp", "*.wmv", "*.zip", "*.tar", "*.gz",
			"*.bz2", "*.7z", "*.rar", "*.iso", "*.dmg", "*.htm", "*.html", "*.xhtml", "*.css",
			"*.scss", "*.sass", "*.less", "*.d.ts", "*.min.js", "*.min.css", "*.pot", "*.po",
			"*.mo", "*.properties", "*.ini", "*.config", "*.prefs", "*.idx", "*.dat", "*.sql",
			"*.dump", "*.gpg", "*.pem", "*.crt", "*.key", "*.pub", "*.asc", "*.sig", "*.sf",
			"*.md5", "*.sha1", "*.sha256", "*.sha512", "*.gitignore",
		},
	}
}

// Validate reports the first malformed pattern.
func (r SkipRules) Validate() error {
	if err := validatePatterns("skip.dirs", r.Dirs); err != nil {
		return err
	}
	return validatePatterns("skip.files", r.Files)
}

// MatchDir reports whether the directory at rel must not be descended into.
func (r SkipRules) MatchDir(rel string) bool { return matchAny(r.Dirs, rel) }

// MatchFile reports whether the file at rel must be left out.
func (r SkipRules) MatchFile(rel string) bool { return matchAny(r.Files, rel) }

func matchAny(patterns []string, rel string) bool {
	base := path.Base(rel)
	for _, p := range patterns {
		name := base
		if strings.Contains(p, "/") {
			name = rel
		}
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

func validatePatterns(field string, patterns []string) error {
	for _, p := range patterns {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%s: empty pattern", field)
		}
		if _, err := doublestar.Match(p, "x"); err != nil {
			return fmt.Errorf("%s: bad pattern %q: %w", field, p, err)
		}
	}
	return nil
}
