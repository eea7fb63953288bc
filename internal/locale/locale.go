// Package locale maps documentation locale codes to the labels used when
// asking the oracle for a language and in site configuration.
package locale

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Locale is a supported documentation language.
type Locale struct {
	Code  string
	Label string
}

// Supported lists every locale in presentation order.
var Supported = []Locale{
	{"en", "English"},
	{"de", "Deutsch"},
	{"es", "Español"},
	{"ja", "日本語"},
	{"fr", "Français"},
	{"it", "Italiano"},
	{"id", "Bahasa Indonesia"},
	{"zh-cn", "简体中文"},
	{"pt-br", "Português do Brasil"},
	{"pt", "Português"},
	{"ko", "한국어"},
	{"tr", "Türkçe"},
	{"ru", "Русский"},
	{"hi", "हिंदी"},
	{"da", "Dansk"},
	{"uk", "Українська"},
}

// Label returns the display label of code.
func Label(code string) (string, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, l := range Supported {
		if l.Code == code {
			return l.Label, true
		}
	}
	return "", false
}

// Resolve normalizes a list of codes or labels into unique codes, keeping the
// caller's order. An empty list resolves to English.
func Resolve(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, raw := range in {
		v := strings.TrimSpace(raw)
		if v == "" {
			continue
		}
		code, ok := lookup(v)
		if !ok {
			return nil, fmt.Errorf("unsupported language %q", raw)
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	if len(out) == 0 {
		out = append(out, "en")
	}
	return out, nil
}

func lookup(v string) (string, bool) {
	lv := strings.ToLower(v)
	for _, l := range Supported {
		if l.Code == lv || strings.EqualFold(l.Label, v) {
			return l.Code, true
		}
	}
	return "", false
}

// Target is where and how one locale's documentation is generated.
type Target struct {
	Code string
	// Hint is the language label passed to the oracle; empty when English
	// is the only locale, in which case no language is requested explicitly.
	Hint string
	Dir  string
}

// Targets lays out the output directories for codes under docsRoot. A single
// locale writes directly into docsRoot; several locales each get
// docsRoot/<code>/<project>.
func Targets(docsRoot, project string, codes []string) []Target {
	if len(codes) == 1 {
		t := Target{Code: codes[0], Dir: docsRoot}
		if t.Code != "en" {
			t.Hint, _ = Label(t.Code)
		}
		return []Target{t}
	}
	out := make([]Target, 0, len(codes))
	for _, c := range codes {
		label, _ := Label(c)
		out = append(out, Target{Code: c, Hint: label, Dir: filepath.Join(docsRoot, c, project)})
	}
	return out
}
