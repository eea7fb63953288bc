// Package meta infers a project's name from the build files in its root, so
// that a run can be keyed without an explicit project name.
//
// Priority (first match wins): Maven > Gradle > Go > Node > directory name.
package meta

import (
	"encoding/json"
	"encoding/xml"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/mod/modfile"
)

// Project is the detected identity of a source tree.
type Project struct {
	Name  string // usable as a snapshot key: no path separators
	Build string // "maven"|"gradle"|"go"|"node"|"" (directory name only)
}

// Detect looks in root for build files. Parsing is best-effort: an unreadable
// or malformed file falls through to the next build type.
func Detect(root string) Project {
	absRoot, _ := filepath.Abs(root)

	if p := firstExisting(absRoot, "pom.xml"); p != "" {
		if name := mavenArtifact(p); name != "" {
			return Project{Name: keyName(name), Build: "maven"}
		}
	}
	if firstExisting(absRoot, "build.gradle", "build.gradle.kts") != "" {
		name := ""
		if p := firstExisting(absRoot, "settings.gradle", "settings.gradle.kts"); p != "" {
			name = gradleRootName(p)
		}
		return Project{Name: keyName(firstNonEmpty(name, filepath.Base(absRoot))), Build: "gradle"}
	}
	if p := firstExisting(absRoot, "go.mod"); p != "" {
		if name := goModule(p); name != "" {
			return Project{Name: keyName(name), Build: "go"}
		}
	}
	if p := firstExisting(absRoot, "package.json"); p != "" {
		if name := nodeName(p); name != "" {
			return Project{Name: keyName(name), Build: "node"}
		}
	}
	return Project{Name: keyName(filepath.Base(absRoot))}
}

// ------------------------------ Maven ----------------------------------------

type pomXML struct {
	XMLName    xml.Name `xml:"project"`
	ArtifactID string   `xml:"artifactId"`
}

func mavenArtifact(pomPath string) string {
	b, err := os.ReadFile(pomPath)
	if err != nil {
		return ""
	}
	var p pomXML
	if err := xml.Unmarshal(b, &p); err != nil {
		return ""
	}
	return strings.TrimSpace(p.ArtifactID)
}

// ------------------------------ Gradle ---------------------------------------

var reGradleRootName = regexp.MustCompile(`(?m)^\s*rootProject\.name\s*=\s*["']([^"']+)["']`)

func gradleRootName(settingsPath string) string {
	b, err := os.ReadFile(settingsPath)
	if err != nil {
		return ""
	}
	if m := reGradleRootName.FindStringSubmatch(string(b)); m != nil {
		return m[1]
	}
	return ""
}

// ------------------------------ Go ------------------------------------------

func goModule(modPath string) string {
	b, err := os.ReadFile(modPath)
	if err != nil {
		return ""
	}
	return modfile.ModulePath(b)
}

// ------------------------------ Node ----------------------------------------

func nodeName(pkgPath string) string {
	b, err := os.ReadFile(pkgPath)
	if err != nil {
		return ""
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return ""
	}
	return strings.TrimSpace(obj.Name)
}

// ---------------------------- helpers ---------------------------------------

// keyName keeps the last path element of module-style names
// ("github.com/acme/tool" -> "tool", "@scope/pkg" -> "pkg").
func keyName(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, `\`, "/"))
	s = path.Base(strings.TrimRight(s, "/"))
	switch s {
	case ".", "/", "..":
		return ""
	}
	return s
}

func firstExisting(root string, names ...string) string {
	for _, n := range names {
		p := filepath.Join(root, n)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		s = strings.TrimSpace(s)
		if s != "" {
			return s
		}
	}
	return ""
}
