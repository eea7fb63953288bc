package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// LanguagesKey is the reserved top-level key holding the selected locale
// codes. It shares the JSON object with the file entries and is never a file.
const LanguagesKey = "selected_languages"

// Marshal encodes the snapshot as a flat, indented JSON object mapping each
// path to {"hash","content"}, plus the reserved languages entry. Keys are
// emitted in sorted order so equal snapshots encode to equal bytes.
func Marshal(s *Snapshot) ([]byte, error) {
	if s == nil {
		s = NewSnapshot()
	}
	if _, clash := s.Files[LanguagesKey]; clash {
		return nil, fmt.Errorf("snapshot: file path %q collides with the reserved metadata key", LanguagesKey)
	}
	obj := make(map[string]any, len(s.Files)+1)
	for p, f := range s.Files {
		obj[p] = f
	}
	langs := s.Languages
	if langs == nil {
		langs = []string{}
	}
	obj[LanguagesKey] = langs

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	// encoding/json sorts map keys.
	if err := enc.Encode(obj); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a snapshot written by Marshal. Unknown non-object keys
// are rejected rather than silently dropped.
func Unmarshal(data []byte) (*Snapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	s := NewSnapshot()
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == LanguagesKey {
			if err := json.Unmarshal(raw[k], &s.Languages); err != nil {
				return nil, fmt.Errorf("snapshot: %s: %w", LanguagesKey, err)
			}
			continue
		}
		var f SnapFile
		if err := json.Unmarshal(raw[k], &f); err != nil {
			return nil, fmt.Errorf("snapshot: entry %q: %w", k, err)
		}
		s.Files[k] = f
	}
	return s, nil
}

func sortedKeys(m map[string]SnapFile) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
