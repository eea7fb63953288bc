// Package sections turns a declarative, nested section tree into a
// numbered tree of Markdown pages.
package sections

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// maxDepth bounds nesting; anything deeper is almost certainly a mistake.
const maxDepth = 32

// Node is one entry of a section tree. A leaf has a Description and nil
// Children; an internal node has non-nil Children (possibly empty).
type Node struct {
	Title       string
	Description string
	Children    []Node
}

// IsLeaf reports whether n produces a page rather than a directory.
func (n Node) IsLeaf() bool { return n.Children == nil }

// Leaf builds a leaf node.
func Leaf(title, description string) Node {
	return Node{Title: title, Description: description}
}

// Group builds an internal node.
func Group(title string, children ...Node) Node {
	if children == nil {
		children = []Node{}
	}
	return Node{Title: title, Children: children}
}

// Load reads and parses a section tree file (YAML or JSON).
func Load(path string) ([]Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tree, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

// Parse decodes a nested mapping of title -> description | mapping. Key order
// in the document is preserved, which fixes the sibling numbering.
func Parse(data []byte) ([]Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse sections: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("parse sections: empty document")
	}
	return parseMapping(doc.Content[0], "", 0)
}

func parseMapping(n *yaml.Node, where string, depth int) ([]Node, error) {
	n = resolve(n)
	if depth > maxDepth {
		return nil, fmt.Errorf("sections%s: nesting deeper than %d", where, maxDepth)
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("sections%s: line %d: expected a mapping", where, n.Line)
	}
	out := make([]Node, 0, len(n.Content)/2)
	seen := make(map[string]bool, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := resolve(n.Content[i]), resolve(n.Content[i+1])
		if k.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("sections%s: line %d: section titles must be strings", where, k.Line)
		}
		if seen[k.Value] {
			return nil, fmt.Errorf("sections%s: line %d: duplicate section %q", where, k.Line, k.Value)
		}
		seen[k.Value] = true
		path := where + "/" + k.Value
		switch v.Kind {
		case yaml.ScalarNode:
			out = append(out, Leaf(k.Value, v.Value))
		case yaml.MappingNode:
			children, err := parseMapping(v, path, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, Group(k.Value, children...))
		default:
			return nil, fmt.Errorf("sections%s: line %d: value must be a string or a mapping", path, v.Line)
		}
	}
	return out, nil
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// Count returns the number of leaves and internal nodes in tree.
func Count(tree []Node) (leaves, groups int) {
	for _, n := range tree {
		if n.IsLeaf() {
			leaves++
			continue
		}
		groups++
		l, g := Count(n.Children)
		leaves += l
		groups += g
	}
	return leaves, groups
}
