package rule

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// PathStatus is the result of a Document path lookup.
type PathStatus int

const (
	PathFound     PathStatus = iota // every segment resolved
	PathMissing                     // a mapping lacked the key
	PathWrongType                   // a segment was not a mapping, or the leaf had the wrong kind
)

func (s PathStatus) String() string {
	switch s {
	case PathFound:
		return "found"
	case PathMissing:
		return "missing"
	case PathWrongType:
		return "wrong type"
	default:
		return fmt.Sprintf("PathStatus(%d)", int(s))
	}
}

// Document is a parsed embedded policy document.
type Document struct {
	root *yaml.Node // nil for an empty document
}

// ParseDocument parses YAML (or JSON) text.
func ParseDocument(code string) (*Document, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(code), &doc); err != nil {
		return nil, fmt.Errorf("parsing policy code: %w", err)
	}
	d := &Document{}
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		d.root = doc.Content[0]
	}
	return d, nil
}

// Lookup walks nested mappings along path.
func (d *Document) Lookup(path ...string) (*yaml.Node, PathStatus) {
	node := resolveAlias(d.root)
	if node == nil && len(path) > 0 {
		return nil, PathMissing
	}
	for _, key := range path {
		if node == nil || node.Kind != yaml.MappingNode {
			return nil, PathWrongType
		}
		next, ok := mappingValue(node, key)
		if !ok {
			return nil, PathMissing
		}
		node = resolveAlias(next)
	}
	return node, PathFound
}

// Strings looks up a sequence at path and returns its scalar entries.
// Null and non-scalar entries are reported in skipped instead.
func (d *Document) Strings(path ...string) (values []string, skipped int, status PathStatus) {
	node, status := d.Lookup(path...)
	if status != PathFound {
		return nil, 0, status
	}
	if node == nil || node.Kind != yaml.SequenceNode {
		return nil, 0, PathWrongType
	}
	for _, item := range node.Content {
		item = resolveAlias(item)
		if item == nil || item.Kind != yaml.ScalarNode || item.Tag == "!!null" {
			skipped++
			continue
		}
		values = append(values, item.Value)
	}
	return values, skipped, PathFound
}

func mappingValue(node *yaml.Node, key string) (*yaml.Node, bool) {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1], true
		}
	}
	return nil, false
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// pathString renders a lookup path for log messages.
func pathString(path []string) string {
	return strings.Join(path, ".")
}
