package data

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/station/internal/core/nodetree"
)

// NodeSpec is the serialized form of a node tree:
//
//	use: other-template   # optional, start from another template
//	components:
//	  Text: "oxygen"
//	  Style: {width: 20%}
//	children:
//	  - components: {Text: "water"}
type NodeSpec struct {
	Use        string     `yaml:"use"`
	Components yaml.Node  `yaml:"components"`
	Children   []NodeSpec `yaml:"children"`
}

// TemplateTable holds named node trees loaded from YAML.
type TemplateTable struct {
	catalog *Catalog
	specs   map[string]*NodeSpec
}

// Get returns the named template, or nil if not found.
func (t *TemplateTable) Get(name string) *NodeSpec {
	return t.specs[name]
}

// Count returns the number of templates loaded.
func (t *TemplateTable) Count() int {
	return len(t.specs)
}

// Names returns the template names, sorted.
func (t *TemplateTable) Names() []string {
	names := make([]string, 0, len(t.specs))
	for n := range t.specs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Build returns a fresh tree for the named template. Trees are one-shot, so
// every reconciliation needs its own Build.
func (t *TemplateTable) Build(name string) (*nodetree.Tree, error) {
	return t.build(name, nil)
}

func (t *TemplateTable) build(name string, stack []string) (*nodetree.Tree, error) {
	for _, s := range stack {
		if s == name {
			return nil, fmt.Errorf("template cycle: %s -> %s", strings.Join(stack, " -> "), name)
		}
	}
	spec, ok := t.specs[name]
	if !ok {
		return nil, fmt.Errorf("unknown template %q", name)
	}
	tree, err := t.node(spec, append(stack, name))
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	return tree, nil
}

func (t *TemplateTable) node(spec *NodeSpec, stack []string) (*nodetree.Tree, error) {
	tree := nodetree.New()
	if spec.Use != "" {
		base, err := t.build(spec.Use, stack)
		if err != nil {
			return nil, err
		}
		tree = base
	}
	if err := attachComponents(t.catalog, tree, &spec.Components); err != nil {
		return nil, err
	}
	for i := range spec.Children {
		child, err := t.node(&spec.Children[i], stack)
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
		tree.WithChild(child)
	}
	return tree, nil
}

// BuildNode turns a spec that is not part of any table into a tree.
func BuildNode(c *Catalog, spec *NodeSpec) (*nodetree.Tree, error) {
	t := &TemplateTable{catalog: c}
	return t.node(spec, nil)
}

// DecodeNode parses one YAML node spec and builds it.
func DecodeNode(c *Catalog, raw []byte) (*nodetree.Tree, error) {
	var spec NodeSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("parse node: %w", err)
	}
	if spec.Use != "" {
		return nil, fmt.Errorf("parse node: use %q outside a template table", spec.Use)
	}
	return BuildNode(c, &spec)
}

func attachComponents(c *Catalog, tree *nodetree.Tree, n *yaml.Node) error {
	switch {
	case n.Kind == 0, n.ShortTag() == "!!null":
		return nil // no components
	case n.Kind == yaml.MappingNode:
	default:
		return fmt.Errorf("line %d: components must be a mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		if err := c.Attach(tree, key.Value, value.Decode); err != nil {
			return fmt.Errorf("line %d: %w", key.Line, err)
		}
	}
	return nil
}

// --- YAML loading ---

type templateFile struct {
	Templates map[string]*NodeSpec `yaml:"templates"`
}

// ParseTemplates reads a template file and checks every template builds.
func ParseTemplates(raw []byte, c *Catalog) (*TemplateTable, error) {
	var f templateFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	t := &TemplateTable{catalog: c, specs: f.Templates}
	if t.specs == nil {
		t.specs = make(map[string]*NodeSpec)
	}
	for _, name := range t.Names() {
		if _, err := t.Build(name); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// LoadTemplates loads node tree templates from YAML.
func LoadTemplates(path string, c *Catalog) (*TemplateTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}
	t, err := ParseTemplates(raw, c)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return t, nil
}
