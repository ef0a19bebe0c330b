package ui

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Text is a line of text drawn by the node.
type Text struct {
	Value string `yaml:"value"`
	Color Color  `yaml:"color"`
}

// UnmarshalYAML accepts a bare string or a {value, color} mapping.
func (t *Text) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*t = Text{Value: n.Value}
		return nil
	case yaml.MappingNode:
		type plain Text
		var p plain
		if err := n.Decode(&p); err != nil {
			return err
		}
		*t = Text(p)
		return nil
	default:
		return fmt.Errorf("line %d: text must be a string or a mapping", n.Line)
	}
}

// Root marks an entity the HUD is reconciled onto. Name selects the tree
// that describes it.
type Root struct {
	Name string `yaml:"name"`
}

// Hidden is a marker for nodes the renderer skips with their subtree.
type Hidden struct{}
