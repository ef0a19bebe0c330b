package ui

import (
	"fmt"

	"github.com/l1jgo/station/internal/core/nodetree"
)

// NodeBundle is a layout box.
type NodeBundle struct {
	Style      Style           `yaml:"style"`
	Background BackgroundColor `yaml:"background"`
}

// TextBundle is a line of text with its own layout.
type TextBundle struct {
	Text  Text  `yaml:"text"`
	Style Style `yaml:"style"`
}

// Div returns a node filling its parent.
func Div() *nodetree.Tree {
	return nodetree.New().WithBundle(NodeBundle{
		Style: Style{Width: Percent(100), Height: Percent(100)},
	})
}

// Label returns a text node for s.
func Label(s string) *nodetree.Tree {
	return nodetree.New().WithBundle(TextBundle{Text: Text{Value: s}})
}

// Labelf is Label with formatting.
func Labelf(format string, args ...any) *nodetree.Tree {
	return Label(fmt.Sprintf(format, args...))
}
