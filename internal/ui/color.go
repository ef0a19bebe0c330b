package ui

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Color is an sRGB color. The zero value means "inherit".
type Color struct {
	R, G, B uint8
	Set     bool
}

func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b, Set: true} }

// ParseHex reads "#rrggbb" or "rrggbb".
func ParseHex(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("parse color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

// MustHex is ParseHex for constants.
func MustHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Color) String() string {
	if !c.Set {
		return "inherit"
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c *Color) UnmarshalYAML(n *yaml.Node) error {
	if n.Value == "" || n.Value == "inherit" {
		*c = Color{}
		return nil
	}
	parsed, err := ParseHex(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*c = parsed
	return nil
}

func (c Color) MarshalYAML() (any, error) { return c.String(), nil }

// BackgroundColor fills the node's area.
type BackgroundColor struct {
	Color Color `yaml:"color"`
}

func (b *BackgroundColor) UnmarshalYAML(n *yaml.Node) error {
	return n.Decode(&b.Color)
}

// BorderColor frames the node.
type BorderColor struct {
	Color Color `yaml:"color"`
}

func (b *BorderColor) UnmarshalYAML(n *yaml.Node) error {
	return n.Decode(&b.Color)
}
