// Package ui is the HUD vocabulary: components and bundles a node tree can
// carry, plus builders for the common node shapes.
package ui

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValKind is the unit of a Val.
type ValKind uint8

const (
	ValAuto ValKind = iota
	ValPx
	ValPercent
)

// Val is a length: automatic, absolute cells, or a share of the parent.
type Val struct {
	Kind  ValKind
	Value float32
}

func Auto() Val { return Val{Kind: ValAuto} }

func Px(v float32) Val { return Val{Kind: ValPx, Value: v} }

func Percent(v float32) Val { return Val{Kind: ValPercent, Value: v} }

func (v Val) IsAuto() bool { return v.Kind == ValAuto }

// Cells converts v to cells inside a parent of the given size. Auto fills
// the parent.
func (v Val) Cells(parent int) int {
	switch v.Kind {
	case ValPx:
		return int(v.Value)
	case ValPercent:
		return int(float32(parent) * v.Value / 100)
	default:
		return parent
	}
}

func (v Val) String() string {
	switch v.Kind {
	case ValPx:
		return strconv.FormatFloat(float64(v.Value), 'f', -1, 32) + "px"
	case ValPercent:
		return strconv.FormatFloat(float64(v.Value), 'f', -1, 32) + "%"
	default:
		return "auto"
	}
}

// ParseVal reads "auto", "12px", "12" (cells) or "50%".
func ParseVal(s string) (Val, error) {
	s = strings.TrimSpace(s)
	unit := func(suffix string, kind ValKind) (Val, error) {
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, suffix)), 32)
		if err != nil {
			return Val{}, fmt.Errorf("parse length %q: %w", s, err)
		}
		return Val{Kind: kind, Value: float32(f)}, nil
	}
	switch {
	case s == "" || s == "auto":
		return Auto(), nil
	case strings.HasSuffix(s, "%"):
		return unit("%", ValPercent)
	case strings.HasSuffix(s, "px"):
		return unit("px", ValPx)
	default:
		return unit("", ValPx)
	}
}

func (v *Val) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: length must be a scalar", n.Line)
	}
	parsed, err := ParseVal(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*v = parsed
	return nil
}

func (v Val) MarshalYAML() (any, error) { return v.String(), nil }

type Display uint8

const (
	DisplayFlex Display = iota
	DisplayNone
)

func (d *Display) UnmarshalYAML(n *yaml.Node) error {
	switch n.Value {
	case "flex", "":
		*d = DisplayFlex
	case "none":
		*d = DisplayNone
	default:
		return fmt.Errorf("line %d: unknown display %q", n.Line, n.Value)
	}
	return nil
}

type Direction uint8

const (
	Column Direction = iota
	Row
)

func (d *Direction) UnmarshalYAML(n *yaml.Node) error {
	switch n.Value {
	case "column", "":
		*d = Column
	case "row":
		*d = Row
	default:
		return fmt.Errorf("line %d: unknown direction %q", n.Line, n.Value)
	}
	return nil
}

// Style is the layout of a node. The zero value is a visible column with
// automatic size and no spacing.
type Style struct {
	Display   Display   `yaml:"display"`
	Direction Direction `yaml:"direction"`
	Width     Val       `yaml:"width"`
	Height    Val       `yaml:"height"`
	Padding   Val       `yaml:"padding"`
	Margin    Val       `yaml:"margin"`
	Gap       Val       `yaml:"gap"`
}
