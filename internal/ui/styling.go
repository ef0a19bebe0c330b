package ui

import "github.com/l1jgo/station/internal/core/nodetree"

// StyleOf returns the style carried by t, or the zero style.
func StyleOf(t *nodetree.Tree) Style {
	if s, ok := nodetree.Get[Style](t); ok {
		return *s
	}
	return Style{}
}

// SetStyle replaces the style carried by t.
func SetStyle(t *nodetree.Tree, s Style) *nodetree.Tree {
	return nodetree.With(t, s)
}

func restyle(t *nodetree.Tree, fn func(*Style)) *nodetree.Tree {
	s := StyleOf(t)
	fn(&s)
	return SetStyle(t, s)
}

func WithDisplay(t *nodetree.Tree, d Display) *nodetree.Tree {
	return restyle(t, func(s *Style) { s.Display = d })
}

func WithDirection(t *nodetree.Tree, d Direction) *nodetree.Tree {
	return restyle(t, func(s *Style) { s.Direction = d })
}

func WithWidth(t *nodetree.Tree, v Val) *nodetree.Tree {
	return restyle(t, func(s *Style) { s.Width = v })
}

func WithHeight(t *nodetree.Tree, v Val) *nodetree.Tree {
	return restyle(t, func(s *Style) { s.Height = v })
}

func WithPadding(t *nodetree.Tree, v Val) *nodetree.Tree {
	return restyle(t, func(s *Style) { s.Padding = v })
}

func WithMargin(t *nodetree.Tree, v Val) *nodetree.Tree {
	return restyle(t, func(s *Style) { s.Margin = v })
}

func WithGap(t *nodetree.Tree, v Val) *nodetree.Tree {
	return restyle(t, func(s *Style) { s.Gap = v })
}

// WithBackground sets the node's background color.
func WithBackground(t *nodetree.Tree, c Color) *nodetree.Tree {
	return nodetree.With(t, BackgroundColor{Color: c})
}

// WithTextColor recolors the node's text, if it has any.
func WithTextColor(t *nodetree.Tree, c Color) *nodetree.Tree {
	if tx, ok := nodetree.Get[Text](t); ok {
		tx.Color = c
	}
	return t
}
