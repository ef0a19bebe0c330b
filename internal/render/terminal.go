// Package render draws a reconciled HUD hierarchy on a terminal.
package render

import (
	"slices"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/text/width"

	"github.com/l1jgo/station/internal/core/ecs"
	"github.com/l1jgo/station/internal/ui"
)

// indentStep is the number of columns each hierarchy level is shifted by.
const indentStep = 2

// Terminal draws one text row per Text component, indented by depth.
type Terminal struct {
	screen tcell.Screen
	base   tcell.Style
}

func NewTerminal(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen, base: tcell.StyleDefault}
}

func (t *Terminal) Screen() tcell.Screen { return t.screen }

type frame struct {
	entity ecs.EntityID
	indent int
	bg     ui.Color
}

// Draw clears the screen, draws the subtree of root depth-first and shows
// the result. It returns the number of text rows drawn.
func (t *Terminal) Draw(w *ecs.World, root ecs.EntityID) int {
	t.screen.Clear()
	cols, rows := t.screen.Size()
	y := 0

	stack := []frame{{entity: root}}
	for len(stack) > 0 && y < rows {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !w.Alive(f.entity) || ecs.Has[ui.Hidden](w, f.entity) {
			continue
		}

		var style ui.Style
		if s, ok := ecs.Get[ui.Style](w, f.entity); ok {
			style = *s
		}
		if style.Display == ui.DisplayNone {
			continue
		}
		if bg, ok := ecs.Get[ui.BackgroundColor](w, f.entity); ok && bg.Color.Set {
			f.bg = bg.Color
		}
		y += style.Margin.Cells(0)
		x := f.indent + style.Padding.Cells(0)

		if tx, ok := ecs.Get[ui.Text](w, f.entity); ok && y < rows {
			limit := cols
			if !style.Width.IsAuto() {
				limit = min(cols, x+style.Width.Cells(cols-x))
			}
			t.drawText(x, y, limit, tx, f.bg)
			y++
		}

		kids := w.Children(f.entity)
		slices.Reverse(kids)
		for _, c := range kids {
			stack = append(stack, frame{entity: c, indent: x + indentStep, bg: f.bg})
		}
	}
	t.screen.Show()
	return y
}

func (t *Terminal) textStyle(tx *ui.Text, bg ui.Color) tcell.Style {
	st := t.base
	if tx.Color.Set {
		st = st.Foreground(toTcell(tx.Color))
	}
	if bg.Set {
		st = st.Background(toTcell(bg))
	}
	return st
}

func (t *Terminal) drawText(x, y, limit int, tx *ui.Text, bg ui.Color) {
	st := t.textStyle(tx, bg)
	for _, r := range tx.Value {
		cw := RuneWidth(r)
		if x+cw > limit {
			return
		}
		t.screen.SetContent(x, y, r, nil, st)
		x += cw
	}
}

// RuneWidth is the number of terminal cells r occupies.
func RuneWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// TextWidth is the number of terminal cells s occupies.
func TextWidth(s string) int {
	n := 0
	for _, r := range s {
		n += RuneWidth(r)
	}
	return n
}

func toTcell(c ui.Color) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
