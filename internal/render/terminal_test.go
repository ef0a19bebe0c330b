package render

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/station/internal/core/ecs"
	"github.com/l1jgo/station/internal/core/nodetree"
	"github.com/l1jgo/station/internal/ui"
)

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(w, h)
	t.Cleanup(screen.Fini)
	return screen
}

// line returns row y of the screen with trailing blanks trimmed.
func line(screen tcell.SimulationScreen, y int) string {
	cells, w, _ := screen.GetContents()
	var b strings.Builder
	for x := 0; x < w; x++ {
		c := cells[y*w+x]
		if len(c.Runes) == 0 {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(c.Runes[0])
	}
	return strings.TrimRight(b.String(), " ")
}

func reconcile(t *testing.T, tree *nodetree.Tree) (*ecs.World, ecs.EntityID) {
	t.Helper()
	w := ecs.NewWorld()
	r := nodetree.NewReconciler(w, nil)
	root := w.Spawn()
	r.Insert(root, tree)
	r.Run()
	return w, root
}

func TestDrawHierarchy(t *testing.T) {
	panel := ui.Div().WithChildren(
		ui.Label("Oxygen"),
		ui.WithPadding(ui.Label("Water"), ui.Px(1)),
		nodetree.With(ui.Label("secret"), ui.Hidden{}),
		ui.WithDisplay(ui.Label("gone"), ui.DisplayNone),
		ui.Div().WithChild(ui.Label("CO2")),
	)
	w, root := reconcile(t, panel)

	screen := newScreen(t, 20, 6)
	term := NewTerminal(screen)
	assert.Equal(t, 3, term.Draw(w, root))

	assert.Equal(t, "  Oxygen", line(screen, 0))
	assert.Equal(t, "   Water", line(screen, 1))
	assert.Equal(t, "    CO2", line(screen, 2))
	assert.Equal(t, "", line(screen, 3))
}

func TestDrawClipsAndWideRunes(t *testing.T) {
	tree := ui.Label("水abc")
	ui.WithWidth(tree, ui.Px(4))
	w, root := reconcile(t, tree)

	screen := newScreen(t, 10, 2)
	NewTerminal(screen).Draw(w, root)
	cells, _, _ := screen.GetContents()
	assert.Equal(t, '水', cells[0].Runes[0])
	assert.Equal(t, 'a', cells[2].Runes[0], "wide runes take two cells")
	assert.Equal(t, 'b', cells[3].Runes[0])
	assert.NotContains(t, line(screen, 0), "c", "width limit clips the rest")

	assert.Equal(t, 2, RuneWidth('水'))
	assert.Equal(t, 1, RuneWidth('a'))
	assert.Equal(t, 5, TextWidth("水abc"))
}

func TestDrawColors(t *testing.T) {
	tree := ui.WithBackground(ui.Div(), ui.MustHex("#2a2a3a")).
		WithChild(ui.WithTextColor(ui.Label("Oxygen"), ui.MustHex("#4a4a8c")))
	w, root := reconcile(t, tree)

	screen := newScreen(t, 20, 2)
	term := NewTerminal(screen)
	term.Draw(w, root)
	assert.Equal(t, "  Oxygen", line(screen, 0))

	kid := w.Children(root)[0]
	tx, ok := ecs.Get[ui.Text](w, kid)
	require.True(t, ok)
	bgc, ok := ecs.Get[ui.BackgroundColor](w, root)
	require.True(t, ok)
	fg, bg, _ := term.textStyle(tx, bgc.Color).Decompose()
	assert.Equal(t, tcell.NewRGBColor(0x4a, 0x4a, 0x8c), fg)
	assert.Equal(t, tcell.NewRGBColor(0x2a, 0x2a, 0x3a), bg)

	fg, bg, _ = term.textStyle(&ui.Text{Value: "plain"}, ui.Color{}).Decompose()
	assert.Equal(t, tcell.ColorDefault, fg)
	assert.Equal(t, tcell.ColorDefault, bg)
}

func TestDrawStopsAtScreenEdge(t *testing.T) {
	tree := ui.Div()
	for i := 0; i < 10; i++ {
		tree.WithChild(ui.Labelf("row %d", i))
	}
	w, root := reconcile(t, tree)
	screen := newScreen(t, 10, 3)
	assert.Equal(t, 3, NewTerminal(screen).Draw(w, root))
	assert.Equal(t, "  row 2", line(screen, 2))

	w.DespawnRecursive(root)
	assert.Equal(t, 0, NewTerminal(screen).Draw(w, root))
}
