package data

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/station/internal/core/ecs"
	"github.com/l1jgo/station/internal/core/nodetree"
	"github.com/l1jgo/station/internal/ui"
)

const hudYAML = `
templates:
  panel:
    components:
      Node:
        style: {direction: column, width: 20%, padding: 1}
        background: "#2a2a3a"
      Border: "#8080b3"
  resources:
    use: panel
    components:
      Root: {name: resources}
    children:
      - components: {Text: "Oxygen"}
      - components:
          Text: {value: "Water", color: "#4a8c4a"}
          Hidden: {}
      - components:
          TextNode: {text: "CO2", style: {margin: 1}}
`

func TestParseTemplates(t *testing.T) {
	table, err := ParseTemplates([]byte(hudYAML), DefaultCatalog())
	require.NoError(t, err)
	assert.Equal(t, []string{"panel", "resources"}, table.Names())
	assert.Equal(t, 2, table.Count())
	assert.NotNil(t, table.Get("panel"))
	assert.Nil(t, table.Get("missing"))

	tree, err := table.Build("resources")
	require.NoError(t, err)
	assert.Equal(t, []reflect.Type{
		reflect.TypeFor[ui.Style](),
		reflect.TypeFor[ui.BackgroundColor](),
		reflect.TypeFor[ui.BorderColor](),
		reflect.TypeFor[ui.Root](),
	}, tree.Types())

	style := ui.StyleOf(tree)
	assert.Equal(t, ui.Percent(20), style.Width)
	assert.Equal(t, ui.Px(1), style.Padding)
	bg, ok := nodetree.Get[ui.BackgroundColor](tree)
	require.True(t, ok)
	assert.Equal(t, ui.MustHex("#2a2a3a"), bg.Color)

	kids := tree.Children()
	require.Len(t, kids, 3)
	tx, ok := nodetree.Get[ui.Text](kids[0])
	require.True(t, ok)
	assert.Equal(t, "Oxygen", tx.Value)
	tx, _ = nodetree.Get[ui.Text](kids[1])
	assert.Equal(t, ui.MustHex("#4a8c4a"), tx.Color)
	assert.True(t, nodetree.Has[ui.Hidden](kids[1]))
	assert.Equal(t, ui.Px(1), ui.StyleOf(kids[2]).Margin)

	// Every Build is a fresh tree.
	again, err := table.Build("resources")
	require.NoError(t, err)
	assert.NotSame(t, tree, again)
}

func TestTemplateErrors(t *testing.T) {
	cases := map[string]string{
		"unknown component": "templates:\n  a:\n    components: {Sprite: x}\n",
		"bad value":         "templates:\n  a:\n    components: {Style: {width: wide}}\n",
		"unknown use":       "templates:\n  a:\n    use: b\n",
		"cycle":             "templates:\n  a:\n    use: b\n  b:\n    use: a\n",
		"components list":   "templates:\n  a:\n    components: [Text]\n",
		"syntax":            "templates: [",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTemplates([]byte(src), DefaultCatalog())
			assert.Error(t, err)
		})
	}

	table, err := ParseTemplates([]byte("templates: {}\n"), DefaultCatalog())
	require.NoError(t, err)
	_, err = table.Build("nope")
	assert.EqualError(t, err, `unknown template "nope"`)
}

func TestLoadTemplates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hud.yaml")
	require.NoError(t, os.WriteFile(path, []byte(hudYAML), 0o644))
	table, err := LoadTemplates(path, DefaultCatalog())
	require.NoError(t, err)
	assert.Equal(t, 2, table.Count())

	_, err = LoadTemplates(filepath.Join(t.TempDir(), "missing.yaml"), DefaultCatalog())
	assert.ErrorContains(t, err, "read templates")
}

func TestDecodeNode(t *testing.T) {
	tree, err := DecodeNode(DefaultCatalog(), []byte("components: {Text: hi}\nchildren: [{}, {}]\n"))
	require.NoError(t, err)
	assert.Len(t, tree.Children(), 2)

	_, err = DecodeNode(DefaultCatalog(), []byte("use: panel\n"))
	assert.Error(t, err)
}

type gauge struct {
	Level int    `yaml:"level"`
	Label string `yaml:"label"`
}

func TestCatalogRuntimeType(t *testing.T) {
	c := NewCatalog()
	c.RegisterType("Gauge", reflect.TypeFor[gauge]())
	assert.True(t, c.Has("Gauge"))
	assert.Equal(t, []string{"Gauge"}, c.Names())

	tree, err := DecodeNode(c, []byte("components: {Gauge: {level: 3, label: o2}}\n"))
	require.NoError(t, err)
	g, ok := nodetree.Get[gauge](tree)
	require.True(t, ok)
	assert.Equal(t, gauge{Level: 3, Label: "o2"}, *g)

	// The tree reconciles like any other.
	w := ecs.NewWorld()
	r := nodetree.NewReconciler(w, nil)
	e := w.Spawn()
	r.Insert(e, tree)
	r.Run()
	stored, ok := ecs.Get[gauge](w, e)
	require.True(t, ok)
	assert.Equal(t, "o2", stored.Label)

	assert.Panics(t, func() { c.RegisterType("Gauge", reflect.TypeFor[gauge]()) })
}
