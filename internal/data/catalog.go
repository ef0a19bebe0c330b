package data

import (
	"fmt"
	"reflect"
	"sort"
	"unsafe"

	"github.com/l1jgo/station/internal/core/ecs"
	"github.com/l1jgo/station/internal/core/nodetree"
	"github.com/l1jgo/station/internal/ui"
)

// Decoder fills the value behind ptr, typically yaml.Node.Decode.
type Decoder func(ptr any) error

type entry struct {
	typ    reflect.Type
	bundle bool
	attach func(t *nodetree.Tree, ptr any)
}

// Catalog maps component names used in templates and scripts to Go types.
type Catalog struct {
	entries map[string]entry
}

func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[string]entry, 16)}
}

// Register exposes component T under name.
func Register[T any](c *Catalog, name string) {
	c.add(name, entry{
		typ: reflect.TypeFor[T](),
		attach: func(t *nodetree.Tree, ptr any) {
			nodetree.With(t, *ptr.(*T))
		},
	})
}

// RegisterBundle exposes bundle B under name. Its fields are attached as
// separate components.
func RegisterBundle[B any](c *Catalog, name string) {
	c.add(name, entry{
		typ:    reflect.TypeFor[B](),
		bundle: true,
		attach: func(t *nodetree.Tree, ptr any) {
			t.WithBundle(ptr)
		},
	})
}

// RegisterType exposes a component type only known at runtime. Values are
// carried as raw bytes.
func (c *Catalog) RegisterType(name string, typ reflect.Type) {
	c.add(name, entry{
		typ: typ,
		attach: func(t *nodetree.Tree, ptr any) {
			l := ecs.LayoutFor(typ)
			raw := unsafe.Slice((*byte)(reflect.ValueOf(ptr).UnsafePointer()), l.Size)
			t.Insert(typ, nodetree.NewRawHolder(ecs.HolderFromBytes(raw, l), typ))
		},
	})
}

func (c *Catalog) add(name string, e entry) {
	if _, dup := c.entries[name]; dup {
		panic(fmt.Sprintf("data: component name %q registered twice", name))
	}
	c.entries[name] = e
}

// Attach decodes the component called name and attaches it to t.
func (c *Catalog) Attach(t *nodetree.Tree, name string, decode Decoder) error {
	e, ok := c.entries[name]
	if !ok {
		return fmt.Errorf("unknown component %q", name)
	}
	ptr := reflect.New(e.typ).Interface()
	if err := decode(ptr); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	e.attach(t, ptr)
	return nil
}

// Has reports whether name is registered.
func (c *Catalog) Has(name string) bool {
	_, ok := c.entries[name]
	return ok
}

// Names returns the registered names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.entries))
	for n := range c.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DefaultCatalog knows the HUD vocabulary of package ui.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	Register[ui.Style](c, "Style")
	Register[ui.Text](c, "Text")
	Register[ui.BackgroundColor](c, "Background")
	Register[ui.BorderColor](c, "Border")
	Register[ui.Root](c, "Root")
	Register[ui.Hidden](c, "Hidden")
	RegisterBundle[ui.NodeBundle](c, "Node")
	RegisterBundle[ui.TextBundle](c, "TextNode")
	return c
}
