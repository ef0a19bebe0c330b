package ecs

import (
	"fmt"
	"reflect"
	"sync"
)

// BundleField is one component of a bundle struct.
type BundleField struct {
	Name   string
	Offset uintptr
	Layout Layout
}

// Type is the component type stored in the field.
func (f BundleField) Type() reflect.Type { return f.Layout.Type }

var bundleCache sync.Map // reflect.Type -> []BundleField

// BundleLayout splits a bundle struct type into its exported fields, in
// declaration order. Each field is one component; nested structs are not
// flattened.
func BundleLayout(t reflect.Type) []BundleField {
	if cached, ok := bundleCache.Load(t); ok {
		return cached.([]BundleField)
	}
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("ecs: bundle %s is not a struct", t))
	}
	fields := make([]BundleField, 0, t.NumField())
	seen := make(map[reflect.Type]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if prev, dup := seen[f.Type]; dup {
			panic(fmt.Sprintf("ecs: bundle %s has fields %s and %s of the same type %s", t, prev, f.Name, f.Type))
		}
		seen[f.Type] = f.Name
		fields = append(fields, BundleField{
			Name:   f.Name,
			Offset: f.Offset,
			Layout: LayoutFor(f.Type),
		})
	}
	bundleCache.Store(t, fields)
	return fields
}
