package ecs

import (
	"reflect"
	"runtime"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type vec3 struct {
	X, Y, Z float32
}

type named struct {
	Name  string
	Tags  []string
	Owner *vec3
}

func TestHolderRoundTrip(t *testing.T) {
	t.Run("scalars", func(t *testing.T) {
		for _, v := range []int64{0, 1, -1, 1 << 40, -(1 << 62)} {
			h := HolderFromValue(&v)
			assert.Equal(t, v, Value[int64](h))
		}
		for _, v := range []float64{0, 3.5, -1e300} {
			h := HolderFromValue(&v)
			assert.Equal(t, v, Value[float64](h))
		}
		b := true
		assert.True(t, Value[bool](HolderFromValue(&b)))
	})

	t.Run("structs", func(t *testing.T) {
		for i := 0; i < 64; i++ {
			v := vec3{X: float32(i), Y: float32(i) * 0.5, Z: -float32(i)}
			h := HolderFromValue(&v)
			assert.Equal(t, v, Value[vec3](h))
			assert.Equal(t, unsafe.Sizeof(v), h.Layout().Size)
		}
	})

	t.Run("zero sized", func(t *testing.T) {
		v := struct{}{}
		h := HolderFromValue(&v)
		assert.Equal(t, uintptr(0), h.Layout().Size)
		assert.Equal(t, struct{}{}, Value[struct{}](h))
	})

	t.Run("pointers survive collection", func(t *testing.T) {
		v := named{Name: "hud", Tags: []string{"a", "b"}, Owner: &vec3{X: 7}}
		h := HolderFromValue(&v)
		v = named{}
		runtime.GC()
		runtime.GC()
		got := Value[named](h)
		assert.Equal(t, "hud", got.Name)
		assert.Equal(t, []string{"a", "b"}, got.Tags)
		require.NotNil(t, got.Owner)
		assert.Equal(t, float32(7), got.Owner.X)
	})
}

func TestHolderCloneIsDeep(t *testing.T) {
	v := vec3{X: 1, Y: 2, Z: 3}
	orig := HolderFromValue(&v)
	clone := orig.Clone()

	Ptr[vec3](orig).X = 100
	assert.Equal(t, vec3{X: 1, Y: 2, Z: 3}, Value[vec3](clone))

	Ptr[vec3](clone).Z = -5
	assert.Equal(t, vec3{X: 100, Y: 2, Z: 3}, Value[vec3](orig))
	assert.NotEqual(t, orig.Pointer(), clone.Pointer())

	// The source value is independent of both.
	assert.Equal(t, vec3{X: 1, Y: 2, Z: 3}, v)
}

func TestHolderFromBytes(t *testing.T) {
	v := vec3{X: 4, Y: 5, Z: 6}
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&v)), unsafe.Sizeof(v))

	h := HolderFromBytes(raw, LayoutOf[vec3]())
	assert.Equal(t, v, Value[vec3](h))
	assert.Equal(t, raw, h.Bytes())

	raw[0] ^= 0xff
	assert.Equal(t, vec3{X: 4, Y: 5, Z: 6}, Value[vec3](h), "holder must own a copy")

	assert.PanicsWithValue(t, "ecs: 3 bytes do not fit layout ecs.vec3(size=12, align=4)", func() {
		HolderFromBytes(raw[:3], LayoutOf[vec3]())
	})
}

func TestHolderRawLayout(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	h := HolderFromBytes(src, RawLayout(8, 8))
	assert.Equal(t, src, h.Bytes())
	assert.Zero(t, uintptr(h.Pointer())%8)
	assert.Equal(t, uint64(0x0807060504030201), Value[uint64](h))

	assert.Panics(t, func() { RawLayout(4, 3) })
}

func TestHolderOwnership(t *testing.T) {
	t.Run("into owned transfers", func(t *testing.T) {
		v := vec3{X: 9}
		h := HolderFromValue(&v)
		p := IntoOwned[vec3](h)
		assert.Equal(t, float32(9), p.X)
		assert.False(t, h.Live())
		assert.Panics(t, func() { h.Pointer() })
		assert.PanicsWithValue(t, "ecs: byte holder released twice or after ownership transfer", h.Release)
	})

	t.Run("release twice", func(t *testing.T) {
		v := 1
		h := HolderFromValue(&v)
		h.Release()
		assert.False(t, h.Live())
		assert.Panics(t, h.Release)
		assert.Panics(t, func() { IntoOwned[int](h) })
	})

	t.Run("clone after transfer", func(t *testing.T) {
		v := 1
		h := HolderFromValue(&v)
		c := h.Clone()
		IntoOwned[int](h)
		assert.Panics(t, func() { h.Clone() })
		assert.Equal(t, 1, Value[int](c))
		c.Release()
	})
}

func TestBundleLayout(t *testing.T) {
	type position struct{ X, Y int }
	type label struct{ Text string }
	type bundle struct {
		Position position
		Label    label
		hidden   int
	}

	fields := BundleLayout(reflect.TypeFor[bundle]())
	require.Len(t, fields, 2)
	assert.Equal(t, "Position", fields[0].Name)
	assert.Equal(t, reflect.TypeFor[position](), fields[0].Type())
	assert.Equal(t, "Label", fields[1].Name)
	assert.Equal(t, unsafe.Offsetof(bundle{}.Label), fields[1].Offset)

	assert.Panics(t, func() { BundleLayout(reflect.TypeFor[int]()) })

	type dup struct {
		A label
		B label
	}
	assert.Panics(t, func() { BundleLayout(reflect.TypeFor[dup]()) })
}
