package persist

import (
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/l1jgo/station/internal/core/ecs"
)

// SnapshotNode is one entity of a captured hierarchy.
type SnapshotNode struct {
	Entity     ecs.EntityID
	Parent     ecs.EntityID // zero for roots
	Position   int          // index in the parent's child order
	Depth      int
	Components []string
	TypeHash   uint64 // xxhash of the component names, for cheap shape comparisons
}

// Snapshot is a point-in-time copy of the entity hierarchy shape.
type Snapshot struct {
	ID      uuid.UUID
	Tick    uint64
	TakenAt time.Time
	Nodes   []SnapshotNode
}

// Capture walks the hierarchy breadth-first from every root. It only reads
// the world.
func Capture(w *ecs.World, tick uint64) Snapshot {
	s := Snapshot{ID: uuid.New(), Tick: tick, TakenAt: time.Now().UTC()}
	reg := w.Registry()

	type item struct {
		entity, parent ecs.EntityID
		position, depth int
	}
	var queue []item
	for i, root := range w.Roots() {
		queue = append(queue, item{entity: root, position: i})
	}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]

		ids := w.ComponentsOf(it.entity)
		names := make([]string, len(ids))
		for i, id := range ids {
			names[i] = reg.Info(id).Name
		}
		s.Nodes = append(s.Nodes, SnapshotNode{
			Entity:     it.entity,
			Parent:     it.parent,
			Position:   it.position,
			Depth:      it.depth,
			Components: names,
			TypeHash:   ShapeHash(names),
		})
		for i, c := range w.Children(it.entity) {
			queue = append(queue, item{entity: c, parent: it.entity, position: i, depth: it.depth + 1})
		}
	}
	return s
}

// ShapeHash hashes a component name list.
func ShapeHash(names []string) uint64 {
	return xxhash.Sum64String(strings.Join(names, "\x00"))
}

// Diff returns the entities whose shape differs between two snapshots, plus
// those present in only one of them.
func Diff(a, b Snapshot) []ecs.EntityID {
	shapes := make(map[ecs.EntityID]uint64, len(a.Nodes))
	for _, n := range a.Nodes {
		shapes[n.Entity] = n.TypeHash
	}
	var changed []ecs.EntityID
	for _, n := range b.Nodes {
		h, ok := shapes[n.Entity]
		if !ok || h != n.TypeHash {
			changed = append(changed, n.Entity)
		}
		delete(shapes, n.Entity)
	}
	for _, n := range a.Nodes {
		if _, gone := shapes[n.Entity]; gone {
			changed = append(changed, n.Entity)
		}
	}
	return changed
}
