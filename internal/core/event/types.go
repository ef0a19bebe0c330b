package event

import "github.com/l1jgo/station/internal/core/ecs"

// TreeApplied is emitted each time a node tree is reconciled onto an entity.
type TreeApplied struct {
	Entity      ecs.EntityID
	Inserted    int
	Overwritten int
	Removed     int
	Children    int
}

// ChildSpawned is emitted when reconciliation creates a child entity.
type ChildSpawned struct {
	Parent ecs.EntityID
	Child  ecs.EntityID
	Index  int
}

// ChildDespawned is emitted when a trailing child and its subtree are removed.
// Count includes the child itself.
type ChildDespawned struct {
	Parent ecs.EntityID
	Child  ecs.EntityID
	Count  int
}

// SnapshotSaved is emitted after a hierarchy snapshot was written.
type SnapshotSaved struct {
	ID   string
	Rows int
}
