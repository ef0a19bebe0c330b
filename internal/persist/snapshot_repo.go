package persist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type SnapshotRepo struct {
	db *DB
}

func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

var nodeColumns = []string{"snapshot_id", "entity", "parent", "position", "depth", "components", "type_hash"}

// nodeRows encodes the nodes of s for COPY. Unsigned ids are stored bit-for-bit
// in BIGINT columns.
func nodeRows(s Snapshot) [][]any {
	rows := make([][]any, len(s.Nodes))
	for i, n := range s.Nodes {
		var parent any
		if !n.Parent.IsZero() {
			parent = int64(n.Parent)
		}
		rows[i] = []any{s.ID, int64(n.Entity), parent, n.Position, n.Depth, n.Components, int64(n.TypeHash)}
	}
	return rows
}

// Save writes a snapshot and its nodes in a single transaction.
func (r *SnapshotRepo) Save(ctx context.Context, s Snapshot) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("snapshot begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO hierarchy_snapshots (id, tick, taken_at, entity_count)
		 VALUES ($1, $2, $3, $4)`,
		s.ID, int64(s.Tick), s.TakenAt, len(s.Nodes),
	); err != nil {
		return fmt.Errorf("snapshot insert: %w", err)
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"hierarchy_snapshot_nodes"},
		nodeColumns,
		pgx.CopyFromRows(nodeRows(s)),
	); err != nil {
		return fmt.Errorf("snapshot copy nodes: %w", err)
	}

	return tx.Commit(ctx)
}

// Prune deletes all but the newest keep snapshots and returns how many were removed.
func (r *SnapshotRepo) Prune(ctx context.Context, keep int) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM hierarchy_snapshots
		 WHERE id NOT IN (SELECT id FROM hierarchy_snapshots ORDER BY taken_at DESC LIMIT $1)`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("snapshot prune: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Count returns the number of stored snapshots.
func (r *SnapshotRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM hierarchy_snapshots`).Scan(&n); err != nil {
		return 0, fmt.Errorf("snapshot count: %w", err)
	}
	return n, nil
}
