package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/l1jgo/scriptworld/internal/bridge"
	"github.com/l1jgo/scriptworld/internal/core/ecs"
)

// ErrNoSnapshot is returned when a simulation has never been saved.
var ErrNoSnapshot = errors.New("persist: no snapshot")

// SnapshotMeta describes one stored world snapshot.
type SnapshotMeta struct {
	ID          uuid.UUID
	Simulation  string
	Tick        uint64
	TakenAt     time.Time
	EntityCount int
}

// EntityRow is one entity of a stored snapshot, components still encoded.
type EntityRow struct {
	Entity     ecs.EntityID
	Components json.RawMessage
}

type SnapshotRepo struct {
	db         *DB
	simulation string
}

func NewSnapshotRepo(db *DB, simulation string) *SnapshotRepo {
	return &SnapshotRepo{db: db, simulation: simulation}
}

// encodedSnapshot is a WorldSnapshot turned into column values.
type encodedSnapshot struct {
	resources []byte
	entities  []encodedEntity
}

type encodedEntity struct {
	id         int64
	components []byte
}

func encodeSnapshot(snap *bridge.WorldSnapshot) (*encodedSnapshot, error) {
	res, err := json.Marshal(snap.Resources)
	if err != nil {
		return nil, fmt.Errorf("encode resources: %w", err)
	}
	out := &encodedSnapshot{resources: res, entities: make([]encodedEntity, 0, len(snap.Entities))}
	for _, es := range snap.Entities {
		data, err := json.Marshal(es.Components)
		if err != nil {
			return nil, fmt.Errorf("encode entity %s: %w", es.Entity, err)
		}
		out.entities = append(out.entities, encodedEntity{id: int64(es.Entity), components: data})
	}
	return out, nil
}

// Save writes snap as a new snapshot in a single transaction.
func (r *SnapshotRepo) Save(ctx context.Context, tick uint64, snap *bridge.WorldSnapshot) (uuid.UUID, error) {
	enc, err := encodeSnapshot(snap)
	if err != nil {
		return uuid.Nil, err
	}
	id := uuid.New()

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("snapshot begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO world_snapshots (id, simulation, tick, entity_count, resources)
		 VALUES ($1, $2, $3, $4, $5)`,
		id, r.simulation, int64(tick), len(enc.entities), enc.resources,
	); err != nil {
		return uuid.Nil, fmt.Errorf("snapshot insert: %w", err)
	}

	batch := &pgx.Batch{}
	for _, e := range enc.entities {
		batch.Queue(
			`INSERT INTO snapshot_entities (snapshot_id, entity_id, components)
			 VALUES ($1, $2, $3)`,
			id, e.id, e.components)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return uuid.Nil, fmt.Errorf("snapshot entities: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("snapshot commit: %w", err)
	}
	r.db.log.Debug("world snapshot saved",
		zap.Stringer("id", id),
		zap.Uint64("tick", tick),
		zap.Int("entities", len(enc.entities)))
	return id, nil
}

// Latest returns the newest snapshot of this simulation.
func (r *SnapshotRepo) Latest(ctx context.Context) (*SnapshotMeta, error) {
	m := &SnapshotMeta{}
	var tick int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, simulation, tick, taken_at, entity_count
		 FROM world_snapshots
		 WHERE simulation = $1
		 ORDER BY tick DESC, taken_at DESC
		 LIMIT 1`, r.simulation,
	).Scan(&m.ID, &m.Simulation, &tick, &m.TakenAt, &m.EntityCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	m.Tick = uint64(tick)
	return m, nil
}

// Entities loads the stored entity rows of snapshot id in entity order.
func (r *SnapshotRepo) Entities(ctx context.Context, id uuid.UUID) ([]EntityRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT entity_id, components
		 FROM snapshot_entities
		 WHERE snapshot_id = $1
		 ORDER BY entity_id`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []EntityRow
	for rows.Next() {
		var (
			eid  int64
			data []byte
		)
		if err := rows.Scan(&eid, &data); err != nil {
			return nil, err
		}
		result = append(result, EntityRow{Entity: ecs.EntityID(eid), Components: data})
	}
	return result, rows.Err()
}

// Prune deletes all but the newest keep snapshots and reports how many
// were removed.
func (r *SnapshotRepo) Prune(ctx context.Context, keep int) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM world_snapshots
		 WHERE simulation = $1 AND id NOT IN (
		     SELECT id FROM world_snapshots
		     WHERE simulation = $1
		     ORDER BY tick DESC, taken_at DESC
		     LIMIT $2)`,
		r.simulation, keep)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
