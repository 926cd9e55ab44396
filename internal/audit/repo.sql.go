package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgRepository stores audit entries in Postgres.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs PgRepository.
func NewRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Insert(ctx context.Context, entry Entry) error {
	prev, err := json.Marshal(entry.PreviousState)
	if err != nil {
		return err
	}
	next, err := json.Marshal(entry.NewState)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO audit_log (record_id, occurred_at, action, entity, entity_id, user_id, reason, previous_state, new_state)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		entry.RecordID, entry.At, entry.Action, entry.Entity, entry.EntityID, entry.UserID, entry.Reason, prev, next)
	return err
}

func (r *PgRepository) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, record_id, occurred_at, action, entity, entity_id, user_id, reason, previous_state, new_state
FROM audit_log
WHERE ($1 = '' OR entity = $1)
  AND ($2 = '' OR entity_id = $2)
ORDER BY occurred_at DESC, id DESC
LIMIT $3`, filter.Entity, filter.EntityID, filter.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		var prev, next []byte
		if err := rows.Scan(&e.ID, &e.RecordID, &e.At, &e.Action, &e.Entity, &e.EntityID, &e.UserID, &e.Reason, &prev, &next); err != nil {
			return nil, err
		}
		if len(prev) > 0 {
			if err := json.Unmarshal(prev, &e.PreviousState); err != nil {
				return nil, err
			}
		}
		if len(next) > 0 {
			if err := json.Unmarshal(next, &e.NewState); err != nil {
				return nil, err
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
