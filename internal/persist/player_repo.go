package persist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// PlayerRepo reads and writes player snapshots. The snapshot is an opaque
// JSON blob; the simulation core produces and consumes it whole.
type PlayerRepo struct {
	db *DB
}

func NewPlayerRepo(db *DB) *PlayerRepo {
	return &PlayerRepo{db: db}
}

// Fetch returns the stored snapshot for uid, or (nil, false) when the player
// has never been saved.
func (r *PlayerRepo) Fetch(ctx context.Context, uid uint32) ([]byte, bool, error) {
	var data []byte
	err := r.db.Pool.QueryRow(ctx,
		`SELECT data FROM players WHERE uid = $1`, int64(uid),
	).Scan(&data)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("fetch player %d: %w", uid, err)
	}
	return data, true, nil
}

// Save upserts the snapshot for uid.
func (r *PlayerRepo) Save(ctx context.Context, uid uint32, data []byte) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO players (uid, data, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (uid) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		int64(uid), data,
	)
	if err != nil {
		return fmt.Errorf("save player %d: %w", uid, err)
	}
	return nil
}
