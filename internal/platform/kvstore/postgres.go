package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinote/clinote/internal/platform/db"
)

type queryable interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGStore keeps values in the user_preferences table as JSONB.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return s.pool
}

// Load locks the row when ctx carries a transaction.
func (s *PGStore) Load(ctx context.Context, userID, key string, dst any) error {
	query := `SELECT value FROM user_preferences WHERE user_id = $1 AND key = $2`
	if db.TxFromContext(ctx) != nil {
		query += ` FOR UPDATE`
	}
	var raw []byte
	err := s.conn(ctx).QueryRow(ctx, query, userID, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *PGStore) Save(ctx context.Context, userID, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = s.conn(ctx).Exec(ctx, `
		INSERT INTO user_preferences (user_id, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		userID, key, raw,
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *PGStore) Delete(ctx context.Context, userID, key string) error {
	_, err := s.conn(ctx).Exec(ctx,
		`DELETE FROM user_preferences WHERE user_id = $1 AND key = $2`, userID, key)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Atomic runs fn in a transaction. A first write to a missing key is not
// locked by Load; concurrent inserts settle on the last upsert.
func (s *PGStore) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.InTx(ctx, s.pool, fn)
}
