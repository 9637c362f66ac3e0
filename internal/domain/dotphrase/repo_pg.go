package dotphrase

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinote/clinote/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const cols = `id, user_id, name, content, category, created_at, updated_at`

func scan(row pgx.Row) (*DotPhrase, error) {
	var p DotPhrase
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Content, &p.Category, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// mapWriteError turns a unique violation on (user_id, name) into ErrDuplicate.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

func (r *repoPG) Create(ctx context.Context, p *DotPhrase) error {
	p.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO dot_phrases (id, user_id, name, content, category)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		p.ID, p.UserID, p.Name, p.Content, p.Category).Scan(&p.CreatedAt, &p.UpdatedAt)
	return mapWriteError(err)
}

func (r *repoPG) GetByID(ctx context.Context, userID string, id uuid.UUID) (*DotPhrase, error) {
	return scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM dot_phrases WHERE user_id = $1 AND id = $2`, userID, id))
}

func (r *repoPG) GetByName(ctx context.Context, userID, name string) (*DotPhrase, error) {
	return scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM dot_phrases WHERE user_id = $1 AND name = $2`, userID, name))
}

func (r *repoPG) Update(ctx context.Context, p *DotPhrase) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE dot_phrases SET name = $3, content = $4, category = $5, updated_at = NOW()
		WHERE user_id = $1 AND id = $2
		RETURNING created_at, updated_at`,
		p.UserID, p.ID, p.Name, p.Content, p.Category).Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return mapWriteError(err)
}

func (r *repoPG) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM dot_phrases WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*DotPhrase, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM dot_phrases WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+cols+` FROM dot_phrases WHERE user_id = $1 ORDER BY name LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := []*DotPhrase{}
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
