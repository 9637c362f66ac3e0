package notes

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

const cols = `id, user_id, patient_name, patient_dob, patient_mrn,
	selections, medications, generated_note, created_at, updated_at`

func scan(row pgx.Row) (*Note, error) {
	var n Note
	err := row.Scan(&n.ID, &n.UserID, &n.PatientName, &n.PatientDOB, &n.PatientMRN,
		&n.Selections, &n.Medications, &n.GeneratedNote, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *repoPG) Create(ctx context.Context, n *Note) error {
	n.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO ros_notes (id, user_id, patient_name, patient_dob, patient_mrn,
			selections, medications, generated_note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		n.ID, n.UserID, n.PatientName, n.PatientDOB, n.PatientMRN,
		n.Selections, n.Medications, n.GeneratedNote).Scan(&n.CreatedAt, &n.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, userID string, id uuid.UUID) (*Note, error) {
	return scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM ros_notes WHERE user_id = $1 AND id = $2`, userID, id))
}

func (r *repoPG) Update(ctx context.Context, n *Note) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE ros_notes SET patient_name = $3, patient_dob = $4, patient_mrn = $5,
			selections = $6, medications = $7, generated_note = $8, updated_at = NOW()
		WHERE user_id = $1 AND id = $2
		RETURNING created_at, updated_at`,
		n.UserID, n.ID, n.PatientName, n.PatientDOB, n.PatientMRN,
		n.Selections, n.Medications, n.GeneratedNote).Scan(&n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *repoPG) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM ros_notes WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Note, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM ros_notes WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+cols+` FROM ros_notes WHERE user_id = $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := []*Note{}
	for rows.Next() {
		n, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, n)
	}
	return items, total, rows.Err()
}
