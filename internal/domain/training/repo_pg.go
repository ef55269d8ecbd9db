package training

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carehub/carehub/internal/platform/db"
)

type PGRepo struct {
	pool *pgxpool.Pool
}

func NewPGRepo(pool *pgxpool.Pool) *PGRepo { return &PGRepo{pool: pool} }

type queryable interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (r *PGRepo) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const trainingCols = `id, staff_id, course, provider, completed_at, expiry_date, status, notes, attachments, created_at, updated_at`

func scanTraining(row pgx.Row) (*Training, error) {
	var t Training
	err := row.Scan(&t.ID, &t.StaffID, &t.Course, &t.Provider, &t.CompletedAt,
		&t.ExpiryDate, &t.Status, &t.Notes, &t.Attachments, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PGRepo) Create(ctx context.Context, t *Training) error {
	t.ID = uuid.New()
	if t.Attachments == nil {
		t.Attachments = []string{}
	}
	query := `INSERT INTO training (id, staff_id, course, provider, completed_at, expiry_date, status, notes, attachments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		t.ID, t.StaffID, t.Course, t.Provider, t.CompletedAt, t.ExpiryDate, t.Status, t.Notes, t.Attachments,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (r *PGRepo) GetByID(ctx context.Context, id uuid.UUID) (*Training, error) {
	query := fmt.Sprintf(`SELECT %s FROM training WHERE id = $1`, trainingCols)
	return scanTraining(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *PGRepo) Update(ctx context.Context, t *Training) error {
	if t.Attachments == nil {
		t.Attachments = []string{}
	}
	query := `UPDATE training SET course = $2, provider = $3, completed_at = $4,
			expiry_date = $5, status = $6, notes = $7, attachments = $8, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		t.ID, t.Course, t.Provider, t.CompletedAt, t.ExpiryDate, t.Status, t.Notes, t.Attachments,
	).Scan(&t.UpdatedAt)
}

func (r *PGRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM training WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Training, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM training`).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM training ORDER BY expiry_date ASC NULLS LAST LIMIT $1 OFFSET $2`, trainingCols)
	rows, err := r.conn(ctx).Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectTrainings(rows, total)
}

func (r *PGRepo) ListByStaff(ctx context.Context, staffID uuid.UUID, limit, offset int) ([]Training, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM training WHERE staff_id = $1`, staffID).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM training WHERE staff_id = $1
		ORDER BY expiry_date ASC NULLS LAST LIMIT $2 OFFSET $3`, trainingCols)
	rows, err := r.conn(ctx).Query(ctx, query, staffID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectTrainings(rows, total)
}

func (r *PGRepo) ListByStatus(ctx context.Context, staffID *uuid.UUID, statuses []string, limit, offset int) ([]Training, int, error) {
	where := `status = ANY($1)`
	args := []any{statuses}
	next := 2
	if staffID != nil {
		where += fmt.Sprintf(` AND staff_id = $%d`, next)
		args = append(args, *staffID)
		next++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM training WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM training WHERE %s
		ORDER BY expiry_date ASC NULLS LAST LIMIT $%d OFFSET $%d`, trainingCols, where, next, next+1)
	rows, err := r.conn(ctx).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectTrainings(rows, total)
}

func (r *PGRepo) ListAll(ctx context.Context) ([]Training, error) {
	query := fmt.Sprintf(`SELECT %s FROM training ORDER BY created_at`, trainingCols)
	rows, err := r.conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out, _, err := collectTrainings(rows, 0)
	return out, err
}

func (r *PGRepo) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE training SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func collectTrainings(rows pgx.Rows, total int) ([]Training, int, error) {
	out := []Training{}
	for rows.Next() {
		t, err := scanTraining(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *t)
	}
	return out, total, rows.Err()
}
