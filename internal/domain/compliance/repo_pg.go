package compliance

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

const complianceCols = `id, requirement, category, status, due_date, completed_at, assigned_to,
	notes, attachments, created_at, updated_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.Requirement, &rec.Category, &rec.Status, &rec.DueDate,
		&rec.CompletedAt, &rec.AssignedTo, &rec.Notes, &rec.Attachments, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *PGRepo) Create(ctx context.Context, rec *Record) error {
	rec.ID = uuid.New()
	if rec.Status == "" {
		rec.Status = StatusActionRequired
	}
	if rec.Attachments == nil {
		rec.Attachments = []string{}
	}
	query := `INSERT INTO compliance (id, requirement, category, status, due_date, completed_at,
			assigned_to, notes, attachments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		rec.ID, rec.Requirement, rec.Category, rec.Status, rec.DueDate, rec.CompletedAt,
		rec.AssignedTo, rec.Notes, rec.Attachments,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
}

func (r *PGRepo) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	query := fmt.Sprintf(`SELECT %s FROM compliance WHERE id = $1`, complianceCols)
	return scanRecord(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *PGRepo) Update(ctx context.Context, rec *Record) error {
	if rec.Attachments == nil {
		rec.Attachments = []string{}
	}
	query := `UPDATE compliance SET requirement = $2, category = $3, status = $4, due_date = $5,
			completed_at = $6, assigned_to = $7, notes = $8, attachments = $9, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		rec.ID, rec.Requirement, rec.Category, rec.Status, rec.DueDate, rec.CompletedAt,
		rec.AssignedTo, rec.Notes, rec.Attachments,
	).Scan(&rec.UpdatedAt)
}

func (r *PGRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM compliance WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PGRepo) List(ctx context.Context, status string, limit, offset int) ([]Record, int, error) {
	where := ""
	args := []any{}
	idx := 1
	if status != "" {
		where = fmt.Sprintf(` WHERE status = $%d`, idx)
		args = append(args, status)
		idx++
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM compliance`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM compliance%s ORDER BY due_date ASC NULLS LAST LIMIT $%d OFFSET $%d`,
		complianceCols, where, idx, idx+1)
	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *rec)
	}
	return out, total, rows.Err()
}
