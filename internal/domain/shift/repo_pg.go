package shift

import (
	"context"
	"fmt"
	"time"

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

const shiftCols = `id, staff_id, shift_date, shift_type, start_time, end_time, location,
	resident, rate, hours, created_at, updated_at`

func scanShift(row pgx.Row) (*Shift, error) {
	var s Shift
	err := row.Scan(&s.ID, &s.StaffID, &s.Date, &s.Type, &s.Start, &s.End, &s.Location,
		&s.Resident, &s.Rate, &s.Hours, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PGRepo) Create(ctx context.Context, s *Shift) error {
	s.ID = uuid.New()
	query := `INSERT INTO shift (id, staff_id, shift_date, shift_type, start_time, end_time,
			location, resident, rate, hours)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		s.ID, s.StaffID, s.Date, s.Type, s.Start, s.End, s.Location, s.Resident, s.Rate, s.Hours,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *PGRepo) GetByID(ctx context.Context, id uuid.UUID) (*Shift, error) {
	query := fmt.Sprintf(`SELECT %s FROM shift WHERE id = $1`, shiftCols)
	return scanShift(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *PGRepo) Update(ctx context.Context, s *Shift) error {
	query := `UPDATE shift SET staff_id = $2, shift_date = $3, shift_type = $4, start_time = $5,
			end_time = $6, location = $7, resident = $8, rate = $9, hours = $10, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		s.ID, s.StaffID, s.Date, s.Type, s.Start, s.End, s.Location, s.Resident, s.Rate, s.Hours,
	).Scan(&s.UpdatedAt)
}

func (r *PGRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM shift WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PGRepo) List(ctx context.Context, staffID *uuid.UUID, from, to *time.Time, limit, offset int) ([]Shift, int, error) {
	where := `TRUE`
	args := []any{}
	next := 1
	if staffID != nil {
		where += fmt.Sprintf(` AND staff_id = $%d`, next)
		args = append(args, *staffID)
		next++
	}
	if from != nil {
		where += fmt.Sprintf(` AND shift_date >= $%d`, next)
		args = append(args, *from)
		next++
	}
	if to != nil {
		where += fmt.Sprintf(` AND shift_date <= $%d`, next)
		args = append(args, *to)
		next++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM shift WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM shift WHERE %s
		ORDER BY shift_date ASC, start_time ASC NULLS FIRST LIMIT $%d OFFSET $%d`,
		shiftCols, where, next, next+1)
	rows, err := r.conn(ctx).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []Shift{}
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *s)
	}
	return out, total, rows.Err()
}
