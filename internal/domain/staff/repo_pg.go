package staff

import (
	"context"
	"fmt"
	"strings"

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

const staffCols = `id, first_name, last_name, job_title, email, phone, address, start_date,
	status, notes, created_at, updated_at`

func scanStaff(row pgx.Row) (*Staff, error) {
	var s Staff
	err := row.Scan(&s.ID, &s.FirstName, &s.LastName, &s.JobTitle, &s.Email, &s.Phone,
		&s.Address, &s.StartDate, &s.Status, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PGRepo) Create(ctx context.Context, s *Staff) error {
	s.ID = uuid.New()
	if s.Status == "" {
		s.Status = StatusActive
	}
	query := `INSERT INTO staff (id, first_name, last_name, job_title, email, phone, address,
			start_date, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		s.ID, s.FirstName, s.LastName, s.JobTitle, s.Email, s.Phone, s.Address,
		s.StartDate, s.Status, s.Notes,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *PGRepo) GetByID(ctx context.Context, id uuid.UUID) (*Staff, error) {
	query := fmt.Sprintf(`SELECT %s FROM staff WHERE id = $1`, staffCols)
	return scanStaff(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *PGRepo) Update(ctx context.Context, s *Staff) error {
	query := `UPDATE staff SET first_name = $2, last_name = $3, job_title = $4, email = $5,
			phone = $6, address = $7, start_date = $8, status = $9, notes = $10, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		s.ID, s.FirstName, s.LastName, s.JobTitle, s.Email, s.Phone, s.Address,
		s.StartDate, s.Status, s.Notes,
	).Scan(&s.UpdatedAt)
}

func (r *PGRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Staff, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM staff`).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM staff ORDER BY last_name, first_name LIMIT $1 OFFSET $2`, staffCols)
	rows, err := r.conn(ctx).Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectStaff(rows, total)
}

func (r *PGRepo) Search(ctx context.Context, name, status string, limit, offset int) ([]Staff, int, error) {
	clauses := []string{}
	args := []any{}
	idx := 1
	if name != "" {
		clauses = append(clauses, fmt.Sprintf(`(first_name ILIKE $%d OR last_name ILIKE $%d)`, idx, idx))
		args = append(args, "%"+name+"%")
		idx++
	}
	if status != "" {
		clauses = append(clauses, fmt.Sprintf(`status = $%d`, idx))
		args = append(args, status)
		idx++
	}
	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM staff`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM staff%s ORDER BY last_name, first_name LIMIT $%d OFFSET $%d`,
		staffCols, where, idx, idx+1)
	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectStaff(rows, total)
}

const documentCols = `id, staff_id, name, category, blob_id, notes, created_at`

func scanDocument(row pgx.Row) (*Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.StaffID, &d.Name, &d.Category, &d.BlobID, &d.Notes, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *PGRepo) InsertDocument(ctx context.Context, d *Document) error {
	d.ID = uuid.New()
	query := `INSERT INTO staff_document (id, staff_id, name, category, blob_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`
	return r.conn(ctx).QueryRow(ctx, query,
		d.ID, d.StaffID, d.Name, d.Category, d.BlobID, d.Notes,
	).Scan(&d.CreatedAt)
}

func (r *PGRepo) GetDocument(ctx context.Context, id uuid.UUID) (*Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM staff_document WHERE id = $1`, documentCols)
	return scanDocument(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *PGRepo) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM staff_document WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PGRepo) ListDocuments(ctx context.Context, staffID uuid.UUID, limit, offset int) ([]Document, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM staff_document WHERE staff_id = $1`, staffID).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM staff_document WHERE staff_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, documentCols)
	rows, err := r.conn(ctx).Query(ctx, query, staffID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *d)
	}
	return out, total, rows.Err()
}

const performanceCols = `id, staff_id, review_date, reviewer, rating, comments, created_at, updated_at`

func scanPerformance(row pgx.Row) (*Performance, error) {
	var p Performance
	err := row.Scan(&p.ID, &p.StaffID, &p.ReviewDate, &p.Reviewer, &p.Rating, &p.Comments,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGRepo) InsertPerformance(ctx context.Context, p *Performance) error {
	p.ID = uuid.New()
	query := `INSERT INTO staff_performance (id, staff_id, review_date, reviewer, rating, comments)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		p.ID, p.StaffID, p.ReviewDate, p.Reviewer, p.Rating, p.Comments,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *PGRepo) GetPerformance(ctx context.Context, id uuid.UUID) (*Performance, error) {
	query := fmt.Sprintf(`SELECT %s FROM staff_performance WHERE id = $1`, performanceCols)
	return scanPerformance(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *PGRepo) UpdatePerformance(ctx context.Context, p *Performance) error {
	query := `UPDATE staff_performance SET review_date = $2, reviewer = $3, rating = $4,
			comments = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		p.ID, p.ReviewDate, p.Reviewer, p.Rating, p.Comments,
	).Scan(&p.UpdatedAt)
}

func (r *PGRepo) DeletePerformance(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM staff_performance WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PGRepo) ListPerformance(ctx context.Context, staffID uuid.UUID, limit, offset int) ([]Performance, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM staff_performance WHERE staff_id = $1`, staffID).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM staff_performance WHERE staff_id = $1
		ORDER BY review_date DESC NULLS LAST LIMIT $2 OFFSET $3`, performanceCols)
	rows, err := r.conn(ctx).Query(ctx, query, staffID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []Performance{}
	for rows.Next() {
		p, err := scanPerformance(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

func collectStaff(rows pgx.Rows, total int) ([]Staff, int, error) {
	out := []Staff{}
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *s)
	}
	return out, total, rows.Err()
}
