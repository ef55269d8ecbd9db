package documents

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

const templateCols = `id, title, visibility, attachments, uploaded_by, created_at, updated_at`

func scanTemplate(row pgx.Row) (*Template, error) {
	var t Template
	err := row.Scan(&t.ID, &t.Title, &t.Visibility, &t.Attachments, &t.UploadedBy,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PGRepo) CreateTemplate(ctx context.Context, t *Template) error {
	t.ID = uuid.New()
	if t.Attachments == nil {
		t.Attachments = []string{}
	}
	query := `INSERT INTO template (id, title, visibility, attachments, uploaded_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		t.ID, t.Title, t.Visibility, t.Attachments, t.UploadedBy,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (r *PGRepo) GetTemplate(ctx context.Context, id uuid.UUID) (*Template, error) {
	query := fmt.Sprintf(`SELECT %s FROM template WHERE id = $1`, templateCols)
	return scanTemplate(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *PGRepo) UpdateTemplate(ctx context.Context, t *Template) error {
	query := `UPDATE template SET title = $2, visibility = $3, attachments = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		t.ID, t.Title, t.Visibility, t.Attachments,
	).Scan(&t.UpdatedAt)
}

func (r *PGRepo) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM template WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PGRepo) ListTemplates(ctx context.Context, visibilities []string, limit, offset int) ([]Template, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM template WHERE visibility = ANY($1)`, visibilities,
	).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM template WHERE visibility = ANY($1)
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, templateCols)
	rows, err := r.conn(ctx).Query(ctx, query, visibilities, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *t)
	}
	return out, total, rows.Err()
}

const consentCols = `id, client_id, dols_in_place, authorization_end_date, conditions, status,
	created_at, updated_at`

func scanConsent(row pgx.Row) (*ConsentRecord, error) {
	var c ConsentRecord
	err := row.Scan(&c.ID, &c.ClientID, &c.DoLSInPlace, &c.AuthorizationEndDate,
		&c.Conditions, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PGRepo) CreateConsent(ctx context.Context, c *ConsentRecord) error {
	c.ID = uuid.New()
	query := `INSERT INTO consent_record (id, client_id, dols_in_place, authorization_end_date,
			conditions, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		c.ID, c.ClientID, c.DoLSInPlace, c.AuthorizationEndDate, c.Conditions, c.Status,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *PGRepo) GetConsent(ctx context.Context, id uuid.UUID) (*ConsentRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM consent_record WHERE id = $1`, consentCols)
	return scanConsent(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *PGRepo) UpdateConsent(ctx context.Context, c *ConsentRecord) error {
	query := `UPDATE consent_record SET dols_in_place = $2, authorization_end_date = $3,
			conditions = $4, status = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		c.ID, c.DoLSInPlace, c.AuthorizationEndDate, c.Conditions, c.Status,
	).Scan(&c.UpdatedAt)
}

func (r *PGRepo) DeleteConsent(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM consent_record WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PGRepo) ListConsents(ctx context.Context, clientIDs []uuid.UUID, all bool, limit, offset int) ([]ConsentRecord, int, error) {
	where := ""
	args := []any{}
	idx := 1
	if !all {
		if len(clientIDs) == 0 {
			return []ConsentRecord{}, 0, nil
		}
		where = fmt.Sprintf(` WHERE client_id = ANY($%d)`, idx)
		args = append(args, clientIDs)
		idx++
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM consent_record`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM consent_record%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		consentCols, where, idx, idx+1)
	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []ConsentRecord{}
	for rows.Next() {
		c, err := scanConsent(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}
