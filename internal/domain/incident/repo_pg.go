package incident

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

const incidentCols = `id, client_id, reported_by, occurred_at, location, severity, description,
	actions_taken, status, attachments, created_at, updated_at`

func scanIncident(row pgx.Row) (*Incident, error) {
	var in Incident
	err := row.Scan(&in.ID, &in.ClientID, &in.ReportedBy, &in.OccurredAt, &in.Location,
		&in.Severity, &in.Description, &in.ActionsTaken, &in.Status, &in.Attachments,
		&in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (r *PGRepo) Create(ctx context.Context, in *Incident) error {
	in.ID = uuid.New()
	if in.Status == "" {
		in.Status = StatusOpen
	}
	if in.Attachments == nil {
		in.Attachments = []string{}
	}
	query := `INSERT INTO incident (id, client_id, reported_by, occurred_at, location, severity,
			description, actions_taken, status, attachments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		in.ID, in.ClientID, in.ReportedBy, in.OccurredAt, in.Location, in.Severity,
		in.Description, in.ActionsTaken, in.Status, in.Attachments,
	).Scan(&in.CreatedAt, &in.UpdatedAt)
}

func (r *PGRepo) GetByID(ctx context.Context, id uuid.UUID) (*Incident, error) {
	query := fmt.Sprintf(`SELECT %s FROM incident WHERE id = $1`, incidentCols)
	return scanIncident(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *PGRepo) Update(ctx context.Context, in *Incident) error {
	if in.Attachments == nil {
		in.Attachments = []string{}
	}
	query := `UPDATE incident SET reported_by = $2, occurred_at = $3, location = $4, severity = $5,
			description = $6, actions_taken = $7, status = $8, attachments = $9, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		in.ID, in.ReportedBy, in.OccurredAt, in.Location, in.Severity, in.Description,
		in.ActionsTaken, in.Status, in.Attachments,
	).Scan(&in.UpdatedAt)
}

func (r *PGRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM incident WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Incident, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM incident`).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM incident ORDER BY occurred_at DESC NULLS LAST LIMIT $1 OFFSET $2`, incidentCols)
	rows, err := r.conn(ctx).Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectIncidents(rows, total)
}

func (r *PGRepo) ListByClients(ctx context.Context, clientIDs []uuid.UUID, limit, offset int) ([]Incident, int, error) {
	if len(clientIDs) == 0 {
		return []Incident{}, 0, nil
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM incident WHERE client_id = ANY($1)`, clientIDs).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM incident WHERE client_id = ANY($1)
		ORDER BY occurred_at DESC NULLS LAST LIMIT $2 OFFSET $3`, incidentCols)
	rows, err := r.conn(ctx).Query(ctx, query, clientIDs, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectIncidents(rows, total)
}

func (r *PGRepo) ListByStatus(ctx context.Context, status string, limit, offset int) ([]Incident, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM incident WHERE status = $1`, status).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM incident WHERE status = $1
		ORDER BY occurred_at DESC NULLS LAST LIMIT $2 OFFSET $3`, incidentCols)
	rows, err := r.conn(ctx).Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectIncidents(rows, total)
}

func collectIncidents(rows pgx.Rows, total int) ([]Incident, int, error) {
	out := []Incident{}
	for rows.Next() {
		in, err := scanIncident(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *in)
	}
	return out, total, rows.Err()
}
