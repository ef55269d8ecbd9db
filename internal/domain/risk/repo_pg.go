package risk

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

const assessmentCols = `id, client_id, hazard, category, likelihood, impact, level, mitigation,
	review_date, created_at, updated_at`

func scanAssessment(row pgx.Row) (*Assessment, error) {
	var a Assessment
	err := row.Scan(&a.ID, &a.ClientID, &a.Hazard, &a.Category, &a.Likelihood, &a.Impact,
		&a.Level, &a.Mitigation, &a.ReviewDate, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PGRepo) CreateAssessment(ctx context.Context, a *Assessment) error {
	a.ID = uuid.New()
	query := `INSERT INTO risk_assessment (id, client_id, hazard, category, likelihood, impact,
			level, mitigation, review_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		a.ID, a.ClientID, a.Hazard, a.Category, a.Likelihood, a.Impact, a.Level,
		a.Mitigation, a.ReviewDate,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *PGRepo) GetAssessment(ctx context.Context, id uuid.UUID) (*Assessment, error) {
	query := fmt.Sprintf(`SELECT %s FROM risk_assessment WHERE id = $1`, assessmentCols)
	return scanAssessment(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *PGRepo) UpdateAssessment(ctx context.Context, a *Assessment) error {
	query := `UPDATE risk_assessment SET hazard = $2, category = $3, likelihood = $4, impact = $5,
			level = $6, mitigation = $7, review_date = $8, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		a.ID, a.Hazard, a.Category, a.Likelihood, a.Impact, a.Level, a.Mitigation, a.ReviewDate,
	).Scan(&a.UpdatedAt)
}

func (r *PGRepo) DeleteAssessment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM risk_assessment WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PGRepo) ListAssessments(ctx context.Context, clientIDs []uuid.UUID, all bool, limit, offset int) ([]Assessment, int, error) {
	where := ""
	args := []any{}
	idx := 1
	if !all {
		if len(clientIDs) == 0 {
			return []Assessment{}, 0, nil
		}
		where = fmt.Sprintf(` WHERE client_id = ANY($%d)`, idx)
		args = append(args, clientIDs)
		idx++
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM risk_assessment`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM risk_assessment%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		assessmentCols, where, idx, idx+1)
	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []Assessment{}
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *a)
	}
	return out, total, rows.Err()
}

const planCols = `id, client_id, behaviour, triggers, prevention, deescalation, review_date,
	created_at, updated_at`

func scanPlan(row pgx.Row) (*PBSPlan, error) {
	var p PBSPlan
	err := row.Scan(&p.ID, &p.ClientID, &p.Behaviour, &p.Triggers, &p.Prevention,
		&p.Deescalation, &p.ReviewDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGRepo) CreatePlan(ctx context.Context, p *PBSPlan) error {
	p.ID = uuid.New()
	query := `INSERT INTO pbs_plan (id, client_id, behaviour, triggers, prevention, deescalation,
			review_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		p.ID, p.ClientID, p.Behaviour, p.Triggers, p.Prevention, p.Deescalation, p.ReviewDate,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *PGRepo) GetPlan(ctx context.Context, id uuid.UUID) (*PBSPlan, error) {
	query := fmt.Sprintf(`SELECT %s FROM pbs_plan WHERE id = $1`, planCols)
	return scanPlan(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *PGRepo) UpdatePlan(ctx context.Context, p *PBSPlan) error {
	query := `UPDATE pbs_plan SET behaviour = $2, triggers = $3, prevention = $4,
			deescalation = $5, review_date = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		p.ID, p.Behaviour, p.Triggers, p.Prevention, p.Deescalation, p.ReviewDate,
	).Scan(&p.UpdatedAt)
}

func (r *PGRepo) DeletePlan(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM pbs_plan WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PGRepo) ListPlans(ctx context.Context, clientIDs []uuid.UUID, all bool, limit, offset int) ([]PBSPlan, int, error) {
	where := ""
	args := []any{}
	idx := 1
	if !all {
		if len(clientIDs) == 0 {
			return []PBSPlan{}, 0, nil
		}
		where = fmt.Sprintf(` WHERE client_id = ANY($%d)`, idx)
		args = append(args, clientIDs)
		idx++
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM pbs_plan`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM pbs_plan%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		planCols, where, idx, idx+1)
	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []PBSPlan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}
