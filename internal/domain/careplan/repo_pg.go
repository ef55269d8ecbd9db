package careplan

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

const planCols = `id, client_id, title, category, description, start_date, review_date, status,
	decision, signature, decline_reason, acknowledged_by, acknowledged_at, attachments,
	created_at, updated_at`

func scanPlan(row pgx.Row) (*CarePlan, error) {
	var cp CarePlan
	err := row.Scan(&cp.ID, &cp.ClientID, &cp.Title, &cp.Category, &cp.Description,
		&cp.StartDate, &cp.ReviewDate, &cp.Status, &cp.Decision, &cp.Signature,
		&cp.DeclineReason, &cp.AcknowledgedBy, &cp.AcknowledgedAt, &cp.Attachments,
		&cp.CreatedAt, &cp.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &cp, nil
}

func (r *PGRepo) Create(ctx context.Context, cp *CarePlan) error {
	cp.ID = uuid.New()
	if cp.Status == "" {
		cp.Status = StatusDraft
	}
	if cp.Decision == "" {
		cp.Decision = DecisionPending
	}
	if cp.Attachments == nil {
		cp.Attachments = []string{}
	}
	query := `INSERT INTO care_plan (id, client_id, title, category, description, start_date,
			review_date, status, decision, attachments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		cp.ID, cp.ClientID, cp.Title, cp.Category, cp.Description, cp.StartDate,
		cp.ReviewDate, cp.Status, cp.Decision, cp.Attachments,
	).Scan(&cp.CreatedAt, &cp.UpdatedAt)
}

func (r *PGRepo) GetByID(ctx context.Context, id uuid.UUID) (*CarePlan, error) {
	query := fmt.Sprintf(`SELECT %s FROM care_plan WHERE id = $1`, planCols)
	return scanPlan(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *PGRepo) Update(ctx context.Context, cp *CarePlan) error {
	if cp.Attachments == nil {
		cp.Attachments = []string{}
	}
	query := `UPDATE care_plan SET title = $2, category = $3, description = $4, start_date = $5,
			review_date = $6, status = $7, decision = $8, signature = $9, decline_reason = $10,
			acknowledged_by = $11, acknowledged_at = $12, attachments = $13, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		cp.ID, cp.Title, cp.Category, cp.Description, cp.StartDate, cp.ReviewDate,
		cp.Status, cp.Decision, cp.Signature, cp.DeclineReason, cp.AcknowledgedBy,
		cp.AcknowledgedAt, cp.Attachments,
	).Scan(&cp.UpdatedAt)
}

func (r *PGRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM care_plan WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]CarePlan, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM care_plan`).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM care_plan ORDER BY created_at DESC LIMIT $1 OFFSET $2`, planCols)
	rows, err := r.conn(ctx).Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectPlans(rows, total)
}

func (r *PGRepo) ListByClients(ctx context.Context, clientIDs []uuid.UUID, limit, offset int) ([]CarePlan, int, error) {
	if len(clientIDs) == 0 {
		return []CarePlan{}, 0, nil
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM care_plan WHERE client_id = ANY($1)`, clientIDs).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM care_plan WHERE client_id = ANY($1)
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, planCols)
	rows, err := r.conn(ctx).Query(ctx, query, clientIDs, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectPlans(rows, total)
}

const goalCols = `id, care_plan_id, title, detail, target_date, status, created_at, updated_at`

func scanGoal(row pgx.Row) (*Goal, error) {
	var g Goal
	err := row.Scan(&g.ID, &g.CarePlanID, &g.Title, &g.Detail, &g.TargetDate, &g.Status,
		&g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *PGRepo) InsertGoal(ctx context.Context, g *Goal) error {
	g.ID = uuid.New()
	if g.Status == "" {
		g.Status = GoalOpen
	}
	query := `INSERT INTO care_plan_goal (id, care_plan_id, title, detail, target_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		g.ID, g.CarePlanID, g.Title, g.Detail, g.TargetDate, g.Status,
	).Scan(&g.CreatedAt, &g.UpdatedAt)
}

func (r *PGRepo) GetGoal(ctx context.Context, id uuid.UUID) (*Goal, error) {
	query := fmt.Sprintf(`SELECT %s FROM care_plan_goal WHERE id = $1`, goalCols)
	return scanGoal(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *PGRepo) UpdateGoal(ctx context.Context, g *Goal) error {
	query := `UPDATE care_plan_goal SET title = $2, detail = $3, target_date = $4, status = $5,
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		g.ID, g.Title, g.Detail, g.TargetDate, g.Status,
	).Scan(&g.UpdatedAt)
}

func (r *PGRepo) DeleteGoal(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM care_plan_goal WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PGRepo) ListGoals(ctx context.Context, carePlanID uuid.UUID) ([]Goal, error) {
	query := fmt.Sprintf(`SELECT %s FROM care_plan_goal WHERE care_plan_id = $1 ORDER BY created_at`, goalCols)
	rows, err := r.conn(ctx).Query(ctx, query, carePlanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

func collectPlans(rows pgx.Rows, total int) ([]CarePlan, int, error) {
	out := []CarePlan{}
	for rows.Next() {
		cp, err := scanPlan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *cp)
	}
	return out, total, rows.Err()
}
