package activity

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

const logCols = `id, client_id, logged_at, staff_name, notes, mood, bristol_score, heart_rate,
	health_note, status, created_at, updated_at`

func scanLog(row pgx.Row) (*DailyLog, error) {
	var l DailyLog
	err := row.Scan(&l.ID, &l.ClientID, &l.LoggedAt, &l.StaffName, &l.Notes, &l.Mood,
		&l.BristolScore, &l.HeartRate, &l.HealthNote, &l.Status, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *PGRepo) CreateLog(ctx context.Context, l *DailyLog) error {
	l.ID = uuid.New()
	query := `INSERT INTO daily_log (id, client_id, logged_at, staff_name, notes, mood,
			bristol_score, heart_rate, health_note, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		l.ID, l.ClientID, l.LoggedAt, l.StaffName, l.Notes, l.Mood, l.BristolScore,
		l.HeartRate, l.HealthNote, l.Status,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
}

func (r *PGRepo) GetLog(ctx context.Context, id uuid.UUID) (*DailyLog, error) {
	query := fmt.Sprintf(`SELECT %s FROM daily_log WHERE id = $1`, logCols)
	return scanLog(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *PGRepo) UpdateLog(ctx context.Context, l *DailyLog) error {
	query := `UPDATE daily_log SET logged_at = $2, staff_name = $3, notes = $4, mood = $5,
			bristol_score = $6, heart_rate = $7, health_note = $8, status = $9, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		l.ID, l.LoggedAt, l.StaffName, l.Notes, l.Mood, l.BristolScore, l.HeartRate,
		l.HealthNote, l.Status,
	).Scan(&l.UpdatedAt)
}

func (r *PGRepo) DeleteLog(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM daily_log WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PGRepo) ListLogs(ctx context.Context, clientIDs []uuid.UUID, all bool, limit, offset int) ([]DailyLog, int, error) {
	where, args, idx, empty := scopeClause(clientIDs, all)
	if empty {
		return []DailyLog{}, 0, nil
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM daily_log`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM daily_log%s ORDER BY logged_at DESC LIMIT $%d OFFSET $%d`,
		logCols, where, idx, idx+1)
	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []DailyLog{}
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *l)
	}
	return out, total, rows.Err()
}

// scopeClause builds the optional client filter shared by the three list
// queries. empty reports a scoped caller with no attached clients.
func scopeClause(clientIDs []uuid.UUID, all bool) (where string, args []any, next int, empty bool) {
	args = []any{}
	next = 1
	if all {
		return "", args, next, false
	}
	if len(clientIDs) == 0 {
		return "", args, next, true
	}
	return ` WHERE client_id = ANY($1)`, []any{clientIDs}, 2, false
}

const handoverCols = `id, client_id, handover_date, time_of_day, handing_over, taking_over,
	summary, status, created_at, updated_at`

func scanHandover(row pgx.Row) (*Handover, error) {
	var h Handover
	err := row.Scan(&h.ID, &h.ClientID, &h.Date, &h.TimeOfDay, &h.HandingOver, &h.TakingOver,
		&h.Summary, &h.Status, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *PGRepo) CreateHandover(ctx context.Context, h *Handover) error {
	h.ID = uuid.New()
	query := `INSERT INTO handover (id, client_id, handover_date, time_of_day, handing_over,
			taking_over, summary, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		h.ID, h.ClientID, h.Date, h.TimeOfDay, h.HandingOver, h.TakingOver, h.Summary, h.Status,
	).Scan(&h.CreatedAt, &h.UpdatedAt)
}

func (r *PGRepo) GetHandover(ctx context.Context, id uuid.UUID) (*Handover, error) {
	query := fmt.Sprintf(`SELECT %s FROM handover WHERE id = $1`, handoverCols)
	return scanHandover(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *PGRepo) UpdateHandover(ctx context.Context, h *Handover) error {
	query := `UPDATE handover SET handover_date = $2, time_of_day = $3, handing_over = $4,
			taking_over = $5, summary = $6, status = $7, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		h.ID, h.Date, h.TimeOfDay, h.HandingOver, h.TakingOver, h.Summary, h.Status,
	).Scan(&h.UpdatedAt)
}

func (r *PGRepo) DeleteHandover(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM handover WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PGRepo) ListHandovers(ctx context.Context, clientIDs []uuid.UUID, all bool, limit, offset int) ([]Handover, int, error) {
	where, args, idx, empty := scopeClause(clientIDs, all)
	if empty {
		return []Handover{}, 0, nil
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM handover`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM handover%s ORDER BY handover_date DESC, time_of_day DESC LIMIT $%d OFFSET $%d`,
		handoverCols, where, idx, idx+1)
	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []Handover{}
	for rows.Next() {
		h, err := scanHandover(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *h)
	}
	return out, total, rows.Err()
}

const activityCols = `id, client_id, caregiver, activity_type, description, activity_date,
	attachments, created_at, updated_at`

func scanActivity(row pgx.Row) (*SocialActivity, error) {
	var a SocialActivity
	err := row.Scan(&a.ID, &a.ClientID, &a.Caregiver, &a.ActivityType, &a.Description,
		&a.Date, &a.Attachments, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PGRepo) CreateActivity(ctx context.Context, a *SocialActivity) error {
	a.ID = uuid.New()
	if a.Attachments == nil {
		a.Attachments = []string{}
	}
	query := `INSERT INTO social_activity (id, client_id, caregiver, activity_type, description,
			activity_date, attachments)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		a.ID, a.ClientID, a.Caregiver, a.ActivityType, a.Description, a.Date, a.Attachments,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *PGRepo) GetActivity(ctx context.Context, id uuid.UUID) (*SocialActivity, error) {
	query := fmt.Sprintf(`SELECT %s FROM social_activity WHERE id = $1`, activityCols)
	return scanActivity(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *PGRepo) UpdateActivity(ctx context.Context, a *SocialActivity) error {
	query := `UPDATE social_activity SET caregiver = $2, activity_type = $3, description = $4,
			activity_date = $5, attachments = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		a.ID, a.Caregiver, a.ActivityType, a.Description, a.Date, a.Attachments,
	).Scan(&a.UpdatedAt)
}

func (r *PGRepo) DeleteActivity(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM social_activity WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PGRepo) ListActivities(ctx context.Context, clientIDs []uuid.UUID, all bool, limit, offset int) ([]SocialActivity, int, error) {
	where, args, idx, empty := scopeClause(clientIDs, all)
	if empty {
		return []SocialActivity{}, 0, nil
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM social_activity`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM social_activity%s ORDER BY activity_date DESC LIMIT $%d OFFSET $%d`,
		activityCols, where, idx, idx+1)
	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []SocialActivity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *a)
	}
	return out, total, rows.Err()
}
