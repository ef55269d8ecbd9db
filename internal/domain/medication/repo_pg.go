package medication

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

const medCols = `id, client_id, name, dosage, route, frequency, time_of_day,
	stock_quantity, stock_threshold, status, notes, attachments, created_at, updated_at`

func scanMedication(row pgx.Row) (*Medication, error) {
	var m Medication
	err := row.Scan(&m.ID, &m.ClientID, &m.Name, &m.Dosage, &m.Route, &m.Frequency,
		&m.TimeOfDay, &m.StockQuantity, &m.StockThreshold, &m.Status, &m.Notes,
		&m.Attachments, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PGRepo) Create(ctx context.Context, m *Medication) error {
	m.ID = uuid.New()
	if m.Status == "" {
		m.Status = StatusPending
	}
	if m.Attachments == nil {
		m.Attachments = []string{}
	}
	query := `INSERT INTO medication (id, client_id, name, dosage, route, frequency,
			time_of_day, stock_quantity, stock_threshold, status, notes, attachments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		m.ID, m.ClientID, m.Name, m.Dosage, m.Route, m.Frequency, m.TimeOfDay,
		m.StockQuantity, m.StockThreshold, m.Status, m.Notes, m.Attachments,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
}

func (r *PGRepo) GetByID(ctx context.Context, id uuid.UUID) (*Medication, error) {
	query := fmt.Sprintf(`SELECT %s FROM medication WHERE id = $1`, medCols)
	return scanMedication(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *PGRepo) Update(ctx context.Context, m *Medication) error {
	if m.Attachments == nil {
		m.Attachments = []string{}
	}
	query := `UPDATE medication SET name = $2, dosage = $3, route = $4, frequency = $5,
			time_of_day = $6, stock_quantity = $7, stock_threshold = $8, status = $9,
			notes = $10, attachments = $11, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		m.ID, m.Name, m.Dosage, m.Route, m.Frequency, m.TimeOfDay,
		m.StockQuantity, m.StockThreshold, m.Status, m.Notes, m.Attachments,
	).Scan(&m.UpdatedAt)
}

func (r *PGRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM medication WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Medication, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medication`).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM medication ORDER BY created_at DESC LIMIT $1 OFFSET $2`, medCols)
	rows, err := r.conn(ctx).Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectMedications(rows, total)
}

func (r *PGRepo) ListByClients(ctx context.Context, clientIDs []uuid.UUID, limit, offset int) ([]Medication, int, error) {
	if len(clientIDs) == 0 {
		return []Medication{}, 0, nil
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM medication WHERE client_id = ANY($1)`, clientIDs).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM medication WHERE client_id = ANY($1)
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, medCols)
	rows, err := r.conn(ctx).Query(ctx, query, clientIDs, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectMedications(rows, total)
}

func (r *PGRepo) ListLowStock(ctx context.Context, clientIDs []uuid.UUID, all bool, limit, offset int) ([]Medication, int, error) {
	if !all && len(clientIDs) == 0 {
		return []Medication{}, 0, nil
	}

	where := `stock_quantity < stock_threshold`
	args := []any{}
	next := 1
	if !all {
		where += fmt.Sprintf(` AND client_id = ANY($%d)`, next)
		args = append(args, clientIDs)
		next++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM medication WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM medication WHERE %s
		ORDER BY stock_quantity ASC LIMIT $%d OFFSET $%d`, medCols, where, next, next+1)
	rows, err := r.conn(ctx).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectMedications(rows, total)
}

// ListStale lists medications not given for six months. A medication with
// no given dose at all counts from its creation date. The last-given date
// is derived from the event history, never stored.
func (r *PGRepo) ListStale(ctx context.Context, clientIDs []uuid.UUID, all bool, limit, offset int) ([]Medication, int, error) {
	if !all && len(clientIDs) == 0 {
		return []Medication{}, 0, nil
	}

	where := `COALESCE(lg.last_given, m.created_at) < now() - interval '6 months'`
	args := []any{}
	next := 1
	if !all {
		where += fmt.Sprintf(` AND m.client_id = ANY($%d)`, next)
		args = append(args, clientIDs)
		next++
	}
	join := `LEFT JOIN LATERAL (
			SELECT MAX(event_date) AS last_given FROM medication_event e
			WHERE e.medication_id = m.id AND e.given
		) lg ON true`

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM medication m %s WHERE %s`, join, where)
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	cols := `m.id, m.client_id, m.name, m.dosage, m.route, m.frequency, m.time_of_day,
		m.stock_quantity, m.stock_threshold, m.status, m.notes, m.attachments, m.created_at, m.updated_at`
	query := fmt.Sprintf(`SELECT %s FROM medication m %s WHERE %s
		ORDER BY COALESCE(lg.last_given, m.created_at) ASC LIMIT $%d OFFSET $%d`,
		cols, join, where, next, next+1)
	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectMedications(rows, total)
}

// AdjustStock moves the counter atomically in the database, clamped at
// zero. Concurrent adjustments to the same row serialize on the row lock.
func (r *PGRepo) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE medication SET stock_quantity = GREATEST(stock_quantity + $2, 0), updated_at = now()
		WHERE id = $1`, id, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PGRepo) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE medication SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PGRepo) CountGiven(ctx context.Context, medicationID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM medication_event WHERE medication_id = $1 AND given`, medicationID).Scan(&n)
	return n, err
}

const eventCols = `id, medication_id, event_date, time_of_day, given, caregiver, notes, created_at`

func scanEvent(row pgx.Row) (*AdministrationEvent, error) {
	var ev AdministrationEvent
	err := row.Scan(&ev.ID, &ev.MedicationID, &ev.Date, &ev.TimeOfDay, &ev.Given,
		&ev.Caregiver, &ev.Notes, &ev.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *PGRepo) InsertEvent(ctx context.Context, ev *AdministrationEvent) error {
	ev.ID = uuid.New()
	query := `INSERT INTO medication_event (id, medication_id, event_date, time_of_day, given, caregiver, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`
	return r.conn(ctx).QueryRow(ctx, query,
		ev.ID, ev.MedicationID, ev.Date, ev.TimeOfDay, ev.Given, ev.Caregiver, ev.Notes,
	).Scan(&ev.CreatedAt)
}

func (r *PGRepo) GetEvent(ctx context.Context, id uuid.UUID) (*AdministrationEvent, error) {
	query := fmt.Sprintf(`SELECT %s FROM medication_event WHERE id = $1`, eventCols)
	return scanEvent(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *PGRepo) UpdateEvent(ctx context.Context, ev *AdministrationEvent) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE medication_event SET event_date = $2, time_of_day = $3, given = $4, caregiver = $5, notes = $6
		WHERE id = $1`,
		ev.ID, ev.Date, ev.TimeOfDay, ev.Given, ev.Caregiver, ev.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PGRepo) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM medication_event WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PGRepo) ListEvents(ctx context.Context, medicationID uuid.UUID, limit, offset int) ([]AdministrationEvent, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM medication_event WHERE medication_id = $1`, medicationID).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM medication_event WHERE medication_id = $1
		ORDER BY event_date DESC, created_at DESC LIMIT $2 OFFSET $3`, eventCols)
	rows, err := r.conn(ctx).Query(ctx, query, medicationID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []AdministrationEvent{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *ev)
	}
	return out, total, rows.Err()
}

func collectMedications(rows pgx.Rows, total int) ([]Medication, int, error) {
	out := []Medication{}
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *m)
	}
	return out, total, rows.Err()
}
