package client

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

// PGRepo is the Postgres-backed client repository.
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

const clientCols = `id, first_name, last_name, room, date_of_birth, gender, address, phone,
	email, nhs_number, gp_name, gp_phone, emergency_contact, emergency_phone, status, notes,
	created_at, updated_at`

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Room, &c.DateOfBirth, &c.Gender,
		&c.Address, &c.Phone, &c.Email, &c.NHSNumber, &c.GPName, &c.GPPhone,
		&c.EmergencyContact, &c.EmergencyPhone, &c.Status, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PGRepo) Create(ctx context.Context, c *Client) error {
	c.ID = uuid.New()
	if c.Status == "" {
		c.Status = StatusActive
	}
	query := `INSERT INTO client (id, first_name, last_name, room, date_of_birth, gender,
			address, phone, email, nhs_number, gp_name, gp_phone, emergency_contact,
			emergency_phone, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at, updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		c.ID, c.FirstName, c.LastName, c.Room, c.DateOfBirth, c.Gender, c.Address, c.Phone,
		c.Email, c.NHSNumber, c.GPName, c.GPPhone, c.EmergencyContact, c.EmergencyPhone,
		c.Status, c.Notes,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *PGRepo) GetByID(ctx context.Context, id uuid.UUID) (*Client, error) {
	query := fmt.Sprintf(`SELECT %s FROM client WHERE id = $1`, clientCols)
	return scanClient(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *PGRepo) Update(ctx context.Context, c *Client) error {
	query := `UPDATE client SET first_name = $2, last_name = $3, room = $4, date_of_birth = $5,
			gender = $6, address = $7, phone = $8, email = $9, nhs_number = $10, gp_name = $11,
			gp_phone = $12, emergency_contact = $13, emergency_phone = $14, status = $15,
			notes = $16, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		c.ID, c.FirstName, c.LastName, c.Room, c.DateOfBirth, c.Gender, c.Address, c.Phone,
		c.Email, c.NHSNumber, c.GPName, c.GPPhone, c.EmergencyContact, c.EmergencyPhone,
		c.Status, c.Notes,
	).Scan(&c.UpdatedAt)
}

func (r *PGRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM client WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Client, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM client`).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM client ORDER BY last_name, first_name LIMIT $1 OFFSET $2`, clientCols)
	rows, err := r.conn(ctx).Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectClients(rows, total)
}

func (r *PGRepo) ListByIDs(ctx context.Context, ids []uuid.UUID, limit, offset int) ([]Client, int, error) {
	if len(ids) == 0 {
		return []Client{}, 0, nil
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM client WHERE id = ANY($1)`, ids).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM client WHERE id = ANY($1)
		ORDER BY last_name, first_name LIMIT $2 OFFSET $3`, clientCols)
	rows, err := r.conn(ctx).Query(ctx, query, ids, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectClients(rows, total)
}

func (r *PGRepo) Search(ctx context.Context, name, status string, limit, offset int) ([]Client, int, error) {
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
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM client`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM client%s ORDER BY last_name, first_name LIMIT $%d OFFSET $%d`,
		clientCols, where, idx, idx+1)
	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectClients(rows, total)
}

func collectClients(rows pgx.Rows, total int) ([]Client, int, error) {
	out := []Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

func (r *PGRepo) RoomOccupied(ctx context.Context, room string, exclude uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(
		SELECT 1 FROM client WHERE room = $1 AND status = 'active' AND id <> $2)`
	var occupied bool
	err := r.conn(ctx).QueryRow(ctx, query, room, exclude).Scan(&occupied)
	return occupied, err
}
