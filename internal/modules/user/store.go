// README: User store backed by PostgreSQL.
package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agrilink/internal/infra"
)

const userColumns = `
	id, name, email, password_hash, phone, location, type, approved, suspended,
	availability_status, farm_size, experience, vehicle_type, license_number,
	profile_picture, last_login, approved_at, created_at`

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, u *User) error {
	row := s.db.QueryRow(ctx, `
		INSERT INTO users (
			name, email, password_hash, phone, location, type, approved,
			availability_status, farm_size, experience, vehicle_type, license_number, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		u.Name, u.Email, u.PasswordHash, u.Phone, u.Location, string(u.Role), u.Approved,
		string(u.Availability), u.FarmSize, u.Experience, u.VehicleType, u.LicenseNumber, u.CreatedAt,
	)
	if err := row.Scan(&u.ID); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.scanOne(s.db.QueryRow(ctx, `SELECT`+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.scanOne(s.db.QueryRow(ctx, `SELECT`+userColumns+` FROM users WHERE email = $1`, email))
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id int64, name, phone, location string, farmSize, experience *string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE users
		SET name = $1, phone = $2, location = $3, farm_size = $4, experience = $5
		WHERE id = $6`,
		name, phone, location, farmSize, experience, id,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) TouchLastLogin(ctx context.Context, id int64) error {
	_, err := s.db.Exec(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, id)
	return err
}

// SetAvailability accepts a Querier so assignment and lifecycle transitions
// can flip availability inside their own transaction.
func (s *Store) SetAvailability(ctx context.Context, q infra.Querier, id int64, a Availability) error {
	tag, err := q.Exec(ctx,
		`UPDATE users SET availability_status = $1 WHERE id = $2`, string(a), id)
	if err != nil {
		return fmt.Errorf("set availability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// LockAvailableCourier picks one approved, available delivery user at the
// exact location, locking the row so concurrent assignments cannot grab the
// same person. Returns ErrNoCourier when nobody matches.
func (s *Store) LockAvailableCourier(ctx context.Context, q infra.Querier, location string) (int64, error) {
	var id int64
	err := q.QueryRow(ctx, `
		SELECT id FROM users
		WHERE type = 'delivery'
		  AND availability_status = 'available'
		  AND approved = TRUE
		  AND suspended = FALSE
		  AND location = $1
		ORDER BY id
		LIMIT 1
		FOR UPDATE SKIP LOCKED`, location,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNoCourier
	}
	if err != nil {
		return 0, fmt.Errorf("lock courier: %w", err)
	}
	return id, nil
}

func (s *Store) SetApproved(ctx context.Context, id int64, role Role) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE users SET approved = TRUE, approved_at = NOW() WHERE id = $1 AND type = $2`,
		id, string(role))
	if err != nil {
		return fmt.Errorf("approve user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetSuspended(ctx context.Context, id int64, suspended bool) error {
	tag, err := s.db.Exec(ctx, `UPDATE users SET suspended = $1 WHERE id = $2`, suspended, id)
	if err != nil {
		return fmt.Errorf("set suspended: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context, role Role) ([]*User, error) {
	query := `SELECT` + userColumns + ` FROM users`
	args := []any{}
	if role != "" {
		query += ` WHERE type = $1`
		args = append(args, string(role))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		u, err := s.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type Counts struct {
	TotalUsers        int64
	PendingFarmers    int64
	ActiveFarmers     int64
	AvailableDelivery int64
}

func (s *Store) CountForDashboard(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE type = 'farmer' AND NOT approved),
		       COUNT(*) FILTER (WHERE type = 'farmer' AND approved),
		       COUNT(*) FILTER (WHERE type = 'delivery' AND availability_status = 'available')
		FROM users`,
	).Scan(&c.TotalUsers, &c.PendingFarmers, &c.ActiveFarmers, &c.AvailableDelivery)
	if err != nil {
		return Counts{}, fmt.Errorf("count users: %w", err)
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanOne(row rowScanner) (*User, error) {
	var u User
	var role, availability string
	var lastLogin, approvedAt sql.NullTime

	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Location, &role,
		&u.Approved, &u.Suspended, &availability,
		&u.FarmSize, &u.Experience, &u.VehicleType, &u.LicenseNumber,
		&u.ProfilePicture, &lastLogin, &approvedAt, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Role = Role(role)
	u.Availability = Availability(availability)
	u.LastLogin = toTimePtr(lastLogin)
	u.ApprovedAt = toTimePtr(approvedAt)
	return &u, nil
}

func toTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
