// README: Assignment store backed by PostgreSQL.
package assignment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agrilink/internal/infra"
)

const assignmentColumns = `
	id, order_id, delivery_person_id, assignment_type, delivery_location,
	delivery_fee, notes, status, assigned_at, accepted_at, completed_at`

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, q infra.Querier, a *Assignment) error {
	row := q.QueryRow(ctx, `
		INSERT INTO delivery_assignments (
			order_id, delivery_person_id, assignment_type, delivery_location,
			delivery_fee, notes, status, assigned_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		a.OrderID, a.DeliveryPersonID, string(a.Type), a.DeliveryLocation,
		a.DeliveryFee, a.Notes, string(a.Status), a.AssignedAt,
	)
	if err := row.Scan(&a.ID); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// GetForCourier returns the assignment only when it belongs to the courier.
func (s *Store) GetForCourier(ctx context.Context, q infra.Querier, id, courierID int64) (*Assignment, error) {
	return scanAssignment(q.QueryRow(ctx,
		`SELECT`+assignmentColumns+` FROM delivery_assignments WHERE id = $1 AND delivery_person_id = $2 FOR UPDATE`,
		id, courierID))
}

func (s *Store) SetAccepted(ctx context.Context, q infra.Querier, id int64) error {
	tag, err := q.Exec(ctx, `
		UPDATE delivery_assignments
		SET status = 'accepted', accepted_at = NOW()
		WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("accept assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetRejected(ctx context.Context, q infra.Querier, id int64) error {
	tag, err := q.Exec(ctx, `
		UPDATE delivery_assignments SET status = 'rejected' WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("reject assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CompleteForOrder closes the active assignment of a delivered order.
func (s *Store) CompleteForOrder(ctx context.Context, q infra.Querier, orderID int64) error {
	_, err := q.Exec(ctx, `
		UPDATE delivery_assignments
		SET status = 'completed', completed_at = NOW()
		WHERE order_id = $1 AND status IN ('assigned', 'accepted')`,
		orderID)
	if err != nil {
		return fmt.Errorf("complete assignment: %w", err)
	}
	return nil
}

func (s *Store) Earnings(ctx context.Context, courierID int64) (float64, error) {
	var total float64
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(delivery_fee), 0)
		FROM delivery_assignments
		WHERE delivery_person_id = $1 AND status = 'completed'`,
		courierID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("courier earnings: %w", err)
	}
	return total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssignment(row rowScanner) (*Assignment, error) {
	var a Assignment
	var typ, status string
	var acceptedAt, completedAt sql.NullTime

	err := row.Scan(
		&a.ID, &a.OrderID, &a.DeliveryPersonID, &typ, &a.DeliveryLocation,
		&a.DeliveryFee, &a.Notes, &status, &a.AssignedAt, &acceptedAt, &completedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan assignment: %w", err)
	}
	a.Type = Type(typ)
	a.Status = Status(status)
	if acceptedAt.Valid {
		t := acceptedAt.Time
		a.AcceptedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		a.CompletedAt = &t
	}
	return &a, nil
}
