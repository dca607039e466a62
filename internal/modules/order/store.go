// README: Order store backed by PostgreSQL. Status mutations accept an
// infra.Querier so the service can bundle them with availability updates in
// one transaction.
package order

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

const orderColumns = `
	o.id, o.product_id, o.buyer_id, o.farmer_id, o.delivery_person_id,
	o.product_name, o.quantity, o.price_per_kg, o.total_price,
	o.delivery_address, o.delivery_location, o.special_instructions,
	o.status, o.assigned_at, o.picked_up_at, o.delivered_at, o.cancelled_at, o.created_at`

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, o *Order) error {
	row := s.db.QueryRow(ctx, `
		INSERT INTO orders (
			product_id, buyer_id, farmer_id, product_name, quantity,
			price_per_kg, total_price, delivery_address, delivery_location,
			special_instructions, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		o.ProductID, o.BuyerID, o.FarmerID, o.ProductName, o.Quantity,
		o.PricePerKg, o.TotalPrice, o.DeliveryAddress, o.DeliveryLocation,
		o.SpecialInstructions, string(o.Status), o.CreatedAt,
	)
	if err := row.Scan(&o.ID); err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id int64) (*Order, error) {
	return s.get(ctx, s.db, id)
}

// GetLocked re-reads the order inside a transaction with a row lock, so a
// transition decision cannot race a concurrent mutation.
func (s *Store) GetLocked(ctx context.Context, q infra.Querier, id int64) (*Order, error) {
	return s.get(ctx, q, id, "FOR UPDATE")
}

func (s *Store) get(ctx context.Context, q infra.Querier, id int64, suffix ...string) (*Order, error) {
	query := `SELECT` + orderColumns + ` FROM orders o WHERE o.id = $1`
	for _, sfx := range suffix {
		query += " " + sfx
	}
	return scanOrder(q.QueryRow(ctx, query, id))
}

// GetForCourier returns the order only when it is assigned to the courier,
// so delivery endpoints never leak other people's orders.
func (s *Store) GetForCourier(ctx context.Context, q infra.Querier, orderID, courierID int64) (*Order, error) {
	return scanOrder(q.QueryRow(ctx,
		`SELECT`+orderColumns+` FROM orders o WHERE o.id = $1 AND o.delivery_person_id = $2 FOR UPDATE`,
		orderID, courierID))
}

// UpdateStatus moves id from -> to, stamping the matching transition
// timestamp. Returns false when the order was no longer in `from`.
func (s *Store) UpdateStatus(ctx context.Context, q infra.Querier, id int64, from, to Status) (bool, error) {
	tag, err := q.Exec(ctx, `
		UPDATE orders
		SET status = $1,
		    assigned_at  = CASE WHEN $1 = 'assigned'  THEN NOW() ELSE assigned_at END,
		    picked_up_at = CASE WHEN $1 = 'picked_up' THEN NOW() ELSE picked_up_at END,
		    delivered_at = CASE WHEN $1 = 'delivered' THEN NOW() ELSE delivered_at END,
		    cancelled_at = CASE WHEN $1 = 'cancelled' THEN NOW() ELSE cancelled_at END
		WHERE id = $2 AND status = $3`,
		string(to), id, string(from))
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ForceStatus is the admin override path: no from-state guard.
func (s *Store) ForceStatus(ctx context.Context, q infra.Querier, id int64, to Status) error {
	tag, err := q.Exec(ctx, `
		UPDATE orders
		SET status = $1,
		    assigned_at  = CASE WHEN $1 = 'assigned'  THEN NOW() ELSE assigned_at END,
		    picked_up_at = CASE WHEN $1 = 'picked_up' THEN NOW() ELSE picked_up_at END,
		    delivered_at = CASE WHEN $1 = 'delivered' THEN NOW() ELSE delivered_at END,
		    cancelled_at = CASE WHEN $1 = 'cancelled' THEN NOW() ELSE cancelled_at END
		WHERE id = $2`,
		string(to), id)
	if err != nil {
		return fmt.Errorf("force order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AssignCourier attaches a courier to an unclaimed order and marks it
// assigned. Returns false when the order already left the assignable states.
func (s *Store) AssignCourier(ctx context.Context, q infra.Querier, orderID, courierID int64) (bool, error) {
	tag, err := q.Exec(ctx, `
		UPDATE orders
		SET delivery_person_id = $1, status = 'assigned', assigned_at = NOW()
		WHERE id = $2 AND delivery_person_id IS NULL AND status IN ('new', 'processing')`,
		courierID, orderID)
	if err != nil {
		return false, fmt.Errorf("assign courier: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ClearCourier detaches the courier and re-opens the order for assignment.
func (s *Store) ClearCourier(ctx context.Context, q infra.Querier, orderID int64) error {
	tag, err := q.Exec(ctx, `
		UPDATE orders
		SET delivery_person_id = NULL, status = 'processing'
		WHERE id = $1`,
		orderID)
	if err != nil {
		return fmt.Errorf("clear courier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Detail is an order joined with the names the dashboards show.
type Detail struct {
	Order
	ProductTitle  *string  `json:"product_title,omitempty"`
	ProductImages []string `json:"product_images"`
	BuyerName     *string  `json:"buyer_name,omitempty"`
	BuyerPhone    *string  `json:"buyer_phone,omitempty"`
	FarmerName    *string  `json:"farmer_name,omitempty"`
	FarmerPhone   *string  `json:"farmer_phone,omitempty"`
	CourierName   *string  `json:"delivery_person_name,omitempty"`
	CourierPhone  *string  `json:"delivery_person_phone,omitempty"`
}

const detailJoins = `
	LEFT JOIN products p ON o.product_id = p.id
	LEFT JOIN users ub ON o.buyer_id = ub.id
	LEFT JOIN users uf ON o.farmer_id = uf.id
	LEFT JOIN users ud ON o.delivery_person_id = ud.id`

const detailColumns = orderColumns + `,
	p.title, p.images, ub.name, ub.phone, uf.name, uf.phone, ud.name, ud.phone`

func (s *Store) GetDetail(ctx context.Context, id int64) (*Detail, error) {
	return scanDetail(s.db.QueryRow(ctx,
		`SELECT`+detailColumns+` FROM orders o`+detailJoins+` WHERE o.id = $1`, id))
}

func (s *Store) ListByBuyer(ctx context.Context, buyerID int64) ([]*Detail, error) {
	return s.listDetails(ctx, `WHERE o.buyer_id = $1`, buyerID)
}

func (s *Store) ListByFarmer(ctx context.Context, farmerID int64) ([]*Detail, error) {
	return s.listDetails(ctx, `WHERE o.farmer_id = $1`, farmerID)
}

func (s *Store) ListByCourier(ctx context.Context, courierID int64) ([]*Detail, error) {
	return s.listDetails(ctx, `WHERE o.delivery_person_id = $1`, courierID)
}

func (s *Store) ListAll(ctx context.Context) ([]*Detail, error) {
	return s.listDetails(ctx, ``)
}

func (s *Store) listDetails(ctx context.Context, where string, args ...any) ([]*Detail, error) {
	query := `SELECT` + detailColumns + ` FROM orders o` + detailJoins
	if where != "" {
		query += " " + where
	}
	query += " ORDER BY o.created_at DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []*Detail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type CourierStats struct {
	TotalDeliveries     int64 `json:"total_deliveries"`
	CompletedDeliveries int64 `json:"completed_deliveries"`
	ActiveDeliveries    int64 `json:"active_deliveries"`
}

func (s *Store) CourierStats(ctx context.Context, courierID int64) (CourierStats, error) {
	var st CourierStats
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'delivered'),
		       COUNT(*) FILTER (WHERE status IN ('assigned', 'picked_up', 'in_transit'))
		FROM orders
		WHERE delivery_person_id = $1`, courierID,
	).Scan(&st.TotalDeliveries, &st.CompletedDeliveries, &st.ActiveDeliveries)
	if err != nil {
		return CourierStats{}, fmt.Errorf("courier stats: %w", err)
	}
	return st, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var o Order
	if err := scanOrderInto(row, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func scanOrderInto(row rowScanner, o *Order, extra ...any) error {
	var status string
	var courierID sql.NullInt64
	var assignedAt, pickedUpAt, deliveredAt, cancelledAt sql.NullTime

	dest := []any{
		&o.ID, &o.ProductID, &o.BuyerID, &o.FarmerID, &courierID,
		&o.ProductName, &o.Quantity, &o.PricePerKg, &o.TotalPrice,
		&o.DeliveryAddress, &o.DeliveryLocation, &o.SpecialInstructions,
		&status, &assignedAt, &pickedUpAt, &deliveredAt, &cancelledAt, &o.CreatedAt,
	}
	dest = append(dest, extra...)

	err := row.Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("scan order: %w", err)
	}
	o.Status = Status(status)
	if courierID.Valid {
		v := courierID.Int64
		o.DeliveryPersonID = &v
	}
	o.AssignedAt = nullTimePtr(assignedAt)
	o.PickedUpAt = nullTimePtr(pickedUpAt)
	o.DeliveredAt = nullTimePtr(deliveredAt)
	o.CancelledAt = nullTimePtr(cancelledAt)
	return nil
}

func scanDetail(row rowScanner) (*Detail, error) {
	var d Detail
	err := scanOrderInto(row, &d.Order,
		&d.ProductTitle, &d.ProductImages,
		&d.BuyerName, &d.BuyerPhone, &d.FarmerName, &d.FarmerPhone,
		&d.CourierName, &d.CourierPhone)
	if err != nil {
		return nil, err
	}
	if d.ProductImages == nil {
		d.ProductImages = []string{}
	}
	return &d, nil
}

func nullTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
