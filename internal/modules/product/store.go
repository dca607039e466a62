// README: Product store backed by PostgreSQL.
package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const productColumns = `
	p.id, p.farmer_id, p.title, p.description, p.category,
	p.base_price, p.service_fee_percentage, p.service_fee, p.display_price,
	p.quantity, p.location, p.harvest_date, p.organic, p.certified, p.images,
	p.status, p.rejection_reason, p.available, p.approved_at, p.created_at, p.updated_at`

func (s *Store) Create(ctx context.Context, p *Product) error {
	row := s.db.QueryRow(ctx, `
		INSERT INTO products (
			farmer_id, title, description, category,
			base_price, service_fee_percentage, service_fee, display_price,
			quantity, location, harvest_date, organic, certified, images,
			status, available, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $17)
		RETURNING id`,
		p.FarmerID, p.Title, p.Description, p.Category,
		p.BasePrice, p.ServiceFeePercentage, p.ServiceFee, p.DisplayPrice,
		p.Quantity, p.Location, p.HarvestDate, p.Organic, p.Certified, p.Images,
		string(p.Status), p.Available, p.CreatedAt,
	)
	if err := row.Scan(&p.ID); err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Product, error) {
	row := s.db.QueryRow(ctx, `SELECT`+productColumns+` FROM products p WHERE p.id = $1`, id)
	return scanProduct(row)
}

// Listing is a catalog row joined with the owning farmer's public info.
type Listing struct {
	Product
	Farmer FarmerInfo `json:"farmer"`
}

func (s *Store) GetListing(ctx context.Context, id int64) (*Listing, error) {
	row := s.db.QueryRow(ctx, `
		SELECT`+productColumns+`,
		       u.id, u.name, u.phone, u.email, u.location
		FROM products p
		JOIN users u ON p.farmer_id = u.id
		WHERE p.id = $1`, id)
	return scanListing(row, true)
}

type ListFilter struct {
	Status   Status
	Category string
	Location string
}

// ListCatalog returns available listings matching the filter, newest first.
func (s *Store) ListCatalog(ctx context.Context, f ListFilter) ([]*Listing, error) {
	query := `
		SELECT` + productColumns + `,
		       u.id, u.name, u.phone, u.email, u.location
		FROM products p
		JOIN users u ON p.farmer_id = u.id
		WHERE p.available = TRUE`
	args := []any{}
	idx := 1
	if f.Status != "" {
		query += fmt.Sprintf(" AND p.status = $%d", idx)
		args = append(args, string(f.Status))
		idx++
	}
	if f.Category != "" {
		query += fmt.Sprintf(" AND p.category = $%d", idx)
		args = append(args, f.Category)
		idx++
	}
	if f.Location != "" {
		query += fmt.Sprintf(" AND p.location = $%d", idx)
		args = append(args, f.Location)
		idx++
	}
	query += " ORDER BY p.created_at DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	defer rows.Close()

	var out []*Listing
	for rows.Next() {
		l, err := scanListing(rows, false)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ListAll is the admin view: every product regardless of availability.
func (s *Store) ListAll(ctx context.Context, status Status) ([]*Listing, error) {
	query := `
		SELECT` + productColumns + `,
		       u.id, u.name, u.phone, u.email, u.location
		FROM products p
		JOIN users u ON p.farmer_id = u.id`
	args := []any{}
	if status != "" {
		query += " WHERE p.status = $1"
		args = append(args, string(status))
	}
	query += " ORDER BY p.created_at DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []*Listing
	for rows.Next() {
		l, err := scanListing(rows, false)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) ListByFarmer(ctx context.Context, farmerID int64) ([]*Product, error) {
	rows, err := s.db.Query(ctx,
		`SELECT`+productColumns+` FROM products p WHERE p.farmer_id = $1 ORDER BY p.created_at DESC`,
		farmerID)
	if err != nil {
		return nil, fmt.Errorf("list farmer products: %w", err)
	}
	defer rows.Close()

	var out []*Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdatePatch carries the optional fields of a farmer update. Nil means
// leave the column untouched, matching the original partial-update semantics.
type UpdatePatch struct {
	Title       *string
	Description *string
	Quantity    *float64
	Pricing     *Pricing
	Location    *string
	Available   *bool
	Images      []string
}

func (p UpdatePatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Quantity == nil &&
		p.Pricing == nil && p.Location == nil && p.Available == nil && p.Images == nil
}

func (s *Store) Update(ctx context.Context, id int64, patch UpdatePatch) error {
	var sets []string
	var args []any
	idx := 1

	add := func(expr string, v any) {
		sets = append(sets, fmt.Sprintf(expr, idx))
		args = append(args, v)
		idx++
	}

	if patch.Title != nil {
		add("title = $%d", *patch.Title)
	}
	if patch.Description != nil {
		add("description = $%d", *patch.Description)
	}
	if patch.Quantity != nil {
		add("quantity = $%d", *patch.Quantity)
	}
	if patch.Pricing != nil {
		add("base_price = $%d", patch.Pricing.BasePrice)
		add("service_fee_percentage = $%d", patch.Pricing.ServiceFeePercentage)
		add("service_fee = $%d", patch.Pricing.ServiceFee)
		add("display_price = $%d", patch.Pricing.DisplayPrice)
	}
	if patch.Location != nil {
		add("location = $%d", *patch.Location)
	}
	if patch.Available != nil {
		add("available = $%d", *patch.Available)
	}
	if patch.Images != nil {
		add("images = $%d", patch.Images)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $%d", strings.Join(sets, ", "), idx)
	args = append(args, id)

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetStatus(ctx context.Context, id int64, st Status, reason *string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE products
		SET status = $1,
		    rejection_reason = $2,
		    approved_at = CASE WHEN $1 = 'approved' THEN NOW() ELSE approved_at END,
		    updated_at = NOW()
		WHERE id = $3`,
		string(st), reason, id)
	if err != nil {
		return fmt.Errorf("set product status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type Counts struct {
	TotalProducts   int64
	PendingProducts int64
}

func (s *Store) CountForDashboard(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'pending') FROM products`,
	).Scan(&c.TotalProducts, &c.PendingProducts)
	if err != nil {
		return Counts{}, fmt.Errorf("count products: %w", err)
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*Product, error) {
	var p Product
	if err := scanProductInto(row, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanProductInto(row rowScanner, p *Product, extra ...any) error {
	var status string
	var harvestDate, approvedAt sql.NullTime
	dest := []any{
		&p.ID, &p.FarmerID, &p.Title, &p.Description, &p.Category,
		&p.BasePrice, &p.ServiceFeePercentage, &p.ServiceFee, &p.DisplayPrice,
		&p.Quantity, &p.Location, &harvestDate, &p.Organic, &p.Certified, &p.Images,
		&status, &p.RejectionReason, &p.Available, &approvedAt, &p.CreatedAt, &p.UpdatedAt,
	}
	dest = append(dest, extra...)

	err := row.Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("scan product: %w", err)
	}
	p.Status = Status(status)
	p.HarvestDate = nullTimePtr(harvestDate)
	p.ApprovedAt = nullTimePtr(approvedAt)
	if p.Images == nil {
		p.Images = []string{}
	}
	return nil
}

func scanListing(row rowScanner, withEmail bool) (*Listing, error) {
	var l Listing
	err := scanProductInto(row, &l.Product,
		&l.Farmer.ID, &l.Farmer.Name, &l.Farmer.Phone, &l.Farmer.Email, &l.Farmer.Location)
	if err != nil {
		return nil, err
	}
	if !withEmail {
		l.Farmer.Email = ""
	}
	l.Farmer.Rating = placeholderRating
	return &l, nil
}

func nullTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
