// README: Order lifecycle engine. Every transition runs in a single
// transaction together with any dependent courier-availability update, so a
// crash between the two writes cannot leave a courier stuck busy.
package order

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"agrilink/internal/infra"
	"agrilink/internal/modules/product"
	"agrilink/internal/modules/user"
)

var (
	ErrNotFound           = errors.New("order not found")
	ErrForbidden          = errors.New("access denied")
	ErrValidation         = errors.New("invalid input")
	ErrInvalidState       = errors.New("order cannot change to that status")
	ErrConflict           = errors.New("order state conflict")
	ErrProductUnavailable = errors.New("product not found or not available")
)

// Catalog is the product lookup the engine needs at order time.
type Catalog interface {
	GetProduct(ctx context.Context, id int64) (*product.Product, error)
}

// Directory flips courier availability inside the engine's transaction.
type Directory interface {
	SetAvailability(ctx context.Context, q infra.Querier, id int64, a user.Availability) error
}

// Assigner is the delivery assignment engine hook invoked after creation.
type Assigner interface {
	AutoAssign(ctx context.Context, o *Order) error
}

type Service struct {
	store     *Store
	catalog   Catalog
	directory Directory
	tx        infra.TxRunner
	assigner  Assigner
}

func NewService(store *Store, catalog Catalog, directory Directory, tx infra.TxRunner) *Service {
	return &Service{store: store, catalog: catalog, directory: directory, tx: tx}
}

// SetAssigner enables best-effort auto-assignment after order creation.
func (s *Service) SetAssigner(a Assigner) {
	s.assigner = a
}

type CreateCommand struct {
	BuyerID             int64
	ProductID           int64
	Quantity            float64
	DeliveryAddress     string
	DeliveryLocation    string
	SpecialInstructions string
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Order, error) {
	if cmd.ProductID == 0 || cmd.Quantity <= 0 {
		return nil, ErrValidation
	}
	p, err := s.catalog.GetProduct(ctx, cmd.ProductID)
	if errors.Is(err, product.ErrNotFound) {
		return nil, ErrProductUnavailable
	}
	if err != nil {
		return nil, err
	}
	if p.Status != product.StatusApproved || !p.Available {
		return nil, ErrProductUnavailable
	}

	// Delivery falls back to the product's location when the buyer gave none.
	location := cmd.DeliveryLocation
	if location == "" {
		location = p.Location
	}

	o := &Order{
		ProductID:           p.ID,
		BuyerID:             cmd.BuyerID,
		FarmerID:            p.FarmerID,
		ProductName:         p.Title,
		Quantity:            cmd.Quantity,
		PricePerKg:          p.DisplayPrice,
		TotalPrice:          round2(p.DisplayPrice * cmd.Quantity),
		DeliveryAddress:     cmd.DeliveryAddress,
		DeliveryLocation:    location,
		SpecialInstructions: cmd.SpecialInstructions,
		Status:              StatusNew,
		CreatedAt:           time.Now(),
	}
	if err := s.store.Create(ctx, o); err != nil {
		return nil, err
	}

	// Assignment is best effort: a failure is logged and the order stands.
	if s.assigner != nil {
		if err := s.assigner.AutoAssign(ctx, o); err != nil {
			log.Printf("auto-assign failed for order %d: %v", o.ID, err)
		} else if fresh, err := s.store.Get(ctx, o.ID); err == nil {
			// Pick up the courier and status the assigner may have written.
			o = fresh
		}
	}
	return o, nil
}

// UpdateStatus applies a role-gated transition. Non-admin actors are held to
// the transition graph; admins may force any of the seven statuses.
func (s *Service) UpdateStatus(ctx context.Context, actor Actor, orderID int64, target Status) error {
	if !ValidStatus(target) {
		return ErrValidation
	}
	return s.tx.RunInTx(ctx, func(q infra.Querier) error {
		o, err := s.store.GetLocked(ctx, q, orderID)
		if err != nil {
			return err
		}
		if !CanUpdateStatus(actor, o, target) {
			return ErrForbidden
		}

		if actor.Role == user.RoleAdmin {
			if err := s.store.ForceStatus(ctx, q, orderID, target); err != nil {
				return err
			}
		} else {
			if !CanTransition(o.Status, target) {
				return ErrInvalidState
			}
			ok, err := s.store.UpdateStatus(ctx, q, orderID, o.Status, target)
			if err != nil {
				return err
			}
			if !ok {
				return ErrConflict
			}
		}

		return s.releaseCourierIfDone(ctx, q, o, target)
	})
}

// Cancel is the buyer's own cancel endpoint, allowed only while the order has
// not yet been picked up for delivery.
func (s *Service) Cancel(ctx context.Context, buyerID, orderID int64) error {
	return s.tx.RunInTx(ctx, func(q infra.Querier) error {
		o, err := s.store.GetLocked(ctx, q, orderID)
		if err != nil {
			return err
		}
		if o.BuyerID != buyerID {
			return ErrNotFound
		}
		if o.Status != StatusNew && o.Status != StatusProcessing {
			return ErrInvalidState
		}
		ok, err := s.store.UpdateStatus(ctx, q, orderID, o.Status, StatusCancelled)
		if err != nil {
			return err
		}
		if !ok {
			return ErrConflict
		}
		return s.releaseCourierIfDone(ctx, q, o, StatusCancelled)
	})
}

// releaseCourierIfDone frees the assigned courier when the order reaches a
// terminal status.
func (s *Service) releaseCourierIfDone(ctx context.Context, q infra.Querier, o *Order, target Status) error {
	if !Terminal(target) || o.DeliveryPersonID == nil {
		return nil
	}
	return s.directory.SetAvailability(ctx, q, *o.DeliveryPersonID, user.AvailabilityAvailable)
}

func (s *Service) Get(ctx context.Context, actor Actor, id int64) (*Detail, error) {
	d, err := s.store.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanView(actor, &d.Order) {
		return nil, ErrForbidden
	}
	return d, nil
}

func (s *Service) ListForBuyer(ctx context.Context, buyerID int64) ([]*Detail, error) {
	return s.store.ListByBuyer(ctx, buyerID)
}

func (s *Service) ListForFarmer(ctx context.Context, farmerID int64) ([]*Detail, error) {
	return s.store.ListByFarmer(ctx, farmerID)
}

func (s *Service) ListForCourier(ctx context.Context, courierID int64) ([]*Detail, error) {
	return s.store.ListByCourier(ctx, courierID)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.store.Count(ctx)
}

func (s *Service) ListAll(ctx context.Context) ([]*Detail, error) {
	return s.store.ListAll(ctx)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
