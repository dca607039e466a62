// README: Assignment engine. Picks one matching courier per order inside a
// single transaction, so two orders can never claim the same person.
package assignment

import (
	"context"
	"errors"
	"time"

	"agrilink/internal/infra"
	"agrilink/internal/modules/order"
	"agrilink/internal/modules/user"
)

var (
	ErrNotFound     = errors.New("assignment not found")
	ErrValidation   = errors.New("invalid input")
	ErrInvalidState = errors.New("assignment cannot change to that status")
	ErrNoCourier    = errors.New("no available delivery personnel")
)

// Orders is the slice of the order store the engine drives.
type Orders interface {
	AssignCourier(ctx context.Context, q infra.Querier, orderID, courierID int64) (bool, error)
	ClearCourier(ctx context.Context, q infra.Querier, orderID int64) error
	GetForCourier(ctx context.Context, q infra.Querier, orderID, courierID int64) (*order.Order, error)
	UpdateStatus(ctx context.Context, q infra.Querier, id int64, from, to order.Status) (bool, error)
	ListByCourier(ctx context.Context, courierID int64) ([]*order.Detail, error)
	CourierStats(ctx context.Context, courierID int64) (order.CourierStats, error)
}

// Couriers locks and releases delivery personnel.
type Couriers interface {
	LockAvailableCourier(ctx context.Context, q infra.Querier, location string) (int64, error)
	SetAvailability(ctx context.Context, q infra.Querier, id int64, a user.Availability) error
}

// Ledger persists assignment rows.
type Ledger interface {
	Create(ctx context.Context, q infra.Querier, a *Assignment) error
	GetForCourier(ctx context.Context, q infra.Querier, id, courierID int64) (*Assignment, error)
	SetAccepted(ctx context.Context, q infra.Querier, id int64) error
	SetRejected(ctx context.Context, q infra.Querier, id int64) error
	CompleteForOrder(ctx context.Context, q infra.Querier, orderID int64) error
	Earnings(ctx context.Context, courierID int64) (float64, error)
}

type Service struct {
	ledger   Ledger
	orders   Orders
	couriers Couriers
	tx       infra.TxRunner
}

func NewService(ledger Ledger, orders Orders, couriers Couriers, tx infra.TxRunner) *Service {
	return &Service{ledger: ledger, orders: orders, couriers: couriers, tx: tx}
}

// AutoAssign claims one available courier whose location matches the order's
// delivery location. Returns ErrNoCourier when nobody is in place; the order
// is left untouched in that case.
func (s *Service) AutoAssign(ctx context.Context, o *order.Order) error {
	location := o.DeliveryLocation
	if location == "" {
		return ErrNoCourier
	}

	return s.tx.RunInTx(ctx, func(q infra.Querier) error {
		courierID, err := s.couriers.LockAvailableCourier(ctx, q, location)
		if err != nil {
			if errors.Is(err, user.ErrNoCourier) {
				return ErrNoCourier
			}
			return err
		}

		claimed, err := s.orders.AssignCourier(ctx, q, o.ID, courierID)
		if err != nil {
			return err
		}
		if !claimed {
			// Someone else took the order first; leave the courier free.
			return nil
		}

		a := &Assignment{
			OrderID:          o.ID,
			DeliveryPersonID: courierID,
			Type:             TypeAutomatic,
			DeliveryLocation: location,
			Status:           StatusAssigned,
			AssignedAt:       time.Now(),
		}
		if err := s.ledger.Create(ctx, q, a); err != nil {
			return err
		}
		return s.couriers.SetAvailability(ctx, q, courierID, user.AvailabilityBusy)
	})
}

// Accept confirms the courier will run the delivery. The order status stays
// assigned; only picked_up and later steps move it.
func (s *Service) Accept(ctx context.Context, courierID, assignmentID int64) error {
	return s.tx.RunInTx(ctx, func(q infra.Querier) error {
		a, err := s.ledger.GetForCourier(ctx, q, assignmentID, courierID)
		if err != nil {
			return err
		}
		if a.Status != StatusAssigned {
			return ErrInvalidState
		}
		return s.ledger.SetAccepted(ctx, q, a.ID)
	})
}

// Reject hands the order back to the pool: the assignment goes rejected, the
// order drops its courier and returns to processing, and the courier is
// released.
func (s *Service) Reject(ctx context.Context, courierID, assignmentID int64) error {
	return s.tx.RunInTx(ctx, func(q infra.Querier) error {
		a, err := s.ledger.GetForCourier(ctx, q, assignmentID, courierID)
		if err != nil {
			return err
		}
		if !Active(a.Status) {
			return ErrInvalidState
		}
		if err := s.ledger.SetRejected(ctx, q, a.ID); err != nil {
			return err
		}
		if err := s.orders.ClearCourier(ctx, q, a.OrderID); err != nil {
			return err
		}
		return s.couriers.SetAvailability(ctx, q, courierID, user.AvailabilityAvailable)
	})
}

// UpdateDeliveryStatus is the courier-facing order progression. Delivered
// closes the assignment and releases the courier in the same transaction.
func (s *Service) UpdateDeliveryStatus(ctx context.Context, courierID, orderID int64, target order.Status) error {
	switch target {
	case order.StatusPickedUp, order.StatusInTransit, order.StatusDelivered:
	default:
		return ErrValidation
	}

	return s.tx.RunInTx(ctx, func(q infra.Querier) error {
		o, err := s.orders.GetForCourier(ctx, q, orderID, courierID)
		if err != nil {
			if errors.Is(err, order.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !order.CanTransition(o.Status, target) {
			return ErrInvalidState
		}

		moved, err := s.orders.UpdateStatus(ctx, q, o.ID, o.Status, target)
		if err != nil {
			return err
		}
		if !moved {
			return ErrInvalidState
		}
		if target != order.StatusDelivered {
			return nil
		}

		if err := s.ledger.CompleteForOrder(ctx, q, o.ID); err != nil {
			return err
		}
		return s.couriers.SetAvailability(ctx, q, courierID, user.AvailabilityAvailable)
	})
}

// MyDeliveries lists every order ever routed to the courier.
func (s *Service) MyDeliveries(ctx context.Context, courierID int64) ([]*order.Detail, error) {
	return s.orders.ListByCourier(ctx, courierID)
}

// Stats combines delivery counts with completed-fee earnings.
type Stats struct {
	order.CourierStats
	TotalEarnings float64 `json:"total_earnings"`
}

func (s *Service) Stats(ctx context.Context, courierID int64) (Stats, error) {
	counts, err := s.orders.CourierStats(ctx, courierID)
	if err != nil {
		return Stats{}, err
	}
	earnings, err := s.ledger.Earnings(ctx, courierID)
	if err != nil {
		return Stats{}, err
	}
	return Stats{CourierStats: counts, TotalEarnings: earnings}, nil
}
