// README: Assignment engine tests with in-memory doubles.
package assignment

import (
	"context"
	"errors"
	"testing"
	"time"

	"agrilink/internal/infra"
	"agrilink/internal/modules/order"
	"agrilink/internal/modules/user"
)

// fakeTx runs the callback without a real transaction.
type fakeTx struct{}

func (fakeTx) RunInTx(_ context.Context, fn func(q infra.Querier) error) error {
	return fn(nil)
}

type mockOrders struct {
	orders map[int64]*order.Order
}

func (m *mockOrders) AssignCourier(_ context.Context, _ infra.Querier, orderID, courierID int64) (bool, error) {
	o, ok := m.orders[orderID]
	if !ok || o.DeliveryPersonID != nil {
		return false, nil
	}
	switch o.Status {
	case order.StatusNew, order.StatusProcessing:
	default:
		return false, nil
	}
	o.DeliveryPersonID = &courierID
	o.Status = order.StatusAssigned
	return true, nil
}

func (m *mockOrders) ClearCourier(_ context.Context, _ infra.Querier, orderID int64) error {
	o, ok := m.orders[orderID]
	if !ok {
		return order.ErrNotFound
	}
	o.DeliveryPersonID = nil
	o.Status = order.StatusProcessing
	return nil
}

func (m *mockOrders) GetForCourier(_ context.Context, _ infra.Querier, orderID, courierID int64) (*order.Order, error) {
	o, ok := m.orders[orderID]
	if !ok || o.DeliveryPersonID == nil || *o.DeliveryPersonID != courierID {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrders) UpdateStatus(_ context.Context, _ infra.Querier, id int64, from, to order.Status) (bool, error) {
	o, ok := m.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (m *mockOrders) ListByCourier(_ context.Context, _ int64) ([]*order.Detail, error) {
	return nil, nil
}

func (m *mockOrders) CourierStats(_ context.Context, _ int64) (order.CourierStats, error) {
	return order.CourierStats{TotalDeliveries: 4, CompletedDeliveries: 3, ActiveDeliveries: 1}, nil
}

type mockCourier struct {
	location     string
	availability user.Availability
}

type mockCouriers struct {
	couriers map[int64]*mockCourier
}

func (m *mockCouriers) LockAvailableCourier(_ context.Context, _ infra.Querier, location string) (int64, error) {
	var bestID int64
	for id, c := range m.couriers {
		if c.location == location && c.availability == user.AvailabilityAvailable {
			if bestID == 0 || id < bestID {
				bestID = id
			}
		}
	}
	if bestID == 0 {
		return 0, user.ErrNoCourier
	}
	return bestID, nil
}

func (m *mockCouriers) SetAvailability(_ context.Context, _ infra.Querier, id int64, a user.Availability) error {
	c, ok := m.couriers[id]
	if !ok {
		return user.ErrNotFound
	}
	c.availability = a
	return nil
}

type mockLedger struct {
	nextID  int64
	records map[int64]*Assignment
}

func newMockLedger() *mockLedger {
	return &mockLedger{nextID: 1, records: map[int64]*Assignment{}}
}

func (m *mockLedger) Create(_ context.Context, _ infra.Querier, a *Assignment) error {
	a.ID = m.nextID
	m.nextID++
	m.records[a.ID] = a
	return nil
}

func (m *mockLedger) GetForCourier(_ context.Context, _ infra.Querier, id, courierID int64) (*Assignment, error) {
	a, ok := m.records[id]
	if !ok || a.DeliveryPersonID != courierID {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockLedger) SetAccepted(_ context.Context, _ infra.Querier, id int64) error {
	a, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now()
	a.Status = StatusAccepted
	a.AcceptedAt = &now
	return nil
}

func (m *mockLedger) SetRejected(_ context.Context, _ infra.Querier, id int64) error {
	a, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = StatusRejected
	return nil
}

func (m *mockLedger) CompleteForOrder(_ context.Context, _ infra.Querier, orderID int64) error {
	for _, a := range m.records {
		if a.OrderID == orderID && Active(a.Status) {
			now := time.Now()
			a.Status = StatusCompleted
			a.CompletedAt = &now
		}
	}
	return nil
}

func (m *mockLedger) Earnings(_ context.Context, _ int64) (float64, error) {
	return 120.50, nil
}

type fixture struct {
	svc      *Service
	orders   *mockOrders
	couriers *mockCouriers
	ledger   *mockLedger
}

func setup() *fixture {
	orders := &mockOrders{orders: map[int64]*order.Order{
		1: {ID: 1, BuyerID: 10, FarmerID: 20, Status: order.StatusNew, DeliveryLocation: "Addis Ababa"},
	}}
	couriers := &mockCouriers{couriers: map[int64]*mockCourier{
		30: {location: "Addis Ababa", availability: user.AvailabilityAvailable},
		31: {location: "Bahir Dar", availability: user.AvailabilityAvailable},
		32: {location: "Addis Ababa", availability: user.AvailabilityBusy},
	}}
	ledger := newMockLedger()
	return &fixture{
		svc:      NewService(ledger, orders, couriers, fakeTx{}),
		orders:   orders,
		couriers: couriers,
		ledger:   ledger,
	}
}

func TestAutoAssignPicksMatchingCourier(t *testing.T) {
	f := setup()
	ctx := context.Background()

	if err := f.svc.AutoAssign(ctx, f.orders.orders[1]); err != nil {
		t.Fatalf("auto-assign: %v", err)
	}

	o := f.orders.orders[1]
	if o.Status != order.StatusAssigned {
		t.Errorf("order status = %s, want assigned", o.Status)
	}
	if o.DeliveryPersonID == nil || *o.DeliveryPersonID != 30 {
		t.Fatalf("courier = %v, want 30", o.DeliveryPersonID)
	}
	if f.couriers.couriers[30].availability != user.AvailabilityBusy {
		t.Error("assigned courier should be busy")
	}

	a := f.ledger.records[1]
	if a == nil {
		t.Fatal("no assignment recorded")
	}
	if a.Type != TypeAutomatic || a.Status != StatusAssigned {
		t.Errorf("assignment = %s/%s, want automatic/assigned", a.Type, a.Status)
	}
	if a.DeliveryLocation != "Addis Ababa" {
		t.Errorf("delivery location = %s", a.DeliveryLocation)
	}
}

func TestAutoAssignTakesExactlyOneCourier(t *testing.T) {
	f := setup()
	ctx := context.Background()

	// A second available courier at the same location as courier 30.
	f.couriers.couriers[33] = &mockCourier{location: "Addis Ababa", availability: user.AvailabilityAvailable}

	if err := f.svc.AutoAssign(ctx, f.orders.orders[1]); err != nil {
		t.Fatalf("auto-assign: %v", err)
	}

	assigned := f.orders.orders[1].DeliveryPersonID
	if assigned == nil {
		t.Fatal("no courier assigned")
	}
	busy := 0
	for _, id := range []int64{30, 33} {
		switch f.couriers.couriers[id].availability {
		case user.AvailabilityBusy:
			if *assigned != id {
				t.Errorf("courier %d busy but order assigned to %d", id, *assigned)
			}
			busy++
		case user.AvailabilityAvailable:
		default:
			t.Errorf("courier %d availability = %s", id, f.couriers.couriers[id].availability)
		}
	}
	if busy != 1 {
		t.Fatalf("busy couriers = %d, want exactly 1", busy)
	}
}

func TestAutoAssignNoCourierLeavesOrderUntouched(t *testing.T) {
	f := setup()
	f.orders.orders[1].DeliveryLocation = "Mekelle"

	err := f.svc.AutoAssign(context.Background(), f.orders.orders[1])
	if !errors.Is(err, ErrNoCourier) {
		t.Fatalf("expected ErrNoCourier, got %v", err)
	}

	o := f.orders.orders[1]
	if o.Status != order.StatusNew || o.DeliveryPersonID != nil {
		t.Errorf("order mutated: status=%s courier=%v", o.Status, o.DeliveryPersonID)
	}
	if len(f.ledger.records) != 0 {
		t.Error("assignment recorded despite no courier")
	}
}

func TestAutoAssignEmptyLocation(t *testing.T) {
	f := setup()
	f.orders.orders[1].DeliveryLocation = ""

	err := f.svc.AutoAssign(context.Background(), f.orders.orders[1])
	if !errors.Is(err, ErrNoCourier) {
		t.Fatalf("expected ErrNoCourier, got %v", err)
	}
}

func TestAcceptKeepsOrderStatus(t *testing.T) {
	f := setup()
	ctx := context.Background()
	if err := f.svc.AutoAssign(ctx, f.orders.orders[1]); err != nil {
		t.Fatalf("auto-assign: %v", err)
	}

	if err := f.svc.Accept(ctx, 30, 1); err != nil {
		t.Fatalf("accept: %v", err)
	}

	a := f.ledger.records[1]
	if a.Status != StatusAccepted || a.AcceptedAt == nil {
		t.Errorf("assignment = %s, accepted_at = %v", a.Status, a.AcceptedAt)
	}
	if f.orders.orders[1].Status != order.StatusAssigned {
		t.Errorf("order status = %s, accept must not move it", f.orders.orders[1].Status)
	}

	if err := f.svc.Accept(ctx, 30, 1); err != ErrInvalidState {
		t.Fatalf("second accept: expected ErrInvalidState, got %v", err)
	}
}

func TestAcceptForeignAssignment(t *testing.T) {
	f := setup()
	ctx := context.Background()
	if err := f.svc.AutoAssign(ctx, f.orders.orders[1]); err != nil {
		t.Fatalf("auto-assign: %v", err)
	}

	if err := f.svc.Accept(ctx, 31, 1); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRejectReopensOrder(t *testing.T) {
	f := setup()
	ctx := context.Background()
	if err := f.svc.AutoAssign(ctx, f.orders.orders[1]); err != nil {
		t.Fatalf("auto-assign: %v", err)
	}

	if err := f.svc.Reject(ctx, 30, 1); err != nil {
		t.Fatalf("reject: %v", err)
	}

	o := f.orders.orders[1]
	if o.Status != order.StatusProcessing || o.DeliveryPersonID != nil {
		t.Errorf("order not reopened: status=%s courier=%v", o.Status, o.DeliveryPersonID)
	}
	if f.ledger.records[1].Status != StatusRejected {
		t.Errorf("assignment = %s, want rejected", f.ledger.records[1].Status)
	}
	if f.couriers.couriers[30].availability != user.AvailabilityAvailable {
		t.Error("courier should be released after reject")
	}
}

func TestUpdateDeliveryStatusProgression(t *testing.T) {
	f := setup()
	ctx := context.Background()
	if err := f.svc.AutoAssign(ctx, f.orders.orders[1]); err != nil {
		t.Fatalf("auto-assign: %v", err)
	}

	if err := f.svc.UpdateDeliveryStatus(ctx, 30, 1, order.StatusPickedUp); err != nil {
		t.Fatalf("picked_up: %v", err)
	}
	if f.orders.orders[1].Status != order.StatusPickedUp {
		t.Errorf("status = %s", f.orders.orders[1].Status)
	}
	if f.ledger.records[1].Status != StatusAssigned {
		t.Error("assignment must stay open before delivery")
	}

	if err := f.svc.UpdateDeliveryStatus(ctx, 30, 1, order.StatusInTransit); err != nil {
		t.Fatalf("in_transit: %v", err)
	}
	if err := f.svc.UpdateDeliveryStatus(ctx, 30, 1, order.StatusDelivered); err != nil {
		t.Fatalf("delivered: %v", err)
	}

	if f.ledger.records[1].Status != StatusCompleted || f.ledger.records[1].CompletedAt == nil {
		t.Error("assignment not completed on delivery")
	}
	if f.couriers.couriers[30].availability != user.AvailabilityAvailable {
		t.Error("courier should be released after delivery")
	}
}

func TestUpdateDeliveryStatusRejectsBadInput(t *testing.T) {
	f := setup()
	ctx := context.Background()
	if err := f.svc.AutoAssign(ctx, f.orders.orders[1]); err != nil {
		t.Fatalf("auto-assign: %v", err)
	}

	if err := f.svc.UpdateDeliveryStatus(ctx, 30, 1, order.StatusCancelled); err != ErrValidation {
		t.Fatalf("cancelled: expected ErrValidation, got %v", err)
	}
	// assigned → delivered skips picked_up
	if err := f.svc.UpdateDeliveryStatus(ctx, 30, 1, order.StatusDelivered); err != ErrInvalidState {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	// someone else's order
	if err := f.svc.UpdateDeliveryStatus(ctx, 31, 1, order.StatusPickedUp); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStats(t *testing.T) {
	f := setup()
	stats, err := f.svc.Stats(context.Background(), 30)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalDeliveries != 4 || stats.CompletedDeliveries != 3 || stats.ActiveDeliveries != 1 {
		t.Errorf("counts = %+v", stats.CourierStats)
	}
	if stats.TotalEarnings != 120.50 {
		t.Errorf("earnings = %v, want 120.50", stats.TotalEarnings)
	}
}
