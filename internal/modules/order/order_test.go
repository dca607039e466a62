// README: Order state machine and authorization tests.
package order

import (
	"testing"

	"agrilink/internal/modules/user"
)

// TestCanTransition verifies the state machine transition table without a database.
func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		// happy-path forward transitions
		{StatusNew, StatusProcessing, true},
		{StatusProcessing, StatusAssigned, true},
		{StatusAssigned, StatusPickedUp, true},
		{StatusPickedUp, StatusInTransit, true},
		{StatusInTransit, StatusDelivered, true},
		// direct assignment of a fresh order
		{StatusNew, StatusAssigned, true},
		// courier rejection reopens the order
		{StatusAssigned, StatusProcessing, true},
		// skipping in_transit is allowed
		{StatusPickedUp, StatusDelivered, true},
		// cancels from every non-terminal state
		{StatusNew, StatusCancelled, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusAssigned, StatusCancelled, true},
		{StatusPickedUp, StatusCancelled, true},
		{StatusInTransit, StatusCancelled, true},
		// invalid: terminal states have no outgoing transitions
		{StatusDelivered, StatusNew, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusProcessing, false},
		// invalid: skipping or reversing states
		{StatusNew, StatusPickedUp, false},
		{StatusNew, StatusDelivered, false},
		{StatusProcessing, StatusPickedUp, false},
		{StatusAssigned, StatusDelivered, false},
		{StatusInTransit, StatusPickedUp, false},
		{StatusDelivered, StatusDelivered, false},
	}
	for _, tc := range cases {
		got := CanTransition(tc.from, tc.to)
		if got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTerminal(t *testing.T) {
	for _, st := range []Status{StatusDelivered, StatusCancelled} {
		if !Terminal(st) {
			t.Errorf("Terminal(%s) = false, want true", st)
		}
	}
	for _, st := range []Status{StatusNew, StatusProcessing, StatusAssigned, StatusPickedUp, StatusInTransit} {
		if Terminal(st) {
			t.Errorf("Terminal(%s) = true, want false", st)
		}
	}
}

func TestCanUpdateStatus(t *testing.T) {
	courierID := int64(30)
	o := &Order{
		ID:               1,
		BuyerID:          10,
		FarmerID:         20,
		DeliveryPersonID: &courierID,
		Status:           StatusAssigned,
	}

	cases := []struct {
		name   string
		actor  Actor
		target Status
		want   bool
	}{
		{"admin can do anything", Actor{ID: 99, Role: user.RoleAdmin}, StatusDelivered, true},
		{"owning farmer may transition", Actor{ID: 20, Role: user.RoleFarmer}, StatusCancelled, true},
		{"other farmer may not", Actor{ID: 21, Role: user.RoleFarmer}, StatusCancelled, false},
		{"owning buyer may only cancel", Actor{ID: 10, Role: user.RoleBuyer}, StatusCancelled, true},
		{"owning buyer may not progress", Actor{ID: 10, Role: user.RoleBuyer}, StatusPickedUp, false},
		{"other buyer may not cancel", Actor{ID: 11, Role: user.RoleBuyer}, StatusCancelled, false},
		{"assigned courier may progress", Actor{ID: 30, Role: user.RoleDelivery}, StatusPickedUp, true},
		{"other courier may not", Actor{ID: 31, Role: user.RoleDelivery}, StatusPickedUp, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanUpdateStatus(tc.actor, o, tc.target); got != tc.want {
				t.Errorf("CanUpdateStatus = %v, want %v", got, tc.want)
			}
		})
	}

	unassigned := &Order{ID: 2, BuyerID: 10, FarmerID: 20, Status: StatusNew}
	if CanUpdateStatus(Actor{ID: 30, Role: user.RoleDelivery}, unassigned, StatusPickedUp) {
		t.Error("courier must not touch an unassigned order")
	}
}

func TestCanView(t *testing.T) {
	courierID := int64(30)
	o := &Order{ID: 1, BuyerID: 10, FarmerID: 20, DeliveryPersonID: &courierID}

	viewers := []Actor{
		{ID: 10, Role: user.RoleBuyer},
		{ID: 20, Role: user.RoleFarmer},
		{ID: 30, Role: user.RoleDelivery},
		{ID: 99, Role: user.RoleAdmin},
	}
	for _, a := range viewers {
		if !CanView(a, o) {
			t.Errorf("expected %s %d to view order", a.Role, a.ID)
		}
	}
	strangers := []Actor{
		{ID: 11, Role: user.RoleBuyer},
		{ID: 21, Role: user.RoleFarmer},
		{ID: 31, Role: user.RoleDelivery},
	}
	for _, a := range strangers {
		if CanView(a, o) {
			t.Errorf("expected %s %d to be denied", a.Role, a.ID)
		}
	}
}
