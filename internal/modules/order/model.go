// README: Order aggregate, status definitions, and the transition graph.
package order

import (
	"time"

	"agrilink/internal/modules/user"
)

type Status string

const (
	StatusNew        Status = "new"
	StatusProcessing Status = "processing"
	StatusAssigned   Status = "assigned"
	StatusPickedUp   Status = "picked_up"
	StatusInTransit  Status = "in_transit"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

func ValidStatus(st Status) bool {
	switch st {
	case StatusNew, StatusProcessing, StatusAssigned, StatusPickedUp,
		StatusInTransit, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID               int64   `json:"id"`
	ProductID        int64   `json:"product_id"`
	BuyerID          int64   `json:"buyer_id"`
	FarmerID         int64   `json:"farmer_id"`
	DeliveryPersonID *int64  `json:"delivery_person_id,omitempty"`
	ProductName      string  `json:"product_name"`
	Quantity         float64 `json:"quantity"`

	// Price snapshot: the product's display price at order time.
	PricePerKg float64 `json:"price_per_kg"`
	TotalPrice float64 `json:"total_price"`

	DeliveryAddress     string `json:"delivery_address"`
	DeliveryLocation    string `json:"delivery_location"`
	SpecialInstructions string `json:"special_instructions"`

	Status      Status     `json:"status"`
	AssignedAt  *time.Time `json:"assigned_at,omitempty"`
	PickedUpAt  *time.Time `json:"picked_up_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AllowedTransitions is the forward state flow. Admins may override it; every
// other actor is held to the graph.
var AllowedTransitions = map[Status][]Status{
	StatusNew:        {StatusProcessing, StatusAssigned, StatusCancelled},
	StatusProcessing: {StatusAssigned, StatusCancelled},
	// assigned -> processing happens when a courier rejects the assignment.
	StatusAssigned:  {StatusProcessing, StatusPickedUp, StatusCancelled},
	StatusPickedUp:  {StatusInTransit, StatusDelivered, StatusCancelled},
	StatusInTransit: {StatusDelivered, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	for _, next := range AllowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func Terminal(st Status) bool {
	return st == StatusDelivered || st == StatusCancelled
}

// Actor is the authenticated caller attempting a lifecycle operation.
type Actor struct {
	ID   int64
	Role user.Role
}

// CanUpdateStatus applies the role and ownership gate: admins always; farmers
// on orders for their own produce; buyers only to cancel their own order;
// couriers only on orders assigned to them.
func CanUpdateStatus(a Actor, o *Order, target Status) bool {
	switch a.Role {
	case user.RoleAdmin:
		return true
	case user.RoleFarmer:
		return o.FarmerID == a.ID
	case user.RoleBuyer:
		return o.BuyerID == a.ID && target == StatusCancelled
	case user.RoleDelivery:
		return o.DeliveryPersonID != nil && *o.DeliveryPersonID == a.ID
	}
	return false
}

// CanView gates single-order reads to participants and admins.
func CanView(a Actor, o *Order) bool {
	if a.Role == user.RoleAdmin {
		return true
	}
	if o.BuyerID == a.ID || o.FarmerID == a.ID {
		return true
	}
	return o.DeliveryPersonID != nil && *o.DeliveryPersonID == a.ID
}
