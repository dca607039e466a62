// README: Delivery assignment record: one courier's claim on one order.
package assignment

import "time"

type Status string

const (
	StatusAssigned  Status = "assigned"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

type Type string

const (
	TypeAutomatic Type = "automatic"
	TypeManual    Type = "manual"
)

type Assignment struct {
	ID               int64      `json:"id"`
	OrderID          int64      `json:"order_id"`
	DeliveryPersonID int64      `json:"delivery_person_id"`
	Type             Type       `json:"assignment_type"`
	DeliveryLocation string     `json:"delivery_location"`
	DeliveryFee      float64    `json:"delivery_fee"`
	Notes            string     `json:"notes"`
	Status           Status     `json:"status"`
	AssignedAt       time.Time  `json:"assigned_at"`
	AcceptedAt       *time.Time `json:"accepted_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// Active reports whether the assignment still binds the courier to the order.
func Active(st Status) bool {
	return st == StatusAssigned || st == StatusAccepted
}
