// README: Product catalog aggregate and service-fee pricing.
package product

import (
	"math"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusSuspended Status = "suspended"
)

func ValidStatus(st Status) bool {
	switch st {
	case StatusPending, StatusApproved, StatusRejected, StatusSuspended:
		return true
	}
	return false
}

type Product struct {
	ID          int64   `json:"id"`
	FarmerID    int64   `json:"farmer_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`

	// Pricing snapshot taken at create/update time. Later changes to the
	// global fee percentage never touch existing rows.
	BasePrice            float64 `json:"base_price"`
	ServiceFeePercentage float64 `json:"service_fee_percentage"`
	ServiceFee           float64 `json:"service_fee"`
	DisplayPrice         float64 `json:"display_price"`

	Quantity        float64    `json:"quantity"`
	Location        string     `json:"location"`
	HarvestDate     *time.Time `json:"harvest_date,omitempty"`
	Organic         bool       `json:"organic"`
	Certified       bool       `json:"certified"`
	Images          []string   `json:"images"`
	Status          Status     `json:"status"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	Available       bool       `json:"available"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// FarmerInfo rides along on catalog reads.
type FarmerInfo struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Phone    string  `json:"phone"`
	Email    string  `json:"email,omitempty"`
	Location string  `json:"location"`
	Rating   float64 `json:"rating"`
}

// placeholderRating stands in until review aggregation exists.
const placeholderRating = 4.5

type Pricing struct {
	BasePrice            float64 `json:"base_price"`
	ServiceFee           float64 `json:"service_fee"`
	DisplayPrice         float64 `json:"display_price"`
	ServiceFeePercentage float64 `json:"service_fee_percentage"`
}

// ComputePricing derives the fee and display price from a base price and a
// fee percentage, rounding each to 2 decimals.
func ComputePricing(basePrice, feePercentage float64) Pricing {
	fee := basePrice * feePercentage / 100
	return Pricing{
		BasePrice:            round2(basePrice),
		ServiceFee:           round2(fee),
		DisplayPrice:         round2(basePrice + fee),
		ServiceFeePercentage: feePercentage,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
