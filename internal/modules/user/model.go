// README: User directory aggregate: roles, approval, suspension, availability.
package user

import "time"

type Role string

const (
	RoleFarmer   Role = "farmer"
	RoleBuyer    Role = "buyer"
	RoleDelivery Role = "delivery"
	RoleAdmin    Role = "admin"
)

func ValidRole(r Role) bool {
	switch r {
	case RoleFarmer, RoleBuyer, RoleDelivery, RoleAdmin:
		return true
	}
	return false
}

type Availability string

const (
	AvailabilityAvailable Availability = "available"
	AvailabilityBusy      Availability = "busy"
	AvailabilityOffline   Availability = "offline"
)

func ValidAvailability(a Availability) bool {
	switch a {
	case AvailabilityAvailable, AvailabilityBusy, AvailabilityOffline:
		return true
	}
	return false
}

type User struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Phone        string       `json:"phone"`
	Location     string       `json:"location"`
	Role         Role         `json:"type"`
	Approved     bool         `json:"approved"`
	Suspended    bool         `json:"suspended"`
	Availability Availability `json:"availability_status"`

	// Role-specific profile fields.
	FarmSize       *string `json:"farm_size,omitempty"`
	Experience     *string `json:"experience,omitempty"`
	VehicleType    *string `json:"vehicle_type,omitempty"`
	LicenseNumber  *string `json:"license_number,omitempty"`
	ProfilePicture *string `json:"profile_picture,omitempty"`

	LastLogin  *time.Time `json:"last_login,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// PublicInfo is the subset exposed on the unauthenticated user lookup.
type PublicInfo struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Location       string  `json:"location"`
	Role           Role    `json:"type"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
