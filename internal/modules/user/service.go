// README: User service: registration, credential checks, availability, admin actions.
package user

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPendingApproval    = errors.New("account is pending admin approval")
	ErrSuspended          = errors.New("account has been suspended")
	ErrValidation         = errors.New("invalid input")
	ErrNoCourier          = errors.New("no available delivery personnel")
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

type RegisterCommand struct {
	Name          string
	Email         string
	Password      string
	Phone         string
	Location      string
	Role          Role
	FarmSize      *string
	Experience    *string
	VehicleType   *string
	LicenseNumber *string
}

func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*User, error) {
	if cmd.Name == "" || cmd.Email == "" || cmd.Password == "" || cmd.Role == "" {
		return nil, ErrValidation
	}
	if !ValidRole(cmd.Role) {
		return nil, ErrValidation
	}
	taken, err := s.store.EmailExists(ctx, cmd.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		Name:         cmd.Name,
		Email:        cmd.Email,
		PasswordHash: string(hash),
		Phone:        cmd.Phone,
		Location:     cmd.Location,
		Role:         cmd.Role,
		// Farmers wait for admin approval; buyers and delivery start approved.
		Approved:      cmd.Role != RoleFarmer,
		Availability:  AvailabilityOffline,
		FarmSize:      cmd.FarmSize,
		Experience:    cmd.Experience,
		VehicleType:   cmd.VehicleType,
		LicenseNumber: cmd.LicenseNumber,
		CreatedAt:     time.Now(),
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies the credential and the account gates: an unapproved farmer
// or a suspended user of any role never gets a session.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	if email == "" || password == "" {
		return nil, ErrValidation
	}
	u, err := s.store.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if u.Role == RoleFarmer && !u.Approved {
		return nil, ErrPendingApproval
	}
	if u.Suspended {
		return nil, ErrSuspended
	}
	_ = s.store.TouchLastLogin(ctx, u.ID)
	return u, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) GetPublic(ctx context.Context, id int64) (*PublicInfo, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PublicInfo{
		ID:             u.ID,
		Name:           u.Name,
		Location:       u.Location,
		Role:           u.Role,
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt,
	}, nil
}

type UpdateProfileCommand struct {
	Name       string
	Phone      string
	Location   string
	FarmSize   *string
	Experience *string
}

func (s *Service) UpdateProfile(ctx context.Context, id int64, cmd UpdateProfileCommand) error {
	if cmd.Name == "" {
		return ErrValidation
	}
	return s.store.UpdateProfile(ctx, id, cmd.Name, cmd.Phone, cmd.Location, cmd.FarmSize, cmd.Experience)
}

// SetAvailability is the delivery person's self-service toggle.
func (s *Service) SetAvailability(ctx context.Context, id int64, a Availability) error {
	if !ValidAvailability(a) {
		return ErrValidation
	}
	return s.store.SetAvailability(ctx, s.store.db, id, a)
}

// IsApprovedFarmer backs the farmer-approval gate on product mutations.
func (s *Service) IsApprovedFarmer(ctx context.Context, id int64) (bool, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return u.Role == RoleFarmer && u.Approved && !u.Suspended, nil
}

func (s *Service) List(ctx context.Context, role Role) ([]*User, error) {
	if role != "" && !ValidRole(role) {
		return nil, ErrValidation
	}
	return s.store.List(ctx, role)
}

func (s *Service) ApproveFarmer(ctx context.Context, id int64) error {
	return s.store.SetApproved(ctx, id, RoleFarmer)
}

func (s *Service) Suspend(ctx context.Context, id int64) error {
	return s.store.SetSuspended(ctx, id, true)
}

func (s *Service) Unsuspend(ctx context.Context, id int64) error {
	return s.store.SetSuspended(ctx, id, false)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

func (s *Service) DashboardCounts(ctx context.Context) (Counts, error) {
	return s.store.CountForDashboard(ctx)
}
