// README: Product service: farmer listing management and admin moderation.
// The service fee percentage is snapshotted into the row at create/update
// time, so later changes to the global rate never reprice existing listings.
package product

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("product not found")
	ErrForbidden  = errors.New("not your product")
	ErrValidation = errors.New("invalid input")
)

// FeeProvider supplies the current global service fee percentage.
type FeeProvider interface {
	ServiceFeePercentage(ctx context.Context) float64
}

type Service struct {
	store *Store
	fees  FeeProvider
}

func NewService(store *Store, fees FeeProvider) *Service {
	return &Service{store: store, fees: fees}
}

type CreateCommand struct {
	FarmerID    int64
	Title       string
	Description string
	Category    string
	BasePrice   float64
	Quantity    float64
	Location    string
	HarvestDate *time.Time
	Organic     bool
	Certified   bool
	Images      []string
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Product, error) {
	if cmd.Title == "" || cmd.Category == "" || cmd.BasePrice <= 0 || cmd.Quantity <= 0 {
		return nil, ErrValidation
	}
	pricing := ComputePricing(cmd.BasePrice, s.fees.ServiceFeePercentage(ctx))
	now := time.Now()
	images := cmd.Images
	if images == nil {
		images = []string{}
	}
	p := &Product{
		FarmerID:             cmd.FarmerID,
		Title:                cmd.Title,
		Description:          cmd.Description,
		Category:             cmd.Category,
		BasePrice:            pricing.BasePrice,
		ServiceFeePercentage: pricing.ServiceFeePercentage,
		ServiceFee:           pricing.ServiceFee,
		DisplayPrice:         pricing.DisplayPrice,
		Quantity:             cmd.Quantity,
		Location:             cmd.Location,
		HarvestDate:          cmd.HarvestDate,
		Organic:              cmd.Organic,
		Certified:            cmd.Certified,
		Images:               images,
		Status:               StatusPending,
		Available:            true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

type UpdateCommand struct {
	Title       *string
	Description *string
	Quantity    *float64
	BasePrice   *float64
	Location    *string
	Available   *bool
	Images      []string
}

// Update applies a farmer's partial edit to their own listing. A base price
// change re-snapshots the fee percentage at the current global rate.
func (s *Service) Update(ctx context.Context, farmerID, productID int64, cmd UpdateCommand) error {
	existing, err := s.store.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if existing.FarmerID != farmerID {
		return ErrForbidden
	}

	patch := UpdatePatch{
		Title:       cmd.Title,
		Description: cmd.Description,
		Quantity:    cmd.Quantity,
		Location:    cmd.Location,
		Available:   cmd.Available,
		Images:      cmd.Images,
	}
	if cmd.BasePrice != nil {
		if *cmd.BasePrice <= 0 {
			return ErrValidation
		}
		pricing := ComputePricing(*cmd.BasePrice, s.fees.ServiceFeePercentage(ctx))
		patch.Pricing = &pricing
	}
	if patch.Empty() {
		return ErrValidation
	}
	return s.store.Update(ctx, productID, patch)
}

func (s *Service) Delete(ctx context.Context, actorID int64, isAdmin bool, productID int64) error {
	existing, err := s.store.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if !isAdmin && existing.FarmerID != actorID {
		return ErrForbidden
	}
	return s.store.Delete(ctx, productID)
}

func (s *Service) Get(ctx context.Context, id int64) (*Listing, error) {
	return s.store.GetListing(ctx, id)
}

// GetProduct is the bare row without the farmer join; the order engine uses
// it to snapshot price and location at purchase time.
func (s *Service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) ListCatalog(ctx context.Context, f ListFilter) ([]*Listing, error) {
	if f.Status == "" {
		f.Status = StatusApproved
	}
	return s.store.ListCatalog(ctx, f)
}

func (s *Service) ListByFarmer(ctx context.Context, farmerID int64) ([]*Product, error) {
	return s.store.ListByFarmer(ctx, farmerID)
}

func (s *Service) ListAll(ctx context.Context, status Status) ([]*Listing, error) {
	if status != "" && !ValidStatus(status) {
		return nil, ErrValidation
	}
	return s.store.ListAll(ctx, status)
}

func (s *Service) Approve(ctx context.Context, id int64) error {
	return s.store.SetStatus(ctx, id, StatusApproved, nil)
}

func (s *Service) Reject(ctx context.Context, id int64, reason string) error {
	if reason == "" {
		reason = "No reason provided"
	}
	return s.store.SetStatus(ctx, id, StatusRejected, &reason)
}

func (s *Service) Suspend(ctx context.Context, id int64) error {
	return s.store.SetStatus(ctx, id, StatusSuspended, nil)
}

func (s *Service) DashboardCounts(ctx context.Context) (Counts, error) {
	return s.store.CountForDashboard(ctx)
}
