package service

import (
	"context"
	"time"

	"booking-service/internal/models"

	"github.com/google/uuid"
)

type CreateReservationInput struct {
	UserID              *uuid.UUID // admin only; customers book for themselves
	ZoneID              uuid.UUID
	TableID             uuid.UUID
	ReservationDate     string
	ReservationTime     string
	GuestCount          int
	SpecialRequirements *string
	Status              *models.ReservationStatus // admin only: pending or confirmed
}

// UpdateReservationInput is a patch; nil fields are left untouched.
type UpdateReservationInput struct {
	UserID              *uuid.UUID
	ZoneID              *uuid.UUID
	TableID             *uuid.UUID
	ReservationDate     *string
	ReservationTime     *string
	GuestCount          *int
	SpecialRequirements *string
}

func (in UpdateReservationInput) empty() bool {
	return in.UserID == nil && in.ZoneID == nil && in.TableID == nil && in.ReservationDate == nil &&
		in.ReservationTime == nil && in.GuestCount == nil && in.SpecialRequirements == nil
}

type ReservationFilter struct {
	UserID *uuid.UUID
	ZoneID *uuid.UUID
	Status *models.ReservationStatus
	Date   *string
	Limit  int
	Offset int
}

type ReservationService interface {
	Create(ctx context.Context, in CreateReservationInput) (*models.Reservation, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	List(ctx context.Context, f ReservationFilter) ([]models.Reservation, int64, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateReservationInput) (*models.Reservation, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, status models.ReservationStatus) (*models.Reservation, error)
	Cancel(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetActiveReservation(ctx context.Context, userID uuid.UUID, onDate time.Time) (*models.Reservation, error)
	GetMyUpcoming(ctx context.Context) (*models.Reservation, error)
	// ExpireOverdue is the system sweep; it needs no caller identity.
	ExpireOverdue(ctx context.Context) (int, error)
}
