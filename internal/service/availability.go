package service

import (
	"context"
	"time"

	"booking-service/internal/models"
	"booking-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	minGuests = 1
	maxGuests = 50
)

type CheckAvailabilityInput struct {
	TableID              uuid.UUID
	ReservationDate      string
	ReservationTime      string
	ExcludeReservationID *uuid.UUID
}

type Availability struct {
	Available   bool                `json:"available"`
	Conflicting *models.Reservation `json:"conflicting_reservation,omitempty"`
}

// AvailabilityCache stores ListAvailableTables results per zone and party size.
type AvailabilityCache interface {
	GetAvailableTables(ctx context.Context, zoneID uuid.UUID, guests int) ([]models.DiningTable, bool, error)
	SetAvailableTables(ctx context.Context, zoneID uuid.UUID, guests int, tables []models.DiningTable) error
	InvalidateZone(ctx context.Context, zoneID uuid.UUID) error
}

type AvailabilityService interface {
	CheckAvailability(ctx context.Context, in CheckAvailabilityInput) (*Availability, error)
	ListAvailableTables(ctx context.Context, zoneID uuid.UUID, guestCount int) ([]models.DiningTable, error)
}

type availabilityService struct {
	repo  *repository.Repository
	cache AvailabilityCache
	log   *zap.Logger
}

func NewAvailabilityService(repo *repository.Repository, cache AvailabilityCache, log *zap.Logger) AvailabilityService {
	return &availabilityService{repo: repo, cache: cache, log: log}
}

func validGuests(n int) error {
	if n < minGuests || n > maxGuests {
		return ErrGuestCountInvalid
	}
	return nil
}

// checkSlot is shared by the public check and the lifecycle transactions,
// which call it on a tx-bound repo after locking the table row.
func checkSlot(ctx context.Context, reservations repository.ReservationRepo, tableID uuid.UUID, date time.Time, slot string, exclude *uuid.UUID) (*Availability, error) {
	conflict, err := reservations.FindConflict(ctx, tableID, date, slot, exclude)
	if err != nil {
		return nil, err
	}
	return &Availability{Available: conflict == nil, Conflicting: conflict}, nil
}

func (s *availabilityService) CheckAvailability(ctx context.Context, in CheckAvailabilityInput) (*Availability, error) {
	if in.TableID == uuid.Nil {
		return nil, fieldErr(ErrMissingField, "table_id")
	}
	date, err := ParseDate(in.ReservationDate)
	if err != nil {
		return nil, err
	}
	slot, err := ParseSlotTime(in.ReservationTime)
	if err != nil {
		return nil, err
	}

	table, err := s.repo.Catalog.GetTable(ctx, in.TableID)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, ErrTableNotFound
	}
	if !table.IsActive {
		return nil, ErrTableInactive
	}
	return checkSlot(ctx, s.repo.Reservations, table.ID, date, slot, in.ExcludeReservationID)
}

func (s *availabilityService) ListAvailableTables(ctx context.Context, zoneID uuid.UUID, guestCount int) ([]models.DiningTable, error) {
	if zoneID == uuid.Nil {
		return nil, fieldErr(ErrMissingField, "zone_id")
	}
	if err := validGuests(guestCount); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if tables, ok, err := s.cache.GetAvailableTables(ctx, zoneID, guestCount); err != nil {
			s.log.Warn("availability cache read failed", zap.Error(err))
		} else if ok {
			return tables, nil
		}
	}

	zone, err := s.repo.Catalog.GetZone(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, ErrZoneNotFound
	}

	tables, err := s.repo.Tables.ListAvailable(ctx, zoneID, guestCount)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetAvailableTables(ctx, zoneID, guestCount, tables); err != nil {
			s.log.Warn("availability cache write failed", zap.Error(err))
		}
	}
	return tables, nil
}
