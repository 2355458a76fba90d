package service

import (
	"context"
	"fmt"
	"time"

	"booking-service/internal/models"
	"booking-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReservationOptions struct {
	// ExpiryGrace is how long after its slot an unattended reservation is kept active.
	ExpiryGrace time.Duration
	ExpiryBatch int
}

func DefaultReservationOptions() ReservationOptions {
	return ReservationOptions{ExpiryGrace: 30 * time.Minute, ExpiryBatch: 200}
}

type reservationService struct {
	repo   *repository.Repository
	sync   *TableStateSync
	events EventBus
	clock  Clock
	opts   ReservationOptions
	log    *zap.Logger
}

func NewReservationService(repo *repository.Repository, sync *TableStateSync, events EventBus, clock Clock, opts ReservationOptions, log *zap.Logger) ReservationService {
	if opts.ExpiryBatch <= 0 {
		opts.ExpiryBatch = DefaultReservationOptions().ExpiryBatch
	}
	return &reservationService{
		repo:   repo,
		sync:   sync,
		events: events,
		clock:  clock,
		opts:   opts,
		log:    log,
	}
}

// tableStatusFor maps a reservation status to the table status it implies.
func tableStatusFor(s models.ReservationStatus) (models.TableStatus, bool) {
	switch s {
	case models.ReservationConfirmed:
		return models.TableStatusReserved, true
	case models.ReservationCompleted, models.ReservationCancelled, models.ReservationExpired:
		return models.TableStatusAvailable, true
	}
	return "", false
}

func (s *reservationService) parseDate(raw string) (time.Time, error) {
	date, err := ParseDate(raw)
	if err != nil {
		return time.Time{}, err
	}
	if date.Before(s.clock.Today()) {
		return time.Time{}, ErrDateInPast
	}
	return date, nil
}

func (s *reservationService) Create(ctx context.Context, in CreateReservationInput) (*models.Reservation, error) {
	c, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	owner := c.ID
	status := models.ReservationPending
	if c.IsOperator() {
		if in.UserID == nil || *in.UserID == uuid.Nil {
			return nil, fieldErr(ErrMissingField, "user_id")
		}
		owner = *in.UserID
		if in.Status != nil {
			if *in.Status != models.ReservationPending && *in.Status != models.ReservationConfirmed {
				return nil, fmt.Errorf("%w: %q at creation", ErrInvalidStatus, *in.Status)
			}
			status = *in.Status
		}
	} else if in.Status != nil || (in.UserID != nil && *in.UserID != c.ID) {
		return nil, ErrOperatorOnly
	}

	if in.ZoneID == uuid.Nil {
		return nil, fieldErr(ErrMissingField, "zone_id")
	}
	if in.TableID == uuid.Nil {
		return nil, fieldErr(ErrMissingField, "table_id")
	}
	date, err := s.parseDate(in.ReservationDate)
	if err != nil {
		return nil, err
	}
	slot, err := ParseSlotTime(in.ReservationTime)
	if err != nil {
		return nil, err
	}
	if err := validGuests(in.GuestCount); err != nil {
		return nil, err
	}

	user, err := s.repo.Catalog.GetUser(ctx, owner)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	zone, err := s.repo.Catalog.GetZone(ctx, in.ZoneID)
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, ErrZoneNotFound
	}

	var (
		res         *models.Reservation
		tableNumber int
	)
	err = retryOnConstraint(func() error {
		return s.repo.WithTx(ctx, func(tx *repository.Repository) error {
			// Lock order is user, then table. The user lock keeps two parallel
			// bookings by one customer from both passing the upcoming check.
			if !c.IsOperator() {
				if _, err := tx.Catalog.LockUser(ctx, owner); err != nil {
					return err
				}
			}
			// The row lock serializes every booking of this table until commit.
			table, err := tx.Tables.LockByID(ctx, in.TableID)
			if err != nil {
				return err
			}
			if table == nil {
				return ErrTableNotFound
			}
			if table.ZoneID != zone.ID {
				return ErrTableZoneMismatch
			}
			if !table.IsActive {
				return ErrTableInactive
			}
			if in.GuestCount > table.Capacity {
				return fmt.Errorf("%w: capacity is %d", ErrCapacityExceeded, table.Capacity)
			}

			if !c.IsOperator() {
				upcoming, err := tx.Reservations.FindUpcoming(ctx, owner, s.clock.Today())
				if err != nil {
					return err
				}
				if upcoming != nil {
					return ErrActiveReservation
				}
			}

			avail, err := checkSlot(ctx, tx.Reservations, table.ID, date, slot, nil)
			if err != nil {
				return err
			}
			if !avail.Available {
				return ErrSlotTaken
			}

			r := &models.Reservation{
				UserID:              owner,
				ZoneID:              zone.ID,
				TableID:             table.ID,
				ReservationDate:     date,
				ReservationTime:     slot,
				GuestCount:          in.GuestCount,
				Status:              status,
				SpecialRequirements: in.SpecialRequirements,
			}
			if err := tx.Reservations.Create(ctx, r); err != nil {
				return storeErr(err)
			}
			res, tableNumber = r, table.TableNumber
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("reservation created",
		zap.String("reservation_id", res.ID.String()),
		zap.String("table_id", res.TableID.String()),
		zap.String("slot", date.Format(DateLayout)+" "+slot))
	for _, e := range reservationCreatedEvents(res, user, tableNumber) {
		emit(ctx, s.events, s.log, res.ID.String(), e)
	}
	return res, nil
}

func (s *reservationService) Get(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	c, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	r, err := s.repo.Reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil || (!c.IsOperator() && r.UserID != c.ID) {
		return nil, ErrReservationNotFound
	}
	return r, nil
}

func (s *reservationService) List(ctx context.Context, f ReservationFilter) ([]models.Reservation, int64, error) {
	c, err := requireAuth(ctx)
	if err != nil {
		return nil, 0, err
	}
	if !c.IsOperator() {
		f.UserID = &c.ID
	}
	if f.Status != nil && !f.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}

	rf := repository.ReservationListFilter{
		UserID: f.UserID,
		ZoneID: f.ZoneID,
		Status: f.Status,
		Limit:  f.Limit,
		Offset: f.Offset,
	}
	if f.Date != nil {
		d, err := ParseDate(*f.Date)
		if err != nil {
			return nil, 0, err
		}
		rf.Date = &d
	}
	return s.repo.Reservations.List(ctx, rf)
}

func (s *reservationService) Update(ctx context.Context, id uuid.UUID, in UpdateReservationInput) (*models.Reservation, error) {
	c, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if in.empty() {
		return nil, ErrEmptyPatch
	}
	if in.UserID != nil && !c.IsOperator() {
		return nil, ErrOperatorOnly
	}

	var (
		newDate *time.Time
		newSlot *string
	)
	if in.ReservationDate != nil {
		d, err := s.parseDate(*in.ReservationDate)
		if err != nil {
			return nil, err
		}
		newDate = &d
	}
	if in.ReservationTime != nil {
		sl, err := ParseSlotTime(*in.ReservationTime)
		if err != nil {
			return nil, err
		}
		newSlot = &sl
	}
	if in.GuestCount != nil {
		if err := validGuests(*in.GuestCount); err != nil {
			return nil, err
		}
	}

	var (
		out   *models.Reservation
		zones []uuid.UUID
	)
	err = retryOnConstraint(func() error {
		zones = zones[:0]
		return s.repo.WithTx(ctx, func(tx *repository.Repository) error {
			cur, err := tx.Reservations.LockByID(ctx, id)
			if err != nil {
				return err
			}
			if cur == nil {
				return ErrReservationNotFound
			}
			if !c.IsOperator() && cur.UserID != c.ID {
				return ErrForbidden
			}
			if cur.Status.IsClosed() {
				return ErrReservationClosed
			}

			next := *cur
			changes := map[string]any{}

			if in.UserID != nil && *in.UserID != cur.UserID {
				u, err := tx.Catalog.GetUser(ctx, *in.UserID)
				if err != nil {
					return err
				}
				if u == nil {
					return ErrUserNotFound
				}
				next.UserID = u.ID
				changes["user_id"] = u.ID
			}
			if in.ZoneID != nil && *in.ZoneID != cur.ZoneID {
				z, err := tx.Catalog.GetZone(ctx, *in.ZoneID)
				if err != nil {
					return err
				}
				if z == nil {
					return ErrZoneNotFound
				}
				next.ZoneID = z.ID
				changes["zone_id"] = z.ID
			}
			tableChanged := in.TableID != nil && *in.TableID != cur.TableID
			if tableChanged {
				next.TableID = *in.TableID
				changes["table_id"] = next.TableID
			}
			slotChanged := tableChanged
			if newDate != nil && !newDate.Equal(cur.ReservationDate) {
				next.ReservationDate = *newDate
				changes["reservation_date"] = *newDate
				slotChanged = true
			}
			if newSlot != nil && *newSlot != cur.ReservationTime {
				next.ReservationTime = *newSlot
				changes["reservation_time"] = *newSlot
				slotChanged = true
			}
			guestsChanged := in.GuestCount != nil && *in.GuestCount != cur.GuestCount
			if guestsChanged {
				next.GuestCount = *in.GuestCount
				changes["guest_count"] = next.GuestCount
			}
			if in.SpecialRequirements != nil &&
				(cur.SpecialRequirements == nil || *cur.SpecialRequirements != *in.SpecialRequirements) {
				changes["special_requirements"] = *in.SpecialRequirements
			}
			if len(changes) == 0 {
				return ErrEmptyPatch
			}

			table, err := tx.Tables.LockByID(ctx, next.TableID)
			if err != nil {
				return err
			}
			if table == nil {
				return ErrTableNotFound
			}
			if tableChanged {
				if !table.IsActive {
					return ErrTableInactive
				}
				if in.ZoneID == nil && table.ZoneID != next.ZoneID {
					next.ZoneID = table.ZoneID
					changes["zone_id"] = table.ZoneID
				}
			}
			if table.ZoneID != next.ZoneID {
				return ErrTableZoneMismatch
			}
			if (tableChanged || guestsChanged) && next.GuestCount > table.Capacity {
				return fmt.Errorf("%w: capacity is %d", ErrCapacityExceeded, table.Capacity)
			}
			if slotChanged {
				avail, err := checkSlot(ctx, tx.Reservations, next.TableID, next.ReservationDate, next.ReservationTime, &cur.ID)
				if err != nil {
					return err
				}
				if !avail.Available {
					return ErrSlotTaken
				}
			}

			if err := tx.Reservations.Update(ctx, id, changes); err != nil {
				return storeErr(err)
			}

			// A confirmed booking carries its "reserved" flag to the new table.
			if tableChanged && cur.Status == models.ReservationConfirmed {
				oldZone, err := s.sync.SetStatus(ctx, tx.Tables, cur.TableID, models.TableStatusAvailable)
				if err != nil {
					return err
				}
				newZone, err := s.sync.SetStatus(ctx, tx.Tables, next.TableID, models.TableStatusReserved)
				if err != nil {
					return err
				}
				zones = append(zones, oldZone, newZone)
			}

			out, err = tx.Reservations.GetByID(ctx, id)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	s.sync.Flush(ctx, zones...)
	return out, nil
}

func (s *reservationService) TransitionStatus(ctx context.Context, id uuid.UUID, status models.ReservationStatus) (*models.Reservation, error) {
	if _, err := requireOperator(ctx); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, status, nil)
}

func (s *reservationService) Cancel(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	c, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, id, models.ReservationCancelled, func(r *models.Reservation) error {
		if !c.IsOperator() && r.UserID != c.ID {
			return ErrForbidden
		}
		return nil
	})
}

// transition applies a caller-requested status change. Checks run against the
// locked row, in order: ownership, closed state, redundancy, transition table.
func (s *reservationService) transition(ctx context.Context, id uuid.UUID, status models.ReservationStatus, authorize func(*models.Reservation) error) (*models.Reservation, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if status == models.ReservationExpired {
		return nil, ErrExpiredNotManual
	}

	var (
		out  *models.Reservation
		zone uuid.UUID
	)
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		cur, err := tx.Reservations.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return ErrReservationNotFound
		}
		if authorize != nil {
			if err := authorize(cur); err != nil {
				return err
			}
		}
		if cur.Status.IsClosed() {
			return ErrReservationClosed
		}
		if cur.Status == status {
			return ErrRedundantTransition
		}
		if !cur.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur.Status, status)
		}

		ok, err := tx.Reservations.UpdateStatusGuard(ctx, id, cur.Status, status)
		if err != nil {
			return storeErr(err)
		}
		if !ok {
			return ErrConcurrentUpdate
		}
		if ts, ok := tableStatusFor(status); ok {
			if zone, err = s.sync.SetStatus(ctx, tx.Tables, cur.TableID, ts); err != nil {
				return err
			}
		}

		out, err = tx.Reservations.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.sync.Flush(ctx, zone)
	s.log.Info("reservation status changed",
		zap.String("reservation_id", id.String()), zap.String("status", string(status)))
	s.notify(ctx, out)
	return out, nil
}

func (s *reservationService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := requireOperator(ctx); err != nil {
		return err
	}

	var zone uuid.UUID
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		cur, err := tx.Reservations.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return ErrReservationNotFound
		}
		if cur.Status == models.ReservationConfirmed {
			if zone, err = s.sync.SetStatus(ctx, tx.Tables, cur.TableID, models.TableStatusAvailable); err != nil {
				return err
			}
		}
		n, err := tx.Reservations.Delete(ctx, id)
		if err != nil {
			return storeErr(err)
		}
		if n == 0 {
			return ErrReservationNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.sync.Flush(ctx, zone)
	s.log.Info("reservation deleted", zap.String("reservation_id", id.String()))
	return nil
}

func (s *reservationService) GetActiveReservation(ctx context.Context, userID uuid.UUID, onDate time.Time) (*models.Reservation, error) {
	return s.repo.Reservations.FindActiveOn(ctx, userID, dateOf(onDate))
}

func (s *reservationService) GetMyUpcoming(ctx context.Context) (*models.Reservation, error) {
	c, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.Reservations.FindUpcoming(ctx, c.ID, s.clock.Today())
}

func (s *reservationService) ExpireOverdue(ctx context.Context) (int, error) {
	cutoff := s.clock.Wall().Add(-s.opts.ExpiryGrace)

	var (
		expired []models.Reservation
		zones   []uuid.UUID
	)
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		rows, err := tx.Reservations.LockOverdue(ctx, cutoff, s.opts.ExpiryBatch)
		if err != nil {
			return err
		}
		for _, r := range rows {
			ok, err := tx.Reservations.UpdateStatusGuard(ctx, r.ID, r.Status, models.ReservationExpired)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if r.Status == models.ReservationConfirmed {
				zone, err := s.sync.SetStatus(ctx, tx.Tables, r.TableID, models.TableStatusAvailable)
				if err != nil {
					return err
				}
				zones = append(zones, zone)
			}
			r.Status = models.ReservationExpired
			expired = append(expired, r)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.sync.Flush(ctx, zones...)
	if len(expired) > 0 {
		s.log.Info("expired overdue reservations", zap.Int("count", len(expired)))
	}
	for i := range expired {
		s.notify(ctx, &expired[i])
	}
	return len(expired), nil
}

func (s *reservationService) notify(ctx context.Context, r *models.Reservation) {
	if s.events == nil || r == nil {
		return
	}
	user, err := s.repo.Catalog.GetUser(ctx, r.UserID)
	if err != nil || user == nil {
		s.log.Warn("skip reservation notification: user lookup failed",
			zap.String("reservation_id", r.ID.String()), zap.Error(err))
		return
	}
	var tableNumber int
	if t, err := s.repo.Catalog.GetTable(ctx, r.TableID); err == nil && t != nil {
		tableNumber = t.TableNumber
	}
	emit(ctx, s.events, s.log, r.ID.String(), reservationEvent(r, user, tableNumber))
}
