package repository

import (
	"context"
	"errors"
	"time"

	"booking-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReservationListFilter struct {
	UserID *uuid.UUID
	ZoneID *uuid.UUID
	Status *models.ReservationStatus
	Date   *time.Time
	Limit  int
	Offset int
}

type ReservationRepo interface {
	Create(ctx context.Context, r *models.Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	LockByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	// FindConflict returns the pending or confirmed reservation holding the slot, if any.
	FindConflict(ctx context.Context, tableID uuid.UUID, date time.Time, slot string, excludeID *uuid.UUID) (*models.Reservation, error)
	// FindActiveOn returns the user's earliest confirmed reservation on date.
	FindActiveOn(ctx context.Context, userID uuid.UUID, date time.Time) (*models.Reservation, error)
	// FindUpcoming returns the user's nearest pending or confirmed reservation dated from onwards.
	FindUpcoming(ctx context.Context, userID uuid.UUID, from time.Time) (*models.Reservation, error)
	// LockOverdue locks active reservations whose slot started before cutoff, skipping rows locked elsewhere.
	LockOverdue(ctx context.Context, cutoff time.Time, limit int) ([]models.Reservation, error)
	Update(ctx context.Context, id uuid.UUID, changes map[string]any) error
	UpdateStatusGuard(ctx context.Context, id uuid.UUID, from, to models.ReservationStatus) (bool, error)
	List(ctx context.Context, f ReservationListFilter) ([]models.Reservation, int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type reservationRepo struct{ db *gorm.DB }

func NewReservationRepo(db *gorm.DB) ReservationRepo { return &reservationRepo{db: db} }

func (r *reservationRepo) Create(ctx context.Context, res *models.Reservation) error {
	return r.db.WithContext(ctx).Create(res).Error
}

func (r *reservationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	return first[models.Reservation](ctx, r.db, id)
}

func (r *reservationRepo) LockByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	return first[models.Reservation](ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *reservationRepo) findOne(ctx context.Context, q *gorm.DB) (*models.Reservation, error) {
	var res models.Reservation
	err := q.WithContext(ctx).Order("reservation_date ASC, reservation_time ASC").First(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *reservationRepo) FindConflict(ctx context.Context, tableID uuid.UUID, date time.Time, slot string, excludeID *uuid.UUID) (*models.Reservation, error) {
	q := r.db.Where("table_id = ? AND reservation_date = ? AND reservation_time = ? AND status IN ?",
		tableID, date, slot, models.ActiveReservationStatuses)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	return r.findOne(ctx, q)
}

func (r *reservationRepo) FindActiveOn(ctx context.Context, userID uuid.UUID, date time.Time) (*models.Reservation, error) {
	return r.findOne(ctx, r.db.Where("user_id = ? AND reservation_date = ? AND status = ?",
		userID, date, models.ReservationConfirmed))
}

func (r *reservationRepo) FindUpcoming(ctx context.Context, userID uuid.UUID, from time.Time) (*models.Reservation, error) {
	return r.findOne(ctx, r.db.Where("user_id = ? AND reservation_date >= ? AND status IN ?",
		userID, from, models.ActiveReservationStatuses))
}

func (r *reservationRepo) LockOverdue(ctx context.Context, cutoff time.Time, limit int) ([]models.Reservation, error) {
	var rows []models.Reservation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status IN ? AND (reservation_date + reservation_time::time) < ?", models.ActiveReservationStatuses, cutoff).
		Order("reservation_date ASC, reservation_time ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *reservationRepo) Update(ctx context.Context, id uuid.UUID, changes map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Reservation{}).Where("id = ?", id).Updates(changes).Error
}

func (r *reservationRepo) UpdateStatusGuard(ctx context.Context, id uuid.UUID, from, to models.ReservationStatus) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.Reservation{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return tx.RowsAffected > 0, tx.Error
}

func (r *reservationRepo) List(ctx context.Context, f ReservationListFilter) ([]models.Reservation, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Reservation{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.ZoneID != nil {
		q = q.Where("zone_id = ?", *f.ZoneID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.Date != nil {
		q = q.Where("reservation_date = ?", *f.Date)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var list []models.Reservation
	err := q.Order("reservation_date DESC, reservation_time DESC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error
	return list, total, err
}

func (r *reservationRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Reservation{})
	return tx.RowsAffected, tx.Error
}
