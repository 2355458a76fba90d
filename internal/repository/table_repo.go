package repository

import (
	"context"
	"errors"

	"booking-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TableRepo interface {
	// LockByID takes a row lock held until the surrounding transaction ends.
	LockByID(ctx context.Context, id uuid.UUID) (*models.DiningTable, error)
	ListAvailable(ctx context.Context, zoneID uuid.UUID, guestCount int) ([]models.DiningTable, error)
	// SetStatus returns the table's zone, or uuid.Nil when no row matched.
	SetStatus(ctx context.Context, id uuid.UUID, status models.TableStatus) (uuid.UUID, error)
}

type tableRepo struct{ db *gorm.DB }

func NewTableRepo(db *gorm.DB) TableRepo { return &tableRepo{db: db} }

func (r *tableRepo) LockByID(ctx context.Context, id uuid.UUID) (*models.DiningTable, error) {
	var t models.DiningTable
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tableRepo) ListAvailable(ctx context.Context, zoneID uuid.UUID, guestCount int) ([]models.DiningTable, error) {
	var rows []models.DiningTable
	err := r.db.WithContext(ctx).
		Where("zone_id = ? AND capacity >= ? AND status = ? AND is_active", zoneID, guestCount, models.TableStatusAvailable).
		Order("capacity ASC, table_number ASC").
		Find(&rows).Error
	return rows, err
}

func (r *tableRepo) SetStatus(ctx context.Context, id uuid.UUID, status models.TableStatus) (uuid.UUID, error) {
	var row struct{ ZoneID uuid.UUID }
	err := r.db.WithContext(ctx).
		Raw(`UPDATE dining_tables SET status = ? WHERE id = ? RETURNING zone_id`, status, id).
		Scan(&row).Error
	return row.ZoneID, err
}
