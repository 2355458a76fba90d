package repository

import (
	"context"
	"errors"

	"booking-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogRepo serves read-only lookups of entities managed elsewhere.
// Upserts exist for seeding and tests.
type CatalogRepo interface {
	GetZone(ctx context.Context, id uuid.UUID) (*models.Zone, error)
	GetTable(ctx context.Context, id uuid.UUID) (*models.DiningTable, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	GetMenuItems(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.MenuItem, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	// LockUser serializes per-customer booking rules until the transaction ends.
	LockUser(ctx context.Context, id uuid.UUID) (*models.User, error)

	UpsertUser(ctx context.Context, u *models.User) error
	UpsertZone(ctx context.Context, z *models.Zone) error
	UpsertTable(ctx context.Context, t *models.DiningTable) error
	UpsertMenuItem(ctx context.Context, m *models.MenuItem) error
}

type catalogRepo struct{ db *gorm.DB }

func NewCatalogRepo(db *gorm.DB) CatalogRepo { return &catalogRepo{db: db} }

func first[T any](ctx context.Context, db *gorm.DB, id uuid.UUID) (*T, error) {
	var row T
	err := db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *catalogRepo) GetZone(ctx context.Context, id uuid.UUID) (*models.Zone, error) {
	return first[models.Zone](ctx, r.db, id)
}

func (r *catalogRepo) GetTable(ctx context.Context, id uuid.UUID) (*models.DiningTable, error) {
	return first[models.DiningTable](ctx, r.db, id)
}

func (r *catalogRepo) GetMenuItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	return first[models.MenuItem](ctx, r.db, id)
}

func (r *catalogRepo) GetMenuItems(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.MenuItem, error) {
	out := make(map[uuid.UUID]models.MenuItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.MenuItem
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, m := range rows {
		out[m.ID] = m
	}
	return out, nil
}

func (r *catalogRepo) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return first[models.User](ctx, r.db, id)
}

func (r *catalogRepo) LockUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return first[models.User](ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func upsert(ctx context.Context, db *gorm.DB, row any, columns ...string) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(row).Error
}

func (r *catalogRepo) UpsertUser(ctx context.Context, u *models.User) error {
	return upsert(ctx, r.db, u, "name", "email", "role")
}

func (r *catalogRepo) UpsertZone(ctx context.Context, z *models.Zone) error {
	return upsert(ctx, r.db, z, "name", "is_active")
}

func (r *catalogRepo) UpsertTable(ctx context.Context, t *models.DiningTable) error {
	return upsert(ctx, r.db, t, "zone_id", "table_number", "capacity", "is_active")
}

func (r *catalogRepo) UpsertMenuItem(ctx context.Context, m *models.MenuItem) error {
	return upsert(ctx, r.db, m, "name", "price_cents", "is_available")
}
