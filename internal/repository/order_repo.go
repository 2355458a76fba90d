package repository

import (
	"context"
	"errors"

	"booking-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderListFilter struct {
	UserID    *uuid.UUID
	Status    *models.OrderStatus
	OrderType *models.OrderType
	Limit     int
	Offset    int
}

type OrderRepo interface {
	// Create inserts the header only; items go through OrderItemRepo.
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	LockByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Update(ctx context.Context, id uuid.UUID, changes map[string]any) error
	UpdateStatusGuard(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) (bool, error)
	UpdatePaymentGuard(ctx context.Context, id uuid.UUID, from, to models.PaymentStatus) (bool, error)
	// CountOpenDineIn counts non-terminal dine-in orders seated at the table, excluding one order.
	CountOpenDineIn(ctx context.Context, tableID, excludeID uuid.UUID) (int64, error)
	List(ctx context.Context, f OrderListFilter) ([]models.Order, int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) OrderRepo { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(o).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		First(&ord, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ord, nil
}

func (r *orderRepo) LockByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return first[models.Order](ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *orderRepo) Update(ctx context.Context, id uuid.UUID, changes map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(changes).Error
}

func (r *orderRepo) UpdateStatusGuard(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return tx.RowsAffected > 0, tx.Error
}

func (r *orderRepo) UpdatePaymentGuard(ctx context.Context, id uuid.UUID, from, to models.PaymentStatus) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND payment_status = ? AND status NOT IN ?", id, from,
			[]models.OrderStatus{models.OrderCompleted, models.OrderCancelled}).
		Update("payment_status", to)
	return tx.RowsAffected > 0, tx.Error
}

func (r *orderRepo) CountOpenDineIn(ctx context.Context, tableID, excludeID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("table_id = ? AND id <> ? AND order_type = ? AND status NOT IN ?", tableID, excludeID,
			models.OrderTypeDineIn, []models.OrderStatus{models.OrderCompleted, models.OrderCancelled}).
		Count(&n).Error
	return n, err
}

func (r *orderRepo) List(ctx context.Context, f OrderListFilter) ([]models.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.OrderType != nil {
		q = q.Where("order_type = ?", *f.OrderType)
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

	var list []models.Order
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Preload("Items").Find(&list).Error
	return list, total, err
}

func (r *orderRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Order{})
	return tx.RowsAffected, tx.Error
}
