package service

import (
	"context"
	"time"

	"booking-service/internal/models"

	"github.com/google/uuid"
)

type CreateOrderItemInput struct {
	MenuItemID   uuid.UUID
	Quantity     int
	SpecialNotes *string
}

type CreateOrderInput struct {
	UserID              *uuid.UUID // admin only
	OrderType           models.OrderType
	TableID             *uuid.UUID
	Items               []CreateOrderItemInput
	PaymentMethod       *models.PaymentMethod
	SpecialInstructions *string
	Status              *models.OrderStatus   // admin only
	PaymentStatus       *models.PaymentStatus // admin only
}

// OrderSummary is the human-readable digest returned next to a created order.
type OrderSummary struct {
	OrderNumber       string     `json:"order_number"`
	OrderType         string     `json:"order_type"`
	TotalCents        int64      `json:"total_amount_cents"`
	Total             string     `json:"total"`
	ItemsCount        int        `json:"items_count"`
	UserName          string     `json:"user_name"`
	TableID           *uuid.UUID `json:"table_id,omitempty"`
	ReservationID     *uuid.UUID `json:"reservation_id,omitempty"`
	AutoAssignedTable bool       `json:"auto_assigned_table"`
}

type CreatedOrder struct {
	Order   *models.Order
	Summary OrderSummary
}

type UpdateOrderInput struct {
	UserID              *uuid.UUID
	TableID             *uuid.UUID
	OrderType           *models.OrderType
	PaymentMethod       *models.PaymentMethod
	SpecialInstructions *string
	Status              *models.OrderStatus
	PaymentStatus       *models.PaymentStatus
}

func (in UpdateOrderInput) empty() bool {
	return in.UserID == nil && in.TableID == nil && in.OrderType == nil && in.PaymentMethod == nil &&
		in.SpecialInstructions == nil && in.Status == nil && in.PaymentStatus == nil
}

type OrderFilter struct {
	UserID    *uuid.UUID
	Status    *models.OrderStatus
	OrderType *models.OrderType
	Limit     int
	Offset    int
}

// ActiveReservationFinder resolves the reservation a walk-in dine-in order attaches to.
type ActiveReservationFinder interface {
	GetActiveReservation(ctx context.Context, userID uuid.UUID, onDate time.Time) (*models.Reservation, error)
}

type OrderService interface {
	Create(ctx context.Context, in CreateOrderInput) (*CreatedOrder, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, f OrderFilter) ([]models.Order, int64, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateOrderInput) (*models.Order, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error)
	TransitionPayment(ctx context.Context, id uuid.UUID, status models.PaymentStatus) (*models.Order, error)
	Cancel(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
