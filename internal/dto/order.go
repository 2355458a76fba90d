package dto

import (
	"booking-service/internal/models"
	"booking-service/internal/service"
)

type CreateOrderItemRequest struct {
	MenuItemID   string  `json:"menu_item_id" binding:"required,uuid"`
	Quantity     int     `json:"quantity" binding:"required,min=1,max=100"`
	SpecialNotes *string `json:"special_notes" binding:"omitempty,max=500"`
}

type CreateOrderRequest struct {
	UserID              *string                  `json:"user_id" binding:"omitempty,uuid"`
	OrderType           string                   `json:"order_type" binding:"required,oneof=dine-in takeout delivery"`
	TableID             *string                  `json:"table_id" binding:"omitempty,uuid"`
	Items               []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
	PaymentMethod       *string                  `json:"payment_method" binding:"omitempty,oneof=cash card transfer mobile"`
	SpecialInstructions *string                  `json:"special_instructions" binding:"omitempty,max=500"`
	Status              *string                  `json:"status"`
	PaymentStatus       *string                  `json:"payment_status"`
}

type CreateOrderResponse struct {
	Order   *models.Order        `json:"order"`
	Summary service.OrderSummary `json:"summary"`
}

type UpdateOrderRequest struct {
	UserID              *string `json:"user_id" binding:"omitempty,uuid"`
	TableID             *string `json:"table_id" binding:"omitempty,uuid"`
	OrderType           *string `json:"order_type" binding:"omitempty,oneof=dine-in takeout delivery"`
	PaymentMethod       *string `json:"payment_method" binding:"omitempty,oneof=cash card transfer mobile"`
	SpecialInstructions *string `json:"special_instructions" binding:"omitempty,max=500"`
	Status              *string `json:"status"`
	PaymentStatus       *string `json:"payment_status"`
}

type ListOrdersQuery struct {
	UserID    string `form:"user_id" binding:"omitempty,uuid"`
	Status    string `form:"status"`
	OrderType string `form:"order_type"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset    int    `form:"offset" binding:"omitempty,min=0"`
}
