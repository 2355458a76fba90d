package dto

import "booking-service/internal/models"

type CheckAvailabilityRequest struct {
	TableID              string  `json:"table_id" binding:"required,uuid"`
	ReservationDate      string  `json:"reservation_date" binding:"required"`
	ReservationTime      string  `json:"reservation_time" binding:"required"`
	ExcludeReservationID *string `json:"exclude_reservation_id" binding:"omitempty,uuid"`
}

type AvailableTablesQuery struct {
	ZoneID     string `form:"zone_id" binding:"required,uuid"`
	GuestCount int    `form:"guest_count" binding:"required,min=1,max=50"`
}

type AvailableTablesResponse struct {
	ZoneID     string               `json:"zone_id"`
	GuestCount int                  `json:"guest_count"`
	Tables     []models.DiningTable `json:"tables"`
}

type CreateReservationRequest struct {
	UserID              *string `json:"user_id" binding:"omitempty,uuid"`
	ZoneID              string  `json:"zone_id" binding:"required,uuid"`
	TableID             string  `json:"table_id" binding:"required,uuid"`
	ReservationDate     string  `json:"reservation_date" binding:"required"`
	ReservationTime     string  `json:"reservation_time" binding:"required"`
	GuestCount          int     `json:"guest_count" binding:"required,min=1,max=50"`
	SpecialRequirements *string `json:"special_requirements" binding:"omitempty,max=500"`
	Status              *string `json:"status" binding:"omitempty,oneof=pending confirmed"`
}

type UpdateReservationRequest struct {
	UserID              *string `json:"user_id" binding:"omitempty,uuid"`
	ZoneID              *string `json:"zone_id" binding:"omitempty,uuid"`
	TableID             *string `json:"table_id" binding:"omitempty,uuid"`
	ReservationDate     *string `json:"reservation_date"`
	ReservationTime     *string `json:"reservation_time"`
	GuestCount          *int    `json:"guest_count" binding:"omitempty,min=1,max=50"`
	SpecialRequirements *string `json:"special_requirements" binding:"omitempty,max=500"`
}

// StatusRequest carries a target status for reservations, orders and payments alike.
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ListReservationsQuery struct {
	UserID string `form:"user_id" binding:"omitempty,uuid"`
	ZoneID string `form:"zone_id" binding:"omitempty,uuid"`
	Status string `form:"status"`
	Date   string `form:"date"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
}

type ActiveReservationQuery struct {
	Date string `form:"date"`
}

type ListResponse[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// ReservationEnvelope wraps lookups that may legitimately find nothing.
type ReservationEnvelope struct {
	Reservation *models.Reservation `json:"reservation"`
}
