package handlers

import (
	"context"
	"time"

	"booking-service/internal/models"
	"booking-service/internal/service"

	"github.com/google/uuid"
)

type MockReservationService struct {
	CreateFunc               func(ctx context.Context, in service.CreateReservationInput) (*models.Reservation, error)
	GetFunc                  func(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	ListFunc                 func(ctx context.Context, f service.ReservationFilter) ([]models.Reservation, int64, error)
	UpdateFunc               func(ctx context.Context, id uuid.UUID, in service.UpdateReservationInput) (*models.Reservation, error)
	TransitionStatusFunc     func(ctx context.Context, id uuid.UUID, status models.ReservationStatus) (*models.Reservation, error)
	CancelFunc               func(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	DeleteFunc               func(ctx context.Context, id uuid.UUID) error
	GetActiveReservationFunc func(ctx context.Context, userID uuid.UUID, onDate time.Time) (*models.Reservation, error)
	GetMyUpcomingFunc        func(ctx context.Context) (*models.Reservation, error)
	ExpireOverdueFunc        func(ctx context.Context) (int, error)
}

func (m *MockReservationService) Create(ctx context.Context, in service.CreateReservationInput) (*models.Reservation, error) {
	return m.CreateFunc(ctx, in)
}
func (m *MockReservationService) Get(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	return m.GetFunc(ctx, id)
}
func (m *MockReservationService) List(ctx context.Context, f service.ReservationFilter) ([]models.Reservation, int64, error) {
	return m.ListFunc(ctx, f)
}
func (m *MockReservationService) Update(ctx context.Context, id uuid.UUID, in service.UpdateReservationInput) (*models.Reservation, error) {
	return m.UpdateFunc(ctx, id, in)
}
func (m *MockReservationService) TransitionStatus(ctx context.Context, id uuid.UUID, status models.ReservationStatus) (*models.Reservation, error) {
	return m.TransitionStatusFunc(ctx, id, status)
}
func (m *MockReservationService) Cancel(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	return m.CancelFunc(ctx, id)
}
func (m *MockReservationService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.DeleteFunc(ctx, id)
}
func (m *MockReservationService) GetActiveReservation(ctx context.Context, userID uuid.UUID, onDate time.Time) (*models.Reservation, error) {
	return m.GetActiveReservationFunc(ctx, userID, onDate)
}
func (m *MockReservationService) GetMyUpcoming(ctx context.Context) (*models.Reservation, error) {
	return m.GetMyUpcomingFunc(ctx)
}
func (m *MockReservationService) ExpireOverdue(ctx context.Context) (int, error) {
	return m.ExpireOverdueFunc(ctx)
}

type MockAvailabilityService struct {
	CheckAvailabilityFunc   func(ctx context.Context, in service.CheckAvailabilityInput) (*service.Availability, error)
	ListAvailableTablesFunc func(ctx context.Context, zoneID uuid.UUID, guestCount int) ([]models.DiningTable, error)
}

func (m *MockAvailabilityService) CheckAvailability(ctx context.Context, in service.CheckAvailabilityInput) (*service.Availability, error) {
	return m.CheckAvailabilityFunc(ctx, in)
}
func (m *MockAvailabilityService) ListAvailableTables(ctx context.Context, zoneID uuid.UUID, guestCount int) ([]models.DiningTable, error) {
	return m.ListAvailableTablesFunc(ctx, zoneID, guestCount)
}

type MockOrderService struct {
	CreateFunc            func(ctx context.Context, in service.CreateOrderInput) (*service.CreatedOrder, error)
	GetFunc               func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListFunc              func(ctx context.Context, f service.OrderFilter) ([]models.Order, int64, error)
	UpdateFunc            func(ctx context.Context, id uuid.UUID, in service.UpdateOrderInput) (*models.Order, error)
	TransitionStatusFunc  func(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error)
	TransitionPaymentFunc func(ctx context.Context, id uuid.UUID, status models.PaymentStatus) (*models.Order, error)
	CancelFunc            func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	DeleteFunc            func(ctx context.Context, id uuid.UUID) error
}

func (m *MockOrderService) Create(ctx context.Context, in service.CreateOrderInput) (*service.CreatedOrder, error) {
	return m.CreateFunc(ctx, in)
}
func (m *MockOrderService) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return m.GetFunc(ctx, id)
}
func (m *MockOrderService) List(ctx context.Context, f service.OrderFilter) ([]models.Order, int64, error) {
	return m.ListFunc(ctx, f)
}
func (m *MockOrderService) Update(ctx context.Context, id uuid.UUID, in service.UpdateOrderInput) (*models.Order, error) {
	return m.UpdateFunc(ctx, id, in)
}
func (m *MockOrderService) TransitionStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	return m.TransitionStatusFunc(ctx, id, status)
}
func (m *MockOrderService) TransitionPayment(ctx context.Context, id uuid.UUID, status models.PaymentStatus) (*models.Order, error) {
	return m.TransitionPaymentFunc(ctx, id, status)
}
func (m *MockOrderService) Cancel(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return m.CancelFunc(ctx, id)
}
func (m *MockOrderService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.DeleteFunc(ctx, id)
}
