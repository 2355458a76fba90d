package handlers

import (
	"net/http"

	"booking-service/internal/dto"
	"booking-service/internal/middleware"
	"booking-service/internal/models"
	"booking-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReservationHandler struct {
	reservations service.ReservationService
	availability service.AvailabilityService
	clock        service.Clock
	log          *zap.Logger
}

func NewReservationHandler(reservations service.ReservationService, availability service.AvailabilityService, clock service.Clock, log *zap.Logger) *ReservationHandler {
	return &ReservationHandler{
		reservations: reservations,
		availability: availability,
		clock:        clock,
		log:          log,
	}
}

// CheckAvailability answers whether a table is free at a date and time.
// POST /api/v1/reservations/check-availability
func (h *ReservationHandler) CheckAvailability(c *gin.Context) {
	var req dto.CheckAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, h.log, "availability request", err)
		return
	}

	res, err := h.availability.CheckAvailability(c.Request.Context(), service.CheckAvailabilityInput{
		TableID:              uuid.MustParse(req.TableID),
		ReservationDate:      req.ReservationDate,
		ReservationTime:      req.ReservationTime,
		ExcludeReservationID: optUUID(req.ExcludeReservationID),
	})
	if err != nil {
		writeError(c, h.log, "check availability", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// AvailableTables lists tables in a zone that fit the party.
// GET /api/v1/reservations/available-tables?zone_id=&guest_count=
func (h *ReservationHandler) AvailableTables(c *gin.Context) {
	var q dto.AvailableTablesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, h.log, "available tables query", err)
		return
	}

	tables, err := h.availability.ListAvailableTables(c.Request.Context(), uuid.MustParse(q.ZoneID), q.GuestCount)
	if err != nil {
		writeError(c, h.log, "list available tables", err)
		return
	}
	c.JSON(http.StatusOK, dto.AvailableTablesResponse{ZoneID: q.ZoneID, GuestCount: q.GuestCount, Tables: tables})
}

func (h *ReservationHandler) Create(c *gin.Context) {
	var req dto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, h.log, "reservation request", err)
		return
	}

	in := service.CreateReservationInput{
		UserID:              optUUID(req.UserID),
		ZoneID:              uuid.MustParse(req.ZoneID),
		TableID:             uuid.MustParse(req.TableID),
		ReservationDate:     req.ReservationDate,
		ReservationTime:     req.ReservationTime,
		GuestCount:          req.GuestCount,
		SpecialRequirements: req.SpecialRequirements,
	}
	if req.Status != nil {
		st := models.ReservationStatus(*req.Status)
		in.Status = &st
	}

	r, err := h.reservations.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.log, "create reservation", err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *ReservationHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	r, err := h.reservations.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, "get reservation", err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ReservationHandler) List(c *gin.Context) {
	var q dto.ListReservationsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, h.log, "reservation query", err)
		return
	}
	if q.Limit == 0 {
		q.Limit = 20
	}

	f := service.ReservationFilter{
		UserID: queryUUID(q.UserID),
		ZoneID: queryUUID(q.ZoneID),
		Date:   optString(q.Date),
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	if q.Status != "" {
		st := models.ReservationStatus(q.Status)
		f.Status = &st
	}

	items, total, err := h.reservations.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, h.log, "list reservations", err)
		return
	}
	if items == nil {
		items = []models.Reservation{}
	}
	c.JSON(http.StatusOK, dto.ListResponse[models.Reservation]{Items: items, Total: total, Limit: q.Limit, Offset: q.Offset})
}

func (h *ReservationHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, h.log, "reservation patch", err)
		return
	}

	r, err := h.reservations.Update(c.Request.Context(), id, service.UpdateReservationInput{
		UserID:              optUUID(req.UserID),
		ZoneID:              optUUID(req.ZoneID),
		TableID:             optUUID(req.TableID),
		ReservationDate:     req.ReservationDate,
		ReservationTime:     req.ReservationTime,
		GuestCount:          req.GuestCount,
		SpecialRequirements: req.SpecialRequirements,
	})
	if err != nil {
		writeError(c, h.log, "update reservation", err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ReservationHandler) TransitionStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, h.log, "status request", err)
		return
	}

	r, err := h.reservations.TransitionStatus(c.Request.Context(), id, models.ReservationStatus(req.Status))
	if err != nil {
		writeError(c, h.log, "transition reservation", err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ReservationHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	r, err := h.reservations.Cancel(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, "cancel reservation", err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ReservationHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.reservations.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.log, "delete reservation", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MyActive returns the caller's confirmed reservation for the given date (default today).
// GET /api/v1/reservations/me/active?date=YYYY-MM-DD
func (h *ReservationHandler) MyActive(c *gin.Context) {
	var q dto.ActiveReservationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, h.log, "active reservation query", err)
		return
	}
	day := h.clock.Today()
	if q.Date != "" {
		d, err := service.ParseDate(q.Date)
		if err != nil {
			writeError(c, h.log, "active reservation", err)
			return
		}
		day = d
	}

	r, err := h.reservations.GetActiveReservation(c.Request.Context(), middleware.UserID(c), day)
	if err != nil {
		writeError(c, h.log, "active reservation", err)
		return
	}
	c.JSON(http.StatusOK, dto.ReservationEnvelope{Reservation: r})
}

func (h *ReservationHandler) MyUpcoming(c *gin.Context) {
	r, err := h.reservations.GetMyUpcoming(c.Request.Context())
	if err != nil {
		writeError(c, h.log, "upcoming reservation", err)
		return
	}
	c.JSON(http.StatusOK, dto.ReservationEnvelope{Reservation: r})
}
