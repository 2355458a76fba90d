package handlers

import (
	"net/http"

	"booking-service/internal/dto"
	"booking-service/internal/models"
	"booking-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orders service.OrderService
	log    *zap.Logger
}

func NewOrderHandler(orders service.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, log: log}
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, h.log, "order request", err)
		return
	}

	in := service.CreateOrderInput{
		UserID:              optUUID(req.UserID),
		OrderType:           models.OrderType(req.OrderType),
		TableID:             optUUID(req.TableID),
		SpecialInstructions: req.SpecialInstructions,
		Items:               make([]service.CreateOrderItemInput, 0, len(req.Items)),
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, service.CreateOrderItemInput{
			MenuItemID:   uuid.MustParse(it.MenuItemID),
			Quantity:     it.Quantity,
			SpecialNotes: it.SpecialNotes,
		})
	}
	if req.PaymentMethod != nil {
		pm := models.PaymentMethod(*req.PaymentMethod)
		in.PaymentMethod = &pm
	}
	if req.Status != nil {
		st := models.OrderStatus(*req.Status)
		in.Status = &st
	}
	if req.PaymentStatus != nil {
		ps := models.PaymentStatus(*req.PaymentStatus)
		in.PaymentStatus = &ps
	}

	created, err := h.orders.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.log, "create order", err)
		return
	}
	c.JSON(http.StatusCreated, dto.CreateOrderResponse{Order: created.Order, Summary: created.Summary})
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	o, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, "get order", err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) List(c *gin.Context) {
	var q dto.ListOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, h.log, "order query", err)
		return
	}
	if q.Limit == 0 {
		q.Limit = 20
	}

	f := service.OrderFilter{UserID: queryUUID(q.UserID), Limit: q.Limit, Offset: q.Offset}
	if q.Status != "" {
		st := models.OrderStatus(q.Status)
		f.Status = &st
	}
	if q.OrderType != "" {
		ot := models.OrderType(q.OrderType)
		f.OrderType = &ot
	}

	items, total, err := h.orders.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, h.log, "list orders", err)
		return
	}
	if items == nil {
		items = []models.Order{}
	}
	c.JSON(http.StatusOK, dto.ListResponse[models.Order]{Items: items, Total: total, Limit: q.Limit, Offset: q.Offset})
}

func (h *OrderHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, h.log, "order patch", err)
		return
	}

	in := service.UpdateOrderInput{
		UserID:              optUUID(req.UserID),
		TableID:             optUUID(req.TableID),
		SpecialInstructions: req.SpecialInstructions,
	}
	if req.OrderType != nil {
		ot := models.OrderType(*req.OrderType)
		in.OrderType = &ot
	}
	if req.PaymentMethod != nil {
		pm := models.PaymentMethod(*req.PaymentMethod)
		in.PaymentMethod = &pm
	}
	if req.Status != nil {
		st := models.OrderStatus(*req.Status)
		in.Status = &st
	}
	if req.PaymentStatus != nil {
		ps := models.PaymentStatus(*req.PaymentStatus)
		in.PaymentStatus = &ps
	}

	o, err := h.orders.Update(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, h.log, "update order", err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) TransitionStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, h.log, "status request", err)
		return
	}
	o, err := h.orders.TransitionStatus(c.Request.Context(), id, models.OrderStatus(req.Status))
	if err != nil {
		writeError(c, h.log, "transition order", err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) TransitionPayment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, h.log, "payment request", err)
		return
	}
	o, err := h.orders.TransitionPayment(c.Request.Context(), id, models.PaymentStatus(req.Status))
	if err != nil {
		writeError(c, h.log, "transition payment", err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	o, err := h.orders.Cancel(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, "cancel order", err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.orders.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.log, "delete order", err)
		return
	}
	c.Status(http.StatusNoContent)
}
