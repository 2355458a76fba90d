package router

import (
	"net/http"
	"time"

	"booking-service/internal/handlers"
	"booking-service/internal/middleware"
	"booking-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RateLimit struct {
	Limiter middleware.Limiter // nil disables limiting
	Max     int
	Window  time.Duration
}

type Deps struct {
	Auth         middleware.Introspector
	Reservations *handlers.ReservationHandler
	Orders       *handlers.OrderHandler
	RateLimit    RateLimit
	Log          *zap.Logger
}

func Router(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Log))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	limit := func(action string) gin.HandlerFunc {
		return middleware.RateLimit(d.RateLimit.Limiter, action, d.RateLimit.Max, d.RateLimit.Window, d.Log)
	}
	admin := middleware.RequireRole(service.RoleAdmin)

	api := r.Group("/api/v1", middleware.AuthRequired(d.Auth, d.Log))

	res := api.Group("/reservations")
	{
		h := d.Reservations
		res.POST("/check-availability", h.CheckAvailability)
		res.GET("/available-tables", h.AvailableTables)
		res.GET("/me/active", h.MyActive)
		res.GET("/me/upcoming", h.MyUpcoming)
		res.POST("", limit("reservation_create"), h.Create)
		res.GET("", h.List)
		res.GET("/:id", h.Get)
		res.PATCH("/:id", h.Update)
		res.PATCH("/:id/status", admin, h.TransitionStatus)
		res.PATCH("/:id/cancel", h.Cancel)
		res.DELETE("/:id", admin, h.Delete)
	}

	orders := api.Group("/orders")
	{
		h := d.Orders
		orders.POST("", limit("order_create"), h.Create)
		orders.GET("", h.List)
		orders.GET("/:id", h.Get)
		orders.PATCH("/:id", h.Update)
		orders.PATCH("/:id/status", admin, h.TransitionStatus)
		orders.PATCH("/:id/payment", admin, h.TransitionPayment)
		orders.PATCH("/:id/cancel", h.Cancel)
		orders.DELETE("/:id", admin, h.Delete)
	}

	return r
}
