package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"booking-service/internal/dto"
	"booking-service/internal/middleware"
	"booking-service/internal/models"
	"booking-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

func init() { gin.SetMode(gin.TestMode) }

// asUser stands in for AuthRequired.
func asUser(uid uuid.UUID, role service.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserID, uid)
		c.Set(middleware.CtxUserRole, role)
		ctx := service.WithRole(service.WithUserID(c.Request.Context(), uid), role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func reservationEngine(uid uuid.UUID, res service.ReservationService, avail service.AvailabilityService) *gin.Engine {
	clock := service.Clock{Now: func() time.Time { return fixedNow }, Loc: time.UTC}
	h := NewReservationHandler(res, avail, clock, zap.NewNop())
	r := gin.New()
	g := r.Group("/reservations", asUser(uid, service.RoleCustomer))
	g.POST("/check-availability", h.CheckAvailability)
	g.GET("/available-tables", h.AvailableTables)
	g.GET("/me/active", h.MyActive)
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PATCH("/:id/cancel", h.Cancel)
	g.DELETE("/:id", h.Delete)
	return r
}

func orderEngine(uid uuid.UUID, orders service.OrderService) *gin.Engine {
	h := NewOrderHandler(orders, zap.NewNop())
	r := gin.New()
	g := r.Group("/orders", asUser(uid, service.RoleCustomer))
	g.POST("", h.Create)
	g.PATCH("/:id", h.Update)
	g.PATCH("/:id/payment", h.TransitionPayment)
	return r
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.BaseError {
	t.Helper()
	var e dto.BaseError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func TestCreateReservation_BindingErrors(t *testing.T) {
	svc := &MockReservationService{
		CreateFunc: func(context.Context, service.CreateReservationInput) (*models.Reservation, error) {
			t.Fatalf("service must not be called on invalid input")
			return nil, nil
		},
	}
	r := reservationEngine(uuid.New(), svc, nil)

	w := do(r, http.MethodPost, "/reservations", map[string]any{
		"zone_id":     "not-a-uuid",
		"guest_count": 0,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	e := decodeError(t, w)
	assert.Equal(t, "validation_error", e.Code)
	fields := map[string]string{}
	for _, f := range e.Fields {
		fields[f.Field] = f.Tag
	}
	assert.Equal(t, "uuid", fields["zone_id"])
	assert.Equal(t, "required", fields["table_id"])
	assert.Equal(t, "required", fields["reservation_date"])
	assert.Equal(t, "required", fields["guest_count"])
}

func TestCreateReservation_PassesInput(t *testing.T) {
	zone, table := uuid.New(), uuid.New()
	var got service.CreateReservationInput
	svc := &MockReservationService{
		CreateFunc: func(ctx context.Context, in service.CreateReservationInput) (*models.Reservation, error) {
			got = in
			uid, _ := service.UserIDFromContext(ctx)
			return &models.Reservation{ID: uuid.New(), UserID: uid, TableID: in.TableID, Status: models.ReservationPending}, nil
		},
	}
	r := reservationEngine(uuid.New(), svc, nil)

	w := do(r, http.MethodPost, "/reservations", map[string]any{
		"zone_id":          zone.String(),
		"table_id":         table.String(),
		"reservation_date": "2030-06-02",
		"reservation_time": "19:30",
		"guest_count":      4,
		"status":           "confirmed",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, zone, got.ZoneID)
	assert.Equal(t, table, got.TableID)
	assert.Equal(t, 4, got.GuestCount)
	require.NotNil(t, got.Status)
	assert.Equal(t, models.ReservationConfirmed, *got.Status)
	assert.Nil(t, got.UserID)
}

func TestServiceErrorsMapToStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{service.ErrGuestCountInvalid, http.StatusBadRequest, "validation_error"},
		{service.ErrReservationNotFound, http.StatusNotFound, "not_found"},
		{service.ErrSlotTaken, http.StatusConflict, "conflict"},
		{service.ErrReservationClosed, http.StatusConflict, "terminal_state"},
		{fmt.Errorf("%w: ux_reservations_active_slot", service.ErrConstraintViolation), http.StatusConflict, "constraint_violation"},
		{service.ErrForbidden, http.StatusForbidden, "forbidden"},
		{service.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{errors.New("db gone"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			svc := &MockReservationService{
				CancelFunc: func(context.Context, uuid.UUID) (*models.Reservation, error) { return nil, tc.err },
			}
			w := do(reservationEngine(uuid.New(), svc, nil), http.MethodPatch, "/reservations/"+uuid.NewString()+"/cancel", nil)
			require.Equal(t, tc.status, w.Code)
			e := decodeError(t, w)
			assert.Equal(t, tc.code, e.Code)
			if tc.status == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "db gone")
			}
		})
	}
}

func TestInvalidPathID(t *testing.T) {
	svc := &MockReservationService{}
	w := do(reservationEngine(uuid.New(), svc, nil), http.MethodGet, "/reservations/42", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "id", decodeError(t, w).Fields[0].Field)
}

func TestDeleteReservation_NoContent(t *testing.T) {
	id := uuid.New()
	svc := &MockReservationService{
		DeleteFunc: func(_ context.Context, got uuid.UUID) error {
			assert.Equal(t, id, got)
			return nil
		},
	}
	w := do(reservationEngine(uuid.New(), svc, nil), http.MethodDelete, "/reservations/"+id.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestListReservations_EmptyIsArray(t *testing.T) {
	var got service.ReservationFilter
	svc := &MockReservationService{
		ListFunc: func(_ context.Context, f service.ReservationFilter) ([]models.Reservation, int64, error) {
			got = f
			return nil, 0, nil
		},
	}
	w := do(reservationEngine(uuid.New(), svc, nil), http.MethodGet, "/reservations?status=confirmed&date=2030-06-02", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[],"total":0,"limit":20,"offset":0}`, w.Body.String())
	require.NotNil(t, got.Status)
	assert.Equal(t, models.ReservationConfirmed, *got.Status)
	require.NotNil(t, got.Date)
	assert.Equal(t, "2030-06-02", *got.Date)
}

func TestMyActive(t *testing.T) {
	uid := uuid.New()
	var gotUser uuid.UUID
	var gotDay time.Time
	svc := &MockReservationService{
		GetActiveReservationFunc: func(_ context.Context, userID uuid.UUID, onDate time.Time) (*models.Reservation, error) {
			gotUser, gotDay = userID, onDate
			return nil, nil
		},
	}
	r := reservationEngine(uid, svc, nil)

	w := do(r, http.MethodGet, "/reservations/me/active", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"reservation":null}`, w.Body.String())
	assert.Equal(t, uid, gotUser)
	assert.Equal(t, time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC), gotDay)

	w = do(r, http.MethodGet, "/reservations/me/active?date=2030-07-04", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.Date(2030, 7, 4, 0, 0, 0, 0, time.UTC), gotDay)

	w = do(r, http.MethodGet, "/reservations/me/active?date=04/07/2030", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvailabilityEndpoints(t *testing.T) {
	zone, table := uuid.New(), uuid.New()
	avail := &MockAvailabilityService{
		CheckAvailabilityFunc: func(_ context.Context, in service.CheckAvailabilityInput) (*service.Availability, error) {
			assert.Equal(t, table, in.TableID)
			assert.Nil(t, in.ExcludeReservationID)
			return &service.Availability{Available: true}, nil
		},
		ListAvailableTablesFunc: func(_ context.Context, z uuid.UUID, guests int) ([]models.DiningTable, error) {
			assert.Equal(t, zone, z)
			assert.Equal(t, 4, guests)
			return []models.DiningTable{{ID: table, ZoneID: zone, TableNumber: 3, Capacity: 4}}, nil
		},
	}
	r := reservationEngine(uuid.New(), &MockReservationService{}, avail)

	w := do(r, http.MethodPost, "/reservations/check-availability", map[string]any{
		"table_id":         table.String(),
		"reservation_date": "2030-06-02",
		"reservation_time": "19:00",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"available":true}`, w.Body.String())

	w = do(r, http.MethodGet, "/reservations/available-tables?zone_id="+zone.String()+"&guest_count=4", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.AvailableTablesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Tables, 1)
	assert.Equal(t, 3, resp.Tables[0].TableNumber)

	w = do(r, http.MethodGet, "/reservations/available-tables?zone_id="+zone.String()+"&guest_count=99", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOrder(t *testing.T) {
	item := uuid.New()
	var got service.CreateOrderInput
	svc := &MockOrderService{
		CreateFunc: func(_ context.Context, in service.CreateOrderInput) (*service.CreatedOrder, error) {
			got = in
			o := &models.Order{ID: uuid.New(), OrderNumber: "ORD-ABCDEFGH", OrderType: in.OrderType, TotalAmountCents: 3500}
			return &service.CreatedOrder{Order: o, Summary: service.OrderSummary{OrderNumber: o.OrderNumber, TotalCents: 3500, Total: "RD$35.00", ItemsCount: 1}}, nil
		},
	}
	r := orderEngine(uuid.New(), svc)

	w := do(r, http.MethodPost, "/orders", map[string]any{
		"order_type":     "takeout",
		"payment_method": "card",
		"items":          []map[string]any{{"menu_item_id": item.String(), "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp dto.CreateOrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "RD$35.00", resp.Summary.Total)
	assert.Equal(t, models.OrderTypeTakeout, got.OrderType)
	require.Len(t, got.Items, 1)
	assert.Equal(t, item, got.Items[0].MenuItemID)
	assert.Equal(t, 2, got.Items[0].Quantity)
	require.NotNil(t, got.PaymentMethod)
	assert.Equal(t, models.PaymentCard, *got.PaymentMethod)
}

func TestCreateOrder_Rejected(t *testing.T) {
	svc := &MockOrderService{
		CreateFunc: func(context.Context, service.CreateOrderInput) (*service.CreatedOrder, error) {
			return nil, service.ErrNeedTable
		},
	}
	r := orderEngine(uuid.New(), svc)

	w := do(r, http.MethodPost, "/orders", map[string]any{"order_type": "takeout", "items": []any{}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "items", decodeError(t, w).Fields[0].Field)

	w = do(r, http.MethodPost, "/orders", map[string]any{
		"order_type": "dine-in",
		"items":      []map[string]any{{"menu_item_id": uuid.NewString(), "quantity": 1}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Message, "dine-in")
}

func TestUpdateOrderAndPayment(t *testing.T) {
	id := uuid.New()
	svc := &MockOrderService{
		UpdateFunc: func(_ context.Context, got uuid.UUID, in service.UpdateOrderInput) (*models.Order, error) {
			assert.Equal(t, id, got)
			require.NotNil(t, in.Status)
			assert.Equal(t, models.OrderPreparing, *in.Status)
			assert.Nil(t, in.TableID)
			return &models.Order{ID: id, Status: *in.Status}, nil
		},
		TransitionPaymentFunc: func(_ context.Context, _ uuid.UUID, st models.PaymentStatus) (*models.Order, error) {
			if st == models.PaymentRefunded {
				return nil, service.ErrInvalidTransition
			}
			return &models.Order{ID: id, PaymentStatus: st}, nil
		},
	}
	r := orderEngine(uuid.New(), svc)

	w := do(r, http.MethodPatch, "/orders/"+id.String(), map[string]any{"status": "preparing"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(r, http.MethodPatch, "/orders/"+id.String()+"/payment", map[string]any{"status": "paid"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"payment_status":"paid"`)

	w = do(r, http.MethodPatch, "/orders/"+id.String()+"/payment", map[string]any{"status": "refunded"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPatch, "/orders/"+id.String()+"/payment", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
