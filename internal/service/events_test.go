package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"booking-service/internal/models"

	"go.uber.org/zap"
)

type MockBus struct {
	PublishEmailFunc func(ctx context.Context, key string, e EmailEvent) error
}

func (m *MockBus) PublishEmail(ctx context.Context, key string, e EmailEvent) error {
	if m.PublishEmailFunc != nil {
		return m.PublishEmailFunc(ctx, key, e)
	}
	return nil
}

func TestDispatcher_DeliversAndDrainsOnClose(t *testing.T) {
	got := make(chan string, 4)
	next := &MockBus{PublishEmailFunc: func(ctx context.Context, key string, e EmailEvent) error {
		got <- key
		if key == "b" {
			return errors.New("broker down")
		}
		return nil
	}}
	d := NewDispatcher(next, zap.NewNop(), 4)
	go d.Run()

	for _, k := range []string{"a", "b", "c"} {
		if err := d.PublishEmail(context.Background(), k, EmailEvent{Type: "x", To: "x@example.com"}); err != nil {
			t.Fatalf("PublishEmail(%s): %v", k, err)
		}
	}
	d.Close()
	close(got)

	var keys []string
	for k := range got {
		keys = append(keys, k)
	}
	if strings.Join(keys, ",") != "a,b,c" {
		t.Fatalf("delivered: %v", keys)
	}
}

func TestDispatcher_PublishAfterClose(t *testing.T) {
	delivered := 0
	d := NewDispatcher(&MockBus{PublishEmailFunc: func(ctx context.Context, key string, e EmailEvent) error {
		delivered++
		return nil
	}}, zap.NewNop(), 2)
	go d.Run()
	d.Close()

	if err := d.PublishEmail(context.Background(), "late", EmailEvent{Type: "x", To: "x@example.com"}); !errors.Is(err, ErrDispatcherClosed) {
		t.Fatalf("publish after close: %v", err)
	}
	d.Close()
	if delivered != 0 {
		t.Fatalf("delivered after close: %d", delivered)
	}

	// emit only logs the rejection.
	emit(context.Background(), d, zap.NewNop(), "late", EmailEvent{Type: "x", To: "x@example.com"})
}

func TestDispatcher_FullQueueDoesNotBlock(t *testing.T) {
	d := NewDispatcher(&MockBus{}, zap.NewNop(), 1)
	if err := d.PublishEmail(context.Background(), "a", EmailEvent{}); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := d.PublishEmail(context.Background(), "b", EmailEvent{}); !errors.Is(err, ErrEventQueueFull) {
		t.Fatalf("second: %v", err)
	}
}

func TestEmit_SwallowsFailures(t *testing.T) {
	calls := 0
	bus := &MockBus{PublishEmailFunc: func(ctx context.Context, key string, e EmailEvent) error {
		calls++
		return errors.New("boom")
	}}
	emit(context.Background(), bus, zap.NewNop(), "k", EmailEvent{Type: "t", To: "a@example.com"})
	emit(context.Background(), bus, zap.NewNop(), "k", EmailEvent{})
	emit(context.Background(), nil, zap.NewNop(), "k", EmailEvent{To: "a@example.com"})
	if calls != 1 {
		t.Fatalf("calls: %d", calls)
	}
}

func TestOrderStatusEvent_ReadyDependsOnType(t *testing.T) {
	u := &models.User{Name: "Ana", Email: "ana@example.com"}
	cases := map[models.OrderType]string{
		models.OrderTypeDineIn:   "brought to your table",
		models.OrderTypeTakeout:  "ready for pickup",
		models.OrderTypeDelivery: "on its way",
	}
	for typ, want := range cases {
		e := orderStatusEvent(&models.Order{OrderNumber: "ORD-1", OrderType: typ, Status: models.OrderReady}, u)
		if e.Type != "order.ready" || !strings.Contains(e.Data["message"].(string), want) {
			t.Fatalf("%s: %+v", typ, e)
		}
	}

	if e := orderStatusEvent(&models.Order{Status: models.OrderPreparing}, u); e.To != "" {
		t.Fatalf("preparing must not notify: %+v", e)
	}

	card := models.PaymentCard
	e := orderStatusEvent(&models.Order{OrderNumber: "ORD-2", Status: models.OrderCompleted, TotalAmountCents: 3500, PaymentMethod: &card}, u)
	msg := e.Data["message"].(string)
	if !strings.Contains(msg, "RD$35.00") || !strings.Contains(msg, "card") {
		t.Fatalf("completed message: %q", msg)
	}
}

func TestReservationEvent(t *testing.T) {
	u := &models.User{Name: "Ana", Email: "ana@example.com"}
	r := &models.Reservation{
		ReservationDate: time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC), ReservationTime: "19:00",
		GuestCount: 4, Status: models.ReservationPending,
	}
	if e := reservationEvent(r, u, 7); e.Type != "reservation.created" || !strings.Contains(e.Data["message"].(string), "table 7") {
		t.Fatalf("pending: %+v", e)
	}
	r.Status = models.ReservationConfirmed
	if e := reservationEvent(r, u, 7); e.Type != "reservation.confirmed" || e.To != u.Email {
		t.Fatalf("confirmed: %+v", e)
	}
}

func TestReservationCreatedEvents(t *testing.T) {
	u := &models.User{Name: "Ana", Email: "ana@example.com"}
	r := &models.Reservation{
		ReservationDate: time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC), ReservationTime: "19:00",
		GuestCount: 2, Status: models.ReservationPending,
	}
	types := func(es []EmailEvent) string {
		out := make([]string, len(es))
		for i, e := range es {
			out[i] = e.Type
		}
		return strings.Join(out, ",")
	}

	if got := types(reservationCreatedEvents(r, u, 3)); got != "reservation.created" {
		t.Fatalf("pending: %s", got)
	}
	r.Status = models.ReservationConfirmed
	es := reservationCreatedEvents(r, u, 3)
	if got := types(es); got != "reservation.created,reservation.confirmed" {
		t.Fatalf("confirmed at creation: %s", got)
	}
	if msg := es[0].Data["message"].(string); strings.Contains(msg, "pending") || !strings.Contains(msg, "table 3") {
		t.Fatalf("created message: %q", msg)
	}
}

func TestFormatMoney(t *testing.T) {
	cases := map[int64]string{0: "RD$0.00", 5: "RD$0.05", 3500: "RD$35.00", 123456: "RD$1234.56"}
	for cents, want := range cases {
		if got := FormatMoney(cents); got != want {
			t.Fatalf("%d: got %q want %q", cents, got, want)
		}
	}
}
