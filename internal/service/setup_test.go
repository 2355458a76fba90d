package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"booking-service/internal/migrate"
	"booking-service/internal/models"
	"booking-service/internal/repository"

	"github.com/Anabol1ks/orderhub-pkg-proto/pkg/testutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type recordingBus struct {
	mu     sync.Mutex
	events []EmailEvent
}

func (b *recordingBus) PublishEmail(_ context.Context, _ string, e EmailEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
	return nil
}

func (b *recordingBus) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.Type
	}
	return out
}

func (b *recordingBus) has(typ string) bool {
	for _, t := range b.types() {
		if t == typ {
			return true
		}
	}
	return false
}

type testEnv struct {
	repo         *repository.Repository
	reservations ReservationService
	orders       OrderService
	availability AvailabilityService
	bus          *recordingBus

	mu  sync.Mutex
	now time.Time

	alice, bob, admin *models.User
	zone              *models.Zone
}

// 2030-06-01 12:00 in the restaurant's zone.
var testNow = time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

const testToday = "2030-06-01"

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupTestPostgres(t)
	if err := migrate.MigrateBookingDB(context.Background(), db, zap.NewNop(), migrate.DefaultMigrateOptions()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	env := &testEnv{repo: repository.New(db), bus: &recordingBus{}, now: testNow}
	clock := Clock{Now: env.clockNow, Loc: time.UTC}
	log := zap.NewNop()

	tables := NewTableStateSync(nil, log)
	env.reservations = NewReservationService(env.repo, tables, env.bus, clock, DefaultReservationOptions(), log)
	env.orders = NewOrderService(env.repo, NewPricingEngine(env.repo.Catalog), env.reservations, tables, env.bus, clock, log)
	env.availability = NewAvailabilityService(env.repo, nil, log)

	ctx := context.Background()
	env.alice = env.user(t, "Alice", "alice@example.com", models.UserRoleCustomer)
	env.bob = env.user(t, "Bob", "bob@example.com", models.UserRoleCustomer)
	env.admin = env.user(t, "Admin", "admin@example.com", models.UserRoleAdmin)
	env.zone = &models.Zone{ID: uuid.New(), Name: "Salon", IsActive: true}
	if err := env.repo.Catalog.UpsertZone(ctx, env.zone); err != nil {
		t.Fatalf("UpsertZone: %v", err)
	}
	return env
}

func (e *testEnv) clockNow() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now
}

func (e *testEnv) advance(d time.Duration) {
	e.mu.Lock()
	e.now = e.now.Add(d)
	e.mu.Unlock()
}

func (e *testEnv) user(t *testing.T, name, email string, role models.UserRole) *models.User {
	t.Helper()
	u := &models.User{ID: uuid.New(), Name: name, Email: email, Role: role}
	if err := e.repo.Catalog.UpsertUser(context.Background(), u); err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	return u
}

func (e *testEnv) table(t *testing.T, number, capacity int) *models.DiningTable {
	t.Helper()
	tbl := &models.DiningTable{ID: uuid.New(), ZoneID: e.zone.ID, TableNumber: number, Capacity: capacity, IsActive: true}
	if err := e.repo.Catalog.UpsertTable(context.Background(), tbl); err != nil {
		t.Fatalf("UpsertTable: %v", err)
	}
	return tbl
}

func (e *testEnv) menuItem(t *testing.T, name string, cents int64) *models.MenuItem {
	t.Helper()
	m := &models.MenuItem{ID: uuid.New(), Name: name, PriceCents: cents, IsAvailable: true}
	if err := e.repo.Catalog.UpsertMenuItem(context.Background(), m); err != nil {
		t.Fatalf("UpsertMenuItem: %v", err)
	}
	return m
}

func (e *testEnv) tableStatus(t *testing.T, id uuid.UUID) models.TableStatus {
	t.Helper()
	tbl, err := e.repo.Catalog.GetTable(context.Background(), id)
	if err != nil || tbl == nil {
		t.Fatalf("GetTable: %+v %v", tbl, err)
	}
	return tbl.Status
}

func as(u *models.User) context.Context {
	ctx := WithUserID(context.Background(), u.ID)
	if u.Role == models.UserRoleAdmin {
		return WithRole(ctx, RoleAdmin)
	}
	return WithRole(ctx, RoleCustomer)
}

func (e *testEnv) book(t *testing.T, u *models.User, tbl *models.DiningTable, date, slot string, guests int) *models.Reservation {
	t.Helper()
	r, err := e.reservations.Create(as(u), CreateReservationInput{
		ZoneID: e.zone.ID, TableID: tbl.ID, ReservationDate: date, ReservationTime: slot, GuestCount: guests,
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	return r
}
