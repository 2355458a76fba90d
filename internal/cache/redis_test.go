package cache_test

import (
	"context"
	"testing"
	"time"

	"booking-service/internal/cache"
	"booking-service/internal/models"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// startRedis runs a throwaway redis container and returns its host:port.
func startRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("terminate redis container: %v", err)
		}
	})

	addr, err := ctr.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("redis endpoint: %v", err)
	}
	return addr
}

func setupRedis(t *testing.T) *cache.RedisClient {
	t.Helper()
	addr := startRedis(t)
	rc, err := cache.NewRedisClient(addr, "", 0, time.Minute, zap.NewNop())
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	t.Cleanup(func() { _ = rc.Close() })
	return rc
}

func TestAvailabilityCache_RoundTripAndInvalidate(t *testing.T) {
	rc := setupRedis(t)
	ctx := context.Background()
	zone := uuid.New()

	if _, ok, err := rc.GetAvailableTables(ctx, zone, 2); err != nil || ok {
		t.Fatalf("cold cache: ok=%v err=%v", ok, err)
	}

	tables := []models.DiningTable{{ID: uuid.New(), ZoneID: zone, TableNumber: 3, Capacity: 4, Status: models.TableStatusAvailable, IsActive: true}}
	if err := rc.SetAvailableTables(ctx, zone, 2, tables); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := rc.SetAvailableTables(ctx, zone, 8, nil); err != nil {
		t.Fatalf("Set empty: %v", err)
	}

	got, ok, err := rc.GetAvailableTables(ctx, zone, 2)
	if err != nil || !ok || len(got) != 1 || got[0].ID != tables[0].ID {
		t.Fatalf("Get: %+v ok=%v err=%v", got, ok, err)
	}
	if got, ok, _ := rc.GetAvailableTables(ctx, zone, 8); !ok || len(got) != 0 {
		t.Fatalf("empty result must be cached: %+v ok=%v", got, ok)
	}

	if err := rc.InvalidateZone(ctx, zone); err != nil {
		t.Fatalf("InvalidateZone: %v", err)
	}
	if _, ok, _ := rc.GetAvailableTables(ctx, zone, 2); ok {
		t.Fatalf("entry survived invalidation")
	}
}

func TestRedisClient_Allow(t *testing.T) {
	rc := setupRedis(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := rc.Allow(ctx, "user:1", 3, time.Minute)
		if err != nil || !ok {
			t.Fatalf("hit %d: ok=%v err=%v", i, ok, err)
		}
	}
	if ok, _ := rc.Allow(ctx, "user:1", 3, time.Minute); ok {
		t.Fatalf("fourth hit allowed")
	}
	if ok, _ := rc.Allow(ctx, "user:2", 3, time.Minute); !ok {
		t.Fatalf("keys must be independent")
	}
}
