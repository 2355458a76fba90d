package service

import (
	"context"

	"booking-service/internal/models"
	"booking-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TableStateSync is the only writer of dining_tables.status. SetStatus runs on
// the caller's transaction; Flush runs after commit.
type TableStateSync struct {
	cache AvailabilityCache
	log   *zap.Logger
}

func NewTableStateSync(cache AvailabilityCache, log *zap.Logger) *TableStateSync {
	return &TableStateSync{cache: cache, log: log}
}

// SetStatus returns the zone of the updated table.
func (s *TableStateSync) SetStatus(ctx context.Context, tables repository.TableRepo, tableID uuid.UUID, status models.TableStatus) (uuid.UUID, error) {
	if !status.Valid() {
		return uuid.Nil, ErrInvalidStatus
	}
	zoneID, err := tables.SetStatus(ctx, tableID, status)
	if err != nil {
		return uuid.Nil, err
	}
	if zoneID == uuid.Nil {
		return uuid.Nil, ErrTableNotFound
	}
	return zoneID, nil
}

// Flush drops cached availability for zones whose tables changed.
func (s *TableStateSync) Flush(ctx context.Context, zones ...uuid.UUID) {
	if s.cache == nil {
		return
	}
	seen := make(map[uuid.UUID]struct{}, len(zones))
	for _, z := range zones {
		if _, ok := seen[z]; ok || z == uuid.Nil {
			continue
		}
		seen[z] = struct{}{}
		if err := s.cache.InvalidateZone(ctx, z); err != nil {
			s.log.Warn("availability cache invalidation failed", zap.String("zone_id", z.String()), zap.Error(err))
		}
	}
}
