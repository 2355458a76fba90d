package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"booking-service/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisClient struct {
	client   *redis.Client
	log      *zap.Logger
	availTTL time.Duration
}

func NewRedisClient(addr, password string, db int, availTTL time.Duration, log *zap.Logger) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis connected successfully", zap.String("addr", addr))

	return &RedisClient{
		client:   rdb,
		log:      log,
		availTTL: availTTL,
	}, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

// Allow counts a hit against key in a fixed window and reports whether it is within limit.
func (r *RedisClient) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	key = "ratelimit:" + key
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(limit), nil
}

// Available tables, one hash per zone keyed by party size.
func availKey(zoneID uuid.UUID) string {
	return fmt.Sprintf("avail:%s", zoneID)
}

func (r *RedisClient) GetAvailableTables(ctx context.Context, zoneID uuid.UUID, guests int) ([]models.DiningTable, bool, error) {
	raw, err := r.client.HGet(ctx, availKey(zoneID), strconv.Itoa(guests)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var tables []models.DiningTable
	if err := json.Unmarshal(raw, &tables); err != nil {
		return nil, false, err
	}
	return tables, true, nil
}

func (r *RedisClient) SetAvailableTables(ctx context.Context, zoneID uuid.UUID, guests int, tables []models.DiningTable) error {
	if tables == nil {
		tables = []models.DiningTable{}
	}
	raw, err := json.Marshal(tables)
	if err != nil {
		return err
	}
	key := availKey(zoneID)
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, strconv.Itoa(guests), raw)
	pipe.Expire(ctx, key, r.availTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisClient) InvalidateZone(ctx context.Context, zoneID uuid.UUID) error {
	return r.client.Del(ctx, availKey(zoneID)).Err()
}
