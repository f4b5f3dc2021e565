// internal/infrastructure/cache/redis/cache.go
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ethfi-report-bot/internal/core/domain/report"
	"ethfi-report-bot/pkg/logger"

	"github.com/go-redis/redis/v8"
)

const (
	defaultPrefix = "ethfibot:"
	reportKey     = "report:latest"
)

type Cache struct {
	client *redis.Client
	prefix string
}

func NewCache(addr, password string, db int) *Cache {
	return NewCacheWithClient(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}))
}

// NewCacheWithClient создает Cache с существующим клиентом
func NewCacheWithClient(client *redis.Client) *Cache {
	return &Cache{client: client, prefix: defaultPrefix}
}

// Ping проверяет соединение
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close закрывает соединение
func (c *Cache) Close() error {
	return c.client.Close()
}

// Set устанавливает значение в Redis с TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+key, data, ttl).Err()
}

// Get получает значение из Redis
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// ReportCache хранит последний отчет, общий для нескольких процессов
type ReportCache struct {
	cache *Cache
}

// NewReportCache создает кэш отчета поверх Cache
func NewReportCache(cache *Cache) *ReportCache {
	return &ReportCache{cache: cache}
}

// Get возвращает отчет; промах и ошибка Redis одинаково дают false
func (rc *ReportCache) Get(ctx context.Context) (*report.Report, bool) {
	var r report.Report
	if err := rc.cache.Get(ctx, reportKey, &r); err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("⚠️ [Redis] Не удалось прочитать отчет: %v", err)
		}
		return nil, false
	}
	return &r, true
}

// Set сохраняет отчет с TTL
func (rc *ReportCache) Set(ctx context.Context, r *report.Report, ttl time.Duration) error {
	return rc.cache.Set(ctx, reportKey, r, ttl)
}
