// internal/core/domain/report/cache.go
package report

import (
	"context"
	"time"

	"ethfi-report-bot/pkg/logger"
)

// Cache - хранилище последнего отчета
type Cache interface {
	Get(ctx context.Context) (*Report, bool)
	Set(ctx context.Context, r *Report, ttl time.Duration) error
}

// Source - то, чем пользуется слой диспетчеризации
type Source interface {
	// Compile всегда собирает свежий отчет
	Compile(ctx context.Context) *Report
	// Latest отдает кэшированный отчет, если он еще не устарел
	Latest(ctx context.Context) *Report
}

// CachedCompiler оборачивает Compiler кэшем последнего удачного отчета
type CachedCompiler struct {
	compiler *Compiler
	cache    Cache
	ttl      time.Duration
}

// NewCachedCompiler, ttl <= 0 отключает кэш
func NewCachedCompiler(compiler *Compiler, cache Cache, ttl time.Duration) *CachedCompiler {
	return &CachedCompiler{compiler: compiler, cache: cache, ttl: ttl}
}

// Compile всегда собирает свежий отчет и обновляет кэш, если отчет удачный
func (c *CachedCompiler) Compile(ctx context.Context) *Report {
	r := c.compiler.Compile(ctx)
	if c.ttl <= 0 || c.cache == nil || r.Err() != nil {
		return r
	}
	if err := c.cache.Set(ctx, r, c.ttl); err != nil {
		logger.Warn("⚠️ [Report] Не удалось сохранить отчет в кэш: %v", err)
	}
	return r
}

// Latest возвращает отчет из кэша, пока он не устарел, иначе собирает новый
func (c *CachedCompiler) Latest(ctx context.Context) *Report {
	if c.ttl > 0 && c.cache != nil {
		if r, ok := c.cache.Get(ctx); ok {
			return r
		}
	}
	return c.Compile(ctx)
}
