// internal/infrastructure/cache/memory/cache.go
package memory

import (
	"context"
	"sync"
	"time"

	"ethfi-report-bot/internal/core/domain/report"
)

// ReportCache - кэш последнего отчета в памяти процесса, используется без Redis
type ReportCache struct {
	mu      sync.RWMutex
	report  *report.Report
	expires time.Time
	now     func() time.Time
}

// NewReportCache создает пустой кэш
func NewReportCache() *ReportCache {
	return &ReportCache{now: time.Now}
}

// Get возвращает отчет, если срок его жизни не истек
func (c *ReportCache) Get(_ context.Context) (*report.Report, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.report == nil || !c.now().Before(c.expires) {
		return nil, false
	}
	return c.report, true
}

// Set запоминает отчет на ttl
func (c *ReportCache) Set(_ context.Context, r *report.Report, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report = r
	c.expires = c.now().Add(ttl)
	return nil
}
