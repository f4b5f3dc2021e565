// application/bootstrap/lifecycle.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"ethfi-report-bot/pkg/logger"
)

// shutdownTimeout ограничивает graceful shutdown
const shutdownTimeout = 30 * time.Second

// Start запускает транспорт, сервер статуса и таймер рассылки
func (app *Application) Start(ctx context.Context) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.running {
		return fmt.Errorf("application already running")
	}

	logger.Info("🚀 [Bootstrap] Запуск %s Update bot v%s", app.config.Sources.AssetSymbol, app.version)

	if err := app.bot.Start(ctx); err != nil {
		return err
	}
	if app.httpServer != nil {
		app.httpServer.Start()
	}
	app.scheduler.Start()

	app.running = true
	logger.Info("✅ [Bootstrap] Приложение запущено, подписчиков: %d", app.registry.Count())
	return nil
}

// Stop останавливает компоненты в обратном порядке с таймаутом
func (app *Application) Stop() {
	app.mu.Lock()
	defer app.mu.Unlock()

	if !app.running {
		return
	}
	logger.Info("⏳ [Bootstrap] Начинаем graceful shutdown (таймаут: %v)...", shutdownTimeout)

	done := make(chan struct{})
	go func() {
		defer close(done)
		app.shutdown()
	}()

	select {
	case <-done:
		logger.Info("✅ [Bootstrap] Graceful shutdown завершен успешно")
	case <-time.After(shutdownTimeout):
		logger.Warn("⚠️ [Bootstrap] Таймаут graceful shutdown, принудительное завершение")
	}
	app.running = false
}

func (app *Application) shutdown() {
	// 1. Таймер: новых рассылок не будет, текущая дорабатывает
	if err := app.scheduler.Stop(); err != nil {
		logger.Warn("⚠️ [Bootstrap] Ошибка остановки планировщика: %v", err)
	}

	// 2. Транспорт
	app.bot.Stop()

	// 3. Сервер статуса
	if app.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.httpServer.Stop(ctx); err != nil {
			logger.Warn("⚠️ [Bootstrap] Ошибка остановки HTTP сервера: %v", err)
		}
	}

	// 4. Redis
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			logger.Warn("⚠️ [Bootstrap] Ошибка закрытия Redis: %v", err)
		}
	}
}
