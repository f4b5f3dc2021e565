// application/bootstrap/app.go
package bootstrap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ethfi-report-bot/application/scheduler"
	"ethfi-report-bot/application/services/notification"
	"ethfi-report-bot/internal/api"
	"ethfi-report-bot/internal/core/domain/report"
	"ethfi-report-bot/internal/core/domain/subscription"
	"ethfi-report-bot/internal/delivery/telegram"
	"ethfi-report-bot/internal/infrastructure/api/coingecko"
	"ethfi-report-bot/internal/infrastructure/api/defillama"
	"ethfi-report-bot/internal/infrastructure/api/exchanges/binance"
	"ethfi-report-bot/internal/infrastructure/cache/memory"
	"ethfi-report-bot/internal/infrastructure/cache/redis"
	"ethfi-report-bot/internal/infrastructure/config"
	"ethfi-report-bot/pkg/logger"
)

// BroadcastJobName - имя периодической задачи рассылки
const BroadcastJobName = "broadcast"

// Application - собранное приложение: источники, реестр, рассылка, транспорт
type Application struct {
	config  *config.Config
	version string

	registry      *subscription.Registry
	reports       *report.CachedCompiler
	notifications *notification.Service
	bot           *telegram.Bot
	scheduler     *scheduler.Scheduler
	httpServer    *api.Server
	redis         *redis.Cache

	mu      sync.Mutex
	running bool
}

// NewApplication связывает все компоненты, ничего не запуская
func NewApplication(cfg *config.Config, version string) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	app := &Application{config: cfg, version: version}

	// 1. Источники данных и компилятор отчета
	compiler := report.NewCompiler(
		coingecko.NewClient(coingecko.Config{
			BaseURL: cfg.Sources.CoinGeckoURL,
			CoinID:  cfg.Sources.CoinGeckoID,
			APIKey:  cfg.Sources.CoinGeckoAPIKey,
			Timeout: cfg.Sources.RequestTimeout,
		}),
		binance.NewClient(binance.Config{
			BaseURL: cfg.Sources.BinanceURL,
			Symbol:  cfg.Sources.BinanceSymbol,
			Timeout: cfg.Sources.RequestTimeout,
		}),
		defillama.NewClient(defillama.Config{
			BaseURL:  cfg.Sources.LlamaURL,
			Protocol: cfg.Sources.LlamaProtocol,
			Timeout:  cfg.Sources.TVLTimeout,
		}),
		report.Options{
			Asset:      cfg.Sources.AssetSymbol,
			ETA:        cfg.Tuning.ETA,
			Thresholds: cfg.Tuning.Signals,
		},
	)
	app.reports = report.NewCachedCompiler(compiler, app.buildCache(), cfg.ReportCacheTTL)

	// 2. Реестр подписчиков
	store := subscription.NewFileStore(cfg.DataFile)
	app.registry = subscription.NewRegistry(store)
	logger.Info("📂 [Bootstrap] Реестр подписчиков: %s (%d)", store.Path(), app.registry.Count())

	// 3. Транспорт и точки входа
	bot, err := telegram.NewBot(telegram.Config{Token: cfg.BotToken})
	if err != nil {
		return nil, err
	}
	app.bot = bot
	app.notifications = notification.NewService(app.registry, app.reports, bot, notification.Config{
		Asset:     cfg.Sources.AssetSymbol,
		SendDelay: cfg.SendDelay,
	})
	bot.SetRouter(telegram.NewRouter(app.notifications, cfg.Sources.AssetSymbol, cfg.AdminUsername))

	// 4. Таймер рассылки
	sched, err := scheduler.New()
	if err != nil {
		return nil, err
	}
	if err := sched.Register(&scheduler.Job{
		Name:        BroadcastJobName,
		Description: "Рассылка отчета всем подписчикам",
		Schedule:    scheduler.Every(cfg.BroadcastInterval),
		RunOnStart:  cfg.BroadcastOnStart,
		Handler: func(ctx context.Context) error {
			_, err := app.notifications.Broadcast(ctx)
			return err
		},
	}); err != nil {
		return nil, err
	}
	app.scheduler = sched

	// 5. Сервер статуса
	if cfg.HTTP.Enabled {
		app.httpServer = api.NewServer(cfg.HTTP.Port, app, version)
	}

	return app, nil
}

// buildCache выбирает Redis, если он включен и отвечает, иначе кэш в памяти
func (app *Application) buildCache() report.Cache {
	if !app.config.Redis.Enabled {
		return memory.NewReportCache()
	}

	cache := redis.NewCache(app.config.Redis.Addr, app.config.Redis.Password, app.config.Redis.DB)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cache.Ping(ctx); err != nil {
		logger.Warn("⚠️ [Bootstrap] Redis %s недоступен, используется кэш в памяти: %v", app.config.Redis.Addr, err)
		cache.Close()
		return memory.NewReportCache()
	}

	logger.Info("✅ [Bootstrap] Redis подключен: %s (DB %d)", app.config.Redis.Addr, app.config.Redis.DB)
	app.redis = cache
	return redis.NewReportCache(cache)
}

// SubscriberCount - для сервера статуса
func (app *Application) SubscriberCount() int {
	return app.registry.Count()
}

// Jobs - для сервера статуса
func (app *Application) Jobs() []scheduler.JobStatus {
	return app.scheduler.Jobs()
}

// Healthy проверяет внешние зависимости, без которых бот работает неполноценно
func (app *Application) Healthy(ctx context.Context) error {
	if app.redis != nil {
		if err := app.redis.Ping(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}
