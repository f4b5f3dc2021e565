// application/cmd/bot/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"ethfi-report-bot/application/bootstrap"
	"ethfi-report-bot/internal/infrastructure/config"
	"ethfi-report-bot/pkg/logger"
)

var (
	version   = "1.0.0"
	buildTime = "неизвестно"
)

func main() {
	var (
		env         string
		cfgPath     string
		logLevel    string
		showHelp    bool
		showVersion bool
	)

	flag.StringVar(&env, "env", "dev", "Окружение (dev/prod)")
	flag.StringVar(&cfgPath, "config", "", "Путь к .env файлу (переопределяет env)")
	flag.StringVar(&logLevel, "log-level", "", "Уровень логирования: debug, info, warn, error (переопределяет .env)")
	flag.BoolVar(&showHelp, "help", false, "Показать справку")
	flag.BoolVar(&showVersion, "version", false, "Показать версию")
	flag.Parse()

	if showVersion {
		printVersion()
		return
	}
	if showHelp {
		printHelp()
		return
	}

	// 1. Определяем путь к конфигурации: явный, configs/<env>/.env, затем .env
	configFile := cfgPath
	if configFile == "" {
		configFile = filepath.Join("configs", env, ".env")
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			configFile = ".env"
		}
	}

	// 2. Загружаем конфигурацию
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		logger.Fatal("❌ Не удалось загрузить конфигурацию: %v", err)
	}
	cfg.Environment = env
	cfg.Version = version
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingBotToken) {
			logger.Fatal("❌ Thiếu BOT_TOKEN trong .env — бот не может стартовать без токена")
		}
		logger.Fatal("❌ Некорректная конфигурация: %v", err)
	}

	// 3. Логгер
	if err := logger.InitGlobalWithOptions(logger.Options{
		Path:       cfg.Logging.File,
		Level:      cfg.Logging.Level,
		Debug:      cfg.IsDev(),
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	}); err != nil {
		logger.Fatal("❌ Не удалось инициализировать логгер: %v", err)
	}
	defer logger.Close()

	cfg.PrintSummary()

	// 4. Сборка и запуск
	app, err := bootstrap.NewApplication(cfg, version)
	if err != nil {
		logger.Error("❌ Не удалось собрать приложение: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Start(ctx); err != nil {
		logger.Error("❌ Не удалось запустить приложение: %v", err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("🛑 Получен сигнал завершения...")
	app.Stop()
}

func printVersion() {
	fmt.Println("📊 ETHFI Update bot")
	fmt.Printf("Версия: %s\n", version)
	fmt.Printf("Время сборки: %s\n", buildTime)
	fmt.Printf("Go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func printHelp() {
	fmt.Println("📊 ETHFI Update bot")
	fmt.Println("Telegram-бот: цена, funding, open interest и TVL одного актива по расписанию и по команде /now")
	fmt.Println()
	fmt.Println("Использование: bot [опции]")
	fmt.Println()
	fmt.Println("Опции:")
	fmt.Println("  --env string       Окружение (dev/prod) (по умолчанию: dev)")
	fmt.Println("  --config string    Путь к .env файлу (переопределяет env)")
	fmt.Println("  --log-level string Уровень логирования: debug, info, warn, error")
	fmt.Println("  --version          Показать информацию о версии")
	fmt.Println("  --help             Показать это справочное сообщение")
	fmt.Println()
	fmt.Println("Переменные окружения (через .env файл):")
	fmt.Println("  BOT_TOKEN           Токен Telegram бота (обязателен)")
	fmt.Println("  DATA_FILE           Файл подписчиков (subscribers.json)")
	fmt.Println("  BROADCAST_INTERVAL  Интервал рассылки (10m)")
	fmt.Println("  TARGET_PRICE        Цель для ETA (1.8)")
	fmt.Println("  TUNING_FILE         YAML с порогами сигнала и параметрами ETA")
	fmt.Println("  REDIS_ENABLED       Общий кэш отчета в Redis (false)")
	fmt.Println("  HTTP_ENABLED        Сервер статуса /health и /status (false)")
	fmt.Println("  LOG_LEVEL, LOG_FILE Логирование")
	fmt.Println()
	fmt.Println("Примеры:")
	fmt.Println("  go run application/cmd/bot/main.go --env=prod")
	fmt.Println("  go run application/cmd/bot/main.go --config=.env --log-level=debug")
}
