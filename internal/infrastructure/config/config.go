// internal/infrastructure/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"ethfi-report-bot/internal/core/domain/report"
	"ethfi-report-bot/internal/core/domain/signals"
	"ethfi-report-bot/pkg/logger"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingBotToken - без токена бот не запускается
var ErrMissingBotToken = errors.New("BOT_TOKEN is required")

// ============================================
// ИСТОЧНИКИ ДАННЫХ
// ============================================

// SourcesConfig - адреса и идентификаторы рыночных API
type SourcesConfig struct {
	AssetSymbol     string
	CoinGeckoID     string
	CoinGeckoURL    string
	CoinGeckoAPIKey string
	BinanceSymbol   string
	BinanceURL      string
	LlamaProtocol   string
	LlamaURL        string
	RequestTimeout  time.Duration
	TVLTimeout      time.Duration
}

// RedisConfig - необязательный общий кэш отчета
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// HTTPConfig - служебный сервер статуса
type HTTPConfig struct {
	Enabled bool
	Port    int
}

// LoggingConfig - параметры логгера
type LoggingConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// TuningConfig - пороги сигнала и параметры ETA, переопределяются YAML-файлом
type TuningConfig struct {
	Signals signals.Thresholds `yaml:"signals"`
	ETA     report.ETAParams   `yaml:"eta"`
}

// ============================================
// ОСНОВНАЯ КОНФИГУРАЦИЯ
// ============================================

// Config - основная структура конфигурации
type Config struct {
	Environment string
	Version     string

	BotToken      string
	AdminUsername string
	DataFile      string

	BroadcastInterval time.Duration
	BroadcastOnStart  bool
	SendDelay         time.Duration
	ReportCacheTTL    time.Duration
	TuningFile        string

	Sources SourcesConfig
	Tuning  TuningConfig
	Redis   RedisConfig
	HTTP    HTTPConfig
	Logging LoggingConfig
}

// LoadConfig читает .env (отсутствие файла не ошибка), затем окружение,
// затем YAML-файл тонкой настройки, если он задан
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			logger.Warn("⚠️ [Config] Файл %s не найден, используются переменные окружения", path)
		}
	}

	cfg := &Config{}

	cfg.Environment = getEnv("ENVIRONMENT", "production")
	cfg.Version = getEnv("VERSION", "1.0.0")

	cfg.BotToken = strings.TrimSpace(os.Getenv("BOT_TOKEN"))
	cfg.AdminUsername = strings.TrimPrefix(getEnv("ADMIN_USERNAME", ""), "@")
	cfg.DataFile = getEnv("DATA_FILE", "subscribers.json")

	// ======================
	// РАССЫЛКА
	// ======================
	cfg.BroadcastInterval = getEnvDuration("BROADCAST_INTERVAL", 10*time.Minute)
	cfg.BroadcastOnStart = getEnvBool("BROADCAST_ON_START", true)
	cfg.SendDelay = getEnvDuration("SEND_DELAY", 500*time.Millisecond)
	cfg.ReportCacheTTL = getEnvDuration("REPORT_CACHE_TTL", 60*time.Second)

	// ======================
	// ИСТОЧНИКИ
	// ======================
	cfg.Sources.AssetSymbol = getEnv("ASSET_SYMBOL", "ETHFI")
	cfg.Sources.CoinGeckoID = getEnv("COINGECKO_ID", "ether-fi")
	cfg.Sources.CoinGeckoURL = getEnv("COINGECKO_URL", "https://api.coingecko.com")
	cfg.Sources.CoinGeckoAPIKey = getEnv("COINGECKO_API_KEY", "")
	cfg.Sources.BinanceSymbol = getEnv("BINANCE_SYMBOL", "ETHFIUSDT")
	cfg.Sources.BinanceURL = getEnv("BINANCE_FUTURES_URL", "https://fapi.binance.com")
	cfg.Sources.LlamaProtocol = getEnv("LLAMA_PROTOCOL", "ether.fi")
	cfg.Sources.LlamaURL = getEnv("LLAMA_URL", "https://api.llama.fi")
	cfg.Sources.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", 15*time.Second)
	cfg.Sources.TVLTimeout = getEnvDuration("TVL_TIMEOUT", 20*time.Second)

	// ======================
	// СИГНАЛ И ETA
	// ======================
	defaults := signals.DefaultThresholds()
	cfg.Tuning.Signals = signals.Thresholds{
		FundingNeutral:   getEnvFloat("SIGNAL_FUNDING_NEUTRAL", defaults.FundingNeutral),
		BullishMinOIPct:  getEnvFloat("SIGNAL_BULLISH_MIN_OI_PCT", defaults.BullishMinOIPct),
		CautionMinOIPct:  getEnvFloat("SIGNAL_CAUTION_OI_PCT", defaults.CautionMinOIPct),
		PullbackMaxOIPct: getEnvFloat("SIGNAL_PULLBACK_OI_PCT", defaults.PullbackMaxOIPct),
	}
	eta := report.DefaultETAParams()
	cfg.Tuning.ETA = report.ETAParams{
		TargetPrice:     getEnvFloat("TARGET_PRICE", eta.TargetPrice),
		ReferenceVolume: getEnvFloat("REFERENCE_VOLUME", eta.ReferenceVolume),
	}
	cfg.TuningFile = getEnv("TUNING_FILE", "")
	if cfg.TuningFile != "" {
		if err := cfg.applyTuningFile(cfg.TuningFile); err != nil {
			return nil, err
		}
	}

	// ======================
	// REDIS / HTTP / ЛОГИ
	// ======================
	cfg.Redis.Enabled = getEnvBool("REDIS_ENABLED", false)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.HTTP.Enabled = getEnvBool("HTTP_ENABLED", false)
	cfg.HTTP.Port = getEnvInt("HTTP_PORT", 8080)

	cfg.Logging.Level = getEnv("LOG_LEVEL", "info")
	cfg.Logging.File = getEnv("LOG_FILE", "")
	cfg.Logging.MaxSizeMB = getEnvInt("LOG_MAX_SIZE", 10)
	cfg.Logging.MaxBackups = getEnvInt("LOG_MAX_BACKUPS", 5)

	return cfg, nil
}

// applyTuningFile накладывает значения из YAML поверх окружения.
// Отсутствующие в файле ключи не меняются.
func (c *Config) applyTuningFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read tuning file %s: %w", path, err)
	}
	tuning := c.Tuning
	if err := yaml.Unmarshal(data, &tuning); err != nil {
		return fmt.Errorf("parse tuning file %s: %w", path, err)
	}
	c.Tuning = tuning
	logger.Info("🎛️ [Config] Применены настройки из %s", path)
	return nil
}

// Validate проверяет обязательные и числовые параметры
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return ErrMissingBotToken
	}

	var validationErrors []string
	if c.BroadcastInterval <= 0 {
		validationErrors = append(validationErrors, "BROADCAST_INTERVAL must be positive")
	}
	if c.Sources.RequestTimeout <= 0 {
		validationErrors = append(validationErrors, "REQUEST_TIMEOUT must be positive")
	}
	if c.Sources.TVLTimeout <= 0 {
		validationErrors = append(validationErrors, "TVL_TIMEOUT must be positive")
	}
	if c.SendDelay < 0 {
		validationErrors = append(validationErrors, "SEND_DELAY must not be negative")
	}
	if c.Tuning.ETA.TargetPrice <= 0 {
		validationErrors = append(validationErrors, "TARGET_PRICE must be positive")
	}
	if c.Tuning.ETA.ReferenceVolume <= 0 {
		validationErrors = append(validationErrors, "REFERENCE_VOLUME must be positive")
	}
	if c.DataFile == "" {
		validationErrors = append(validationErrors, "DATA_FILE is required")
	}
	if c.HTTP.Enabled && (c.HTTP.Port <= 0 || c.HTTP.Port > 65535) {
		validationErrors = append(validationErrors, "HTTP_PORT must be in range 1-65535")
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("%s", strings.Join(validationErrors, "; "))
	}
	return nil
}

// PrintSummary выводит основные параметры без секретов
func (c *Config) PrintSummary() {
	logger.Info("📋 Конфигурация приложения:")
	logger.Info("   • Окружение: %s", c.Environment)
	logger.Info("   • Актив: %s (CoinGecko %s, Binance %s, DeFiLlama %s)",
		c.Sources.AssetSymbol, c.Sources.CoinGeckoID, c.Sources.BinanceSymbol, c.Sources.LlamaProtocol)
	logger.Info("   • Интервал рассылки: %v (сразу после старта: %v)", c.BroadcastInterval, c.BroadcastOnStart)
	logger.Info("   • Пауза между отправками: %v", c.SendDelay)
	logger.Info("   • Файл подписчиков: %s", c.DataFile)
	logger.Info("   • Цель ETA: $%.4g, эталонный объем: %.0f", c.Tuning.ETA.TargetPrice, c.Tuning.ETA.ReferenceVolume)
	logger.Info("   • Пороги сигнала: funding=%g bullishOI=%g cautionOI=%g pullbackOI=%g",
		c.Tuning.Signals.FundingNeutral, c.Tuning.Signals.BullishMinOIPct,
		c.Tuning.Signals.CautionMinOIPct, c.Tuning.Signals.PullbackMaxOIPct)
	logger.Info("   • Redis: %v (%s, DB %d)", c.Redis.Enabled, c.Redis.Addr, c.Redis.DB)
	logger.Info("   • HTTP сервер: %v (порт: %d)", c.HTTP.Enabled, c.HTTP.Port)
	logger.Info("   • Telegram Token: %s", maskToken(c.BotToken))
}

// IsDev true для окружения разработки
func (c *Config) IsDev() bool {
	env := strings.ToLower(c.Environment)
	return env == "dev" || env == "development"
}

func maskToken(token string) string {
	if len(token) <= 10 {
		return strings.Repeat("*", len(token))
	}
	return token[:5] + "..." + token[len(token)-5:]
}

// ============================================
// ВСПОМОГАТЕЛЬНЫЕ ФУНКЦИИ
// ============================================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
