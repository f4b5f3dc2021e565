// internal/infrastructure/api/coingecko/client.go
package coingecko

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"ethfi-report-bot/internal/core/domain/market"
	"ethfi-report-bot/internal/infrastructure/api"
	"ethfi-report-bot/pkg/logger"
)

// DefaultBaseURL публичный API CoinGecko
const DefaultBaseURL = "https://api.coingecko.com"

// Config - настройки спотового адаптера
type Config struct {
	BaseURL string
	CoinID  string // идентификатор монеты, например ether-fi
	APIKey  string // demo-ключ, необязателен
	Timeout time.Duration
}

// Client - адаптер спотовых метрик CoinGecko
type Client struct {
	http   *api.Client
	coinID string
}

// marketResponse - элемент ответа /coins/markets, любые поля могут быть null
type marketResponse struct {
	ID           string   `json:"id"`
	CurrentPrice *float64 `json:"current_price"`
	MarketCap    *float64 `json:"market_cap"`
	TotalVolume  *float64 `json:"total_volume"`
	Change1h     *float64 `json:"price_change_percentage_1h_in_currency"`
	Change24h    *float64 `json:"price_change_percentage_24h_in_currency"`
	Change7d     *float64 `json:"price_change_percentage_7d_in_currency"`
}

// NewClient создает клиента CoinGecko
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := api.NewClient(baseURL, cfg.Timeout)
	if cfg.APIKey != "" {
		c.SetHeader("x-cg-demo-api-key", cfg.APIKey)
	}
	return &Client{http: c, coinID: cfg.CoinID}
}

// FetchSpot запрашивает цену, капитализацию, объем и изменения за 1ч/24ч/7д.
// Пустой или нечитаемый ответ дает пустые метрики без ошибки;
// ошибка возвращается только при сетевом сбое или статусе вне 2xx.
func (c *Client) FetchSpot(ctx context.Context) (market.SpotMetrics, error) {
	query := url.Values{}
	query.Set("vs_currency", "usd")
	query.Set("ids", c.coinID)
	query.Set("price_change_percentage", "1h,24h,7d")

	body, err := c.http.Get(ctx, "/api/v3/coins/markets", query)
	if err != nil {
		return market.SpotMetrics{}, err
	}

	var items []marketResponse
	if err := json.Unmarshal(body, &items); err != nil {
		logger.Warn("⚠️ [CoinGecko] Неожиданный формат ответа для %s: %v", c.coinID, err)
		return market.SpotMetrics{}, nil
	}
	if len(items) == 0 {
		logger.Warn("⚠️ [CoinGecko] Пустой ответ для %s", c.coinID)
		return market.SpotMetrics{}, nil
	}

	x := items[0]
	return market.SpotMetrics{
		Price:     x.CurrentPrice,
		MarketCap: x.MarketCap,
		Volume24h: x.TotalVolume,
		Change1h:  x.Change1h,
		Change24h: x.Change24h,
		Change7d:  x.Change7d,
	}, nil
}
