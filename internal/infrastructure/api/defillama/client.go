// internal/infrastructure/api/defillama/client.go
package defillama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"ethfi-report-bot/internal/core/domain/market"
	"ethfi-report-bot/internal/infrastructure/api"
)

// DefaultBaseURL публичный API DeFiLlama
const DefaultBaseURL = "https://api.llama.fi"

// DefaultTimeout у DeFiLlama ответ тяжелый, таймаут больше обычного
const DefaultTimeout = 20 * time.Second

// Config - настройки TVL-адаптера
type Config struct {
	BaseURL  string
	Protocol string // slug протокола, например ether.fi
	Timeout  time.Duration
}

// Client - адаптер TVL протокола
type Client struct {
	http     *api.Client
	protocol string
}

// protocolResponse - нужная часть ответа /protocol/{slug}.
// tvl бывает числом или массивом истории, поэтому разбирается отдельно.
type protocolResponse struct {
	TVL              json.RawMessage    `json:"tvl"`
	CurrentChainTvls map[string]float64 `json:"currentChainTvls"`
}

// NewClient создает клиента DeFiLlama
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{http: api.NewClient(baseURL, timeout), protocol: cfg.Protocol}
}

// FetchTVL возвращает верхнеуровневый TVL, иначе сумму по сетям, иначе 0.
// Сетевая ошибка, статус вне 2xx и нечитаемый JSON возвращаются как ошибка.
func (c *Client) FetchTVL(ctx context.Context) (market.ProtocolTvl, error) {
	body, err := c.http.Get(ctx, "/protocol/"+url.PathEscape(c.protocol), nil)
	if err != nil {
		return market.ProtocolTvl{}, err
	}

	var resp protocolResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return market.ProtocolTvl{}, fmt.Errorf("failed to parse defillama response: %w", err)
	}

	var total float64
	if len(resp.TVL) > 0 && string(resp.TVL) != "null" {
		if err := json.Unmarshal(resp.TVL, &total); err == nil {
			return market.ProtocolTvl{TVL: market.Float(total)}, nil
		}
	}

	total = 0
	for _, v := range resp.CurrentChainTvls {
		total += v
	}
	return market.ProtocolTvl{TVL: market.Float(total)}, nil
}
