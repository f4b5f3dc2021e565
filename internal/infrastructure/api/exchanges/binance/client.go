// internal/infrastructure/api/exchanges/binance/client.go
package binance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ethfi-report-bot/internal/core/domain/market"
	"ethfi-report-bot/internal/infrastructure/api"
	"ethfi-report-bot/pkg/logger"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"
)

// DefaultFuturesURL публичный API USDⓈ-M фьючерсов
const DefaultFuturesURL = "https://fapi.binance.com"

const (
	oiHistoryPeriod    = "1h"
	oiHistoryLimit     = 25
	oiHistoryMinPoints = 24
)

// Config - настройки адаптера деривативов
type Config struct {
	BaseURL string
	Symbol  string // перпетуальный контракт, например ETHFIUSDT
	Timeout time.Duration
}

// Client - адаптер funding rate и open interest через go-binance
type Client struct {
	futures *futures.Client
	symbol  string
}

// NewClient создает клиента без ключей: все эндпоинты публичные
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = api.DefaultTimeout
	}
	c := futures.NewClient("", "")
	c.BaseURL = DefaultFuturesURL
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	c.HTTPClient = &http.Client{Timeout: timeout}
	return &Client{futures: c, symbol: cfg.Symbol}
}

// FetchDerivatives делает четыре независимых запроса. Ошибка запроса или разбора
// отдельного поля оставляет это поле пустым; ошибка возвращается только когда
// не удался ни один запрос.
func (c *Client) FetchDerivatives(ctx context.Context) (market.DerivativesMetrics, error) {
	var (
		m    market.DerivativesMetrics
		errs []error
	)

	if err := c.fillLastFunding(ctx, &m); err != nil {
		errs = append(errs, fmt.Errorf("fundingRate: %w", err))
	}
	if err := c.fillPredictedFunding(ctx, &m); err != nil {
		errs = append(errs, fmt.Errorf("premiumIndex: %w", err))
	}
	current, err := c.fetchOpenInterest(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("openInterest: %w", err))
	}
	m.OpenInterest = current
	past, err := c.fetchOpenInterest24hAgo(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("openInterestHist: %w", err))
	}

	if current != nil && past != nil && *past > 0 {
		delta := *current - *past
		m.OIDelta24h = market.Float(delta)
		m.OIChangePct24h = market.Float(delta / *past * 100)
	}

	if len(errs) == 4 {
		return market.DerivativesMetrics{}, errors.Join(errs...)
	}
	for _, e := range errs {
		logger.Warn("⚠️ [Binance] %s %v", c.symbol, e)
	}
	return m, nil
}

func (c *Client) fillLastFunding(ctx context.Context, m *market.DerivativesMetrics) error {
	rates, err := c.futures.NewFundingRateService().Symbol(c.symbol).Limit(1).Do(ctx)
	if err != nil {
		return err
	}
	if len(rates) == 0 || rates[0] == nil {
		return nil
	}
	m.LastFundingRate = parseDecimal(rates[0].FundingRate)
	if m.LastFundingRate != nil && rates[0].FundingTime > 0 {
		ts := time.UnixMilli(rates[0].FundingTime).UTC()
		m.LastFundingTime = &ts
	}
	return nil
}

func (c *Client) fillPredictedFunding(ctx context.Context, m *market.DerivativesMetrics) error {
	indexes, err := c.futures.NewPremiumIndexService().Symbol(c.symbol).Do(ctx)
	if err != nil {
		return err
	}
	for _, idx := range indexes {
		if idx != nil && idx.Symbol == c.symbol {
			m.PredictedFunding = parseDecimal(idx.LastFundingRate)
			return nil
		}
	}
	if len(indexes) == 1 && indexes[0] != nil {
		m.PredictedFunding = parseDecimal(indexes[0].LastFundingRate)
	}
	return nil
}

func (c *Client) fetchOpenInterest(ctx context.Context) (*float64, error) {
	oi, err := c.futures.NewGetOpenInterestService().Symbol(c.symbol).Do(ctx)
	if err != nil {
		return nil, err
	}
	if oi == nil {
		return nil, nil
	}
	return parseDecimal(oi.OpenInterest), nil
}

// fetchOpenInterest24hAgo берет самую старую точку часовой истории.
// При коротком ряду (меньше 24 точек) изменение за 24ч не считается.
func (c *Client) fetchOpenInterest24hAgo(ctx context.Context) (*float64, error) {
	hist, err := c.futures.NewOpenInterestStatisticsService().
		Symbol(c.symbol).
		Period(oiHistoryPeriod).
		Limit(oiHistoryLimit).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(hist) < oiHistoryMinPoints || hist[0] == nil {
		return nil, nil
	}
	return parseDecimal(hist[0].SumOpenInterest), nil
}

// parseDecimal разбирает десятичную строку биржи, пустая или битая строка - nil
func parseDecimal(s string) *float64 {
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	f, _ := d.Float64()
	return market.Float(f)
}
