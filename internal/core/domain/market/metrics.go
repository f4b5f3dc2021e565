// internal/core/domain/market/metrics.go
package market

import "time"

// SpotMetrics - рыночные метрики спота, любое поле может отсутствовать (nil)
type SpotMetrics struct {
	Price     *float64 `json:"price,omitempty"`      // USD
	MarketCap *float64 `json:"market_cap,omitempty"` // USD
	Volume24h *float64 `json:"volume_24h,omitempty"` // USD
	Change1h  *float64 `json:"change_1h,omitempty"`  // %
	Change24h *float64 `json:"change_24h,omitempty"` // %
	Change7d  *float64 `json:"change_7d,omitempty"`  // %
}

// DerivativesMetrics - метрики перпетуального фьючерса
type DerivativesMetrics struct {
	LastFundingRate  *float64   `json:"last_funding_rate,omitempty"` // доля, не проценты
	LastFundingTime  *time.Time `json:"last_funding_time,omitempty"`
	PredictedFunding *float64   `json:"predicted_funding,omitempty"` // доля, не проценты
	OpenInterest     *float64   `json:"open_interest,omitempty"`     // в контрактах
	OIDelta24h       *float64   `json:"oi_delta_24h,omitempty"`
	OIChangePct24h   *float64   `json:"oi_change_pct_24h,omitempty"`
}

// ProtocolTvl - total value locked протокола
type ProtocolTvl struct {
	TVL *float64 `json:"tvl,omitempty"` // USD
}

// Float возвращает указатель на копию значения
func Float(v float64) *float64 {
	return &v
}

// ValueOr разыменовывает указатель или возвращает значение по умолчанию
func ValueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
