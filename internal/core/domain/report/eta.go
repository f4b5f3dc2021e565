// internal/core/domain/report/eta.go
package report

import (
	"fmt"
	"math"
	"strconv"

	"ethfi-report-bot/internal/core/domain/market"
)

// Константы грубой оценки ETA
const (
	minVolFactor    = 0.3
	maxVolFactor    = 2.0
	defaultDailyPct = 3.0
	minDailyPct     = 1.5
	maxDailyPct     = 8.0
)

// ETAKind - вид оценки
type ETAKind int

const (
	ETAUnknown ETAKind = iota
	ETAReached
	ETAHours
	ETADays
)

// ETAParams - параметры оценки
type ETAParams struct {
	TargetPrice     float64 `yaml:"target_price"`
	ReferenceVolume float64 `yaml:"reference_volume"`
}

// DefaultETAParams цель $1.8 и эталонный объем 70M
func DefaultETAParams() ETAParams {
	return ETAParams{TargetPrice: 1.8, ReferenceVolume: 70_000_000}
}

// ETA - ориентировочное время до целевой цены. Это порядок величины, не прогноз.
type ETA struct {
	Kind   ETAKind `json:"kind"`
	From   int     `json:"from"`
	To     int     `json:"to"`
	Target float64 `json:"target"`
}

// EstimateETA оценивает время до цели по цене, объему и изменению за 24ч
func EstimateETA(spot market.SpotMetrics, p ETAParams) ETA {
	eta := ETA{Kind: ETAUnknown, Target: p.TargetPrice}
	if spot.Price == nil || *spot.Price <= 0 {
		return eta
	}
	price := *spot.Price

	gap := p.TargetPrice - price
	if gap <= 0 {
		eta.Kind = ETAReached
		return eta
	}

	volFactor := 0.0
	if p.ReferenceVolume > 0 {
		volFactor = market.ValueOr(spot.Volume24h, 0) / p.ReferenceVolume
	}
	volFactor = clamp(volFactor, minVolFactor, maxVolFactor)

	dailyPct := math.Abs(market.ValueOr(spot.Change24h, 0))
	if dailyPct == 0 {
		dailyPct = defaultDailyPct
	}
	dailyMove := clamp(dailyPct, minDailyPct, maxDailyPct) / 100.0

	days := (gap / price) / dailyMove / volFactor
	if days < 1 {
		hours := int(days * 24)
		eta.Kind, eta.From, eta.To = ETAHours, hours, hours+6
		return eta
	}
	eta.Kind, eta.From, eta.To = ETADays, int(days), int(days)+4
	return eta
}

// Text форматирует оценку для отчета
func (e ETA) Text() string {
	switch e.Kind {
	case ETAReached:
		return "Đã ≥ " + formatTarget(e.Target)
	case ETAHours:
		return fmt.Sprintf("≈ %d–%d giờ (ước tính)", e.From, e.To)
	case ETADays:
		return fmt.Sprintf("≈ %d–%d ngày (ước tính)", e.From, e.To)
	default:
		return placeholder
	}
}

func formatTarget(target float64) string {
	return "$" + strconv.FormatFloat(target, 'f', -1, 64)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
