// internal/core/domain/signals/types.go
package signals

import "ethfi-report-bot/internal/core/domain/market"

// Kind - классификация совета
type Kind int

const (
	Neutral Kind = iota
	Bullish
	Caution
	PullbackRisk
)

// String возвращает машинное имя сигнала
func (k Kind) String() string {
	switch k {
	case Bullish:
		return "Bullish"
	case Caution:
		return "Caution"
	case PullbackRisk:
		return "PullbackRisk"
	default:
		return "Neutral"
	}
}

// Label возвращает текст сигнала для отчета
func (k Kind) Label() string {
	switch k {
	case Bullish:
		return "Bullish ⚡ (nguy cơ Short squeeze)"
	case Caution:
		return "Caution ⚠ (Long crowded)"
	case PullbackRisk:
		return "Pullback risk ⚠"
	default:
		return "Neutral"
	}
}

// Signal - итог оценки: класс и упорядоченный список причин
type Signal struct {
	Kind    Kind     `json:"kind"`
	Reasons []string `json:"reasons"`
}

// Input - единственные данные, от которых зависит сигнал
type Input struct {
	PredictedFunding *float64
	OIChangePct24h   *float64
}

// InputFrom извлекает вход оценки из метрик деривативов
func InputFrom(d market.DerivativesMetrics) Input {
	return Input{
		PredictedFunding: d.PredictedFunding,
		OIChangePct24h:   d.OIChangePct24h,
	}
}

// Thresholds - пороги правил, переопределяются конфигурацией
type Thresholds struct {
	// FundingNeutral граница funding: ≤ дает причину, < для Bullish, > для Caution/Pullback
	FundingNeutral float64 `yaml:"funding_neutral"`
	// BullishMinOIPct минимальное изменение OI за 24ч (%) для Bullish
	BullishMinOIPct float64 `yaml:"bullish_min_oi_pct"`
	// CautionMinOIPct изменение OI за 24ч (%), выше которого включается Caution
	CautionMinOIPct float64 `yaml:"caution_min_oi_pct"`
	// PullbackMaxOIPct изменение OI за 24ч (%), ниже которого включается PullbackRisk
	PullbackMaxOIPct float64 `yaml:"pullback_max_oi_pct"`
}

// DefaultThresholds пороги по умолчанию
func DefaultThresholds() Thresholds {
	return Thresholds{
		FundingNeutral:   0,
		BullishMinOIPct:  0,
		CautionMinOIPct:  3,
		PullbackMaxOIPct: 0,
	}
}
