// internal/core/domain/report/report.go
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ethfi-report-bot/internal/core/domain/market"
	"ethfi-report-bot/internal/core/domain/signals"
)

// ErrAllSourcesFailed - ни один источник не ответил, отчет содержит только заглушки
var ErrAllSourcesFailed = errors.New("all market data sources failed")

// Имена источников
const (
	SourceSpot        = "coingecko"
	SourceDerivatives = "binance_futures"
	SourceTVL         = "defillama"
)

// Report - снимок одного цикла fetch-render-send. После Render не изменяется.
type Report struct {
	Asset       string                    `json:"asset"`
	Spot        market.SpotMetrics        `json:"spot"`
	Derivatives market.DerivativesMetrics `json:"derivatives"`
	TVL         market.ProtocolTvl        `json:"tvl"`
	Signal      signals.Signal            `json:"signal"`
	ETA         ETA                       `json:"eta"`
	GeneratedAt time.Time                 `json:"generated_at"`
	Failures    map[string]string         `json:"failures,omitempty"` // источник -> причина
	Text        string                    `json:"text"`
}

// Err возвращает ErrAllSourcesFailed, если все три источника отказали
func (r *Report) Err() error {
	if len(r.Failures) < 3 {
		return nil
	}
	parts := make([]string, 0, len(r.Failures))
	for _, name := range []string{SourceSpot, SourceDerivatives, SourceTVL} {
		if reason, ok := r.Failures[name]; ok {
			parts = append(parts, name+": "+reason)
		}
	}
	return fmt.Errorf("%w (%s)", ErrAllSourcesFailed, strings.Join(parts, "; "))
}

// Render собирает HTML-сообщение фиксированной раскладки
func Render(r *Report, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	s, d := r.Spot, r.Derivatives

	reasons := "Đang tích lũy, chưa lệch phe."
	if len(r.Signal.Reasons) > 0 {
		reasons = strings.Join(r.Signal.Reasons, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>%s Cập nhập giá và Phân tích</b> — %s\n", r.Asset, r.GeneratedAt.In(loc).Format("02/01 15:04"))
	fmt.Fprintf(&b, "• Giá: <b>%s</b>  |  24h vol: <b>%s</b>\n", FormatPrice(s.Price), FormatUSD(s.Volume24h))
	fmt.Fprintf(&b, "• MCap: %s  |  TVL: %s\n", FormatUSD(s.MarketCap), FormatUSD(r.TVL.TVL))
	fmt.Fprintf(&b, "• 1h Δ%%: %s  | 24h Δ%%: %s  | 7d Δ%%: %s\n", FormatPercent(s.Change1h), FormatPercent(s.Change24h), FormatPercent(s.Change7d))
	fmt.Fprintf(&b, "• Funding (pred): <b>%s</b>  |  last: %s\n", FormatFunding(d.PredictedFunding), FormatFunding(d.LastFundingRate))
	fmt.Fprintf(&b, "• OI: <b>%s</b>  |  OI 24h: %s (%s)\n", FormatNumber(d.OpenInterest), FormatSignedNumber(d.OIDelta24h), FormatPercent(d.OIChangePct24h))
	b.WriteString("\n")
	fmt.Fprintf(&b, "🔎 Nhận định: <b>%s</b>\n", r.Signal.Kind.Label())
	fmt.Fprintf(&b, "• %s\n", reasons)
	fmt.Fprintf(&b, "🎯 ETA về %s: <b>%s</b>\n", formatTarget(r.ETA.Target), r.ETA.Text())
	b.WriteString("\n")
	b.WriteString("ℹ️ Nguồn: CoinGecko, Binance Futures, DeFiLlama\n")
	b.WriteString("⚠️ Chỉ mang tính tham khảo, không phải lời khuyên đầu tư.")
	return b.String()
}
