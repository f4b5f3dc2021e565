// internal/core/domain/report/compiler.go
package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ethfi-report-bot/internal/core/domain/market"
	"ethfi-report-bot/internal/core/domain/signals"
	"ethfi-report-bot/pkg/logger"
)

// SpotSource - адаптер спотовых метрик
type SpotSource interface {
	FetchSpot(ctx context.Context) (market.SpotMetrics, error)
}

// DerivativesSource - адаптер метрик фьючерса
type DerivativesSource interface {
	FetchDerivatives(ctx context.Context) (market.DerivativesMetrics, error)
}

// TVLSource - адаптер TVL протокола
type TVLSource interface {
	FetchTVL(ctx context.Context) (market.ProtocolTvl, error)
}

// Options - параметры компилятора
type Options struct {
	Asset      string
	ETA        ETAParams
	Thresholds signals.Thresholds
	Location   *time.Location
	Now        func() time.Time
}

// Compiler собирает отчет из трех независимых источников
type Compiler struct {
	spot        SpotSource
	derivatives DerivativesSource
	tvl         TVLSource
	evaluator   *signals.Evaluator
	opts        Options
}

// NewCompiler создает компилятор отчета
func NewCompiler(spot SpotSource, derivatives DerivativesSource, tvl TVLSource, opts Options) *Compiler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Asset == "" {
		opts.Asset = "ETHFI"
	}
	return &Compiler{
		spot:        spot,
		derivatives: derivatives,
		tvl:         tvl,
		evaluator:   signals.NewEvaluator(opts.Thresholds),
		opts:        opts,
	}
}

// Compile никогда не возвращает nil: отказ источника превращается в отсутствующие поля.
// Все три запроса идут параллельно и завершаются до рендера.
func (c *Compiler) Compile(ctx context.Context) *Report {
	var (
		wg    sync.WaitGroup
		spot  market.Result[market.SpotMetrics]
		deriv market.Result[market.DerivativesMetrics]
		tvl   market.Result[market.ProtocolTvl]
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		spot = fetch(ctx, SourceSpot, c.spot.FetchSpot)
	}()
	go func() {
		defer wg.Done()
		deriv = fetch(ctx, SourceDerivatives, c.derivatives.FetchDerivatives)
	}()
	go func() {
		defer wg.Done()
		tvl = fetch(ctx, SourceTVL, c.tvl.FetchTVL)
	}()
	wg.Wait()

	r := &Report{
		Asset:       c.opts.Asset,
		Spot:        spot.Value,
		Derivatives: deriv.Value,
		TVL:         tvl.Value,
		GeneratedAt: c.opts.Now(),
	}
	for _, failed := range []struct {
		source string
		err    error
	}{{spot.Source, spot.Err}, {deriv.Source, deriv.Err}, {tvl.Source, tvl.Err}} {
		if failed.err == nil {
			continue
		}
		if r.Failures == nil {
			r.Failures = make(map[string]string)
		}
		r.Failures[failed.source] = failed.err.Error()
		logger.Warn("⚠️ [Report] Источник %s недоступен, поля будут пустыми: %v", failed.source, failed.err)
	}

	r.Signal = c.evaluator.Evaluate(signals.InputFrom(r.Derivatives))
	r.ETA = EstimateETA(r.Spot, c.opts.ETA)
	r.Text = Render(r, c.opts.Location)

	logger.Debug("📊 [Report] Отчет собран: signal=%s eta=%s failures=%d",
		r.Signal.Kind, r.ETA.Text(), len(r.Failures))
	return r
}

// fetch вызывает адаптер и превращает ошибку или панику в Result-отказ
func fetch[T any](ctx context.Context, source string, fn func(context.Context) (T, error)) (res market.Result[T]) {
	defer func() {
		if rec := recover(); rec != nil {
			res = market.Failure[T](source, fmt.Errorf("panic: %v", rec))
		}
	}()

	value, err := fn(ctx)
	if err != nil {
		return market.Failure[T](source, err)
	}
	return market.Success(source, value)
}
