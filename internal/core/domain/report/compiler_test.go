package report

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"ethfi-report-bot/internal/core/domain/market"
	"ethfi-report-bot/internal/core/domain/signals"
)

type fakeSpot struct {
	metrics market.SpotMetrics
	err     error
	panics  bool
}

func (f fakeSpot) FetchSpot(context.Context) (market.SpotMetrics, error) {
	if f.panics {
		panic("boom")
	}
	return f.metrics, f.err
}

type fakeDerivatives struct {
	metrics market.DerivativesMetrics
	err     error
}

func (f fakeDerivatives) FetchDerivatives(context.Context) (market.DerivativesMetrics, error) {
	return f.metrics, f.err
}

type fakeTVL struct {
	tvl market.ProtocolTvl
	err error
}

func (f fakeTVL) FetchTVL(context.Context) (market.ProtocolTvl, error) {
	return f.tvl, f.err
}

var fixedNow = time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

func testOptions() Options {
	return Options{
		Asset:      "ETHFI",
		ETA:        DefaultETAParams(),
		Thresholds: signals.DefaultThresholds(),
		Location:   time.UTC,
		Now:        func() time.Time { return fixedNow },
	}
}

func healthySources() (fakeSpot, fakeDerivatives, fakeTVL) {
	return fakeSpot{metrics: market.SpotMetrics{
			Price:     market.Float(1.5),
			MarketCap: market.Float(650_000_000),
			Volume24h: market.Float(70_000_000),
			Change1h:  market.Float(0.5),
			Change24h: market.Float(3.0),
		}},
		fakeDerivatives{metrics: market.DerivativesMetrics{
			PredictedFunding: market.Float(-0.001),
			OpenInterest:     market.Float(1_000_000),
			OIDelta24h:       market.Float(50_000),
			OIChangePct24h:   market.Float(5),
		}},
		fakeTVL{tvl: market.ProtocolTvl{TVL: market.Float(6_200_000_000)}}
}

func TestCompileHealthy(t *testing.T) {
	spot, deriv, tvl := healthySources()
	r := NewCompiler(spot, deriv, tvl, testOptions()).Compile(context.Background())

	if r.Err() != nil {
		t.Fatalf("unexpected error: %v", r.Err())
	}
	if len(r.Failures) != 0 {
		t.Fatalf("failures = %v", r.Failures)
	}
	if r.Signal.Kind != signals.Bullish {
		t.Fatalf("signal = %v, want Bullish", r.Signal.Kind)
	}
	if r.ETA.Kind != ETADays || r.ETA.From != 6 {
		t.Fatalf("eta = %+v", r.ETA)
	}
	if !r.GeneratedAt.Equal(fixedNow) {
		t.Fatalf("generated at = %v", r.GeneratedAt)
	}

	for _, want := range []string{
		"ETHFI Cập nhập giá và Phân tích</b> — 14/10 09:30",
		"Giá: <b>$1.5000</b>",
		"24h vol: <b>$70.00M</b>",
		"TVL: $6.20B",
		"Funding (pred): <b>-0.1000%</b>",
		"OI: <b>1,000,000.00</b>",
		"OI 24h: +50,000.00 (+5.00%)",
		"Bullish ⚡",
		"6–10 ngày",
	} {
		if !strings.Contains(r.Text, want) {
			t.Errorf("report text missing %q:\n%s", want, r.Text)
		}
	}
}

func TestCompileDegradesFailedSource(t *testing.T) {
	spot, deriv, _ := healthySources()
	tvl := fakeTVL{err: errors.New("status 503")}

	r := NewCompiler(spot, deriv, tvl, testOptions()).Compile(context.Background())

	if r.Err() != nil {
		t.Fatalf("partial failure must not be a total failure: %v", r.Err())
	}
	if _, ok := r.Failures[SourceTVL]; !ok {
		t.Fatalf("tvl failure not recorded: %v", r.Failures)
	}
	if r.TVL.TVL != nil {
		t.Fatalf("tvl must be absent")
	}
	if !strings.Contains(r.Text, "TVL: —") {
		t.Fatalf("tvl placeholder missing:\n%s", r.Text)
	}
}

func TestCompileRecoversPanic(t *testing.T) {
	_, deriv, tvl := healthySources()
	r := NewCompiler(fakeSpot{panics: true}, deriv, tvl, testOptions()).Compile(context.Background())

	reason, ok := r.Failures[SourceSpot]
	if !ok || !strings.Contains(reason, "panic") {
		t.Fatalf("panic not converted to failure: %v", r.Failures)
	}
	if r.ETA.Kind != ETAUnknown {
		t.Fatalf("eta without price must be unknown, got %+v", r.ETA)
	}
}

func TestCompileAllSourcesFailed(t *testing.T) {
	fail := errors.New("timeout")
	r := NewCompiler(fakeSpot{err: fail}, fakeDerivatives{err: fail}, fakeTVL{err: fail}, testOptions()).
		Compile(context.Background())

	if !errors.Is(r.Err(), ErrAllSourcesFailed) {
		t.Fatalf("err = %v, want ErrAllSourcesFailed", r.Err())
	}
	if r.Text == "" {
		t.Fatalf("a report must still be rendered")
	}
	if r.Signal.Kind != signals.Neutral || len(r.Signal.Reasons) != 0 {
		t.Fatalf("signal = %+v, want Neutral without reasons", r.Signal)
	}
	if !strings.Contains(r.Text, "Đang tích lũy, chưa lệch phe.") {
		t.Fatalf("fallback reason missing:\n%s", r.Text)
	}
}

func TestCompileDegenerateResponses(t *testing.T) {
	r := NewCompiler(fakeSpot{}, fakeDerivatives{}, fakeTVL{}, testOptions()).Compile(context.Background())

	if r.Err() != nil || len(r.Failures) != 0 {
		t.Fatalf("empty metrics are not failures: %v", r.Failures)
	}
	for _, want := range []string{"Giá: <b>—</b>", "MCap: —", "OI: <b>—</b>", "ETA về $1.8: <b>—</b>"} {
		if !strings.Contains(r.Text, want) {
			t.Errorf("missing %q:\n%s", want, r.Text)
		}
	}
}

type slowSpot struct {
	started chan struct{}
	release chan struct{}
}

func (s slowSpot) FetchSpot(context.Context) (market.SpotMetrics, error) {
	close(s.started)
	<-s.release
	return market.SpotMetrics{Price: market.Float(2)}, nil
}

type waitingTVL struct {
	spotStarted chan struct{}
	release     chan struct{}
	once        *sync.Once
}

func (w waitingTVL) FetchTVL(context.Context) (market.ProtocolTvl, error) {
	// TVL ждет, пока спот уже висит: запросы идут параллельно
	<-w.spotStarted
	w.once.Do(func() { close(w.release) })
	return market.ProtocolTvl{TVL: market.Float(1)}, nil
}

func TestCompileFetchesConcurrently(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	spot := slowSpot{started: started, release: release}
	tvl := waitingTVL{spotStarted: started, release: release, once: &sync.Once{}}

	done := make(chan *Report, 1)
	go func() {
		done <- NewCompiler(spot, fakeDerivatives{}, tvl, testOptions()).Compile(context.Background())
	}()

	select {
	case r := <-done:
		if r.ETA.Kind != ETAReached {
			t.Fatalf("eta = %+v, want reached", r.ETA)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("compile did not finish; sources were not fetched concurrently")
	}
}
