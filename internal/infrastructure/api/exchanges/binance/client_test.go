package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// fakeFutures отвечает на четыре публичных эндпоинта; пустое тело означает 500
type fakeFutures struct {
	funding  string
	premium  string
	oi       string
	oiHist   string
	requests []string
}

func (f *fakeFutures) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests = append(f.requests, r.URL.Path+"?"+r.URL.RawQuery)
		var body string
		switch r.URL.Path {
		case "/fapi/v1/fundingRate":
			body = f.funding
		case "/fapi/v1/premiumIndex":
			body = f.premium
		case "/fapi/v1/openInterest":
			body = f.oi
		case "/futures/data/openInterestHist":
			body = f.oiHist
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if body == "" {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"code":-1000,"msg":"internal"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func history(points int, oldest string) string {
	items := make([]string, 0, points)
	for i := 0; i < points; i++ {
		v := "1100000"
		if i == 0 {
			v = oldest
		}
		items = append(items, fmt.Sprintf(`{"symbol":"ETHFIUSDT","sumOpenInterest":"%s","sumOpenInterestValue":"1","timestamp":%d}`, v, 1700000000000+int64(i)*3600000))
	}
	return "[" + strings.Join(items, ",") + "]"
}

func healthy() *fakeFutures {
	return &fakeFutures{
		funding: `[{"symbol":"ETHFIUSDT","fundingRate":"0.00010000","fundingTime":1760428800000,"markPrice":"1.5"}]`,
		premium: `{"symbol":"ETHFIUSDT","markPrice":"1.5","indexPrice":"1.5","estimatedSettlePrice":"1.5","lastFundingRate":"-0.00025000","interestRate":"0.0001","nextFundingTime":1760457600000,"time":1760430000000}`,
		oi:      `{"openInterest":"1100000.000","symbol":"ETHFIUSDT","time":1760430000000}`,
		oiHist:  history(25, "1000000"),
	}
}

func approx(t *testing.T, name string, got *float64, want float64) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s is absent, want %v", name, want)
	}
	if math.Abs(*got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, *got, want)
	}
}

func TestFetchDerivatives(t *testing.T) {
	f := healthy()
	srv := f.server(t)

	m, err := NewClient(Config{BaseURL: srv.URL, Symbol: "ETHFIUSDT"}).FetchDerivatives(context.Background())
	if err != nil {
		t.Fatalf("FetchDerivatives: %v", err)
	}

	approx(t, "last funding", m.LastFundingRate, 0.0001)
	approx(t, "predicted funding", m.PredictedFunding, -0.00025)
	approx(t, "open interest", m.OpenInterest, 1_100_000)
	approx(t, "oi delta", m.OIDelta24h, 100_000)
	approx(t, "oi pct", m.OIChangePct24h, 10)
	if m.LastFundingTime == nil || m.LastFundingTime.UnixMilli() != 1760428800000 {
		t.Fatalf("funding time = %v", m.LastFundingTime)
	}

	var sawHist bool
	for _, r := range f.requests {
		if strings.HasPrefix(r, "/futures/data/openInterestHist") {
			sawHist = true
			for _, q := range []string{"period=1h", "limit=25", "symbol=ETHFIUSDT"} {
				if !strings.Contains(r, q) {
					t.Errorf("history request %q missing %s", r, q)
				}
			}
		}
	}
	if !sawHist {
		t.Fatalf("history endpoint not called: %v", f.requests)
	}
}

func TestShortHistoryLeavesChangeAbsent(t *testing.T) {
	f := healthy()
	f.oiHist = history(10, "1000000")
	srv := f.server(t)

	m, err := NewClient(Config{BaseURL: srv.URL, Symbol: "ETHFIUSDT"}).FetchDerivatives(context.Background())
	if err != nil {
		t.Fatalf("FetchDerivatives: %v", err)
	}
	if m.OIDelta24h != nil || m.OIChangePct24h != nil {
		t.Fatalf("24h change must be absent with short history: %+v", m)
	}
	approx(t, "open interest", m.OpenInterest, 1_100_000)
}

func TestFieldLevelDegradation(t *testing.T) {
	f := healthy()
	f.funding = `[]`
	f.premium = `{"symbol":"ETHFIUSDT","lastFundingRate":"not-a-number"}`
	f.oi = ""
	srv := f.server(t)

	m, err := NewClient(Config{BaseURL: srv.URL, Symbol: "ETHFIUSDT"}).FetchDerivatives(context.Background())
	if err != nil {
		t.Fatalf("partial failure must not fail the adapter: %v", err)
	}
	if m.LastFundingRate != nil || m.PredictedFunding != nil || m.OpenInterest != nil {
		t.Fatalf("degraded fields must be absent: %+v", m)
	}
	if m.OIChangePct24h != nil {
		t.Fatalf("oi change needs current open interest")
	}
	if m.LastFundingTime != nil {
		t.Fatalf("funding time without a rate must be absent")
	}

	// в кэш уходит JSON без нулевого времени
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "last_funding_time") {
		t.Fatalf("absent funding time serialized: %s", data)
	}
}

func TestAllCallsFailed(t *testing.T) {
	srv := (&fakeFutures{}).server(t)

	if _, err := NewClient(Config{BaseURL: srv.URL, Symbol: "ETHFIUSDT"}).FetchDerivatives(context.Background()); err == nil {
		t.Fatalf("expected error when every endpoint fails")
	}
}

func TestParseDecimal(t *testing.T) {
	if parseDecimal("") != nil || parseDecimal("abc") != nil {
		t.Fatalf("invalid input must be absent")
	}
	approx(t, "decimal", parseDecimal("0.00010000"), 0.0001)
}
