package signals

import (
	"testing"

	"ethfi-report-bot/internal/core/domain/market"
)

func TestEvaluate(t *testing.T) {
	e := NewEvaluator(DefaultThresholds())

	tests := []struct {
		name        string
		predicted   *float64
		oiPct       *float64
		wantKind    Kind
		wantReasons int
	}{
		{"negative funding, rising OI", market.Float(-0.001), market.Float(5), Bullish, 2},
		{"positive funding, OI above caution", market.Float(0.002), market.Float(4), Caution, 1},
		{"positive funding, falling OI", market.Float(0.002), market.Float(-1), PullbackRisk, 1},
		{"nothing known", nil, nil, Neutral, 0},
		{"negative funding, OI absent counts as zero", market.Float(-0.0001), nil, Bullish, 1},
		{"negative funding, falling OI", market.Float(-0.0001), market.Float(-2), Neutral, 2},
		{"positive funding, OI between thresholds", market.Float(0.0001), market.Float(2), Neutral, 1},
		{"positive funding, OI exactly at caution threshold", market.Float(0.0001), market.Float(3), Neutral, 1},
		{"zero funding", market.Float(0), market.Float(10), Neutral, 2},
		{"funding absent, OI rising", nil, market.Float(7), Neutral, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Evaluate(Input{PredictedFunding: tt.predicted, OIChangePct24h: tt.oiPct})
			if got.Kind != tt.wantKind {
				t.Fatalf("kind = %v, want %v", got.Kind, tt.wantKind)
			}
			if len(got.Reasons) != tt.wantReasons {
				t.Fatalf("reasons = %v, want %d entries", got.Reasons, tt.wantReasons)
			}
		})
	}
}

func TestReasonsOrderAndExclusivity(t *testing.T) {
	e := NewEvaluator(DefaultThresholds())

	got := e.Evaluate(Input{PredictedFunding: market.Float(-0.001), OIChangePct24h: market.Float(5)})
	want := []string{"Funding ≤ 0 (Short đông hơn)", "OI ↑ (mở thêm vị thế)"}
	if len(got.Reasons) != len(want) {
		t.Fatalf("reasons = %v, want %v", got.Reasons, want)
	}
	for i := range want {
		if got.Reasons[i] != want[i] {
			t.Fatalf("reasons[%d] = %q, want %q", i, got.Reasons[i], want[i])
		}
	}

	falling := e.Evaluate(Input{OIChangePct24h: market.Float(-0.5)})
	if len(falling.Reasons) != 1 || falling.Reasons[0] != "OI ↓ (đóng vị thế)" {
		t.Fatalf("falling reasons = %v", falling.Reasons)
	}

	flat := e.Evaluate(Input{OIChangePct24h: market.Float(0)})
	if len(flat.Reasons) != 0 {
		t.Fatalf("flat OI must not produce a reason: %v", flat.Reasons)
	}
}

func TestFirstMatchWins(t *testing.T) {
	always := func(Input) bool { return true }
	e := NewEvaluatorWithRules(DefaultThresholds(), []Rule{
		{Name: "first", Kind: Caution, Match: always},
		{Name: "second", Kind: Bullish, Match: always},
	})

	if got := e.Evaluate(Input{}).Kind; got != Caution {
		t.Fatalf("kind = %v, want first rule %v", got, Caution)
	}
}

func TestDefaultRuleOrder(t *testing.T) {
	rules := NewEvaluator(DefaultThresholds()).Rules()
	want := []Kind{Bullish, Caution, PullbackRisk}
	if len(rules) != len(want) {
		t.Fatalf("rules = %d, want %d", len(rules), len(want))
	}
	for i, k := range want {
		if rules[i].Kind != k {
			t.Fatalf("rule %d kind = %v, want %v", i, rules[i].Kind, k)
		}
	}
}

func TestCustomThresholds(t *testing.T) {
	th := DefaultThresholds()
	th.CautionMinOIPct = 10

	e := NewEvaluator(th)
	got := e.Evaluate(Input{PredictedFunding: market.Float(0.002), OIChangePct24h: market.Float(4)})
	if got.Kind != Neutral {
		t.Fatalf("kind = %v, want Neutral with raised caution threshold", got.Kind)
	}
}

func TestKindLabels(t *testing.T) {
	for _, k := range []Kind{Neutral, Bullish, Caution, PullbackRisk} {
		if k.Label() == "" || k.String() == "" {
			t.Fatalf("kind %d has empty text", int(k))
		}
	}
}
