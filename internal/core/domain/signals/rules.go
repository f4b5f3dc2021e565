// internal/core/domain/signals/rules.go
package signals

import (
	"fmt"
	"strconv"

	"ethfi-report-bot/internal/core/domain/market"
)

// Rule - одно правило классификации. Правила проверяются сверху вниз,
// срабатывает первое совпавшее.
type Rule struct {
	Name  string
	Kind  Kind
	Match func(in Input) bool
}

// DefaultRules возвращает упорядоченный список правил.
// Отсутствующее изменение OI считается нулем.
func DefaultRules(th Thresholds) []Rule {
	return []Rule{
		{
			Name: "short_squeeze",
			Kind: Bullish,
			Match: func(in Input) bool {
				return in.PredictedFunding != nil &&
					*in.PredictedFunding < th.FundingNeutral &&
					market.ValueOr(in.OIChangePct24h, 0) >= th.BullishMinOIPct
			},
		},
		{
			Name: "long_crowded",
			Kind: Caution,
			Match: func(in Input) bool {
				return in.PredictedFunding != nil &&
					*in.PredictedFunding > th.FundingNeutral &&
					market.ValueOr(in.OIChangePct24h, 0) > th.CautionMinOIPct
			},
		},
		{
			Name: "pullback",
			Kind: PullbackRisk,
			Match: func(in Input) bool {
				return in.PredictedFunding != nil &&
					*in.PredictedFunding > th.FundingNeutral &&
					market.ValueOr(in.OIChangePct24h, 0) < th.PullbackMaxOIPct
			},
		},
	}
}

// Evaluator вычисляет сигнал по набору правил
type Evaluator struct {
	thresholds Thresholds
	rules      []Rule
}

// NewEvaluator создает оценщик с правилами по умолчанию
func NewEvaluator(th Thresholds) *Evaluator {
	return &Evaluator{thresholds: th, rules: DefaultRules(th)}
}

// NewEvaluatorWithRules создает оценщик с явным списком правил
func NewEvaluatorWithRules(th Thresholds, rules []Rule) *Evaluator {
	return &Evaluator{thresholds: th, rules: rules}
}

// Rules возвращает копию списка правил в порядке проверки
func (e *Evaluator) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Evaluate - чистая функция от (predicted funding, OI 24h %)
func (e *Evaluator) Evaluate(in Input) Signal {
	sig := Signal{Kind: Neutral, Reasons: e.reasons(in)}
	for _, rule := range e.rules {
		if rule.Match(in) {
			sig.Kind = rule.Kind
			break
		}
	}
	return sig
}

// reasons формирует причины: сначала funding, затем ровно одна причина по OI
func (e *Evaluator) reasons(in Input) []string {
	reasons := []string{}
	if in.PredictedFunding != nil && *in.PredictedFunding <= e.thresholds.FundingNeutral {
		reasons = append(reasons, fmt.Sprintf("Funding ≤ %s (Short đông hơn)",
			strconv.FormatFloat(e.thresholds.FundingNeutral, 'f', -1, 64)))
	}
	if in.OIChangePct24h != nil {
		switch {
		case *in.OIChangePct24h > 0:
			reasons = append(reasons, "OI ↑ (mở thêm vị thế)")
		case *in.OIChangePct24h < 0:
			reasons = append(reasons, "OI ↓ (đóng vị thế)")
		}
	}
	return reasons
}
