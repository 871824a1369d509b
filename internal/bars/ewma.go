package bars

import (
	"errors"

	"github.com/shopspring/decimal"

	"arcana/internal/model"
)

var errNotDecimal = errors.New("value is not a decimal")

// ewmaState is the adaptive-threshold estimator shared by all six
// information-driven bar families. It is persisted inside the metadata of
// the most recently emitted bar (see model.MetaEWMA* keys) so a builder can
// recover it on warm resume via Store.LastBar, with no separate state
// table required.
type ewmaState struct {
	window   int
	expected decimal.Decimal
	barCount int64
	lastSign int
}

func newEWMAState(window int) ewmaState {
	return ewmaState{window: window, lastSign: 1}
}

// seedFrom recovers state from a prior bar's metadata, if present.
func (e *ewmaState) seedFrom(meta map[string]any) {
	if meta == nil {
		return
	}
	if v, ok := meta[model.MetaEWMAExpected]; ok {
		if d, err := toDecimal(v); err == nil {
			e.expected = d
		}
	}
	if v, ok := meta[model.MetaEWMABarCount]; ok {
		if n, ok := toInt64(v); ok {
			e.barCount = n
		}
	}
	if v, ok := meta[model.MetaLastSign]; ok {
		if n, ok := toInt64(v); ok && n != 0 {
			e.lastSign = int(n)
		}
	}
}

// threshold returns the current emission threshold. On a cold start
// (barCount == 0) the bootstrap threshold is zero: the first bar emits as
// soon as the running statistic is strictly positive, forming the seed.
func (e *ewmaState) threshold() decimal.Decimal {
	if e.barCount == 0 {
		return decimal.Zero
	}
	return e.expected
}

// update folds the realized statistic x of the just-emitted bar into the
// EWMA, per spec: alpha = 2/(W+1); seed on the first bar, decay thereafter.
func (e *ewmaState) update(x decimal.Decimal) {
	if e.barCount == 0 {
		e.expected = x
	} else {
		// alpha*x + (1-alpha)*E with alpha = 2/(W+1), rearranged to
		// (2x + (W-1)E)/(W+1) so only one rounding division is performed.
		w := decimal.NewFromInt(int64(e.window))
		one := decimal.NewFromInt(1)
		e.expected = decimal.NewFromInt(2).Mul(x).Add(w.Sub(one).Mul(e.expected)).Div(w.Add(one))
	}
	e.barCount++
}

// metadata renders the state for attachment to an emitted bar.
func (e *ewmaState) metadata(lastSign int) map[string]any {
	return map[string]any{
		model.MetaEWMAExpected: e.expected,
		model.MetaEWMAWindow:   e.window,
		model.MetaEWMABarCount: e.barCount,
		model.MetaLastSign:     lastSign,
	}
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case string:
		return decimal.NewFromString(x)
	case float64:
		return decimal.NewFromFloat(x), nil
	default:
		return decimal.Zero, errNotDecimal
	}
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}
