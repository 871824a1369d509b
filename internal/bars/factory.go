package bars

import (
	"fmt"

	"github.com/shopspring/decimal"

	"arcana/internal/barspec"
	"arcana/internal/model"
)

// New constructs the Builder for a parsed bar spec. priorBar is the
// Store.LastBar result for (BarType(spec), source, pair); pass nil for a
// cold start. Standard (fixed-threshold) families ignore priorBar.
func New(spec barspec.Spec, source, pair string, priorBar *model.Bar) (Builder, error) {
	switch spec.Family {
	case barspec.Tick:
		return NewTickBuilder(spec.IntParam, source, pair), nil
	case barspec.Volume:
		v, err := decimal.NewFromString(spec.DecimalParam)
		if err != nil {
			return nil, fmt.Errorf("volume threshold: %w", err)
		}
		return NewVolumeBuilder(v, source, pair), nil
	case barspec.Dollar:
		d, err := decimal.NewFromString(spec.DecimalParam)
		if err != nil {
			return nil, fmt.Errorf("dollar threshold: %w", err)
		}
		return NewDollarBuilder(d, source, pair), nil
	case barspec.Time:
		return NewTimeBuilder(spec.Period, spec.Raw, source, pair), nil
	case barspec.TIB:
		return NewImbalanceBuilder("tib", int(spec.IntParam), unitTick, source, pair, priorBar), nil
	case barspec.VIB:
		return NewImbalanceBuilder("vib", int(spec.IntParam), unitVolume, source, pair, priorBar), nil
	case barspec.DIB:
		return NewImbalanceBuilder("dib", int(spec.IntParam), unitDollar, source, pair, priorBar), nil
	case barspec.TRB:
		return NewRunBuilder("trb", int(spec.IntParam), unitTick, source, pair, priorBar), nil
	case barspec.VRB:
		return NewRunBuilder("vrb", int(spec.IntParam), unitVolume, source, pair, priorBar), nil
	case barspec.DRB:
		return NewRunBuilder("drb", int(spec.IntParam), unitDollar, source, pair, priorBar), nil
	default:
		return nil, fmt.Errorf("unsupported bar family %q", spec.Family)
	}
}

// BarType derives the storage bar_type string for a spec without
// constructing a builder — used by callers that only need to look up
// Store.LastBar before deciding whether a cold or warm start applies.
func BarType(spec barspec.Spec) string {
	switch spec.Family {
	case barspec.Volume, barspec.Dollar:
		// Match the builders, which render the threshold via decimal String().
		param := spec.DecimalParam
		if d, err := decimal.NewFromString(param); err == nil {
			param = d.String()
		}
		return fmt.Sprintf("%s_%s", spec.Family, param)
	case barspec.Time:
		return fmt.Sprintf("time_%s", spec.Raw)
	default:
		return fmt.Sprintf("%s_%d", spec.Family, spec.IntParam)
	}
}
