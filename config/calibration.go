package config

import (
	"fmt"
	"math"

	"github.com/katalvlaran/lvcalib/model"
	"github.com/katalvlaran/lvcalib/product"
	"github.com/katalvlaran/lvcalib/transform"
)

// Curve kinds.
const (
	KindZero     = "zero"     // model.ZeroRateCurve
	KindDiscount = "discount" // model.DiscountFactorCurve
	KindForward  = "forward"  // model.PiecewiseForwardCurve
)

// Transformation names.
const (
	TransformIdentity = "identity"
	TransformPositive = "positive"
	TransformBounded  = "bounded"
	TransformMonotone = "monotone"
)

// Instrument types.
const (
	InstrumentZCB      = "zcb"
	InstrumentForward  = "forward"
	InstrumentFRA      = "fra"
	InstrumentCaplet   = "caplet"
	InstrumentImpliedV = "vol"
)

// CalibrationConfig describes the market objects, the quotes and which
// objects to fit.
type CalibrationConfig struct {
	EvaluationTime float64            `yaml:"evaluation_time" validate:"gte=0"`
	Curves         []CurveConfig      `yaml:"curves" validate:"dive"`
	Surfaces       []SurfaceConfig    `yaml:"surfaces" validate:"dive"`
	Instruments    []InstrumentConfig `yaml:"instruments" validate:"dive"`
	Calibrate      []string           `yaml:"calibrate" validate:"dive,required"`
}

// CurveConfig is one curve and, when it is calibrated, its transformation.
type CurveConfig struct {
	Name      string    `yaml:"name" validate:"required"`
	Kind      string    `yaml:"kind" validate:"oneof=zero discount forward"`
	Times     []float64 `yaml:"times" validate:"required,min=1"`
	Values    []float64 `yaml:"values" validate:"required,min=1"`
	Transform string    `yaml:"transform" validate:"omitempty,oneof=identity positive bounded monotone"`
	Lower     *float64  `yaml:"lower"`     // bounded; nil ⇒ −∞
	Upper     *float64  `yaml:"upper"`     // bounded; nil ⇒ +∞
	MinSlope  float64   `yaml:"min_slope"` // monotone
	MaxSlope  float64   `yaml:"max_slope"` // monotone
}

// SurfaceConfig is a maturity × strike volatility grid (vols row-major by
// maturity).
type SurfaceConfig struct {
	Name       string    `yaml:"name" validate:"required"`
	Maturities []float64 `yaml:"maturities" validate:"required,min=1"`
	Strikes    []float64 `yaml:"strikes" validate:"required,min=1"`
	Vols       []float64 `yaml:"vols" validate:"required,min=1"`
	Transform  string    `yaml:"transform" validate:"omitempty,oneof=identity positive"`
}

// InstrumentConfig is one quote. Which fields matter depends on Type.
type InstrumentConfig struct {
	Type          string   `yaml:"type" validate:"oneof=zcb forward fra caplet vol"`
	DiscountCurve string   `yaml:"discount_curve"`
	ForwardCurve  string   `yaml:"forward_curve"`
	Surface       string   `yaml:"surface"`
	Maturity      float64  `yaml:"maturity"`
	Fixing        float64  `yaml:"fixing"`
	Payment       float64  `yaml:"payment"`
	Strike        float64  `yaml:"strike"`
	Notional      float64  `yaml:"notional"`
	Target        float64  `yaml:"target"`
	Weight        *float64 `yaml:"weight" validate:"omitempty,gte=0"` // nil ⇒ 1
}

// check enforces the per-type required references.
func (c CalibrationConfig) check() error {
	for i, in := range c.Instruments {
		var missing string
		switch in.Type {
		case InstrumentZCB:
			if in.DiscountCurve == "" {
				missing = "discount_curve"
			}
		case InstrumentForward:
			if in.ForwardCurve == "" {
				missing = "forward_curve"
			}
		case InstrumentFRA:
			if in.ForwardCurve == "" || in.DiscountCurve == "" {
				missing = "forward_curve/discount_curve"
			}
		case InstrumentCaplet:
			if in.ForwardCurve == "" || in.DiscountCurve == "" || in.Surface == "" {
				missing = "forward_curve/discount_curve/surface"
			}
		case InstrumentImpliedV:
			if in.Surface == "" {
				missing = "surface"
			}
		}
		if missing != "" {
			return fmt.Errorf("%w: instrument %d (%s) needs %s", ErrInvalid, i, in.Type, missing)
		}
		if math.IsNaN(in.Target) || math.IsInf(in.Target, 0) {
			return fmt.Errorf("%w: instrument %d target %g", ErrInvalid, i, in.Target)
		}
	}

	return nil
}

// Setup is the runtime form of a CalibrationConfig.
type Setup struct {
	Model          *model.Model
	Instruments    []product.Instrument
	Targets        []float64
	Weights        []float64 // nil when every weight is 1
	Objects        []model.ParameterObject
	Transformation transform.Transformation
	EvaluationTime float64
}

// Build instantiates curves and surfaces, the instruments and the
// calibration targets.
//
// Implementation:
//   - Stage 1: construct every curve/surface and the model.
//   - Stage 2: resolve Calibrate names in order; collect one transform.Part
//     per object (Identity unless configured).
//   - Stage 3: map instruments and targets; weights only when any is set.
//
// Errors:
//   - model construction errors (knots, lengths, duplicate names);
//   - ErrUnknownObject for a Calibrate name that is not configured.
func (c CalibrationConfig) Build() (*Setup, error) {
	objs := make([]model.MarketObject, 0, len(c.Curves)+len(c.Surfaces))
	params := make(map[string]model.ParameterObject, cap(objs))
	parts := make(map[string]transform.Transformation, cap(objs))

	for _, cc := range c.Curves {
		curve, err := cc.build()
		if err != nil {
			return nil, err
		}
		objs = append(objs, model.CurveObject(curve))
		params[cc.Name] = curve
		parts[cc.Name] = cc.transformation()
	}
	for _, sc := range c.Surfaces {
		s, err := model.NewGridVolatilitySurface(sc.Name, sc.Maturities, sc.Strikes, sc.Vols)
		if err != nil {
			return nil, fmt.Errorf("config: surface %q: %w", sc.Name, err)
		}
		objs = append(objs, model.SurfaceObject(s))
		params[sc.Name] = s
		if sc.Transform == TransformPositive {
			parts[sc.Name] = transform.Positive{}
		} else {
			parts[sc.Name] = transform.Identity{}
		}
	}
	m, err := model.NewModel(objs...)
	if err != nil {
		return nil, fmt.Errorf("config: model: %w", err)
	}

	setup := &Setup{Model: m, EvaluationTime: c.EvaluationTime}
	chain := make([]transform.Part, 0, len(c.Calibrate))
	identity := true
	seen := make(map[string]bool, len(c.Calibrate))
	for _, name := range c.Calibrate {
		p, ok := params[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownObject, name)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		tr := parts[name]
		if _, ok = tr.(transform.Identity); !ok {
			identity = false
		}
		setup.Objects = append(setup.Objects, p)
		chain = append(chain, transform.Part{Length: len(p.Parameter()), Transformation: tr})
	}
	if identity {
		setup.Transformation = transform.Identity{}
	} else {
		setup.Transformation = transform.Chain(chain...)
	}

	weighted := false
	for _, ic := range c.Instruments {
		setup.Instruments = append(setup.Instruments, ic.build())
		setup.Targets = append(setup.Targets, ic.Target)
		weighted = weighted || ic.Weight != nil
	}
	if weighted {
		setup.Weights = make([]float64, len(c.Instruments))
		for i, ic := range c.Instruments {
			setup.Weights[i] = 1
			if ic.Weight != nil {
				setup.Weights[i] = *ic.Weight
			}
		}
	}

	return setup, nil
}

func (cc CurveConfig) build() (model.Curve, error) {
	var (
		curve model.Curve
		err   error
	)
	switch cc.Kind {
	case KindZero:
		curve, err = model.NewZeroRateCurve(cc.Name, cc.Times, cc.Values)
	case KindDiscount:
		curve, err = model.NewDiscountFactorCurve(cc.Name, cc.Times, cc.Values)
	case KindForward:
		curve, err = model.NewPiecewiseForwardCurve(cc.Name, cc.Times, cc.Values)
	default:
		err = fmt.Errorf("%w: kind %q", ErrInvalid, cc.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("config: curve %q: %w", cc.Name, err)
	}

	return curve, nil
}

func (cc CurveConfig) transformation() transform.Transformation {
	n := len(cc.Values)
	switch cc.Transform {
	case TransformPositive:
		return transform.Positive{}
	case TransformBounded:
		lo, hi := math.Inf(-1), math.Inf(1)
		if cc.Lower != nil {
			lo = *cc.Lower
		}
		if cc.Upper != nil {
			hi = *cc.Upper
		}
		b := transform.Bounded{Lower: make([]float64, n), Upper: make([]float64, n)}
		for i := 0; i < n; i++ {
			b.Lower[i], b.Upper[i] = lo, hi
		}
		return b
	case TransformMonotone:
		return transform.MonotoneSlope{
			Times:    append([]float64(nil), cc.Times...),
			MinSlope: cc.MinSlope,
			MaxSlope: cc.MaxSlope,
		}
	default:
		return transform.Identity{}
	}
}

func (ic InstrumentConfig) build() product.Instrument {
	switch ic.Type {
	case InstrumentZCB:
		return product.ZeroCouponBond{Maturity: ic.Maturity, DiscountCurve: ic.DiscountCurve}
	case InstrumentForward:
		return product.ForwardRate{Fixing: ic.Fixing, ForwardCurve: ic.ForwardCurve}
	case InstrumentFRA:
		return product.ForwardRateAgreement{
			Fixing:        ic.Fixing,
			Payment:       ic.Payment,
			Strike:        ic.Strike,
			Notional:      ic.Notional,
			ForwardCurve:  ic.ForwardCurve,
			DiscountCurve: ic.DiscountCurve,
		}
	case InstrumentCaplet:
		return product.Caplet{
			Fixing:            ic.Fixing,
			Payment:           ic.Payment,
			Strike:            ic.Strike,
			Notional:          ic.Notional,
			ForwardCurve:      ic.ForwardCurve,
			DiscountCurve:     ic.DiscountCurve,
			VolatilitySurface: ic.Surface,
		}
	default:
		return product.ImpliedVolatility{Maturity: ic.Maturity, Strike: ic.Strike, VolatilitySurface: ic.Surface}
	}
}
