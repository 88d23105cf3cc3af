package product

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/lvcalib/model"
)

// Caplet is a call on the forward rate fixing at Fixing and paid at
// Payment, priced with Black-76:
//
//	N·τ·P(pay)/P(t)·[F·Φ(d1) − K·Φ(d2)],  d1,2 = (ln(F/K) ± σ²T/2)/(σ√T)
//
// with T = Fixing − t and σ read from VolatilitySurface at (T, Strike).
// Expired caplets (T ≤ 0) and zero volatility are valued at intrinsic.
type Caplet struct {
	Fixing            float64
	Payment           float64
	Strike            float64
	Notional          float64
	ForwardCurve      string
	DiscountCurve     string
	VolatilitySurface string
}

// Value implements Instrument.
func (c Caplet) Value(evaluationTime float64, m *model.Model) (float64, error) {
	tau := c.Payment - c.Fixing
	if tau <= 0 {
		return 0, fmt.Errorf("caplet: payment %g not after fixing %g: %w", c.Payment, c.Fixing, ErrInvalidInstrument)
	}
	fc, err := m.ForwardCurve(c.ForwardCurve)
	if err != nil {
		return 0, fmt.Errorf("caplet: %w", err)
	}
	dc, err := m.DiscountCurve(c.DiscountCurve)
	if err != nil {
		return 0, fmt.Errorf("caplet: %w", err)
	}
	vs, err := m.VolatilitySurface(c.VolatilitySurface)
	if err != nil {
		return 0, fmt.Errorf("caplet: %w", err)
	}

	expiry := c.Fixing - evaluationTime
	fwd := fc.Forward(c.Fixing)
	annuity := c.Notional * tau * dc.DiscountFactor(c.Payment) / dc.DiscountFactor(evaluationTime)
	vol := vs.Volatility(expiry, c.Strike)
	if expiry <= 0 || vol <= 0 {
		return annuity * math.Max(fwd-c.Strike, 0), nil
	}
	if fwd <= 0 || c.Strike <= 0 {
		return 0, fmt.Errorf("caplet: Black needs positive forward %g and strike %g: %w", fwd, c.Strike, ErrInvalidInstrument)
	}

	return annuity * black76Call(fwd, c.Strike, vol, expiry), nil
}

// black76Call is the undiscounted Black-76 call F·Φ(d1) − K·Φ(d2).
func black76Call(fwd, strike, vol, expiry float64) float64 {
	sd := vol * math.Sqrt(expiry)
	d1 := (math.Log(fwd/strike) + 0.5*sd*sd) / sd
	d2 := d1 - sd

	return fwd*distuv.UnitNormal.CDF(d1) - strike*distuv.UnitNormal.CDF(d2)
}

// ImpliedVolatility quotes the surface volatility at (Maturity, Strike).
type ImpliedVolatility struct {
	Maturity          float64
	Strike            float64
	VolatilitySurface string
}

// Value implements Instrument.
func (v ImpliedVolatility) Value(_ float64, m *model.Model) (float64, error) {
	vs, err := m.VolatilitySurface(v.VolatilitySurface)
	if err != nil {
		return 0, fmt.Errorf("implied volatility: %w", err)
	}

	return vs.Volatility(v.Maturity, v.Strike), nil
}
