package product

import (
	"fmt"

	"github.com/katalvlaran/lvcalib/model"
)

// ZeroCouponBond pays 1 at Maturity. Value = P(T)/P(t_eval).
type ZeroCouponBond struct {
	Maturity      float64
	DiscountCurve string
}

// Value implements Instrument.
func (b ZeroCouponBond) Value(evaluationTime float64, m *model.Model) (float64, error) {
	dc, err := m.DiscountCurve(b.DiscountCurve)
	if err != nil {
		return 0, fmt.Errorf("zero coupon bond: %w", err)
	}

	return dc.DiscountFactor(b.Maturity) / dc.DiscountFactor(evaluationTime), nil
}

// ForwardRate quotes the forward rate of ForwardCurve at Fixing.
type ForwardRate struct {
	Fixing       float64
	ForwardCurve string
}

// Value implements Instrument.
func (r ForwardRate) Value(_ float64, m *model.Model) (float64, error) {
	fc, err := m.ForwardCurve(r.ForwardCurve)
	if err != nil {
		return 0, fmt.Errorf("forward rate: %w", err)
	}

	return fc.Forward(r.Fixing), nil
}

// ForwardRateAgreement pays Notional·(F − Strike)·τ at Payment, where F is
// the forward at Fixing and τ = Payment − Fixing.
type ForwardRateAgreement struct {
	Fixing        float64
	Payment       float64
	Strike        float64
	Notional      float64
	ForwardCurve  string
	DiscountCurve string
}

// Value implements Instrument.
func (f ForwardRateAgreement) Value(evaluationTime float64, m *model.Model) (float64, error) {
	tau := f.Payment - f.Fixing
	if tau <= 0 {
		return 0, fmt.Errorf("fra: payment %g not after fixing %g: %w", f.Payment, f.Fixing, ErrInvalidInstrument)
	}
	fc, err := m.ForwardCurve(f.ForwardCurve)
	if err != nil {
		return 0, fmt.Errorf("fra: %w", err)
	}
	dc, err := m.DiscountCurve(f.DiscountCurve)
	if err != nil {
		return 0, fmt.Errorf("fra: %w", err)
	}
	df := dc.DiscountFactor(f.Payment) / dc.DiscountFactor(evaluationTime)

	return f.Notional * (fc.Forward(f.Fixing) - f.Strike) * tau * df, nil
}
