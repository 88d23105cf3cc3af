package product

import "github.com/katalvlaran/lvcalib/model"

// Instrument values itself against a model snapshot at evaluationTime
// (in years, on the same axis as curve knots).
type Instrument interface {
	Value(evaluationTime float64, m *model.Model) (float64, error)
}

// InstrumentFunc adapts an ordinary function to Instrument.
type InstrumentFunc func(evaluationTime float64, m *model.Model) (float64, error)

// Value calls f.
func (f InstrumentFunc) Value(evaluationTime float64, m *model.Model) (float64, error) {
	return f(evaluationTime, m)
}
