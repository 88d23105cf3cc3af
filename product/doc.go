// Package product defines the calibration instruments: anything that can be
// valued against a model snapshot.
//
// Instrument.Value must be a pure function of the evaluation time and the
// *model.Model it is given; the calibration engine calls it concurrently on
// different model clones.
//
// Reference products cover the usual rate and volatility targets:
// ZeroCouponBond, ForwardRateAgreement, ForwardRate (quote), Caplet
// (Black-76) and ImpliedVolatility (quote). InstrumentFunc adapts a plain
// function.
package product
