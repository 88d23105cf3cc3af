// Package model holds the immutable market-data snapshot that calibration
// works on: named curves and volatility surfaces, each exposing a flat
// parameter vector.
//
// The model package provides:
//
//   - ParameterObject, the contract every calibratable object satisfies:
//     a stable name, a copy of its parameters, and CloneForParameter which
//     returns a new object and never mutates the receiver.
//   - Handle, a 64-bit identity derived from the object name with xxhash.
//     Aggregations and parameter updates refer to objects by Handle rather
//     than by pointer identity.
//   - MarketObject, a tagged variant (KindCurve or KindVolatilitySurface).
//   - Model, a persistent map of MarketObjects. AddCurves,
//     AddVolatilitySurfaces and CloneForParameter copy the index and return a
//     new Model; untouched objects are shared by reference.
//   - Reference objects: ZeroRateCurve, DiscountFactorCurve,
//     PiecewiseForwardCurve and GridVolatilitySurface.
//
// A *Model is never mutated after construction, so one snapshot can be read
// from any number of goroutines without locks.
package model
