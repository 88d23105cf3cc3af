// Package lvcalib is your in-process engine for calibrating market curves
// and volatility surfaces to quoted instruments.
//
// 🚀 What is lvcalib?
//
//	A small, concurrent calibration stack that brings together:
//		• Market model: immutable snapshots of curves & surfaces, copy-on-write
//		• Parameter aggregation: many objects ↔ one flat vector
//		• Transformations: positive, bounded, monotone and chained maps
//		• Levenberg–Marquardt: damped Gauss–Newton with a parallel Jacobian
//		• Solver: one call from "model + quotes" to a fitted model
//
// ✨ Why choose lvcalib?
//
//   - Pure functions of a snapshot – instruments never see partial state
//   - Errors you can match – Configuration, Evaluation, Numerical
//   - Non-convergence is a result, not a panic – Status + Accuracy
//   - Observable – slog, Prometheus, OpenTelemetry spans
//
// Packages:
//
//	matrix/      - dense kernels: Gram, Jᵀr, Cholesky & QR solves
//	model/       - Model, MarketObject, reference curves & surfaces
//	product/     - instruments: ZCB, FRA, forwards, caplets, vol quotes
//	aggregation/ - ParameterAggregation over a set of objects
//	transform/   - solver-space ↔ model-space maps
//	lm/          - the Levenberg–Marquardt optimizer
//	calibration/ - Objective adapter and Solver
//	telemetry/   - Prometheus recorder, tracing setup
//	config/      - YAML + env configuration
//	report/      - XLSX run report
//	cmd/calibrate - command-line front end
//
// Quick example:
//
//	solver, _ := calibration.NewSolver(m, instruments, targets)
//	fitted, err := solver.CalibratedModel(ctx, curve)
//	// solver.Status(), solver.Accuracy()
//
//	go get github.com/katalvlaran/lvcalib
package lvcalib
