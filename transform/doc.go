// Package transform maps parameters between the unconstrained space the
// optimizer searches ("solver space") and the constrained space the model
// objects understand ("model space").
//
// Every Transformation is a pair of inverse maps; for x inside the model
// domain, ToModelSpace(ToSolverSpace(x)) == x up to rounding. Values outside
// the open model domain have no solver-space image and yield
// ErrOutOfDomain.
//
// Available maps: Identity, Positive (exp/log), Bounded (logistic or
// one-sided exp per component), MonotoneSlope (each knot constrained
// relative to its predecessor) and Chain, which applies different maps to
// consecutive ranges of the vector.
package transform
