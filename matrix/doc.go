// Package matrix offers the small dense linear-algebra layer used by the
// calibration engine.
//
// The matrix package provides:
//
//   - Dense, a row-major float64 matrix with error-returning accessors and a
//     finite-value numeric policy.
//   - Kernels for the Levenberg–Marquardt normal equations: MatTVec (Jᵀr)
//     and Gram (JᵀJ).
//   - Solvers: Cholesky / SolveCholesky for symmetric positive definite
//     systems and SolveQR (Householder least squares) as the robust fallback.
//
// Every kernel validates its inputs, never panics on user data, and reports
// failures through the sentinels in errors.go so callers can use errors.Is.
//
// Matrices here are meant for calibration-sized problems (tens to a few
// hundred parameters); no blocking or BLAS is attempted.
package matrix
