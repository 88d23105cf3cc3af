// Package lm implements a bounded, multi-threaded Levenberg–Marquardt
// least-squares optimizer.
//
// Given an Objective r(θ) ∈ ℝᵐ over θ ∈ ℝⁿ with box bounds, the optimizer
// minimizes χ²(θ) = ‖r(θ)‖². Each outer iteration
//
//  1. estimates the Jacobian J by finite differences, one column per
//     parameter, with columns evaluated in parallel on a bounded worker pool;
//  2. solves the damped normal equations (JᵀJ + λ·diag(JᵀJ))·δ = −Jᵀr with
//     a Cholesky factorization, falling back to Householder QR;
//  3. proposes θ' = clip(θ + δ, lower, upper) and accepts it when
//     χ²(θ') ≤ χ²(θ), shrinking λ; otherwise grows λ and retries.
//
// An Optimizer is single-shot: New, then Run once, then read the results.
// Its status moves Initialized → Iterating → one of Converged,
// MaxIterationsReached, Diverged or Failed.
//
// Only Jacobian columns run concurrently. Each column owns its trial vector
// and residual buffer; the base residual, the linear solve and the
// acceptance test run on the goroutine that called Run.
//
// Non-convergence (MaxIterationsReached, Diverged) is a status, not an
// error: Run returns nil and BestFitParameters holds the best point seen.
package lm
