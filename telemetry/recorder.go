package telemetry

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/katalvlaran/lvcalib/calibration"
	"github.com/katalvlaran/lvcalib/lm"
)

// Namespace prefixes every metric name.
const Namespace = "lvcalib"

// Proposal outcomes used as the "outcome" label.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

// Recorder collects calibration metrics. It is safe for concurrent use;
// proposals from concurrent runs are merged into the same series.
type Recorder struct {
	runs        *prometheus.CounterVec
	iterations  prometheus.Histogram
	duration    prometheus.Histogram
	accuracy    prometheus.Gauge
	evaluations prometheus.Counter
	proposals   *prometheus.CounterVec
	lambda      prometheus.Gauge
	chiSquared  prometheus.Gauge
}

var _ calibration.Recorder = (*Recorder)(nil)

// NewRecorder creates the collectors and registers them with reg.
//
// Errors:
//   - the registration error (e.g. prometheus.AlreadyRegisteredError) of the
//     first collector that fails; nothing is unregistered.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "calibration",
			Name:      "runs_total",
			Help:      "Completed calibration runs by optimizer status.",
		}, []string{"status"}),
		iterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "calibration",
			Name:      "iterations",
			Help:      "Optimizer iterations per calibration run.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 11),
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "calibration",
			Name:      "duration_seconds",
			Help:      "Wall time per calibration run.",
			Buckets:   prometheus.DefBuckets,
		}),
		accuracy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "calibration",
			Name:      "accuracy",
			Help:      "RMS repricing error of the last calibration run.",
		}),
		evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "calibration",
			Name:      "evaluations_total",
			Help:      "Objective function evaluations.",
		}),
		proposals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "lm",
			Name:      "proposals_total",
			Help:      "Levenberg-Marquardt proposals by outcome.",
		}, []string{"outcome"}),
		lambda: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "lm",
			Name:      "lambda",
			Help:      "Damping factor of the latest proposal.",
		}),
		chiSquared: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "lm",
			Name:      "chi_squared",
			Help:      "Chi-squared at the latest accepted point.",
		}),
	}

	for _, c := range []prometheus.Collector{
		r.runs, r.iterations, r.duration, r.accuracy,
		r.evaluations, r.proposals, r.lambda, r.chiSquared,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("telemetry: register: %w", err)
		}
	}

	return r, nil
}

// ObserveIteration implements lm.Observer.
func (r *Recorder) ObserveIteration(_ context.Context, it lm.Iteration) {
	r.lambda.Set(it.Lambda)
	if it.Accepted {
		r.proposals.WithLabelValues(OutcomeAccepted).Inc()
		r.chiSquared.Set(it.ChiSquared)
		return
	}
	r.proposals.WithLabelValues(OutcomeRejected).Inc()
}

// RecordRun implements calibration.Recorder.
func (r *Recorder) RecordRun(_ context.Context, res calibration.Result) {
	r.runs.WithLabelValues(res.Status.String()).Inc()
	r.iterations.Observe(float64(res.Iterations))
	r.duration.Observe(res.Duration.Seconds())
	r.accuracy.Set(res.Accuracy)
	r.evaluations.Add(float64(res.Evaluations))
}

// RunsCounter exposes the run counter for one status label.
func (r *Recorder) RunsCounter(status string) (prometheus.Counter, error) {
	return r.runs.GetMetricWithLabelValues(status)
}

// Proposals exposes the proposal counter for one outcome label.
func (r *Recorder) Proposals(outcome string) prometheus.Counter {
	return r.proposals.WithLabelValues(outcome)
}

// Evaluations exposes the evaluation counter.
func (r *Recorder) Evaluations() prometheus.Counter { return r.evaluations }

// Accuracy exposes the last-run accuracy gauge.
func (r *Recorder) Accuracy() prometheus.Gauge { return r.accuracy }

// Lambda exposes the latest damping gauge.
func (r *Recorder) Lambda() prometheus.Gauge { return r.lambda }

// ChiSquared exposes the latest accepted χ² gauge.
func (r *Recorder) ChiSquared() prometheus.Gauge { return r.chiSquared }
