// Command calibrate fits the curves and surfaces described by a YAML
// configuration to their quotes and prints a JSON summary.
//
// Usage:
//
//	calibrate -config calibrate.yaml [-report out.xlsx] [-strict]
//
// Environment variables prefixed LVCALIB_ override the file (see package
// config). Exit status is 1 on error and, with -strict, 2 when the
// optimizer did not converge.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/katalvlaran/lvcalib/calibration"
	"github.com/katalvlaran/lvcalib/config"
	"github.com/katalvlaran/lvcalib/report"
	"github.com/katalvlaran/lvcalib/telemetry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	exitOK = iota
	exitError
	exitNotConverged
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// summary is the JSON document printed on success.
type summary struct {
	RunID       string               `json:"run_id"`
	Status      string               `json:"status"`
	Iterations  int                  `json:"iterations"`
	Accuracy    float64              `json:"accuracy"`
	Evaluations int64                `json:"evaluations"`
	DurationMS  int64                `json:"duration_ms"`
	Parameters  map[string][]float64 `json:"parameters"`
	Residuals   []float64            `json:"residuals"`
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("calibrate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "YAML configuration file")
	reportPath := fs.String("report", "", "write an XLSX report here (overrides report.path)")
	strict := fs.Bool("strict", false, "exit with status 2 when the optimizer does not converge")
	if err := fs.Parse(args); err != nil {
		return exitError
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "calibrate: %v\n", err)
		return exitError
	}
	if *reportPath != "" {
		cfg.Report.Path = *reportPath
	}
	logger, err := newLogger(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "calibrate: %v\n", err)
		return exitError
	}

	res, err := calibrate(ctx, cfg, logger, stdout)
	if err != nil {
		logger.ErrorContext(ctx, "calibration failed", slog.String("error", err.Error()))
		return exitError
	}
	if *strict && res.Err() != nil {
		logger.WarnContext(ctx, "strict mode", slog.String("error", res.Err().Error()))
		return exitNotConverged
	}

	return exitOK
}

func newLogger(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}

	return slog.New(slog.NewJSONHandler(w, opts)).With(slog.String("service", "lvcalib")), nil
}

func calibrate(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) (calibration.Result, error) {
	if cfg.Optimizer.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Optimizer.Timeout)
		defer cancel()
	}

	if cfg.Telemetry.TraceExporter != telemetry.ExporterNone {
		tp, err := telemetry.InitTracing(ctx, telemetry.TracingConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			ServiceVersion: version,
			Environment:    cfg.Telemetry.Environment,
			Exporter:       cfg.Telemetry.TraceExporter,
			SampleRatio:    cfg.Telemetry.SampleRatio,
			Writer:         os.Stderr,
		}, logger)
		if err != nil {
			return calibration.Result{}, err
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Warn("tracer shutdown", slog.String("error", err.Error()))
			}
		}()
	}

	reg := prometheus.NewRegistry()
	recorder, err := telemetry.NewRecorder(reg)
	if err != nil {
		return calibration.Result{}, err
	}

	setup, err := cfg.Calibration.Build()
	if err != nil {
		return calibration.Result{}, err
	}
	opts := []calibration.Option{
		calibration.WithLogger(logger),
		calibration.WithRecorder(recorder),
		calibration.WithEvaluationTime(setup.EvaluationTime),
		calibration.WithTransformation(setup.Transformation),
		calibration.WithOptimizerOptions(cfg.Optimizer.Options()...),
	}
	if setup.Weights != nil {
		opts = append(opts, calibration.WithWeights(setup.Weights))
	}
	solver, err := calibration.NewSolver(setup.Model, setup.Instruments, setup.Targets, opts...)
	if err != nil {
		return calibration.Result{}, err
	}

	calibrated, err := solver.CalibratedModel(ctx, setup.Objects...)
	if err != nil {
		return calibration.Result{}, err
	}
	res := solver.Result()

	out := summary{
		RunID:       res.RunID.String(),
		Status:      res.Status.String(),
		Iterations:  res.Iterations,
		Accuracy:    res.Accuracy,
		Evaluations: res.Evaluations,
		DurationMS:  res.Duration.Milliseconds(),
		Parameters:  make(map[string][]float64, len(setup.Objects)),
		Residuals:   res.Residuals,
	}
	for _, obj := range setup.Objects {
		fitted, err := calibrated.Object(obj.Name())
		if err != nil {
			return res, err
		}
		out.Parameters[obj.Name()] = fitted.Parameterized().Parameter()
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err = enc.Encode(out); err != nil {
		return res, fmt.Errorf("summary: %w", err)
	}

	if cfg.Report.Path != "" {
		rep, err := report.Build(res, setup.Instruments, setup.Targets, setup.Objects, calibrated)
		if err != nil {
			return res, err
		}
		if err = rep.WriteFile(cfg.Report.Path); err != nil {
			return res, err
		}
		logger.InfoContext(ctx, "report written", slog.String("path", cfg.Report.Path))
	}
	if cfg.Telemetry.MetricsFile != "" {
		if err = prometheus.WriteToTextfile(cfg.Telemetry.MetricsFile, reg); err != nil {
			return res, fmt.Errorf("metrics: %w", err)
		}
	}

	return res, nil
}
