package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/katalvlaran/lvcalib/lm"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LVCALIB"

// Config is the complete calibrate configuration.
type Config struct {
	Optimizer   OptimizerConfig   `yaml:"optimizer" envconfig:"OPTIMIZER"`
	Logging     LoggingConfig     `yaml:"logging" envconfig:"LOGGING"`
	Telemetry   TelemetryConfig   `yaml:"telemetry" envconfig:"TELEMETRY"`
	Report      ReportConfig      `yaml:"report" envconfig:"REPORT"`
	Calibration CalibrationConfig `yaml:"calibration" ignored:"true"`
}

// OptimizerConfig maps onto lm options.
type OptimizerConfig struct {
	MaxIterations       int           `yaml:"max_iterations" split_words:"true" validate:"gt=0"`
	Threads             int           `yaml:"threads" split_words:"true" validate:"gte=0"` // 0 ⇒ lm.DefaultThreads
	ErrorTolerance      float64       `yaml:"error_tolerance" split_words:"true" validate:"gte=0"`
	ChiSquaredTolerance float64       `yaml:"chi_squared_tolerance" split_words:"true" validate:"gte=0"`
	StepTolerance       float64       `yaml:"step_tolerance" split_words:"true" validate:"gte=0"`
	InitialLambda       float64       `yaml:"initial_lambda" split_words:"true" validate:"gt=0"`
	LambdaUp            float64       `yaml:"lambda_up" split_words:"true" validate:"gt=1"`
	LambdaDown          float64       `yaml:"lambda_down" split_words:"true" validate:"gt=1"`
	MinLambda           float64       `yaml:"min_lambda" split_words:"true" validate:"gt=0,ltfield=MaxLambda"`
	MaxLambda           float64       `yaml:"max_lambda" split_words:"true" validate:"gt=0"`
	MaxRetries          int           `yaml:"max_retries" split_words:"true" validate:"gt=0"`
	RelativeStep        float64       `yaml:"relative_step" split_words:"true" validate:"gt=0"`
	AbsoluteStep        float64       `yaml:"absolute_step" split_words:"true" validate:"gt=0"`
	Timeout             time.Duration `yaml:"timeout" split_words:"true" validate:"gte=0"` // 0 ⇒ none
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" split_words:"true" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Format string `yaml:"format" split_words:"true" validate:"oneof=json text"`
}

// TelemetryConfig controls metrics and tracing.
type TelemetryConfig struct {
	MetricsFile   string  `yaml:"metrics_file" split_words:"true"` // Prometheus textfile; empty ⇒ off
	TraceExporter string  `yaml:"trace_exporter" split_words:"true" validate:"oneof=stdout none"`
	SampleRatio   float64 `yaml:"sample_ratio" split_words:"true" validate:"gte=0,lte=1"`
	ServiceName   string  `yaml:"service_name" split_words:"true" validate:"required"`
	Environment   string  `yaml:"environment" split_words:"true"`
}

// ReportConfig controls the XLSX report.
type ReportConfig struct {
	Path string `yaml:"path" split_words:"true" validate:"omitempty,endswith=.xlsx"` // empty ⇒ no report
}

// Default returns the built-in configuration (lm defaults, JSON info logs,
// tracing off, no report, empty calibration).
func Default() Config {
	return Config{
		Optimizer: OptimizerConfig{
			MaxIterations:       lm.DefaultMaxIterations,
			ErrorTolerance:      lm.DefaultErrorTolerance,
			ChiSquaredTolerance: lm.DefaultChiSquaredTolerance,
			StepTolerance:       lm.DefaultStepTolerance,
			InitialLambda:       lm.DefaultInitialLambda,
			LambdaUp:            lm.DefaultLambdaUp,
			LambdaDown:          lm.DefaultLambdaDown,
			MinLambda:           lm.DefaultMinLambda,
			MaxLambda:           lm.DefaultMaxLambda,
			MaxRetries:          lm.DefaultMaxRetries,
			RelativeStep:        lm.DefaultRelativeStep,
			AbsoluteStep:        lm.DefaultAbsoluteStep,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Telemetry: TelemetryConfig{
			TraceExporter: "none",
			SampleRatio:   1,
			ServiceName:   "lvcalib",
			Environment:   "development",
		},
	}
}

// Load reads path (skipped when empty), applies environment overrides and
// validates the result.
//
// Errors:
//   - file read / YAML decode / envconfig errors, wrapped with their stage;
//   - ErrInvalid wrapping validator.ValidationErrors or a cross-field check.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err = yaml.UnmarshalStrict(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("config: env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

var validate = validator.New()

// Validate checks struct tags and the cross-field rules of the calibration
// section.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return c.Calibration.check()
}

// Options converts the section into lm options.
func (o OptimizerConfig) Options() []lm.Option {
	opts := []lm.Option{
		lm.WithMaxIterations(o.MaxIterations),
		lm.WithErrorTolerance(o.ErrorTolerance),
		lm.WithChiSquaredTolerance(o.ChiSquaredTolerance),
		lm.WithStepTolerance(o.StepTolerance),
		lm.WithInitialLambda(o.InitialLambda),
		lm.WithLambdaFactors(o.LambdaUp, o.LambdaDown),
		lm.WithMinLambda(o.MinLambda),
		lm.WithMaxLambda(o.MaxLambda),
		lm.WithMaxRetries(o.MaxRetries),
		lm.WithRelativeStep(o.RelativeStep),
		lm.WithAbsoluteStep(o.AbsoluteStep),
	}
	if o.Threads > 0 {
		opts = append(opts, lm.WithThreads(o.Threads))
	}

	return opts
}

// ParseLevel maps a level name (case-insensitive) onto slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log level %q", ErrInvalid, s)
	}

	return l, nil
}
