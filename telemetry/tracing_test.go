package telemetry_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvcalib/telemetry"
)

func TestInitTracing_Stdout(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	tp, err := telemetry.InitTracing(ctx, telemetry.TracingConfig{
		ServiceName:    "lvcalib-test",
		ServiceVersion: "test",
		Environment:    "test",
		Exporter:       telemetry.ExporterStdout,
		SampleRatio:    1,
		Writer:         &buf,
	}, logger)
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(ctx, "calibrate-once")
	span.End()
	require.NoError(t, tp.Shutdown(ctx))

	assert.Contains(t, buf.String(), "calibrate-once")
	assert.Contains(t, buf.String(), "lvcalib-test")
}

func TestInitTracing_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := telemetry.InitTracing(ctx, telemetry.TracingConfig{Exporter: "otlp", SampleRatio: 1}, nil)
	assert.ErrorIs(t, err, telemetry.ErrUnsupportedExporter)

	_, err = telemetry.InitTracing(ctx, telemetry.TracingConfig{Exporter: telemetry.ExporterNone, SampleRatio: 2}, nil)
	assert.ErrorIs(t, err, telemetry.ErrInvalidSampleRatio)

	tp, err := telemetry.InitTracing(ctx, telemetry.TracingConfig{Exporter: telemetry.ExporterNone, SampleRatio: 0.5}, nil)
	require.NoError(t, err)
	assert.NoError(t, tp.Shutdown(ctx))
}
