package infrastructure

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catpost/internal/config"
	"catpost/internal/shared/testutil"
)

func TestOTelInitialization(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	cfg := config.Default().Telemetry
	cfg.Tracing = true
	cfg.TraceExporter = "none"
	cfg.Metrics = true

	providers, err := InitializeOTel(cfg, logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	assert.Nil(t, providers.TracerProvider, "exporter none installs no tracer provider")
	require.NotNil(t, providers.MeterProvider)
	require.NotNil(t, providers.Registry)
}

func TestOTelConfiguration_UnsupportedExporter(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	cfg := config.Default().Telemetry
	cfg.Tracing = true
	cfg.TraceExporter = "jaeger"

	_, err := InitializeOTel(cfg, logger)
	assert.ErrorContains(t, err, "unsupported trace exporter")
}

func TestTransformMetrics_WriteMetrics(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	cfg := config.Default().Telemetry
	cfg.Metrics = true

	providers, err := InitializeOTel(cfg, logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateTransformMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordTransform(ctx, "catalysis.selectivity", 3, 5*time.Millisecond, nil)
	metrics.RecordTransform(ctx, "catalysis.selectivity", 3, time.Millisecond, errors.New("boom"))

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, providers.WriteMetrics(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "catpost_transforms_total")
	assert.Contains(t, text, "catpost_transform_errors_total")
	assert.Contains(t, text, `function="catalysis.selectivity"`)
}

func TestWriteMetrics_Disabled(t *testing.T) {
	p := &OTelProviders{}
	assert.Error(t, p.WriteMetrics(filepath.Join(t.TempDir(), "m.prom")))

	var m *TransformMetrics
	m.RecordTransform(context.Background(), "noop", 1, time.Second, nil)
}
