package telemetry

import (
	"context"
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"

	"github.com/opsboard/backend/internal/infrastructure/config"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(config.ProfilingConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.ProfilingConfig
		wantErr string
	}{
		{
			name:    "missing server address",
			cfg:     config.ProfilingConfig{Enabled: true, ApplicationName: "opsboard"},
			wantErr: "server address is required",
		},
		{
			name:    "missing application name",
			cfg:     config.ProfilingConfig{Enabled: true, ServerAddress: "http://localhost:4040"},
			wantErr: "application name is required",
		},
		{
			name: "unknown profile type",
			cfg: config.ProfilingConfig{
				Enabled:         true,
				ServerAddress:   "http://localhost:4040",
				ApplicationName: "opsboard",
				ProfileTypes:    []string{"cpu", "heap"},
			},
			wantErr: `unknown profile type "heap"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProfiler(tt.cfg, zap.NewNop())
			require.Error(t, err)
			assert.Nil(t, p)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseProfileTypes(t *testing.T) {
	types, err := ParseProfileTypes([]string{"CPU", " alloc_space ", "cpu", "block_duration"})
	require.NoError(t, err)
	assert.Equal(t, []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileAllocSpace,
		pyroscope.ProfileBlockDuration,
	}, types)

	types, err = ParseProfileTypes(nil)
	require.NoError(t, err)
	assert.Empty(t, types)
}

func TestTracerProvider_EnableSpanProfiles(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	t.Run("no-op when telemetry is disabled", func(t *testing.T) {
		tp, err := NewTracerProvider(context.Background(), config.TelemetryConfig{}, zap.NewNop())
		require.NoError(t, err)
		tp.EnableSpanProfiles()
		assert.False(t, tp.IsSpanProfilesEnabled())
	})

	t.Run("wraps the provider and keeps recording spans", func(t *testing.T) {
		recorder := tracetest.NewSpanRecorder()
		sdk := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
		t.Cleanup(func() { _ = sdk.Shutdown(context.Background()) })
		tp := &TracerProvider{provider: sdk, logger: zap.NewNop()}

		tp.EnableSpanProfiles()
		tp.EnableSpanProfiles()
		assert.True(t, tp.IsSpanProfilesEnabled())

		_, span := tp.Tracer("test").Start(context.Background(), "requisition.update_status")
		span.End()
		require.Len(t, recorder.Ended(), 1)
		assert.Equal(t, "requisition.update_status", recorder.Ended()[0].Name())
	})
}
