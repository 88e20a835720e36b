package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewProvider_Disabled(t *testing.T) {
	p, err := NewProvider(Config{Enabled: false})
	require.NoError(t, err)
	require.NoError(t, p.HealthCheck())
	require.NotNil(t, p.Tracer())
	require.NotNil(t, p.Meter())
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestValidateConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, validateConfig(cfg))

	cfg.OTLPEndpoint = ""
	require.Error(t, validateConfig(cfg))

	cfg = DefaultConfig()
	cfg.SampleRate = 1.5
	require.Error(t, validateConfig(cfg))
}

func TestSpanHelpers(t *testing.T) {
	ctx, span := StartModuleSpan(context.Background(), "dex", "swap")
	require.NotNil(t, ctx)
	EndSpan(span, errors.New("boom"))

	_, span = StartRequestSpan(context.Background(), "GET", "/api/v1/pools", "req-1")
	EndSpan(span, nil)
	EndSpan(nil, nil)
}
