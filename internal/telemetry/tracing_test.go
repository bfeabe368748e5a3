package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTracerProviderDefaultsToStdoutExporter(t *testing.T) {
	tp, err := NewTracerProvider(TraceConfig{SessionID: "sess-1"})
	require.NoError(t, err)
	require.NotNil(t, tp)
	defer tp.Shutdown(context.Background())

	_, span := StartPhase(context.Background(), PhaseParse)
	span.End()
}

func TestNewTracerProviderRejectsUnknownExporter(t *testing.T) {
	_, err := NewTracerProvider(TraceConfig{Exporter: "carrier-pigeon"})
	assert.Error(t, err)
}
