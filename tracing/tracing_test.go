package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSpansReachExporter(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	require.NoError(t, InitWithExporter("hioload-tasks", "test", exp))

	_, span := StartSpan(context.Background(), "engine.create")
	span.SetInt(map[string]int{"workers": 4}).SetString(map[string]string{"engine_id": "x"})
	EndSpan(span, nil)

	_, failed := StartSpan(context.Background(), "engine.shutdown")
	EndSpan(failed, errors.New("boom"))

	spans := exp.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "engine.create", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assert.Equal(t, codes.Error, spans[1].Status.Code)

	EndSpan(nil, nil)
}
