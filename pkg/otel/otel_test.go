package otel

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menuflow/pkg/logger"
)

func TestGetTraceIDWithoutSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestAddSpanRecordsTraceID(t *testing.T) {
	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	tp, shutdown, err := InitTracing(log, Config{ServiceName: "test", Probability: 1.0})
	require.NoError(t, err)
	defer shutdown(context.Background())

	ctx := InjectTracing(context.Background(), tp.Tracer("test"))
	ctx, span := AddSpan(ctx, "unit")
	defer span.End()

	assert.Len(t, GetTraceID(ctx), 32)
}
