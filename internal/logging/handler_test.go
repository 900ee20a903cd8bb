// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/taskhive/taskhive/internal/logging"
)

func TestSetup_AddsServiceAndVersion(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("taskhive", "1.2.3", "json", &buf)

	logger.Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "taskhive", entry["service"])
	assert.Equal(t, "1.2.3", entry["version"])
	assert.Equal(t, "hello", entry["msg"])
}

func TestSetup_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("taskhive", "dev", "text", &buf)

	logger.Info("hello")

	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "service=taskhive")
}

func TestSetup_AddsTraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("taskhive", "dev", "json", &buf)

	traceID := trace.TraceID{0x01}
	spanID := trace.SpanID{0x02}
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	logger.InfoContext(ctx, "traced")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, traceID.String(), entry["trace_id"])
	assert.Equal(t, spanID.String(), entry["span_id"])
}

func TestSetup_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("taskhive", "dev", "json", &buf)

	ctx := logging.WithRequestID(context.Background(), "01ARZREQUEST")
	logger.InfoContext(ctx, "tagged")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "01ARZREQUEST", entry["request_id"])
}

func TestSetup_NoRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("taskhive", "dev", "json", &buf)

	logger.InfoContext(context.Background(), "untagged")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "request_id")
}

func TestRequestIDFromContext(t *testing.T) {
	assert.Empty(t, logging.RequestIDFromContext(context.Background()))

	ctx := logging.WithRequestID(context.Background(), "abc")
	assert.Equal(t, "abc", logging.RequestIDFromContext(ctx))
}

func TestSetup_NoTraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("taskhive", "dev", "json", &buf)

	logger.InfoContext(context.Background(), "untraced")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "trace_id")
	assert.NotContains(t, entry, "span_id")
}

func TestSetup_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("taskhive", "dev", "json", &buf)

	logger.With("request_id", "abc").WithGroup("http").Info("grouped", "status", 200)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc", entry["request_id"])
	httpGroup, ok := entry["http"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 200, httpGroup["status"])
}

func TestSetup_DebugEnabled(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("taskhive", "dev", "json", &buf)

	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}
