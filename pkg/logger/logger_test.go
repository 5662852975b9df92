package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextFieldsAreAttached(t *testing.T) {
	// Arrange
	core, logs := observer.New(zapcore.DebugLevel)
	l := &ZapLogger{logger: zap.New(core)}
	ctx := WithTraceID(context.Background(), "req-1")
	ctx = WithWorkerID(ctx, 3)
	ctx = WithActionType(ctx, "dfm_analyze")
	ctx = WithAnalysisID(ctx, "a-42")

	// Act
	l.Warnf(ctx, "remote unavailable: %s", "timeout")

	// Assert
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Message != "remote unavailable: timeout" || e.Level != zapcore.WarnLevel {
		t.Errorf("entry = %s/%q", e.Level, e.Message)
	}
	fields := e.ContextMap()
	want := map[string]interface{}{
		"trace_id":    "req-1",
		"worker_id":   int64(3),
		"action_type": "dfm_analyze",
		"analysis_id": "a-42",
	}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("field %s = %v, want %v", k, fields[k], v)
		}
	}
}

func TestEmptyContextHasNoFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := &ZapLogger{logger: zap.New(core)}

	l.Infof(context.Background(), "hello")
	l.Debugf(context.Background(), "filtered")

	if logs.Len() != 1 {
		t.Fatalf("got %d entries, want 1 (debug filtered)", logs.Len())
	}
	if n := len(logs.All()[0].Context); n != 0 {
		t.Errorf("got %d fields, want 0", n)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"WARN":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"":      zapcore.InfoLevel,
		"bogus": zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
