package log

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestToFields(t *testing.T) {
	now := time.Now()
	err := errors.New("boom")

	tests := []struct {
		name  string
		input []any
		want  int
	}{
		{"empty input", []any{}, 0},
		{"string-int-bool", []any{"a", "x", "b", 123, "c", true}, 3},
		{"time type", []any{"t", now}, 1},
		{"error only", []any{err}, 1},
		{"multiple errors", []any{err, errors.New("again")}, 2},
		{"mixed field types", []any{"msg", "ok", zap.String("x", "y"), "num", 42}, 3},
		{"odd number of args", []any{"key1", "val1", "key2"}, 2},
		{"non-string key", []any{123, "value", true, 99}, 2},
		{"nil values", []any{"a", nil, "b", (*int)(nil)}, 2},
		{"string slice", []any{"modes", []string{"update", "inventory"}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := toFields(tt.input...)
			require.Len(t, fields, tt.want)
			for _, f := range fields {
				assert.NotEmpty(t, f.Key)
			}
		})
	}
}

func TestToFieldsTypes(t *testing.T) {
	fields := toFields("count", 3, "ok", true, "wait", time.Second)
	require.Len(t, fields, 3)
	assert.Equal(t, zapcore.Int64Type, fields[0].Type)
	assert.Equal(t, zapcore.BoolType, fields[1].Type)
	assert.Equal(t, zapcore.DurationType, fields[2].Type)
}

func TestApplyVerbosity(t *testing.T) {
	tests := []struct {
		verbosity int
		trace     bool
		want      string
	}{
		{0, false, "error"},
		{1, false, "warn"},
		{2, false, "info"},
		{5, false, "debug"},
		{0, true, "debug"},
	}
	for _, tt := range tests {
		o := NewOptions()
		o.ApplyVerbosity(tt.verbosity, tt.trace)
		assert.Equal(t, tt.want, o.Level, "verbosity=%d trace=%v", tt.verbosity, tt.trace)
		assert.Empty(t, o.Validate())
	}
}

func TestValidateRejectsUnknownFormat(t *testing.T) {
	o := NewOptions()
	o.Format = "xml"
	assert.Len(t, o.Validate(), 1)
}
