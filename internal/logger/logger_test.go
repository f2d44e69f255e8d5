package logger_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/tally/internal/logger"
)

func TestNew_Level(t *testing.T) {
	type testCase struct {
		name  string
		level string
		want  zerolog.Level
	}

	tests := []testCase{
		{name: "Default", level: "", want: zerolog.InfoLevel},
		{name: "Debug", level: "debug", want: zerolog.DebugLevel},
		{name: "UpperCase", level: "WARN", want: zerolog.WarnLevel},
		{name: "Garbage", level: "loud", want: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := logger.New(logger.Options{Level: tt.level, Out: &bytes.Buffer{}})
			assert.Equal(t, tt.want, l.GetLevel())
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer

	l := logger.New(logger.Options{Format: "json", Out: &buf})
	l.Info().Str("file", "a.csv").Msg("accepted")

	assert.Contains(t, buf.String(), `"file":"a.csv"`)
	assert.Contains(t, buf.String(), `"message":"accepted"`)
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer

	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(&buf))
	l := logger.FromContext(ctx)
	l.Info().Msg("hello")

	assert.Contains(t, buf.String(), "hello")
}

func TestFromContext_Missing(t *testing.T) {
	l := logger.FromContext(context.Background())
	assert.Equal(t, zerolog.Disabled, l.GetLevel())
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer

	l := logger.WithFields(logger.NewWithWriter(&buf), map[string]any{"run": "r1"})
	l.Info().Msg("x")

	assert.Contains(t, buf.String(), `"run":"r1"`)
}
