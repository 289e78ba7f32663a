package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewStampsServiceField(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf, "worker")

	log.Info().Msg("poll started")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if line["service"] != "worker" {
		t.Fatalf("service = %v, want worker", line["service"])
	}
	if line["message"] != "poll started" {
		t.Fatalf("message = %v, want poll started", line["message"])
	}
}

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		env  string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run("LOG_LEVEL="+tt.env, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.env)
			if got := levelFromEnv(); got != tt.want {
				t.Errorf("levelFromEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDebugSuppressedAtInfoLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "info")
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf, "api")

	log.Debug().Msg("hidden")

	if buf.Len() != 0 {
		t.Fatalf("debug line emitted at info level: %s", buf.String())
	}
}
