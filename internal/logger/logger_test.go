package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"globlex/internal/config"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	l.Info().Msg("hidden")
	l.Warn().Str("run", "r1").Msg("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if entry["message"] != "shown" || entry["run"] != "r1" || entry["level"] != "warn" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNewWithWriter_SetsGlobal(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(config.LogConfig{Level: "bogus", Format: "console"}, &buf)
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	log.Info().Msg("via global")
	if !strings.Contains(buf.String(), "via global") {
		t.Errorf("global logger not redirected: %q", buf.String())
	}
}
