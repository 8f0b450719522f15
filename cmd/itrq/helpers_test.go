package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"itrq/internal/config"
)

func TestConfiguredLogger_HonorsLevelAndFormat(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"

	var buf bytes.Buffer
	logger := configuredLogger(cfg, &buf)
	logger.Debug("cache check", map[string]interface{}{"records": 3})

	var entry struct {
		Level   string `json:"level"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\noutput: %q", err, buf.String())
	}
	if entry.Level != "debug" {
		t.Errorf("level = %q, want debug", entry.Level)
	}
	if entry.Message != "cache check" {
		t.Errorf("message = %q, want %q", entry.Message, "cache check")
	}
}

func TestConfiguredLogger_DefaultLevelSuppressesDebug(t *testing.T) {
	cfg := config.DefaultConfig()

	var buf bytes.Buffer
	logger := configuredLogger(cfg, &buf)

	logger.Debug("hidden", nil)
	if buf.Len() != 0 {
		t.Fatalf("debug logged at default level: %q", buf.String())
	}

	logger.Info("visible", nil)
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("info message missing from output: %q", buf.String())
	}
}

func TestConfiguredLogger_UnknownValuesFallBack(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logging.Level = "verbose"
	cfg.Logging.Format = "xml"

	var buf bytes.Buffer
	logger := configuredLogger(cfg, &buf)

	logger.Debug("hidden", nil)
	if buf.Len() != 0 {
		t.Fatalf("unknown level should default to info, got: %q", buf.String())
	}

	logger.Info("plain text", nil)
	if strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("unknown format should default to human, got: %q", buf.String())
	}
}
