package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

// TestNew_LevelFiltering tests that messages below the configured level
// are dropped.
func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Format: "text", Writer: &buf})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	logger.Info("filtered out")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "filtered out") {
		t.Error("Info message survived a warn-level logger")
	}
	if !strings.Contains(out, "kept") {
		t.Error("Warn message missing")
	}
}

// TestNew_JSONFormat tests that the JSON handler emits parsable lines.
func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	logger.Info("structured", "component", "test")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if entry["msg"] != "structured" || entry["component"] != "test" {
		t.Errorf("Unexpected entry: %v", entry)
	}
}

// TestNew_Defaults tests that empty level and format fall back to
// info/text.
func TestNew_Defaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Writer: &buf})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	logger.Debug("dropped at default level")
	logger.Info("visible")

	out := buf.String()
	if strings.Contains(out, "dropped at default level") {
		t.Error("Debug message survived the default info level")
	}
	if !strings.Contains(out, "visible") {
		t.Error("Info message missing")
	}
}

// TestNew_InvalidSettings tests rejection of unknown levels and formats.
func TestNew_InvalidSettings(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("New() accepted unknown level")
	}
	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Error("New() accepted unknown format")
	}
}
