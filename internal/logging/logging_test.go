package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewWithOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput("debug", "json", &buf)
	if logger.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %s", logger.GetLevel())
	}
	logger.WithField("requirement_id", "AC.L2-3.1.1").Info("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json output: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "hello" || entry["requirement_id"] != "AC.L2-3.1.1" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNewWithOutputUnknownLevel(t *testing.T) {
	logger := NewWithOutput("loud", "text", &bytes.Buffer{})
	if logger.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected info fallback, got %s", logger.GetLevel())
	}
}
