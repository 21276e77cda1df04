package logger

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"transfer/internal/config"
)

func TestLogger_Defaults(t *testing.T) {
	log := New(&config.LoggerConfig{Level: "info", Format: "json"})
	if log == nil {
		t.Fatal("logger is nil")
	}
	if log.GetLevel() != logrus.InfoLevel {
		t.Errorf("expected info level, got %v", log.GetLevel())
	}
	log.WithField("test", "value").Info("test message")
}

func TestLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	log := New(&config.LoggerConfig{Level: "loud", Format: "text"})
	if log.GetLevel() != logrus.InfoLevel {
		t.Errorf("expected info level, got %v", log.GetLevel())
	}
}

func TestLogger_FileOutput(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "logtest")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	_ = tmpfile.Close()
	defer os.Remove(tmpfile.Name())

	log := New(&config.LoggerConfig{Level: "debug", Format: "text", File: tmpfile.Name()})
	log.Debug("file log")

	data, err := os.ReadFile(tmpfile.Name())
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "file log") {
		t.Errorf("expected log line in file, got %q", string(data))
	}
}

func TestLogger_WithFieldsAndError(t *testing.T) {
	log := Discard()
	entry := log.WithFields(logrus.Fields{"key": "value"})
	if entry == nil {
		t.Fatal("entry is nil")
	}
	if errEntry := log.WithError(errors.New("fail")); errEntry == nil {
		t.Fatal("error entry is nil")
	}
}
