package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	logger := New()
	assert.NotNil(t, logger)
	assert.NotNil(t, logger.info)
	assert.NotNil(t, logger.error)
	assert.NotNil(t, logger.warn)
}

func TestInfo(t *testing.T) {
	logger := New()
	assert.NotNil(t, logger)

	// Test that Info doesn't panic
	logger.Info("Test message: %s", "info")
}

func TestNewWithWriter_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf)

	logger.Info("post %s listed", "1")
	logger.Warn("toast: %s", "Server error")
	logger.Error("failed: %d", 500)

	out := buf.String()
	assert.Contains(t, out, "INFO: ")
	assert.Contains(t, out, "post 1 listed")
	assert.Contains(t, out, "WARN: ")
	assert.Contains(t, out, "toast: Server error")
	assert.Contains(t, out, "ERROR: ")
	assert.Contains(t, out, "failed: 500")
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	assert.NotNil(t, logger)

	logger.Info("Info 1")
	logger.Error("Error 1")
	logger.Warn("Warn 1")
}
