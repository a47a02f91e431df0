package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelWarn, Output: &buf})

	log.Debug("too quiet")
	log.Info("still too quiet")
	log.Warn("this one lands")

	output := buf.String()
	assert.NotContains(t, output, "too quiet")
	assert.Contains(t, output, "[WARN] this one lands")
}

func TestBracketFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelDebug, Output: &buf})

	log.Infof("processed %d assets", 42)
	assert.Contains(t, buf.String(), "[INFO] processed 42 assets")

	buf.Reset()
	log.Debug("scanning", "table", "ZASSET")
	assert.Contains(t, buf.String(), "[DEBUG] scanning table=ZASSET")
}

func TestUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "nonsense", Output: &buf})

	log.Debug("hidden")
	log.Info("visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}
