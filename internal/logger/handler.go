package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// bracketHandler implements slog.Handler with the classic bracketed format:
// "2026/03/01 11:55:11 [INFO] message key=value"
type bracketHandler struct {
	output io.Writer
	level  slog.Level
	attrs  []slog.Attr

	mu sync.Mutex
}

// Enabled returns whether the handler should log at the given level
func (h *bracketHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle formats and writes log records
func (h *bracketHandler) Handle(_ context.Context, record slog.Record) error {
	timestamp := record.Time.Format("2006/01/02 15:04:05")

	var levelStr string
	switch record.Level {
	case slog.LevelDebug:
		levelStr = "DEBUG"
	case slog.LevelWarn:
		levelStr = "WARN"
	case slog.LevelError:
		levelStr = "ERROR"
	default:
		levelStr = "INFO"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s] %s", timestamp, levelStr, record.Message)
	for _, attr := range h.attrs {
		fmt.Fprintf(&sb, " %s=%v", attr.Key, attr.Value)
	}
	record.Attrs(func(attr slog.Attr) bool {
		fmt.Fprintf(&sb, " %s=%v", attr.Key, attr.Value)
		return true
	})
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.output.Write([]byte(sb.String()))
	return err
}

// WithAttrs returns a new handler with additional attributes
func (h *bracketHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &bracketHandler{
		output: h.output,
		level:  h.level,
		attrs:  append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

// WithGroup ignores the group name and returns the same handler;
// attributes are rendered without a group prefix
func (h *bracketHandler) WithGroup(string) slog.Handler {
	return h
}
