// Package logging sets up log/slog for the gowiring command. Output can be
// held back in memory while the monitor owns the terminal and is flushed to
// whatever takes over, optionally teed to a file all the time.
package logging

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// teeWriter holds log output in memory while buffering, otherwise passes it
// to target. Everything also goes to file when one is configured.
type teeWriter struct {
	mu        sync.Mutex
	pending   bytes.Buffer
	target    io.Writer
	file      *os.File
	buffering bool
}

func (w *teeWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var firstErr error
	switch {
	case w.buffering:
		w.pending.Write(p)
	case w.target != nil:
		if _, err := w.target.Write(p); err != nil {
			firstErr = err
		}
	}
	if w.file != nil {
		if _, err := w.file.Write(p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return len(p), firstErr
}

var writer = &teeWriter{target: os.Stderr}

// ParseLevel maps DEBUG, INFO, WARN and ERROR to their slog levels. Anything
// else is INFO.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Init installs the default slog logger. With bufferOutput set nothing is
// written until SetOutput; otherwise logs go to stderr.
func Init(bufferOutput bool, levelStr, formatStr string, logToFile bool, logFilePath string) error {
	w := &teeWriter{buffering: bufferOutput}
	if !bufferOutput {
		w.target = os.Stderr
	}
	if logToFile {
		file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		w.file = file
	}
	writer = w

	opts := &slog.HandlerOptions{Level: ParseLevel(levelStr)}
	var handler slog.Handler
	if strings.EqualFold(formatStr, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// SetOutput writes what was buffered to target and logs there from now on.
func SetOutput(target io.Writer) error {
	writer.mu.Lock()
	defer writer.mu.Unlock()

	if writer.pending.Len() > 0 {
		if _, err := target.Write(writer.pending.Bytes()); err != nil {
			return err
		}
		writer.pending.Reset()
	}
	writer.target = target
	writer.buffering = false
	return nil
}

// BufferOutput holds log output back until the next SetOutput or Close.
func BufferOutput() {
	writer.mu.Lock()
	defer writer.mu.Unlock()
	writer.target = nil
	writer.buffering = true
}

// Close flushes held back output, to the log file when there is one and to
// stderr otherwise, and closes the file.
func Close() error {
	writer.mu.Lock()
	defer writer.mu.Unlock()

	var firstErr error
	if writer.pending.Len() > 0 {
		var dst io.Writer = os.Stderr
		if writer.file != nil {
			dst = writer.file
		}
		if _, err := dst.Write(writer.pending.Bytes()); err != nil {
			firstErr = err
		}
		writer.pending.Reset()
	}
	if writer.file != nil {
		if err := writer.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		writer.file = nil
	}
	return firstErr
}
