package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingWriter struct{}

func (fw *failingWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func TestMonitorMode(t *testing.T) {
	require.NoError(t, Init(true, "DEBUG", "text", false, ""))

	slog.Info("Initial log")

	var pane bytes.Buffer
	require.NoError(t, SetOutput(&pane))
	assert.Contains(t, pane.String(), "Initial log", "buffered log should be flushed")

	slog.Info("Live log")
	assert.Contains(t, pane.String(), "Live log")

	BufferOutput()
	slog.Info("Buffered log")
	assert.NotContains(t, pane.String(), "Buffered log")

	require.NoError(t, Close())
}

func TestFileLogging(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "gowiring.log")
	require.NoError(t, Init(false, "INFO", "json", true, logFile))

	slog.Debug("not logged")
	slog.Info("pin set", "pin", 7)
	require.NoError(t, Close())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"pin set"`)
	assert.Contains(t, string(content), `"pin":7`)
	assert.NotContains(t, string(content), "not logged")
}

func TestBufferFlushedToFileOnClose(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "gowiring.log")
	require.NoError(t, Init(true, "INFO", "text", true, logFile))
	slog.Info("held back")
	require.NoError(t, Close())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	// once teed while logging, once flushed from the buffer
	assert.Equal(t, 2, strings.Count(string(content), "held back"))
}

func TestInitBadFile(t *testing.T) {
	err := Init(false, "INFO", "text", true, filepath.Join(t.TempDir(), "missing", "x.log"))
	assert.Error(t, err)
}

func TestStderrFallback(t *testing.T) {
	require.NoError(t, Init(true, "DEBUG", "text", false, ""))
	slog.Info("Shutdown log")

	oldStderr := os.Stderr
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stderr = w
	t.Cleanup(func() { os.Stderr = oldStderr })

	var wg sync.WaitGroup
	wg.Add(1)
	var captured string
	go func() {
		defer wg.Done()
		buf := make([]byte, 1024)
		n, _ := r.Read(buf)
		captured = string(buf[:n])
	}()

	require.NoError(t, Close())
	w.Close()
	wg.Wait()
	assert.Contains(t, captured, "Shutdown log")
}

func TestWriteErrorPropagates(t *testing.T) {
	require.NoError(t, Init(false, "INFO", "text", false, ""))
	require.NoError(t, SetOutput(&failingWriter{}))
	_, err := writer.Write([]byte("x"))
	assert.EqualError(t, err, "write failed")
	require.NoError(t, SetOutput(os.Stderr))
}

func TestSetOutputFlushError(t *testing.T) {
	require.NoError(t, Init(true, "INFO", "text", false, ""))
	slog.Info("pending")
	assert.Error(t, SetOutput(&failingWriter{}))
	require.NoError(t, SetOutput(&bytes.Buffer{}))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
