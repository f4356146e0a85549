package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSetIgnoresNil(t *testing.T) {
	before := Get()
	Set(nil)
	assert.Equal(t, before, Get())
}

func TestSetReplacesLogger(t *testing.T) {
	before := Get()
	t.Cleanup(func() { Set(before) })

	l := zap.NewNop().Sugar()
	Set(l)
	assert.Same(t, l, Get())
}

func TestNewRunLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run_20250101_120000.log")

	l, closeFn, err := NewRunLogger(path, true)
	require.NoError(t, err)
	l.Infow("processed", "file", "a.jpg")
	l.Debugw("detail", "step", 1)
	closeFn()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"file":"a.jpg"`)
}
