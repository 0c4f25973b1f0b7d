package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileMode(t *testing.T) {
	var m FileMode
	require.NoError(t, m.Set(""))
	assert.Equal(t, FileModeAppend, m)
	require.NoError(t, m.Set("rotate"))
	assert.Equal(t, FileModeRotate, m)
	assert.Error(t, m.Set("sideways"))
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zjit.log")
	l, err := New(Config{Level: zap.InfoLevel, Mode: FileModeTruncate, Path: path})
	require.NoError(t, err)
	l.Debug("hidden")
	l.Info("Compiled query shape", zap.String("plan", "sliceSource -> count"))
	require.NoError(t, l.Sync())
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"plan":"sliceSource -> count"`)
	assert.NotContains(t, string(b), "hidden")
}

func TestOpenFileModes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zjit.log")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0644))
	w, err := OpenFile(path, FileModeAppend)
	require.NoError(t, err)
	_, err = w.Write([]byte("new\n"))
	require.NoError(t, err)
	require.NoError(t, w.(*os.File).Close())
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\nnew\n", string(b))

	w, err = OpenFile(path, FileModeTruncate)
	require.NoError(t, err)
	require.NoError(t, w.(*os.File).Close())
	b, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, b)

	_, err = OpenFile(filepath.Join(t.TempDir(), "missing", "zjit.log"), FileModeRotate)
	assert.Error(t, err)
	w, err = OpenFile("stdout", FileModeTruncate)
	require.NoError(t, err)
	assert.NotNil(t, w)
}
