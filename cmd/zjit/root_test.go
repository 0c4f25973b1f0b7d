package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log.path", filepath.Join(t.TempDir(), "zjit.log")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestExplainDedup(t *testing.T) {
	out, err := run(t, "explain", "dedup")
	require.NoError(t, err)
	assert.Contains(t, out, "original:   sliceSource -> filterNulls -> distinct -> filter -> mapToInt -> distinct -> toSet\n")
	assert.Contains(t, out, "simplified: sliceSource -> filterNulls -> distinct -> filter -> mapToInt -> distinct -> toSet\n")
	assert.Contains(t, out, "package query\n")
	assert.Contains(t, out, "func Execute(params []any) any {\n")
}

func TestExplainRewrites(t *testing.T) {
	out, err := run(t, "explain", "--tree", "sorted-reverse")
	require.NoError(t, err)
	assert.Contains(t, out, "simplified: sliceSource -> sortedNaturalReverse -> toList\n")
	out, err = run(t, "explain", "values")
	require.NoError(t, err)
	assert.Contains(t, out, "simplified: multimapSource -> multimapValueCount\n")
}

func TestExplainInterpreted(t *testing.T) {
	out, err := run(t, "explain", "flatten")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "interpreted: "), out)
}

func TestExplainUnknownDemo(t *testing.T) {
	_, err := run(t, "explain", "nope")
	assert.ErrorContains(t, err, `no demo named "nope"`)
}

func TestDemos(t *testing.T) {
	out, err := run(t, "demos")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(demos))
	assert.True(t, strings.HasPrefix(lines[0], "dedup "), lines[0])
}

func TestBench(t *testing.T) {
	out, err := run(t, "bench", "-n", "2", "-i", "3", "top", "flatten")
	require.NoError(t, err)
	assert.Contains(t, out, "12 runs in ")
	assert.Contains(t, out, "shapes 2, compilations 2, interpreted 1\n")
	assert.Contains(t, out, "misses 2, ")

	out, err = run(t, "--backend", "source", "bench", "-n", "1", "-i", "2", "sum")
	require.NoError(t, err)
	assert.Contains(t, out, "shapes 1, compilations 1, interpreted 0\n")

	_, err = run(t, "bench", "-n", "0")
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zjit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: bogus\n"), 0666))
	_, err := run(t, "--config", path, "bench", "sum")
	assert.Error(t, err)
}
