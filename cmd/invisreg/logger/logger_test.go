package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_DiscardByDefault(t *testing.T) {
	require.NoError(t, Init(Options{}))
	t.Cleanup(Close)
	assert.Nil(t, closer, "no log file without a log dir")
	assert.NotNil(t, L)
}

func TestInit_VerboseWritesDebugText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Options{Verbose: true, Stderr: &buf}))
	t.Cleanup(Close)

	L.Debug("provider call", "call", "OpenKey")
	assert.Contains(t, buf.String(), "call=OpenKey")
}

func TestInit_LogDirWritesJSON(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	require.NoError(t, Init(Options{Verbose: true, Stderr: &buf, LogDir: dir}))

	L.Info("operation complete", "op", "create")
	Close()

	name := filepath.Join(dir, logPrefix+time.Now().Format("2006-01-02")+logSuffix)
	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"op":"create"`)
	assert.Contains(t, buf.String(), "op=create")
}

func TestCleanOldLogs(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, name := range []string{
		"invisreg-2024-01-01.log", // expired
		"invisreg-2024-02-20.log", // kept
		"invisreg-garbage.log",    // unparseable, kept
		"other-2020-01-01.log",    // foreign, kept
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	cleanOldLogs(dir, now)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{
		"invisreg-2024-02-20.log", "invisreg-garbage.log", "other-2020-01-01.log",
	}, names)
}
