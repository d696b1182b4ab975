package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/invisreg/pkg/types"
)

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestApply(t *testing.T) {
	mem := useMemory(t)

	path := writeManifest(t, `
operations:
  - create: HKCU:\SOFTWARE\X\Y
    type: dword
    value: "1337"
  - create: HKCU:\SOFTWARE\X\K
    key: true
  - query: HKCU:\SOFTWARE\X\Y
`)
	out, err := captureOutput(t, func() error { return runApply(context.Background(), []string{path}) })
	require.NoError(t, err)
	assert.Contains(t, out, "0x00000539 (1337) (hidden)")
	assert.Contains(t, out, "3 of 3 operation(s) applied")

	subkeys, _ := mem.VisibleSubkeyNames(types.HiveCurrentUser, `SOFTWARE\X`)
	assert.Equal(t, []string{""}, subkeys)
}

func TestApply_InvalidManifestRunsNothing(t *testing.T) {
	mem := useMemory(t)

	path := writeManifest(t, `
operations:
  - create: HKCU:\SOFTWARE\X\K
    key: true
  - create: HKCU:\SOFTWARE\X\Y
    delete: HKCU:\SOFTWARE\X\Y
`)
	_, err := captureOutput(t, func() error { return runApply(context.Background(), []string{path}) })
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMultipleOps)

	subkeys, _ := mem.VisibleSubkeyNames(types.HiveCurrentUser, `SOFTWARE\X`)
	assert.Empty(t, subkeys)
}

func TestApply_KeepGoing(t *testing.T) {
	mem := useMemory(t)

	path := writeManifest(t, `
operations:
  - delete: HKCU:\SOFTWARE\X\Missing
  - create: HKCU:\SOFTWARE\X\K
    key: true
`)

	t.Run("stops at first failure", func(t *testing.T) {
		_, err := captureOutput(t, func() error { return runApply(context.Background(), []string{path}) })
		assert.ErrorIs(t, err, types.ErrUnavailable)
		subkeys, _ := mem.VisibleSubkeyNames(types.HiveCurrentUser, `SOFTWARE\X`)
		assert.Empty(t, subkeys)
	})

	t.Run("keep going", func(t *testing.T) {
		applyKeepGoing = true
		out, err := captureOutput(t, func() error { return runApply(context.Background(), []string{path}) })
		assert.ErrorIs(t, err, types.ErrUnavailable)
		assert.Contains(t, out, "1 of 2 operation(s) applied")
		subkeys, _ := mem.VisibleSubkeyNames(types.HiveCurrentUser, `SOFTWARE\X`)
		assert.Equal(t, []string{""}, subkeys)
	})
}

func TestApply_RegExportRoundTrip(t *testing.T) {
	mem := useMemory(t)
	ctx := context.Background()

	setFlag(t, &createType, "sz")
	setFlag(t, &createValue, "secret")
	_, err := captureOutput(t, func() error { return runCreate(ctx, []string{`HKCU:\SOFTWARE\X\V`}) })
	require.NoError(t, err)

	queryFormat = "reg"
	export, err := captureOutput(t, func() error { return runQuery(ctx, []string{`HKCU:\SOFTWARE\X`}) })
	require.NoError(t, err)

	createType.reset()
	createValue.reset()
	_, err = captureOutput(t, func() error { return runDelete(ctx, []string{`HKCU:\SOFTWARE\X\V`}) })
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "exported.reg")
	require.NoError(t, os.WriteFile(path, []byte(export), 0o600))
	_, err = captureOutput(t, func() error { return runApply(ctx, []string{path}) })
	require.NoError(t, err)

	names, _ := mem.VisibleValueNames(types.HiveCurrentUser, `SOFTWARE\X`)
	assert.Equal(t, []string{""}, names, "the imported value must be hidden again")

	queryFormat = "text"
	out, err := captureOutput(t, func() error { return runQuery(ctx, []string{`HKCU:\SOFTWARE\X\V`}) })
	require.NoError(t, err)
	assert.Contains(t, out, `"secret" (hidden)`)
}
