package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := ErrUnavailable.With("delete", `HKCU:\SOFTWARE\X\Y`)
	err.Status = 0xC0000034

	require.ErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrPermission)

	wrapped := fmt.Errorf("outer: %w", err)
	require.ErrorIs(t, wrapped, ErrUnavailable)
	assert.Equal(t, ErrKindUnavailable, KindOf(wrapped))
}

func TestError_MessageCarriesContext(t *testing.T) {
	err := ErrOpenKey.With("set", `HKLM:\SOFTWARE\Nope`).Wrap(ErrUnavailable)

	msg := err.Error()
	assert.Contains(t, msg, "set: failed to open the registry key")
	assert.Contains(t, msg, `HKLM:\SOFTWARE\Nope`)
	assert.Contains(t, msg, "registry key is unavailable")

	// The cause stays reachable through the chain.
	require.ErrorIs(t, err, ErrOpenKey)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestError_WithDoesNotMutateSentinel(t *testing.T) {
	_ = ErrDelete.With("delete", "x")
	assert.Empty(t, ErrDelete.Op)
	assert.Empty(t, ErrDelete.Path)
}

func TestKindOf_NonTyped(t *testing.T) {
	assert.Equal(t, ErrKind(0), KindOf(errors.New("plain")))
	assert.Equal(t, ErrKind(0), KindOf(nil))
}

func TestErrKind_String(t *testing.T) {
	assert.Equal(t, "permission-denied", ErrKindPermission.String())
	assert.Equal(t, "kind(99)", ErrKind(99).String())
}
