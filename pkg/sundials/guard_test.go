package sundials

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTranslated = errors.New("translated")

func translateAll(string, int) error { return errTranslated }

func TestGuardEnterExit(t *testing.T) {
	var g Guard
	require.NoError(t, g.Enter())
	assert.True(t, g.Active())
	require.ErrorIs(t, g.Enter(), ErrReentrant)
	g.Exit()
	assert.False(t, g.Active())

	assert.True(t, g.MarkFreed())
	assert.False(t, g.MarkFreed())
	assert.True(t, g.Freed())
	require.ErrorIs(t, g.Enter(), ErrUseAfterFree)
	require.ErrorIs(t, g.Check(), ErrUseAfterFree)
}

func TestGuardFirstStashWins(t *testing.T) {
	var g Guard
	first, second := errors.New("first"), errors.New("second")
	assert.True(t, g.Stash(first))
	assert.False(t, g.Stash(second))
	assert.Same(t, first, g.Stashed())
}

func TestGuardEnterClearsStaleStash(t *testing.T) {
	var g Guard
	g.Stash(errors.New("stale"))
	require.NoError(t, g.Enter())
	defer g.Exit()
	assert.NoError(t, g.Stashed())
}

func TestReraise(t *testing.T) {
	var g Guard
	fault := errors.New("fault")

	t.Run("stash wins over code", func(t *testing.T) {
		g.Stash(fault)
		err := g.Reraise("CVode", -1, translateAll)
		require.Same(t, fault, err)
		assert.NoError(t, g.Stashed())
	})
	t.Run("stash wins over success", func(t *testing.T) {
		g.Stash(fault)
		require.Same(t, fault, g.Reraise("CVode", 0, translateAll))
	})
	t.Run("negative code is translated", func(t *testing.T) {
		require.Same(t, errTranslated, g.Reraise("CVode", -1, translateAll))
	})
	t.Run("informational codes are success", func(t *testing.T) {
		require.NoError(t, g.Reraise("CVode", 2, translateAll))
	})
	t.Run("no translator", func(t *testing.T) {
		var ie *InternalSolverError
		require.ErrorAs(t, g.Reraise("CVode", -99, nil), &ie)
		assert.Equal(t, -99, ie.Code)
	})
}
