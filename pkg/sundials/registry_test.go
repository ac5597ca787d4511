package sundials

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probe struct{ name string }

func TestRegistryResolve(t *testing.T) {
	p := &probe{name: "a"}
	ud := Register(p)
	t.Cleanup(func() { Unregister(ud) })

	got, err := Resolve[probe](ud)
	require.NoError(t, err)
	assert.Same(t, p, got)

	_, err = Resolve[Guard](ud)
	require.ErrorIs(t, err, ErrUseAfterFree)

	_, err = Resolve[probe](0)
	require.ErrorIs(t, err, ErrUseAfterFree)
	runtime.KeepAlive(p)
}

func TestRegistryKeysAreNotReused(t *testing.T) {
	a := Register(&probe{})
	Unregister(a)
	Unregister(a)
	b := Register(&probe{})
	t.Cleanup(func() { Unregister(b) })

	assert.NotEqual(t, a, b)
	_, err := Resolve[probe](a)
	require.ErrorIs(t, err, ErrUseAfterFree)
}

func TestRegistryDoesNotKeepValuesAlive(t *testing.T) {
	ud := Register(&probe{name: "collectable"})
	t.Cleanup(func() { Unregister(ud) })
	require.Eventually(t, func() bool {
		runtime.GC()
		_, err := Resolve[probe](ud)
		return err != nil
	}, 5*time.Second, 10*time.Millisecond)
}
