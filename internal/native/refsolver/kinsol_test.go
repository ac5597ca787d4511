package refsolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunml/sundials-go/internal/native"
)

func ones(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

func newKinsol(t *testing.T, cb *native.KinsolCallbacks) (*Kinsol, native.Mem) {
	t.Helper()
	lib := NewKinsol(cb)
	mem := lib.Create()
	require.NotNil(t, mem)
	require.Equal(t, native.KINSuccess, lib.Init(mem, make([]float64, 1)))
	require.Equal(t, native.KINSuccess, lib.SetUserData(mem, 7))
	t.Cleanup(func() { lib.Free(mem) })
	return lib, mem
}

// square root of 4 by Newton on F(u) = u^2 - 4
func sqrtSys(_ uintptr, u, f []float64) int {
	f[0] = u[0]*u[0] - 4
	return 0
}

func sqrtJac(_ uintptr, u, _ []float64, jac native.Dense, _ [2][]float64) int {
	jac.Set(0, 0, 2*u[0])
	return 0
}

func TestKinsolNewtonConverges(t *testing.T) {
	lib, mem := newKinsol(t, &native.KinsolCallbacks{Sys: sqrtSys, Jac: sqrtJac})
	require.Equal(t, native.KINLSSuccess, lib.SetDenseLinearSolver(mem, 1, true))
	u := []float64{3}
	flag := lib.Solve(mem, u, native.Newton, ones(1), ones(1))
	require.Equal(t, native.KINSuccess, flag)
	assert.InDelta(t, 2, u[0], 1e-6)

	st, flag := lib.GetStats(mem)
	require.Equal(t, native.KINSuccess, flag)
	assert.Positive(t, st.Iters)
	assert.Equal(t, st.Iters, st.JacEvals)
}

func TestKinsolFixedPoint(t *testing.T) {
	lib, mem := newKinsol(t, &native.KinsolCallbacks{
		Sys: func(_ uintptr, u, g []float64) int {
			g[0] = 0.5*u[0] + 1
			return 0
		},
	})
	u := []float64{0}
	flag := lib.Solve(mem, u, native.FixedPoint, ones(1), ones(1))
	require.Equal(t, native.KINSuccess, flag)
	assert.InDelta(t, 2, u[0], 1e-4)
}

func TestKinsolInitialGuessOK(t *testing.T) {
	lib, mem := newKinsol(t, &native.KinsolCallbacks{Sys: sqrtSys, Jac: sqrtJac})
	require.Equal(t, native.KINLSSuccess, lib.SetDenseLinearSolver(mem, 1, true))
	assert.Equal(t, native.KINInitialGuessOK, lib.Solve(mem, []float64{2}, native.Newton, ones(1), ones(1)))
}

func TestKinsolNewtonNeedsLinearSolver(t *testing.T) {
	lib, mem := newKinsol(t, &native.KinsolCallbacks{Sys: sqrtSys})
	assert.Equal(t, native.KINIllInput, lib.Solve(mem, []float64{3}, native.Newton, ones(1), ones(1)))
}

func TestKinsolFirstCallRecoverable(t *testing.T) {
	lib, mem := newKinsol(t, &native.KinsolCallbacks{
		Sys: func(uintptr, []float64, []float64) int { return 1 },
	})
	assert.Equal(t, native.KINFirstSysFuncErr, lib.Solve(mem, []float64{0}, native.FixedPoint, ones(1), ones(1)))
}

func TestKinsolRepeatedRecoverable(t *testing.T) {
	calls := 0
	lib, mem := newKinsol(t, &native.KinsolCallbacks{
		Sys: func(_ uintptr, u, g []float64) int {
			calls++
			if calls > 1 {
				return 1
			}
			g[0] = u[0] + 1
			return 0
		},
	})
	assert.Equal(t, native.KINReptdSysFuncErr, lib.Solve(mem, []float64{0}, native.FixedPoint, ones(1), ones(1)))
}

func TestKinsolUnrecoverable(t *testing.T) {
	var codes []int
	lib, mem := newKinsol(t, &native.KinsolCallbacks{
		Sys:  func(uintptr, []float64, []float64) int { return -1 },
		ErrH: func(_ uintptr, code int, _, _, _ string) { codes = append(codes, code) },
	})
	require.Equal(t, native.KINSuccess, lib.SetErrHandler(mem, true))
	assert.Equal(t, native.KINSysFuncFail, lib.Solve(mem, []float64{0}, native.FixedPoint, ones(1), ones(1)))
	assert.Equal(t, []int{native.KINSysFuncFail}, codes)
}

func TestKinsolMaxIters(t *testing.T) {
	lib, mem := newKinsol(t, &native.KinsolCallbacks{
		Sys: func(_ uintptr, u, g []float64) int {
			g[0] = u[0] + 1
			return 0
		},
	})
	require.Equal(t, native.KINSuccess, lib.SetMaxIters(mem, 3))
	assert.Equal(t, native.KINMaxIterReached, lib.Solve(mem, []float64{0}, native.FixedPoint, ones(1), ones(1)))
}

func TestKinsolPreconditionerAndInfo(t *testing.T) {
	var setups, solves int
	var msgs []string
	lib, mem := newKinsol(t, &native.KinsolCallbacks{
		Sys: sqrtSys,
		PrecSetup: func(uintptr, []float64, []float64, []float64, []float64) int {
			setups++
			return 0
		},
		PrecSolve: func(_ uintptr, u, _, _, _, v []float64) int {
			solves++
			v[0] /= 2 * u[0]
			return 0
		},
		InfoH: func(_ uintptr, _, _, msg string) { msgs = append(msgs, msg) },
	})
	require.Equal(t, native.KINLSSuccess, lib.SetSPGMR(mem, 1, true, true))
	require.Equal(t, native.KINSuccess, lib.SetInfoHandler(mem, true))
	require.Equal(t, native.KINSuccess, lib.SetPrintLevel(mem, 1))
	u := []float64{3}
	require.Equal(t, native.KINSuccess, lib.Solve(mem, u, native.LineSearch, ones(1), ones(1)))
	assert.InDelta(t, 2, u[0], 1e-6)
	assert.Equal(t, setups, solves)
	assert.Len(t, msgs, solves)
}

func TestKinsolLinearSetupFailure(t *testing.T) {
	lib, mem := newKinsol(t, &native.KinsolCallbacks{
		Sys: sqrtSys,
		Jac: func(uintptr, []float64, []float64, native.Dense, [2][]float64) int { return -1 },
	})
	require.Equal(t, native.KINLSSuccess, lib.SetDenseLinearSolver(mem, 1, true))
	assert.Equal(t, native.KINLsetupFail, lib.Solve(mem, []float64{3}, native.Newton, ones(1), ones(1)))
}
