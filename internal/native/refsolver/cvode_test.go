package refsolver

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunml/sundials-go/internal/native"
)

func decay(_ uintptr, _ float64, y, ydot []float64) int {
	for i := range y {
		ydot[i] = -y[i]
	}
	return 0
}

func newDecay(t *testing.T, cb *native.CVodeCallbacks) (*CVode, native.Mem) {
	t.Helper()
	if cb.RHS == nil {
		cb.RHS = decay
	}
	lib := NewCVode(cb)
	mem := lib.Create(native.BDF)
	require.NotNil(t, mem)
	require.Equal(t, native.CVSuccess, lib.Init(mem, 0, []float64{1}))
	require.Equal(t, native.CVSuccess, lib.SetUserData(mem, 42))
	t.Cleanup(func() { lib.Free(mem) })
	return lib, mem
}

func TestCVodeDecayReachesTout(t *testing.T) {
	lib, mem := newDecay(t, &native.CVodeCallbacks{})
	y := make([]float64, 1)
	tret, flag := lib.Solve(mem, 1, y, native.Normal)
	require.Equal(t, native.CVSuccess, flag)
	assert.Equal(t, 1.0, tret)
	assert.InDelta(t, math.Exp(-1), y[0], 1e-2)

	st, flag := lib.GetStats(mem)
	require.Equal(t, native.CVSuccess, flag)
	assert.EqualValues(t, 100, st.Steps)
	assert.EqualValues(t, 100, st.RHSEvals)
}

func TestCVodePassesUserData(t *testing.T) {
	var seen uintptr
	lib, mem := newDecay(t, &native.CVodeCallbacks{
		RHS: func(ud uintptr, tt float64, y, ydot []float64) int {
			seen = ud
			return decay(ud, tt, y, ydot)
		},
	})
	_, flag := lib.Solve(mem, 0.1, make([]float64, 1), native.Normal)
	require.Equal(t, native.CVSuccess, flag)
	assert.Equal(t, uintptr(42), seen)
}

func TestCVodeRecoverableRetriesThenSucceeds(t *testing.T) {
	calls := 0
	lib, mem := newDecay(t, &native.CVodeCallbacks{
		RHS: func(ud uintptr, tt float64, y, ydot []float64) int {
			calls++
			if calls <= 3 {
				return 1
			}
			return decay(ud, tt, y, ydot)
		},
	})
	_, flag := lib.Solve(mem, 0.05, make([]float64, 1), native.Normal)
	require.Equal(t, native.CVSuccess, flag)
	st, _ := lib.GetStats(mem)
	assert.EqualValues(t, 3, st.NonlinConvFails)
}

func TestCVodeRepeatedRecoverable(t *testing.T) {
	lib, mem := newDecay(t, &native.CVodeCallbacks{
		RHS: func(uintptr, float64, []float64, []float64) int { return 1 },
	})
	_, flag := lib.Solve(mem, 1, make([]float64, 1), native.Normal)
	assert.Equal(t, native.CVReptdRhsFuncErr, flag)
}

func TestCVodeUnrecoverableRHS(t *testing.T) {
	var codes []int
	lib, mem := newDecay(t, &native.CVodeCallbacks{
		RHS:  func(uintptr, float64, []float64, []float64) int { return -1 },
		ErrH: func(_ uintptr, code int, _, _, _ string) { codes = append(codes, code) },
	})
	require.Equal(t, native.CVSuccess, lib.SetErrHandler(mem, true))
	_, flag := lib.Solve(mem, 1, make([]float64, 1), native.Normal)
	assert.Equal(t, native.CVRhsFuncFail, flag)
	assert.Equal(t, []int{native.CVRhsFuncFail}, codes)
}

func TestCVodeRootReturn(t *testing.T) {
	lib, mem := newDecay(t, &native.CVodeCallbacks{
		Roots: func(_ uintptr, _ float64, y, g []float64) int {
			g[0] = y[0] - 0.5
			return 0
		},
	})
	require.Equal(t, native.CVSuccess, lib.RootInit(mem, 1))
	y := make([]float64, 1)
	tret, flag := lib.Solve(mem, 2, y, native.Normal)
	require.Equal(t, native.CVRootReturn, flag)
	assert.InDelta(t, math.Ln2, tret, 0.02)

	info := make([]int, 1)
	require.Equal(t, native.CVSuccess, lib.GetRootInfo(mem, info))
	assert.Equal(t, []int{-1}, info)
}

func TestCVodeStopTime(t *testing.T) {
	lib, mem := newDecay(t, &native.CVodeCallbacks{})
	require.Equal(t, native.CVSuccess, lib.SetStopTime(mem, 0.25))
	tret, flag := lib.Solve(mem, 1, make([]float64, 1), native.Normal)
	assert.Equal(t, native.CVTstopReturn, flag)
	assert.Equal(t, 0.25, tret)
}

func TestCVodeTooMuchWork(t *testing.T) {
	lib, mem := newDecay(t, &native.CVodeCallbacks{})
	require.Equal(t, native.CVSuccess, lib.SetMaxNumSteps(mem, 10))
	_, flag := lib.Solve(mem, 1, make([]float64, 1), native.Normal)
	assert.Equal(t, native.CVTooMuchWork, flag)
}

func TestCVodeTooClose(t *testing.T) {
	lib, mem := newDecay(t, &native.CVodeCallbacks{})
	_, flag := lib.Solve(mem, 0, make([]float64, 1), native.Normal)
	assert.Equal(t, native.CVTooClose, flag)
}

func TestCVodeWrongLength(t *testing.T) {
	lib, mem := newDecay(t, &native.CVodeCallbacks{})
	_, flag := lib.Solve(mem, 1, make([]float64, 2), native.Normal)
	assert.Equal(t, native.CVIllInput, flag)
}

func TestCVodeOneStep(t *testing.T) {
	lib, mem := newDecay(t, &native.CVodeCallbacks{})
	tret, flag := lib.Solve(mem, 1, make([]float64, 1), native.OneStep)
	require.Equal(t, native.CVSuccess, flag)
	assert.InDelta(t, defaultInitStep, tret, 1e-15)
}

func TestCVodeJacobianAndProjection(t *testing.T) {
	var jacCalls, projCalls int
	lib, mem := newDecay(t, &native.CVodeCallbacks{
		Jac: func(_ uintptr, _ float64, _, _ []float64, jac native.Dense, _ [3][]float64) int {
			jacCalls++
			jac.Set(0, 0, -1)
			return 0
		},
		Proj: func(_ uintptr, _ float64, _, corr []float64, _ float64, _ []float64) int {
			projCalls++
			corr[0] = 0
			return 0
		},
	})
	require.Equal(t, native.CVLSSuccess, lib.SetDenseLinearSolver(mem, 1, true))
	require.Equal(t, native.CVSuccess, lib.SetProjFn(mem, true))
	_, flag := lib.Solve(mem, 0.1, make([]float64, 1), native.Normal)
	require.Equal(t, native.CVSuccess, flag)
	assert.Equal(t, 10, jacCalls)
	assert.Equal(t, 10, projCalls)
}

func TestCVodeProjectionRequiresBDF(t *testing.T) {
	lib := NewCVode(&native.CVodeCallbacks{RHS: decay})
	mem := lib.Create(native.Adams)
	defer lib.Free(mem)
	require.Equal(t, native.CVSuccess, lib.Init(mem, 0, []float64{1}))
	assert.Equal(t, native.CVIllInput, lib.SetProjFn(mem, true))
}

func TestCVodePreconditioner(t *testing.T) {
	var setups, solves int
	lib, mem := newDecay(t, &native.CVodeCallbacks{
		PrecSetup: func(uintptr, float64, []float64, []float64, bool, float64) (bool, int) {
			setups++
			return true, 0
		},
		PrecSolve: func(_ uintptr, _ float64, _, _, r, z []float64, _, _ float64, left bool) int {
			solves++
			require.True(t, left)
			copy(z, r)
			return 0
		},
	})
	require.Equal(t, native.CVLSSuccess, lib.SetSPGMR(mem, 1, true, true))
	_, flag := lib.Solve(mem, 0.05, make([]float64, 1), native.Normal)
	require.Equal(t, native.CVSuccess, flag)
	assert.Equal(t, 5, setups)
	assert.Equal(t, 5, solves)
}

func TestCVodeMonitorFailure(t *testing.T) {
	lib, mem := newDecay(t, &native.CVodeCallbacks{
		Monitor: func(uintptr, float64) int { return -1 },
	})
	require.Equal(t, native.CVSuccess, lib.SetMonitorFn(mem, 2))
	_, flag := lib.Solve(mem, 1, make([]float64, 1), native.Normal)
	assert.Equal(t, native.CVErrFailure, flag)
}

func TestCVodeFreeIsIdempotent(t *testing.T) {
	before := Live()
	lib := NewCVode(&native.CVodeCallbacks{RHS: decay})
	mem := lib.Create(native.BDF)
	assert.Equal(t, before+1, Live())
	lib.Free(mem)
	lib.Free(mem)
	assert.Equal(t, before, Live())
	_, flag := lib.Solve(mem, 1, make([]float64, 1), native.Normal)
	assert.Equal(t, native.CVMemNull, flag)
}

func TestCVodeRootInitAfterSolve(t *testing.T) {
	lib, mem := newDecay(t, &native.CVodeCallbacks{
		Roots: func(_ uintptr, _ float64, y, g []float64) int {
			g[0] = y[0] - 0.3
			return 0
		},
	})
	y := make([]float64, 1)
	_, flag := lib.Solve(mem, 0.5, y, native.Normal)
	require.Equal(t, native.CVSuccess, flag)

	require.Equal(t, native.CVSuccess, lib.RootInit(mem, 1))
	tret, flag := lib.Solve(mem, 2, y, native.Normal)
	require.Equal(t, native.CVRootReturn, flag)
	assert.InDelta(t, math.Log(1/0.3), tret, 2e-2)

	info := make([]int, 1)
	require.Equal(t, native.CVSuccess, lib.GetRootInfo(mem, info))
	assert.Equal(t, []int{-1}, info)
}
