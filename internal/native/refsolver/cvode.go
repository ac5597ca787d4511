package refsolver

import (
	"fmt"
	"math"

	"github.com/sunml/sundials-go/internal/native"
)

type linearSolver int

const (
	lsNone linearSolver = iota
	lsDense
	lsSPGMR
)

// CVode emulates the CVODE entry points. Callbacks are forwarded to the
// table given to NewCVode.
type CVode struct {
	cb *native.CVodeCallbacks
}

// NewCVode returns an emulated CVODE library forwarding callbacks to cb.
func NewCVode(cb *native.CVodeCallbacks) *CVode {
	if cb == nil {
		cb = &native.CVodeCallbacks{}
	}
	return &CVode{cb: cb}
}

type cvMem struct {
	freed  bool
	inited bool
	lmm    native.LMM
	ud     uintptr
	errh   bool

	t     float64
	y     []float64
	fresh bool

	rtol, atol float64
	maxSteps   int64
	tstop      float64
	hasStop    bool
	h0         float64

	nroots     int
	gprev      []float64
	rootsFound []int

	ls        linearSolver
	userJac   bool
	precSetup bool
	precSolve bool
	proj      bool
	monFreq   int64

	stats native.CVodeStats
}

func (c *CVode) mem(mem native.Mem) *cvMem {
	m, _ := mem.(*cvMem)
	if m == nil || m.freed {
		return nil
	}
	return m
}

func (c *CVode) Create(lmm native.LMM) native.Mem {
	if lmm != native.Adams && lmm != native.BDF {
		return nil
	}
	live.Add(1)
	return &cvMem{lmm: lmm, maxSteps: defaultMaxSteps, rtol: 1e-4, atol: 1e-8}
}

func (c *CVode) Init(mem native.Mem, t0 float64, y0 []float64) int {
	m := c.mem(mem)
	if m == nil {
		return native.CVMemNull
	}
	if len(y0) == 0 {
		return c.fail(m, native.CVIllInput, "CVodeInit", "y0 = NULL illegal.")
	}
	m.t = t0
	m.y = append([]float64(nil), y0...)
	m.inited = true
	m.fresh = true
	m.stats = native.CVodeStats{CurrentTime: t0}
	return native.CVSuccess
}

func (c *CVode) SetUserData(mem native.Mem, ud uintptr) int {
	m := c.mem(mem)
	if m == nil {
		return native.CVMemNull
	}
	m.ud = ud
	return native.CVSuccess
}

func (c *CVode) SetErrHandler(mem native.Mem, on bool) int {
	m := c.mem(mem)
	if m == nil {
		return native.CVMemNull
	}
	m.errh = on
	return native.CVSuccess
}

func (c *CVode) SStolerances(mem native.Mem, rtol, atol float64) int {
	m := c.mem(mem)
	if m == nil {
		return native.CVMemNull
	}
	if !m.inited {
		return c.fail(m, native.CVNoMalloc, "CVodeSStolerances", "Attempt to call before CVodeInit.")
	}
	if rtol < 0 {
		return c.fail(m, native.CVIllInput, "CVodeSStolerances", "rtol < 0 illegal.")
	}
	if atol < 0 {
		return c.fail(m, native.CVIllInput, "CVodeSStolerances", "atol has negative component(s) (illegal).")
	}
	m.rtol, m.atol = rtol, atol
	return native.CVSuccess
}

func (c *CVode) SetMaxNumSteps(mem native.Mem, n int64) int {
	m := c.mem(mem)
	if m == nil {
		return native.CVMemNull
	}
	if n == 0 {
		n = defaultMaxSteps
	}
	m.maxSteps = n
	return native.CVSuccess
}

func (c *CVode) SetStopTime(mem native.Mem, tstop float64) int {
	m := c.mem(mem)
	if m == nil {
		return native.CVMemNull
	}
	if m.inited && !m.fresh && (tstop-m.t)*m.stats.LastStep < 0 {
		return c.fail(m, native.CVIllInput, "CVodeSetStopTime",
			fmt.Sprintf("The value tstop = %g is behind current t = %g in the direction of integration.", tstop, m.t))
	}
	m.tstop, m.hasStop = tstop, true
	return native.CVSuccess
}

func (c *CVode) SetInitStep(mem native.Mem, h float64) int {
	m := c.mem(mem)
	if m == nil {
		return native.CVMemNull
	}
	m.h0 = h
	return native.CVSuccess
}

func (c *CVode) RootInit(mem native.Mem, nroots int) int {
	m := c.mem(mem)
	if m == nil {
		return native.CVMemNull
	}
	if nroots < 0 {
		return c.fail(m, native.CVIllInput, "CVodeRootInit", "nrtfn < 0 illegal.")
	}
	m.nroots = nroots
	m.gprev = nil
	m.rootsFound = make([]int, nroots)
	return native.CVSuccess
}

func (c *CVode) SetDenseLinearSolver(mem native.Mem, n int, userJac bool) int {
	m := c.mem(mem)
	if m == nil {
		return native.CVLSMemNull
	}
	if !m.inited || n != len(m.y) {
		return native.CVLSIllInput
	}
	m.ls, m.userJac = lsDense, userJac
	m.precSetup, m.precSolve = false, false
	return native.CVLSSuccess
}

func (c *CVode) SetSPGMR(mem native.Mem, n int, precSetup, precSolve bool) int {
	m := c.mem(mem)
	if m == nil {
		return native.CVLSMemNull
	}
	if !m.inited || n != len(m.y) || (precSetup && !precSolve) {
		return native.CVLSIllInput
	}
	m.ls, m.userJac = lsSPGMR, false
	m.precSetup, m.precSolve = precSetup, precSolve
	return native.CVLSSuccess
}

func (c *CVode) SetProjFn(mem native.Mem, on bool) int {
	m := c.mem(mem)
	if m == nil {
		return native.CVMemNull
	}
	if !on {
		return c.fail(m, native.CVIllInput, "CVodeSetProjFn", "The projection function is NULL.")
	}
	if m.lmm != native.BDF {
		return c.fail(m, native.CVIllInput, "CVodeSetProjFn", "Projection is only supported with BDF methods.")
	}
	m.proj = true
	return native.CVSuccess
}

func (c *CVode) SetMonitorFn(mem native.Mem, freq int64) int {
	m := c.mem(mem)
	if m == nil {
		return native.CVMemNull
	}
	if freq < 0 {
		return c.fail(m, native.CVIllInput, "CVodeSetMonitorFrequency", "nst must be >= 0")
	}
	m.monFreq = freq
	return native.CVSuccess
}

func (c *CVode) ReInit(mem native.Mem, t0 float64, y0 []float64) int {
	m := c.mem(mem)
	if m == nil {
		return native.CVMemNull
	}
	if !m.inited {
		return c.fail(m, native.CVNoMalloc, "CVodeReInit", "Attempt to call before CVodeInit.")
	}
	if len(y0) != len(m.y) {
		return c.fail(m, native.CVIllInput, "CVodeReInit", "y0 has the wrong length.")
	}
	copy(m.y, y0)
	m.t = t0
	m.fresh = true
	m.gprev = nil
	for i := range m.rootsFound {
		m.rootsFound[i] = 0
	}
	m.stats = native.CVodeStats{CurrentTime: t0}
	return native.CVSuccess
}

func (c *CVode) GetRootInfo(mem native.Mem, rootsFound []int) int {
	m := c.mem(mem)
	if m == nil {
		return native.CVMemNull
	}
	if len(rootsFound) != m.nroots {
		return native.CVIllInput
	}
	copy(rootsFound, m.rootsFound)
	return native.CVSuccess
}

func (c *CVode) GetStats(mem native.Mem) (native.CVodeStats, int) {
	m := c.mem(mem)
	if m == nil {
		return native.CVodeStats{}, native.CVMemNull
	}
	return m.stats, native.CVSuccess
}

func (c *CVode) Free(mem native.Mem) {
	m := c.mem(mem)
	if m == nil {
		return
	}
	m.freed = true
	m.y = nil
	live.Add(-1)
}

func (c *CVode) fail(m *cvMem, flag int, function, msg string) int {
	if m.errh && c.cb.ErrH != nil {
		c.cb.ErrH(m.ud, flag, "CVODE", function, msg)
	}
	return flag
}

// Solve advances the solution towards tout. In Normal mode the final step is
// shortened to land exactly on tout.
func (c *CVode) Solve(mem native.Mem, tout float64, yout []float64, task native.Task) (float64, int) {
	m := c.mem(mem)
	if m == nil {
		return 0, native.CVMemNull
	}
	if !m.inited {
		return 0, c.fail(m, native.CVNoMalloc, "CVode", "cvode_mem was not allocated by a call to CVodeInit.")
	}
	if len(yout) != len(m.y) {
		return m.t, c.fail(m, native.CVIllInput, "CVode", "yout has the wrong length.")
	}
	if c.cb.RHS == nil {
		return m.t, c.fail(m, native.CVIllInput, "CVode", "f = NULL illegal.")
	}
	if m.fresh && tout == m.t && task == native.Normal {
		copy(yout, m.y)
		return m.t, c.fail(m, native.CVTooClose, "CVode", "tout too close to t0 to start integration.")
	}
	dir := 1.0
	if tout < m.t {
		dir = -1
	}
	// gprev is unset on the first solve and after RootInit.
	if m.nroots > 0 && c.cb.Roots != nil && len(m.gprev) != m.nroots {
		g := make([]float64, m.nroots)
		m.stats.RootEvals++
		if r := c.cb.Roots(m.ud, m.t, m.y, g); r != 0 {
			copy(yout, m.y)
			return m.t, c.fail(m, native.CVRtFuncFail, "CVode", "At t = "+ftoa(m.t)+", the rootfinding routine failed in an unrecoverable manner.")
		}
		m.gprev = g
	}
	m.fresh = false

	h0 := m.h0
	if h0 == 0 {
		h0 = defaultInitStep
	}
	h0 = dir * math.Abs(h0)

	for i := range m.rootsFound {
		m.rootsFound[i] = 0
	}

	var taken int64
	for {
		if task == native.Normal && dir*(tout-m.t) <= 0 {
			break
		}
		if taken >= m.maxSteps {
			copy(yout, m.y)
			return m.t, c.fail(m, native.CVTooMuchWork, "CVode",
				fmt.Sprintf("At t = %g, mxstep steps taken before reaching tout.", m.t))
		}

		h := h0
		land := math.NaN()
		if task == native.Normal && reaches(m.t, h, tout) {
			h, land = tout-m.t, tout
		}
		if m.hasStop && reaches(m.t, h, m.tstop) {
			h, land = m.tstop-m.t, m.tstop
		}

		ynew, flag := c.step(m, h, &land)
		if flag != native.CVSuccess {
			copy(yout, m.y)
			return m.t, c.fail(m, flag, "CVode", fmt.Sprintf("At t = %g, a callback failed with flag %d.", m.t, flag))
		}
		m.y = ynew
		taken++

		if m.nroots > 0 && c.cb.Roots != nil {
			g := make([]float64, m.nroots)
			m.stats.RootEvals++
			if r := c.cb.Roots(m.ud, m.t, m.y, g); r != 0 {
				copy(yout, m.y)
				return m.t, c.fail(m, native.CVRtFuncFail, "CVode", "At t = "+ftoa(m.t)+", the rootfinding routine failed in an unrecoverable manner.")
			}
			found := false
			for i := range g {
				prev := signOf(m.gprev[i])
				cur := signOf(g[i])
				if prev != 0 && cur != prev {
					m.rootsFound[i] = cur - prev
					if m.rootsFound[i] > 0 {
						m.rootsFound[i] = 1
					} else {
						m.rootsFound[i] = -1
					}
					found = true
				}
			}
			m.gprev = g
			if found {
				copy(yout, m.y)
				return m.t, native.CVRootReturn
			}
		}

		if m.monFreq > 0 && c.cb.Monitor != nil && m.stats.Steps%m.monFreq == 0 {
			if r := c.cb.Monitor(m.ud, m.t); r != 0 {
				copy(yout, m.y)
				return m.t, c.fail(m, native.CVErrFailure, "CVode", "The monitor function failed.")
			}
		}

		if m.hasStop && m.t == m.tstop {
			m.hasStop = false
			copy(yout, m.y)
			return m.t, native.CVTstopReturn
		}
		if task == native.OneStep {
			break
		}
	}
	copy(yout, m.y)
	return m.t, native.CVSuccess
}

// step attempts one step of size h from (m.t, m.y), halving h on
// recoverable callback failures. On success m.t and the statistics are
// advanced and the new state is returned. land, when not NaN, is the time
// the full-size step lands on exactly.
func (c *CVode) step(m *cvMem, h float64, land *float64) ([]float64, int) {
	for retry := 0; ; retry++ {
		ynew, flag, slot := c.attempt(m, h)
		if flag == native.CVSuccess {
			if retry == 0 && m.stats.Steps == 0 {
				m.stats.ActualInitStep = h
			}
			if retry == 0 && !math.IsNaN(*land) {
				m.t = *land
			} else {
				m.t += h
			}
			m.stats.Steps++
			m.stats.LastStep = h
			m.stats.CurrentStep = h
			m.stats.CurrentTime = m.t
			m.stats.LastOrder, m.stats.CurrentOrder = 1, 1
			return ynew, native.CVSuccess
		}
		if flag != recoverable {
			return nil, flag
		}
		m.stats.NonlinConvFails++
		if retry+1 >= maxStepRetries {
			switch slot {
			case slotRHS:
				return nil, native.CVReptdRhsFuncErr
			case slotProj:
				return nil, native.CVReptdProjFuncErr
			default:
				return nil, native.CVConvFailure
			}
		}
		h /= 2
	}
}

const recoverable = 1

type cvSlot int

const (
	slotRHS cvSlot = iota
	slotLinear
	slotProj
)

// attempt evaluates one candidate step. It returns recoverable and the
// failing slot when a callback asks for a retry.
func (c *CVode) attempt(m *cvMem, h float64) ([]float64, int, cvSlot) {
	n := len(m.y)
	ydot := make([]float64, n)
	m.stats.RHSEvals++
	if r := c.cb.RHS(m.ud, m.t, m.y, ydot); r != 0 {
		if r > 0 {
			return nil, recoverable, slotRHS
		}
		return nil, native.CVRhsFuncFail, slotRHS
	}

	delta := make([]float64, n)
	for i := range delta {
		delta[i] = h * ydot[i]
	}

	switch m.ls {
	case lsDense:
		m.stats.LinSolvSetups++
		if m.userJac && c.cb.Jac != nil {
			jac := native.Dense{Data: make([]float64, n*n), Rows: n, Cols: n}
			tmp := [3][]float64{make([]float64, n), make([]float64, n), make([]float64, n)}
			m.stats.JacEvals++
			if r := c.cb.Jac(m.ud, m.t, m.y, ydot, jac, tmp); r != 0 {
				if r > 0 {
					return nil, recoverable, slotLinear
				}
				return nil, native.CVLsetupFail, slotLinear
			}
			for i := range delta {
				if d := 1 - h*jac.At(i, i); d != 0 {
					delta[i] /= d
				}
			}
		}
		m.stats.NonlinSolvIters++
	case lsSPGMR:
		if m.precSetup && c.cb.PrecSetup != nil {
			m.stats.LinSolvSetups++
			m.stats.PrecEvals++
			if _, r := c.cb.PrecSetup(m.ud, m.t, m.y, ydot, m.stats.Steps > 0, h); r != 0 {
				if r > 0 {
					return nil, recoverable, slotLinear
				}
				return nil, native.CVLsetupFail, slotLinear
			}
		}
		if m.precSolve && c.cb.PrecSolve != nil {
			z := make([]float64, n)
			m.stats.PrecSolves++
			if r := c.cb.PrecSolve(m.ud, m.t, m.y, ydot, delta, z, h, m.rtol, true); r != 0 {
				if r > 0 {
					return nil, recoverable, slotLinear
				}
				return nil, native.CVLsolveFail, slotLinear
			}
			delta = z
		}
		m.stats.NonlinSolvIters++
	}

	ynew := make([]float64, n)
	for i := range ynew {
		ynew[i] = m.y[i] + delta[i]
	}

	if m.proj && c.cb.Proj != nil {
		corr := make([]float64, n)
		errv := make([]float64, n)
		m.stats.ProjEvals++
		if r := c.cb.Proj(m.ud, m.t+h, ynew, corr, m.rtol, errv); r != 0 {
			if r > 0 {
				return nil, recoverable, slotProj
			}
			return nil, native.CVProjFuncFail, slotProj
		}
		for i := range ynew {
			ynew[i] += corr[i]
		}
	}
	return ynew, native.CVSuccess, slotRHS
}

// reaches reports whether a step of size h from t gets to target, allowing
// for accumulated rounding in t.
func reaches(t, h, target float64) bool {
	return math.Abs(target-t) <= math.Abs(h)*(1+1e-8)
}

func ftoa(f float64) string { return fmt.Sprintf("%g", f) }
