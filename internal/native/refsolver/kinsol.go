package refsolver

import (
	"fmt"
	"math"

	"github.com/sunml/sundials-go/internal/native"
)

// Kinsol emulates the KINSOL entry points.
type Kinsol struct {
	cb *native.KinsolCallbacks
}

// NewKinsol returns an emulated KINSOL library forwarding callbacks to cb.
func NewKinsol(cb *native.KinsolCallbacks) *Kinsol {
	if cb == nil {
		cb = &native.KinsolCallbacks{}
	}
	return &Kinsol{cb: cb}
}

type kinMem struct {
	freed  bool
	inited bool
	ud     uintptr
	errh   bool
	infoh  bool
	print  int
	n      int

	maxIters  int64
	fnormTol  float64
	scstepTol float64

	ls        linearSolver
	userJac   bool
	precSetup bool
	precSolve bool

	stats native.KinsolStats
}

func (k *Kinsol) mem(mem native.Mem) *kinMem {
	m, _ := mem.(*kinMem)
	if m == nil || m.freed {
		return nil
	}
	return m
}

func (k *Kinsol) Create() native.Mem {
	live.Add(1)
	return &kinMem{maxIters: defaultMaxIters, fnormTol: defaultFnorm, scstepTol: defaultScsteps}
}

func (k *Kinsol) Init(mem native.Mem, tmpl []float64) int {
	m := k.mem(mem)
	if m == nil {
		return native.KINMemNull
	}
	if len(tmpl) == 0 {
		return k.fail(m, native.KINIllInput, "KINInit", "tmpl = NULL illegal.")
	}
	m.n = len(tmpl)
	m.inited = true
	return native.KINSuccess
}

func (k *Kinsol) SetUserData(mem native.Mem, ud uintptr) int {
	m := k.mem(mem)
	if m == nil {
		return native.KINMemNull
	}
	m.ud = ud
	return native.KINSuccess
}

func (k *Kinsol) SetErrHandler(mem native.Mem, on bool) int {
	m := k.mem(mem)
	if m == nil {
		return native.KINMemNull
	}
	m.errh = on
	return native.KINSuccess
}

func (k *Kinsol) SetInfoHandler(mem native.Mem, on bool) int {
	m := k.mem(mem)
	if m == nil {
		return native.KINMemNull
	}
	m.infoh = on
	return native.KINSuccess
}

func (k *Kinsol) SetPrintLevel(mem native.Mem, level int) int {
	m := k.mem(mem)
	if m == nil {
		return native.KINMemNull
	}
	if level < 0 || level > 3 {
		return k.fail(m, native.KINIllInput, "KINSetPrintLevel", "Illegal value for printfl.")
	}
	m.print = level
	return native.KINSuccess
}

func (k *Kinsol) SetMaxIters(mem native.Mem, n int64) int {
	m := k.mem(mem)
	if m == nil {
		return native.KINMemNull
	}
	if n < 0 {
		return k.fail(m, native.KINIllInput, "KINSetNumMaxIters", "Illegal mxiter < 0.")
	}
	if n == 0 {
		n = defaultMaxIters
	}
	m.maxIters = n
	return native.KINSuccess
}

func (k *Kinsol) SetFuncNormTol(mem native.Mem, tol float64) int {
	m := k.mem(mem)
	if m == nil {
		return native.KINMemNull
	}
	if tol < 0 {
		return k.fail(m, native.KINIllInput, "KINSetFuncNormTol", "fnormtol < 0 illegal.")
	}
	if tol == 0 {
		tol = defaultFnorm
	}
	m.fnormTol = tol
	return native.KINSuccess
}

func (k *Kinsol) SetScaledStepTol(mem native.Mem, tol float64) int {
	m := k.mem(mem)
	if m == nil {
		return native.KINMemNull
	}
	if tol < 0 {
		return k.fail(m, native.KINIllInput, "KINSetScaledStepTol", "scsteptol < 0 illegal.")
	}
	if tol == 0 {
		tol = defaultScsteps
	}
	m.scstepTol = tol
	return native.KINSuccess
}

func (k *Kinsol) SetDenseLinearSolver(mem native.Mem, n int, userJac bool) int {
	m := k.mem(mem)
	if m == nil {
		return native.KINLSMemNull
	}
	if !m.inited || n != m.n {
		return native.KINLSIllInput
	}
	m.ls, m.userJac = lsDense, userJac
	m.precSetup, m.precSolve = false, false
	return native.KINLSSuccess
}

func (k *Kinsol) SetSPGMR(mem native.Mem, n int, precSetup, precSolve bool) int {
	m := k.mem(mem)
	if m == nil {
		return native.KINLSMemNull
	}
	if !m.inited || n != m.n || (precSetup && !precSolve) {
		return native.KINLSIllInput
	}
	m.ls, m.userJac = lsSPGMR, false
	m.precSetup, m.precSolve = precSetup, precSolve
	return native.KINLSSuccess
}

func (k *Kinsol) GetStats(mem native.Mem) (native.KinsolStats, int) {
	m := k.mem(mem)
	if m == nil {
		return native.KinsolStats{}, native.KINMemNull
	}
	return m.stats, native.KINSuccess
}

func (k *Kinsol) Free(mem native.Mem) {
	m := k.mem(mem)
	if m == nil {
		return
	}
	m.freed = true
	live.Add(-1)
}

func (k *Kinsol) fail(m *kinMem, flag int, function, msg string) int {
	if m.errh && k.cb.ErrH != nil {
		k.cb.ErrH(m.ud, flag, "KINSOL", function, msg)
	}
	return flag
}

func (k *Kinsol) info(m *kinMem, msg string) {
	if m.infoh && m.print > 0 && k.cb.InfoH != nil {
		k.cb.InfoH(m.ud, "KINSOL", "KINSol", msg)
	}
}

// residual returns the vector whose norm decides convergence: F(u) for the
// Newton-type strategies and G(u) - u for fixed-point iteration.
func residual(strategy native.Strategy, u, fval []float64) []float64 {
	if strategy != native.FixedPoint {
		return fval
	}
	r := make([]float64, len(u))
	for i := range r {
		r[i] = fval[i] - u[i]
	}
	return r
}

// Solve iterates on u in place until the scaled residual norm drops below
// the function-norm tolerance.
func (k *Kinsol) Solve(mem native.Mem, u []float64, strategy native.Strategy, uscale, fscale []float64) int {
	m := k.mem(mem)
	if m == nil {
		return native.KINMemNull
	}
	if !m.inited {
		return k.fail(m, native.KINNoMalloc, "KINSol", "Attempt to call before KINInit.")
	}
	if len(u) != m.n || len(uscale) != m.n || len(fscale) != m.n {
		return k.fail(m, native.KINIllInput, "KINSol", "A vector has the wrong length.")
	}
	if strategy < native.Newton || strategy > native.FixedPoint {
		return k.fail(m, native.KINIllInput, "KINSol", "Illegal value for global strategy.")
	}
	if strategy != native.FixedPoint && m.ls == lsNone {
		return k.fail(m, native.KINIllInput, "KINSol", "The linear solver memory is NULL.")
	}
	for i := range uscale {
		if uscale[i] <= 0 || fscale[i] <= 0 {
			return k.fail(m, native.KINIllInput, "KINSol", "Scaling vector has nonpositive entries.")
		}
	}
	if k.cb.Sys == nil {
		return k.fail(m, native.KINIllInput, "KINSol", "func = NULL illegal.")
	}
	m.stats = native.KinsolStats{}

	fval := make([]float64, m.n)
	m.stats.FuncEvals++
	switch r := k.cb.Sys(m.ud, u, fval); {
	case r < 0:
		return k.fail(m, native.KINSysFuncFail, "KINSol", "The system function failed in an unrecoverable manner.")
	case r > 0:
		return k.fail(m, native.KINFirstSysFuncErr, "KINSol", "The system function failed at the first call.")
	}
	fnorm := maxNorm(residual(strategy, u, fval), fscale)
	m.stats.FuncNorm = fnorm
	if fnorm <= 0.01*m.fnormTol {
		return native.KINInitialGuessOK
	}

	for m.stats.Iters < m.maxIters {
		delta, flag := k.direction(m, strategy, u, uscale, fval, fscale)
		if flag != native.KINSuccess {
			return k.fail(m, flag, "KINSol", fmt.Sprintf("The linear solver failed with flag %d.", flag))
		}

		lambda := 1.0
		unew := make([]float64, m.n)
		fnew := make([]float64, m.n)
		var newNorm float64
		for retry := 0; ; retry++ {
			for i := range unew {
				unew[i] = u[i] + lambda*delta[i]
			}
			m.stats.FuncEvals++
			r := k.cb.Sys(m.ud, unew, fnew)
			if r < 0 {
				return k.fail(m, native.KINSysFuncFail, "KINSol", "The system function failed in an unrecoverable manner.")
			}
			if r > 0 {
				if retry+1 >= maxDampingRetries {
					return k.fail(m, native.KINReptdSysFuncErr, "KINSol", "The system function failed repeatedly in a recoverable manner.")
				}
				lambda /= 2
				continue
			}
			newNorm = maxNorm(residual(strategy, unew, fnew), fscale)
			if strategy != native.LineSearch || newNorm < fnorm {
				break
			}
			if retry+1 >= maxDampingRetries {
				return k.fail(m, native.KINLineSearchNonConv, "KINSol", "The line search algorithm was unable to find an iterate sufficiently distinct from the current iterate.")
			}
			m.stats.BacktrackOps++
			lambda /= 2
		}

		copy(u, unew)
		copy(fval, fnew)
		fnorm = newNorm
		m.stats.Iters++
		m.stats.FuncNorm = fnorm
		m.stats.StepLength = lambda * maxNorm(delta, uscale)
		k.info(m, fmt.Sprintf("nni = %d  nfe = %d  fnorm = %g", m.stats.Iters, m.stats.FuncEvals, fnorm))

		if fnorm <= m.fnormTol {
			return native.KINSuccess
		}
		if m.stats.StepLength <= m.scstepTol {
			return native.KINStepLTStpTol
		}
	}
	return k.fail(m, native.KINMaxIterReached, "KINSol", "The maximum number of iterations was reached before convergence.")
}

// direction computes the update for one iteration. Linear-solver callbacks
// that fail recoverably are retried; once the retries are exhausted the
// linear solver is reported as unable to recover.
func (k *Kinsol) direction(m *kinMem, strategy native.Strategy, u, uscale, fval, fscale []float64) ([]float64, int) {
	n := m.n
	if strategy == native.FixedPoint {
		return residual(strategy, u, fval), native.KINSuccess
	}
	delta := make([]float64, n)
	for i := range delta {
		delta[i] = -fval[i]
	}
	switch m.ls {
	case lsDense:
		if !m.userJac || k.cb.Jac == nil {
			return delta, native.KINSuccess
		}
		jac := native.Dense{Data: make([]float64, n*n), Rows: n, Cols: n}
		tmp := [2][]float64{make([]float64, n), make([]float64, n)}
		for retry := 0; ; retry++ {
			m.stats.JacEvals++
			r := k.cb.Jac(m.ud, u, fval, jac, tmp)
			if r == 0 {
				break
			}
			if r < 0 {
				return nil, native.KINLsetupFail
			}
			if retry+1 >= maxDampingRetries {
				return nil, native.KINLinSolvNoRecovery
			}
		}
		for i := range delta {
			if d := jac.At(i, i); d != 0 {
				delta[i] /= d
			}
		}
	case lsSPGMR:
		if m.precSetup && k.cb.PrecSetup != nil {
			for retry := 0; ; retry++ {
				m.stats.PrecEvals++
				r := k.cb.PrecSetup(m.ud, u, uscale, fval, fscale)
				if r == 0 {
					break
				}
				if r < 0 {
					return nil, native.KINLsetupFail
				}
				if retry+1 >= maxDampingRetries {
					return nil, native.KINLinSolvNoRecovery
				}
			}
		}
		if m.precSolve && k.cb.PrecSolve != nil {
			rhs := append([]float64(nil), delta...)
			for retry := 0; ; retry++ {
				copy(delta, rhs)
				m.stats.PrecSolves++
				r := k.cb.PrecSolve(m.ud, u, uscale, fval, fscale, delta)
				if r == 0 {
					break
				}
				if r < 0 {
					return nil, native.KINLsolveFail
				}
				if retry+1 >= maxDampingRetries {
					return nil, native.KINLinSolvNoRecovery
				}
			}
		}
	}
	if math.IsNaN(maxNorm(delta, nil)) {
		return nil, native.KINVectorOpErr
	}
	return delta, native.KINSuccess
}
