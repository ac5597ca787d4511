package native

import "errors"

// ErrNotBuilt reports that the native bindings were not linked into the
// current binary (cgo disabled or the sundials build tag missing).
var ErrNotBuilt = errors.New("native: SUNDIALS bindings not built")

// Mem is an opaque per-problem solver handle returned by a library's Create.
// Only the library that created it may interpret it.
type Mem any

// LMM selects the CVODE linear multistep method.
type LMM int

const (
	Adams LMM = iota
	BDF
)

// Task selects how far a CVODE solve call advances.
type Task int

const (
	Normal Task = iota
	OneStep
)

// Strategy is the KINSOL global strategy.
type Strategy int

const (
	Newton Strategy = iota
	LineSearch
	Picard
	FixedPoint
)

// Dense is a column-major view of a dense SUNMatrix. Data aliases native
// storage for the duration of a callback.
type Dense struct {
	Data []float64
	Rows int
	Cols int
}

// At returns the element in row i, column j.
func (d Dense) At(i, j int) float64 { return d.Data[j*d.Rows+i] }

// Set stores v in row i, column j.
func (d Dense) Set(i, j int, v float64) { d.Data[j*d.Rows+i] = v }

// CVodeCallbacks is the trampoline table a CVODE library forwards native
// callbacks to. The first argument is always the user-data key stored with
// SetUserData. Status returns follow the SUNDIALS convention: 0 success,
// positive recoverable, negative unrecoverable.
type CVodeCallbacks struct {
	RHS       func(ud uintptr, t float64, y, ydot []float64) int
	Roots     func(ud uintptr, t float64, y, gout []float64) int
	ErrH      func(ud uintptr, code int, module, function, msg string)
	Jac       func(ud uintptr, t float64, y, fy []float64, jac Dense, tmp [3][]float64) int
	PrecSetup func(ud uintptr, t float64, y, fy []float64, jok bool, gamma float64) (jcur bool, status int)
	PrecSolve func(ud uintptr, t float64, y, fy, r, z []float64, gamma, delta float64, left bool) int
	Proj      func(ud uintptr, t float64, ycur, corr []float64, epsProj float64, errv []float64) int
	Monitor   func(ud uintptr, t float64) int
}

// CVodeStats mirrors the integrator statistics CVodeGetIntegratorStats
// reports.
type CVodeStats struct {
	Steps           int64
	RHSEvals        int64
	LinSolvSetups   int64
	ErrTestFails    int64
	LastOrder       int
	CurrentOrder    int
	ActualInitStep  float64
	LastStep        float64
	CurrentStep     float64
	CurrentTime     float64
	JacEvals        int64
	PrecEvals       int64
	PrecSolves      int64
	RootEvals       int64
	ProjEvals       int64
	NonlinSolvIters int64
	NonlinConvFails int64
}

// CVodeLib is the CVODE entry point surface used by the cvode session.
// Every method except Create and Free returns the raw SUNDIALS flag.
type CVodeLib interface {
	Create(lmm LMM) Mem
	Init(mem Mem, t0 float64, y0 []float64) int
	SetUserData(mem Mem, ud uintptr) int
	SetErrHandler(mem Mem, on bool) int
	SStolerances(mem Mem, rtol, atol float64) int
	SetMaxNumSteps(mem Mem, n int64) int
	SetStopTime(mem Mem, tstop float64) int
	SetInitStep(mem Mem, h float64) int
	RootInit(mem Mem, nroots int) int
	SetDenseLinearSolver(mem Mem, n int, userJac bool) int
	SetSPGMR(mem Mem, n int, precSetup, precSolve bool) int
	SetProjFn(mem Mem, on bool) int
	SetMonitorFn(mem Mem, freq int64) int
	Solve(mem Mem, tout float64, yout []float64, task Task) (float64, int)
	ReInit(mem Mem, t0 float64, y0 []float64) int
	GetRootInfo(mem Mem, rootsFound []int) int
	GetStats(mem Mem) (CVodeStats, int)
	Free(mem Mem)
}

// KinsolCallbacks is the trampoline table a KINSOL library forwards native
// callbacks to.
type KinsolCallbacks struct {
	Sys       func(ud uintptr, u, fval []float64) int
	Jac       func(ud uintptr, u, fu []float64, jac Dense, tmp [2][]float64) int
	PrecSetup func(ud uintptr, u, uscale, fval, fscale []float64) int
	PrecSolve func(ud uintptr, u, uscale, fval, fscale, v []float64) int
	ErrH      func(ud uintptr, code int, module, function, msg string)
	InfoH     func(ud uintptr, module, function, msg string)
}

// KinsolStats mirrors the counters KINGetNum* report.
type KinsolStats struct {
	Iters         int64
	FuncEvals     int64
	BacktrackOps  int64
	BetaCondFails int64
	JacEvals      int64
	PrecEvals     int64
	PrecSolves    int64
	FuncNorm      float64
	StepLength    float64
}

// KinsolLib is the KINSOL entry point surface used by the kinsol session.
type KinsolLib interface {
	Create() Mem
	Init(mem Mem, tmpl []float64) int
	SetUserData(mem Mem, ud uintptr) int
	SetErrHandler(mem Mem, on bool) int
	SetInfoHandler(mem Mem, on bool) int
	SetPrintLevel(mem Mem, level int) int
	SetMaxIters(mem Mem, n int64) int
	SetFuncNormTol(mem Mem, tol float64) int
	SetScaledStepTol(mem Mem, tol float64) int
	SetDenseLinearSolver(mem Mem, n int, userJac bool) int
	SetSPGMR(mem Mem, n int, precSetup, precSolve bool) int
	Solve(mem Mem, u []float64, strategy Strategy, uscale, fscale []float64) int
	GetStats(mem Mem) (KinsolStats, int)
	Free(mem Mem)
}
