package cvode

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sunml/sundials-go/internal/native"
	"github.com/sunml/sundials-go/pkg/sundials"
	"github.com/sunml/sundials-go/pkg/sundials/logging"
	"github.com/sunml/sundials-go/pkg/sundials/nvector"
)

// Result says why a successful Solve returned.
type Result int

const (
	// Success means tout (or, in one-step mode, the end of one step) was
	// reached.
	Success Result = iota
	// RootsFound means a root function changed sign; see RootInfo.
	RootsFound
	// StopTimeReached means the stop time set by SetStopTime was reached.
	StopTimeReached
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case RootsFound:
		return "roots found"
	case StopTimeReached:
		return "stop time reached"
	}
	return "unknown"
}

// RootEvent is the direction in which a root function crossed zero.
type RootEvent int

const (
	NoRoot  RootEvent = 0
	Rising  RootEvent = 1
	Falling RootEvent = -1
)

// IntegratorStats are the solver statistics reported by Stats.
type IntegratorStats = native.CVodeStats

// Session is one CVODE problem. A Session is not safe for concurrent use;
// calls made from inside its own callbacks fail with sundials.ErrReentrant,
// except for the read-only getters.
type Session struct {
	core sundials.Core
	lib  native.CVodeLib
	mem  native.Mem
	n    int

	nroots  int
	rhs     RHSFn
	roots   RootsFn
	errh    ErrorHandler
	jac     JacFn
	psetup  PrecSetupFn
	psolve  PrecSolveFn
	proj    ProjFn
	monitor MonitorFn
}

type initStep struct {
	call string
	run  func() int
}

// Init creates a session for y' = rhs(t, y) with y(t0) = y0. The session
// keeps its own copy of y0; later solves write into the vectors passed to
// them.
func Init(ctx context.Context, cfg Config, rhs RHSFn, t0 float64, y0 *nvector.Serial, opts ...sundials.Option) (_ *Session, err error) {
	if rhs == nil {
		return nil, fmt.Errorf("%w: nil right-hand side function", sundials.ErrIllegalInput)
	}
	if y0 == nil || y0.Len() == 0 {
		return nil, fmt.Errorf("%w: empty initial state", sundials.ErrIllegalInput)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := sundials.NewOptions(opts...)
	lib, err := library(o.Backend)
	if err != nil {
		return nil, err
	}

	s := &Session{lib: lib, n: y0.Len(), rhs: rhs}
	s.core.Setup("cvode", o)
	ctx, span := s.core.Start(ctx, "cvode.Init")
	defer func() { s.core.End(span, err) }()

	mem := lib.Create(cfg.lmm())
	if mem == nil {
		return nil, &sundials.InitializationError{Call: "CVodeCreate", Code: native.CVMemFail, Err: sundials.ErrOutOfMemory}
	}
	s.mem = mem
	ud := sundials.Bind(&s.core, s, func() { lib.Free(mem) })

	rtol, atol := cfg.RelTol, cfg.AbsTol
	if rtol == 0 && atol == 0 {
		def := DefaultConfig()
		rtol, atol = def.RelTol, def.AbsTol
	}
	steps := []initStep{
		{"CVodeSetUserData", func() int { return lib.SetUserData(mem, uintptr(ud)) }},
		{"CVodeSetErrHandlerFn", func() int { return lib.SetErrHandler(mem, true) }},
		{"CVodeInit", func() int { return lib.Init(mem, t0, y0.Data()) }},
		{"CVodeSStolerances", func() int { return lib.SStolerances(mem, rtol, atol) }},
	}
	if cfg.MaxNumSteps > 0 {
		steps = append(steps, initStep{"CVodeSetMaxNumSteps", func() int { return lib.SetMaxNumSteps(mem, cfg.MaxNumSteps) }})
	}
	if cfg.InitStep > 0 {
		steps = append(steps, initStep{"CVodeSetInitStep", func() int { return lib.SetInitStep(mem, cfg.InitStep) }})
	}
	if cfg.StopTime != nil {
		tstop := *cfg.StopTime
		steps = append(steps, initStep{"CVodeSetStopTime", func() int { return lib.SetStopTime(mem, tstop) }})
	}
	for _, st := range steps {
		flag := st.run()
		s.core.NativeCall(ctx, st.call, flag)
		if flag < 0 {
			err = s.core.InitError(st.call, flag, TranslateReturnCode)
			s.core.Release()
			return nil, err
		}
	}
	s.core.Logger().Debug(ctx, "cvode initialized", "t0", t0, logging.Vector("y0", y0.Data()), "lmm", cfg.lmm())
	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.core.ID() }

// Len returns the problem size.
func (s *Session) Len() int { return s.n }

// NumRoots returns the number of root functions registered with RootInit.
func (s *Session) NumRoots() int { return s.nroots }

// call runs one guarded native call and surfaces its error.
func (s *Session) call(ctx context.Context, name string, translate sundials.Translator, run func() int) error {
	if err := s.core.Enter(ctx); err != nil {
		return err
	}
	defer s.core.Exit()
	flag := run()
	runtime.KeepAlive(s)
	s.core.NativeCall(ctx, name, flag)
	return s.core.Reraise(name, flag, translate)
}

// Solve integrates towards tout and writes the solution into y. The
// returned time is tout on Success and the return time otherwise. A callback
// fault that aborted the integration is returned unchanged.
func (s *Session) Solve(ctx context.Context, tout float64, y *nvector.Serial) (float64, Result, error) {
	return s.solve(ctx, tout, y, native.Normal)
}

// SolveOneStep takes one internal step towards tout.
func (s *Session) SolveOneStep(ctx context.Context, tout float64, y *nvector.Serial) (float64, Result, error) {
	return s.solve(ctx, tout, y, native.OneStep)
}

func (s *Session) solve(ctx context.Context, tout float64, y *nvector.Serial, task native.Task) (tret float64, res Result, err error) {
	ctx, span := s.core.Start(ctx, "cvode.Solve")
	defer func() { s.core.End(span, err) }()
	if err = s.core.Check(); err != nil {
		return 0, Success, err
	}
	if err = nvector.CheckLen(y, s.n); err != nil {
		return 0, Success, err
	}
	var flag int
	err = s.call(ctx, "CVode", TranslateReturnCode, func() int {
		tret, flag = s.lib.Solve(s.mem, tout, y.Data(), task)
		return flag
	})
	if err != nil {
		return tret, Success, err
	}
	switch flag {
	case native.CVRootReturn:
		return tret, RootsFound, nil
	case native.CVTstopReturn:
		return tret, StopTimeReached, nil
	}
	return tret, Success, nil
}

// ReInit restarts the problem at (t0, y0), keeping the solver settings and
// callbacks.
func (s *Session) ReInit(ctx context.Context, t0 float64, y0 *nvector.Serial) (err error) {
	ctx, span := s.core.Start(ctx, "cvode.ReInit")
	defer func() { s.core.End(span, err) }()
	if err = s.core.Check(); err != nil {
		return err
	}
	if err = nvector.CheckLen(y0, s.n); err != nil {
		return err
	}
	return s.call(ctx, "CVodeReInit", TranslateReturnCode, func() int {
		return s.lib.ReInit(s.mem, t0, y0.Data())
	})
}

// SetTolerances sets scalar relative and absolute tolerances.
func (s *Session) SetTolerances(rtol, atol float64) error {
	if rtol < 0 || atol < 0 {
		return fmt.Errorf("%w: negative tolerance", sundials.ErrIllegalInput)
	}
	return s.call(context.Background(), "CVodeSStolerances", TranslateReturnCode, func() int {
		return s.lib.SStolerances(s.mem, rtol, atol)
	})
}

// SetMaxNumSteps bounds the number of internal steps per Solve. Zero
// restores the default of 500.
func (s *Session) SetMaxNumSteps(n int64) error {
	return s.call(context.Background(), "CVodeSetMaxNumSteps", TranslateReturnCode, func() int {
		return s.lib.SetMaxNumSteps(s.mem, n)
	})
}

// SetStopTime sets a time past which the solution is never computed.
func (s *Session) SetStopTime(tstop float64) error {
	return s.call(context.Background(), "CVodeSetStopTime", TranslateReturnCode, func() int {
		return s.lib.SetStopTime(s.mem, tstop)
	})
}

// SetInitStep sets the size of the first step.
func (s *Session) SetInitStep(h float64) error {
	return s.call(context.Background(), "CVodeSetInitStep", TranslateReturnCode, func() int {
		return s.lib.SetInitStep(s.mem, h)
	})
}

// RootInit registers n root functions computed by fn. n == 0 disables
// rootfinding.
func (s *Session) RootInit(n int, fn RootsFn) error {
	if n < 0 || (n > 0 && fn == nil) {
		return fmt.Errorf("%w: root functions", sundials.ErrIllegalInput)
	}
	err := s.call(context.Background(), "CVodeRootInit", TranslateReturnCode, func() int {
		return s.lib.RootInit(s.mem, n)
	})
	if err != nil {
		return err
	}
	s.nroots, s.roots = n, fn
	return nil
}

// RootInfo reports, for each root function, whether and in which direction
// it crossed zero during the last Solve that returned RootsFound.
func (s *Session) RootInfo() ([]RootEvent, error) {
	if err := s.core.Check(); err != nil {
		return nil, err
	}
	raw := make([]int, s.nroots)
	flag := s.lib.GetRootInfo(s.mem, raw)
	runtime.KeepAlive(s)
	if flag < 0 {
		return nil, TranslateReturnCode("CVodeGetRootInfo", flag)
	}
	out := make([]RootEvent, len(raw))
	for i, v := range raw {
		out[i] = RootEvent(v)
	}
	return out, nil
}

// SetDenseLinearSolver attaches a dense direct linear solver. A nil jac
// selects the internal difference-quotient approximation.
func (s *Session) SetDenseLinearSolver(jac JacFn) error {
	err := s.call(context.Background(), "CVodeSetLinearSolver", TranslateLSCode, func() int {
		return s.lib.SetDenseLinearSolver(s.mem, s.n, jac != nil)
	})
	if err != nil {
		return err
	}
	s.jac, s.psetup, s.psolve = jac, nil, nil
	return nil
}

// SetSPGMR attaches a GMRES iterative linear solver. With a non-nil solve
// the system is left-preconditioned; setup may be nil.
func (s *Session) SetSPGMR(setup PrecSetupFn, solve PrecSolveFn) error {
	if setup != nil && solve == nil {
		return fmt.Errorf("%w: preconditioner setup without solve", sundials.ErrIllegalInput)
	}
	err := s.call(context.Background(), "CVodeSetLinearSolver", TranslateLSCode, func() int {
		return s.lib.SetSPGMR(s.mem, s.n, setup != nil, solve != nil)
	})
	if err != nil {
		return err
	}
	s.jac, s.psetup, s.psolve = nil, setup, solve
	return nil
}

// SetProjFn enables projection onto a constraint manifold. Only BDF
// sessions support projection.
func (s *Session) SetProjFn(fn ProjFn) error {
	if fn == nil {
		return fmt.Errorf("%w: nil projection function", sundials.ErrIllegalInput)
	}
	err := s.call(context.Background(), "CVodeSetProjFn", TranslateReturnCode, func() int {
		return s.lib.SetProjFn(s.mem, true)
	})
	if err != nil {
		return err
	}
	s.proj = fn
	return nil
}

// SetMonitorFn calls fn every freq steps. freq == 0 disables monitoring.
func (s *Session) SetMonitorFn(freq int64, fn MonitorFn) error {
	if freq < 0 || (freq > 0 && fn == nil) {
		return fmt.Errorf("%w: monitor", sundials.ErrIllegalInput)
	}
	err := s.call(context.Background(), "CVodeSetMonitorFn", TranslateReturnCode, func() int {
		return s.lib.SetMonitorFn(s.mem, freq)
	})
	if err != nil {
		return err
	}
	s.monitor = fn
	return nil
}

// SetErrorHandler installs fn as the receiver of native error reports. A
// nil fn restores the default, which logs reports at warn level.
func (s *Session) SetErrorHandler(fn ErrorHandler) error {
	if err := s.core.Check(); err != nil {
		return err
	}
	s.errh = fn
	return nil
}

// Stats returns the integrator statistics. It may be called from inside a
// callback.
func (s *Session) Stats() (IntegratorStats, error) {
	if err := s.core.Check(); err != nil {
		return IntegratorStats{}, err
	}
	st, flag := s.lib.GetStats(s.mem)
	runtime.KeepAlive(s)
	if flag < 0 {
		return IntegratorStats{}, TranslateReturnCode("CVodeGetIntegratorStats", flag)
	}
	return st, nil
}

// Close frees the native solver memory. It is idempotent; afterwards every
// method fails with sundials.ErrUseAfterFree.
func (s *Session) Close() error {
	return s.core.Close(context.Background())
}
