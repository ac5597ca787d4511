package kinsol

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
	// Success means the scaled residual norm dropped below the tolerance.
	Success Result = iota
	// InitialGuessOK means the initial guess already satisfied the
	// tolerance.
	InitialGuessOK
	// StoppedOnStepTol means the scaled step fell below the step tolerance;
	// u may only approximate a root.
	StoppedOnStepTol
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case InitialGuessOK:
		return "initial guess ok"
	case StoppedOnStepTol:
		return "stopped on step tolerance"
	}
	return "unknown"
}

// Stats are the solver statistics reported by Stats.
type Stats = native.KinsolStats

// Session is one KINSOL problem. It follows the same rules as a CVODE
// session: not safe for concurrent use, and reentrant calls from its own
// callbacks fail with sundials.ErrReentrant.
type Session struct {
	core  sundials.Core
	lib   native.KinsolLib
	mem   native.Mem
	n     int
	print int

	sys    SysFn
	jac    JacFn
	psetup PrecSetupFn
	psolve PrecSolveFn
	errh   ErrorHandler
	infoh  InfoHandler
}

type initStep struct {
	call string
	run  func() int
}

// Init creates a session for F(u) = 0 on vectors shaped like tmpl.
func Init(ctx context.Context, cfg Config, sys SysFn, tmpl *nvector.Serial, opts ...sundials.Option) (_ *Session, err error) {
	if sys == nil {
		return nil, fmt.Errorf("%w: nil system function", sundials.ErrIllegalInput)
	}
	if tmpl == nil || tmpl.Len() == 0 {
		return nil, fmt.Errorf("%w: empty template vector", sundials.ErrIllegalInput)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := sundials.NewOptions(opts...)
	lib, err := library(o.Backend)
	if err != nil {
		return nil, err
	}

	s := &Session{lib: lib, n: tmpl.Len(), sys: sys, print: cfg.PrintLevel}
	s.core.Setup("kinsol", o)
	ctx, span := s.core.Start(ctx, "kinsol.Init")
	defer func() { s.core.End(span, err) }()

	mem := lib.Create()
	if mem == nil {
		return nil, &sundials.InitializationError{Call: "KINCreate", Code: native.KINMemFail, Err: sundials.ErrOutOfMemory}
	}
	s.mem = mem
	ud := sundials.Bind(&s.core, s, func() { lib.Free(mem) })

	steps := []initStep{
		{"KINSetUserData", func() int { return lib.SetUserData(mem, uintptr(ud)) }},
		{"KINSetErrHandlerFn", func() int { return lib.SetErrHandler(mem, true) }},
		{"KINSetInfoHandlerFn", func() int { return lib.SetInfoHandler(mem, true) }},
		{"KINInit", func() int { return lib.Init(mem, tmpl.Data()) }},
	}
	if cfg.MaxIters > 0 {
		steps = append(steps, initStep{"KINSetNumMaxIters", func() int { return lib.SetMaxIters(mem, cfg.MaxIters) }})
	}
	if cfg.FuncNormTol > 0 {
		steps = append(steps, initStep{"KINSetFuncNormTol", func() int { return lib.SetFuncNormTol(mem, cfg.FuncNormTol) }})
	}
	if cfg.ScaledStepTol > 0 {
		steps = append(steps, initStep{"KINSetScaledStepTol", func() int { return lib.SetScaledStepTol(mem, cfg.ScaledStepTol) }})
	}
	if cfg.PrintLevel > 0 {
		steps = append(steps, initStep{"KINSetPrintLevel", func() int { return lib.SetPrintLevel(mem, cfg.PrintLevel) }})
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
	s.core.Logger().Debug(ctx, "kinsol initialized", "n", s.n)
	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.core.ID() }

// Len returns the problem size.
func (s *Session) Len() int { return s.n }

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

func (s *Session) scale(v *nvector.Serial) (*nvector.Serial, error) {
	if v == nil {
		ones := nvector.New(s.n)
		ones.Fill(1)
		return ones, nil
	}
	return v, nvector.CheckLen(v, s.n)
}

// Solve iterates on u in place, starting from its current contents. Nil
// uscale or fscale select unit scaling.
func (s *Session) Solve(ctx context.Context, u *nvector.Serial, strategy Strategy, uscale, fscale *nvector.Serial) (res Result, err error) {
	ctx, span := s.core.Start(ctx, "kinsol.Solve")
	defer func() { s.core.End(span, err) }()
	if err = s.core.Check(); err != nil {
		return Success, err
	}
	if !strategy.valid() {
		return Success, fmt.Errorf("%w: unknown strategy %v", sundials.ErrIllegalInput, strategy)
	}
	if err = nvector.CheckLen(u, s.n); err != nil {
		return Success, err
	}
	if uscale, err = s.scale(uscale); err != nil {
		return Success, err
	}
	if fscale, err = s.scale(fscale); err != nil {
		return Success, err
	}
	var flag int
	err = s.call(ctx, "KINSol", TranslateReturnCode, func() int {
		flag = s.lib.Solve(s.mem, u.Data(), strategy.native(), uscale.Data(), fscale.Data())
		return flag
	})
	if err != nil {
		return Success, err
	}
	s.core.Logger().Debug(ctx, "kinsol solved", "strategy", strategy.String(), "flag", flag, logging.Vector("u", u.Data()))
	switch flag {
	case native.KINInitialGuessOK:
		return InitialGuessOK, nil
	case native.KINStepLTStpTol:
		return StoppedOnStepTol, nil
	}
	return Success, nil
}

// SetDenseLinearSolver attaches a dense direct linear solver. A nil jac
// selects the internal difference-quotient approximation.
func (s *Session) SetDenseLinearSolver(jac JacFn) error {
	err := s.call(context.Background(), "KINSetLinearSolver", TranslateLSCode, func() int {
		return s.lib.SetDenseLinearSolver(s.mem, s.n, jac != nil)
	})
	if err != nil {
		return err
	}
	s.jac, s.psetup, s.psolve = jac, nil, nil
	return nil
}

// SetSPGMR attaches a GMRES iterative linear solver, right-preconditioned
// when solve is non-nil. setup may be nil.
func (s *Session) SetSPGMR(setup PrecSetupFn, solve PrecSolveFn) error {
	if setup != nil && solve == nil {
		return fmt.Errorf("%w: preconditioner setup without solve", sundials.ErrIllegalInput)
	}
	err := s.call(context.Background(), "KINSetLinearSolver", TranslateLSCode, func() int {
		return s.lib.SetSPGMR(s.mem, s.n, setup != nil, solve != nil)
	})
	if err != nil {
		return err
	}
	s.jac, s.psetup, s.psolve = nil, setup, solve
	return nil
}

// SetMaxIters bounds the number of nonlinear iterations. Zero restores the
// default of 200.
func (s *Session) SetMaxIters(n int64) error {
	return s.call(context.Background(), "KINSetNumMaxIters", TranslateReturnCode, func() int {
		return s.lib.SetMaxIters(s.mem, n)
	})
}

// SetFuncNormTol sets the stopping tolerance on the scaled residual max
// norm. Zero restores the default.
func (s *Session) SetFuncNormTol(tol float64) error {
	return s.call(context.Background(), "KINSetFuncNormTol", TranslateReturnCode, func() int {
		return s.lib.SetFuncNormTol(s.mem, tol)
	})
}

// SetScaledStepTol sets the stopping tolerance on the scaled step length.
func (s *Session) SetScaledStepTol(tol float64) error {
	return s.call(context.Background(), "KINSetScaledStepTol", TranslateReturnCode, func() int {
		return s.lib.SetScaledStepTol(s.mem, tol)
	})
}

// SetPrintLevel sets how much the info handler receives, 0 to 3.
func (s *Session) SetPrintLevel(level int) error {
	err := s.call(context.Background(), "KINSetPrintLevel", TranslateReturnCode, func() int {
		return s.lib.SetPrintLevel(s.mem, level)
	})
	if err != nil {
		return err
	}
	s.print = level
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

// SetInfoHandler installs fn as the receiver of informational messages and
// raises the print level to at least 1 so that it receives some. A nil fn
// restores the default, which logs messages at debug level.
func (s *Session) SetInfoHandler(fn InfoHandler) error {
	if err := s.core.Check(); err != nil {
		return err
	}
	if fn != nil && s.print == 0 {
		if err := s.SetPrintLevel(1); err != nil {
			return err
		}
	}
	s.infoh = fn
	return nil
}

// Stats returns the solver statistics of the last Solve. It may be called
// from inside a callback.
func (s *Session) Stats() (Stats, error) {
	if err := s.core.Check(); err != nil {
		return Stats{}, err
	}
	st, flag := s.lib.GetStats(s.mem)
	runtime.KeepAlive(s)
	if flag < 0 {
		return Stats{}, TranslateReturnCode("KINGetNumNonlinSolvIters", flag)
	}
	return st, nil
}

// Close frees the native solver memory. It is idempotent.
func (s *Session) Close() error {
	return s.core.Close(context.Background())
}
