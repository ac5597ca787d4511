package cvode

import (
	"sync"

	"github.com/sunml/sundials-go/internal/native"
	"github.com/sunml/sundials-go/internal/native/refsolver"
	"github.com/sunml/sundials-go/pkg/sundials"
)

// Every native CVODE callback lands in one of these functions. Each resolves
// the session from the user-data key, runs the registered closure through
// the session's fault capture, and returns the classified status. A key that
// no longer resolves yields -1 without touching any Go state.

var trampolines = native.CVodeCallbacks{
	RHS:       rhsTrampoline,
	Roots:     rootsTrampoline,
	ErrH:      errhTrampoline,
	Jac:       jacTrampoline,
	PrecSetup: precSetupTrampoline,
	PrecSolve: precSolveTrampoline,
	Proj:      projTrampoline,
	Monitor:   monitorTrampoline,
}

var (
	nativeLib = sync.OnceValues(func() (native.CVodeLib, error) {
		return native.NewCVode(&trampolines)
	})
	referenceLib = sync.OnceValue(func() native.CVodeLib {
		return refsolver.NewCVode(&trampolines)
	})
)

func library(b sundials.Backend) (native.CVodeLib, error) {
	if b.Resolve() == sundials.BackendNative {
		return nativeLib()
	}
	return referenceLib(), nil
}

func resolve(ud uintptr) (*Session, bool) {
	s, err := sundials.Resolve[Session](sundials.UserData(ud))
	return s, err == nil
}

func rhsTrampoline(ud uintptr, t float64, y, ydot []float64) int {
	s, ok := resolve(ud)
	if !ok || s.rhs == nil {
		return int(sundials.StatusUnrecoverable)
	}
	return int(s.core.Invoke(sundials.KindRHS, func() error {
		return s.rhs(t, y, ydot)
	}))
}

func rootsTrampoline(ud uintptr, t float64, y, gout []float64) int {
	s, ok := resolve(ud)
	if !ok || s.roots == nil {
		return int(sundials.StatusUnrecoverable)
	}
	return int(s.core.Invoke(sundials.KindRoots, func() error {
		return s.roots(t, y, gout)
	}))
}

func errhTrampoline(ud uintptr, code int, module, function, msg string) {
	s, ok := resolve(ud)
	if !ok {
		return
	}
	if s.errh == nil {
		s.core.NativeError(code, module, function, msg)
		return
	}
	s.core.Remember(code, msg)
	s.core.Report(sundials.KindErrHandler, func() error {
		return s.errh(ErrorDetails{Code: code, Module: module, Function: function, Message: msg})
	})
}

func jacTrampoline(ud uintptr, t float64, y, fy []float64, jac native.Dense, tmp [3][]float64) int {
	s, ok := resolve(ud)
	if !ok || s.jac == nil {
		return int(sundials.StatusUnrecoverable)
	}
	return int(s.core.Invoke(sundials.KindJac, func() error {
		return s.jac(JacArgs{T: t, Y: y, FY: fy, Tmp: tmp}, jac)
	}))
}

func precSetupTrampoline(ud uintptr, t float64, y, fy []float64, jok bool, gamma float64) (bool, int) {
	s, ok := resolve(ud)
	if !ok || s.psetup == nil {
		return false, int(sundials.StatusUnrecoverable)
	}
	var jcur bool
	st := s.core.Invoke(sundials.KindPrecSetup, func() error {
		var err error
		jcur, err = s.psetup(JacArgs{T: t, Y: y, FY: fy}, jok, gamma)
		return err
	})
	return jcur, int(st)
}

func precSolveTrampoline(ud uintptr, t float64, y, fy, r, z []float64, gamma, delta float64, left bool) int {
	s, ok := resolve(ud)
	if !ok || s.psolve == nil {
		return int(sundials.StatusUnrecoverable)
	}
	return int(s.core.Invoke(sundials.KindPrecSolve, func() error {
		return s.psolve(JacArgs{T: t, Y: y, FY: fy}, r, z, gamma, delta, left)
	}))
}

func projTrampoline(ud uintptr, t float64, ycur, corr []float64, epsProj float64, errv []float64) int {
	s, ok := resolve(ud)
	if !ok || s.proj == nil {
		return int(sundials.StatusUnrecoverable)
	}
	return int(s.core.Invoke(sundials.KindProj, func() error {
		return s.proj(t, ycur, corr, epsProj, errv)
	}))
}

func monitorTrampoline(ud uintptr, t float64) int {
	s, ok := resolve(ud)
	if !ok || s.monitor == nil {
		return int(sundials.StatusUnrecoverable)
	}
	return int(s.core.Invoke(sundials.KindMonitor, func() error {
		return s.monitor(s, t)
	}))
}
