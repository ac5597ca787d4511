package kinsol

import (
	"sync"

	"github.com/sunml/sundials-go/internal/native"
	"github.com/sunml/sundials-go/internal/native/refsolver"
	"github.com/sunml/sundials-go/pkg/sundials"
)

var trampolines = native.KinsolCallbacks{
	Sys:       sysTrampoline,
	Jac:       jacTrampoline,
	PrecSetup: precSetupTrampoline,
	PrecSolve: precSolveTrampoline,
	ErrH:      errhTrampoline,
	InfoH:     infohTrampoline,
}

var (
	nativeLib = sync.OnceValues(func() (native.KinsolLib, error) {
		return native.NewKinsol(&trampolines)
	})
	referenceLib = sync.OnceValue(func() native.KinsolLib {
		return refsolver.NewKinsol(&trampolines)
	})
)

func library(b sundials.Backend) (native.KinsolLib, error) {
	if b.Resolve() == sundials.BackendNative {
		return nativeLib()
	}
	return referenceLib(), nil
}

func resolve(ud uintptr) (*Session, bool) {
	s, err := sundials.Resolve[Session](sundials.UserData(ud))
	return s, err == nil
}

func sysTrampoline(ud uintptr, u, fval []float64) int {
	s, ok := resolve(ud)
	if !ok || s.sys == nil {
		return int(sundials.StatusUnrecoverable)
	}
	return int(s.core.Invoke(sundials.KindSys, func() error {
		return s.sys(u, fval)
	}))
}

func jacTrampoline(ud uintptr, u, fu []float64, jac native.Dense, tmp [2][]float64) int {
	s, ok := resolve(ud)
	if !ok || s.jac == nil {
		return int(sundials.StatusUnrecoverable)
	}
	return int(s.core.Invoke(sundials.KindJac, func() error {
		return s.jac(JacArgs{U: u, FU: fu, Tmp: tmp}, jac)
	}))
}

func precSetupTrampoline(ud uintptr, u, uscale, fval, fscale []float64) int {
	s, ok := resolve(ud)
	if !ok || s.psetup == nil {
		return int(sundials.StatusUnrecoverable)
	}
	return int(s.core.Invoke(sundials.KindPrecSetup, func() error {
		return s.psetup(PrecArgs{U: u, UScale: uscale, FVal: fval, FScale: fscale})
	}))
}

func precSolveTrampoline(ud uintptr, u, uscale, fval, fscale, v []float64) int {
	s, ok := resolve(ud)
	if !ok || s.psolve == nil {
		return int(sundials.StatusUnrecoverable)
	}
	return int(s.core.Invoke(sundials.KindPrecSolve, func() error {
		return s.psolve(PrecArgs{U: u, UScale: uscale, FVal: fval, FScale: fscale}, v)
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

func infohTrampoline(ud uintptr, module, function, msg string) {
	s, ok := resolve(ud)
	if !ok {
		return
	}
	if s.infoh == nil {
		s.core.Logger().Debug(s.core.Context(), "kinsol info", "module", module, "function", function, "msg", msg)
		return
	}
	s.core.Report(sundials.KindInfoHandler, func() error {
		return s.infoh(InfoDetails{Module: module, Function: function, Message: msg})
	})
}
