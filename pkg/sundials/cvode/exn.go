package cvode

import (
	"github.com/sunml/sundials-go/internal/native"
	"github.com/sunml/sundials-go/pkg/sundials"
)

// Exn is a CVODE fault kind. Values are errors and can be matched with
// errors.Is against the error returned by any session method. The order of
// the constants is fixed.
type Exn int

const (
	IllInput Exn = iota
	TooClose
	TooMuchWork
	TooMuchAccuracy
	ErrFailure
	ConvergenceFailure
	LinearInitFailure
	LinearSetupFailure
	LinearSolveFailure
	NonlinearFailure
	NonlinearInitFailure
	NonlinearSetupFailure
	RhsFuncFailure
	FirstRhsFuncFailure
	RepeatedRhsFuncFailure
	UnrecoverableRhsFuncFailure
	RootFuncFailure
	ConstraintFailure
	BadK
	BadT
	VectorOpErr
	ProjFuncFailure
	RepeatedProjFuncError
	ProjectionNotEnabled
)

var exnText = [...]string{
	IllInput:                    "illegal input",
	TooClose:                    "tout too close to t0",
	TooMuchWork:                 "too much work",
	TooMuchAccuracy:             "too much accuracy requested",
	ErrFailure:                  "error test failures",
	ConvergenceFailure:          "convergence failures",
	LinearInitFailure:           "linear solver initialization failed",
	LinearSetupFailure:          "linear solver setup failed",
	LinearSolveFailure:          "linear solver solve failed",
	NonlinearFailure:            "nonlinear solver failed",
	NonlinearInitFailure:        "nonlinear solver initialization failed",
	NonlinearSetupFailure:       "nonlinear solver setup failed",
	RhsFuncFailure:              "right-hand side function failed",
	FirstRhsFuncFailure:         "right-hand side function failed at first call",
	RepeatedRhsFuncFailure:      "right-hand side function failed repeatedly",
	UnrecoverableRhsFuncFailure: "right-hand side function failed unrecoverably",
	RootFuncFailure:             "root function failed",
	ConstraintFailure:           "constraint test failures",
	BadK:                        "bad derivative order k",
	BadT:                        "bad time t",
	VectorOpErr:                 "vector operation error",
	ProjFuncFailure:             "projection function failed",
	RepeatedProjFuncError:       "projection function failed repeatedly",
	ProjectionNotEnabled:        "projection not enabled",
}

// Exns returns every fault kind in declaration order.
func Exns() []Exn {
	out := make([]Exn, len(exnText))
	for i := range out {
		out[i] = Exn(i)
	}
	return out
}

func (e Exn) String() string {
	if e < 0 || int(e) >= len(exnText) {
		return "unknown"
	}
	return exnText[e]
}

func (e Exn) Error() string { return "cvode: " + e.String() }

var returnCodes = map[int]Exn{
	native.CVIllInput:         IllInput,
	native.CVNoMalloc:         IllInput,
	native.CVBadDky:           IllInput,
	native.CVTooClose:         TooClose,
	native.CVTooMuchWork:      TooMuchWork,
	native.CVTooMuchAcc:       TooMuchAccuracy,
	native.CVErrFailure:       ErrFailure,
	native.CVConvFailure:      ConvergenceFailure,
	native.CVLinitFail:        LinearInitFailure,
	native.CVLsetupFail:       LinearSetupFailure,
	native.CVLsolveFail:       LinearSolveFailure,
	native.CVNLSFail:          NonlinearFailure,
	native.CVNLSInitFail:      NonlinearInitFailure,
	native.CVNLSSetupFail:     NonlinearSetupFailure,
	native.CVRhsFuncFail:      RhsFuncFailure,
	native.CVFirstRhsFuncErr:  FirstRhsFuncFailure,
	native.CVReptdRhsFuncErr:  RepeatedRhsFuncFailure,
	native.CVUnrecRhsFuncErr:  UnrecoverableRhsFuncFailure,
	native.CVRtFuncFail:       RootFuncFailure,
	native.CVConstrFail:       ConstraintFailure,
	native.CVBadK:             BadK,
	native.CVBadT:             BadT,
	native.CVVectorOpErr:      VectorOpErr,
	native.CVProjMemNull:      ProjectionNotEnabled,
	native.CVProjFuncFail:     ProjFuncFailure,
	native.CVReptdProjFuncErr: RepeatedProjFuncError,
}

// TranslateReturnCode maps a failing CVODE return flag to an error. Success
// and the positive informational flags yield nil.
func TranslateReturnCode(call string, code int) error {
	if code >= 0 {
		return nil
	}
	switch code {
	case native.CVMemNull:
		return &sundials.SolverError{Call: call, Code: code, Err: sundials.ErrUseAfterFree}
	case native.CVMemFail:
		return &sundials.SolverError{Call: call, Code: code, Err: sundials.ErrOutOfMemory}
	}
	if exn, ok := returnCodes[code]; ok {
		return &sundials.SolverError{Call: call, Code: code, Err: exn}
	}
	return &sundials.InternalSolverError{Call: call, Code: code}
}

var lsCodes = map[int]Exn{
	native.CVLSLmemNull:       IllInput,
	native.CVLSIllInput:       IllInput,
	native.CVLSPmemNull:       IllInput,
	native.CVLSJacFuncUnrecvr: LinearSetupFailure,
	native.CVLSJacFuncRecvr:   LinearSetupFailure,
	native.CVLSSunMatFail:     LinearInitFailure,
	native.CVLSSunLSFail:      LinearInitFailure,
}

// TranslateLSCode maps a failing CVLS (linear solver interface) flag.
func TranslateLSCode(call string, code int) error {
	if code >= 0 {
		return nil
	}
	switch code {
	case native.CVLSMemNull:
		return &sundials.SolverError{Call: call, Code: code, Err: sundials.ErrUseAfterFree}
	case native.CVLSMemFail:
		return &sundials.SolverError{Call: call, Code: code, Err: sundials.ErrOutOfMemory}
	}
	if exn, ok := lsCodes[code]; ok {
		return &sundials.SolverError{Call: call, Code: code, Err: exn}
	}
	return &sundials.InternalSolverError{Call: call, Code: code}
}
