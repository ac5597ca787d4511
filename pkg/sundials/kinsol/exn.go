package kinsol

import (
	"github.com/sunml/sundials-go/internal/native"
	"github.com/sunml/sundials-go/pkg/sundials"
)

// Exn is a KINSOL fault kind. Values are errors and can be matched with
// errors.Is. The order of the constants is fixed.
type Exn int

const (
	IllInput Exn = iota
	LineSearchNonConvergence
	MaxIterationsReached
	MaxNewtonStepExceeded
	LineSearchBetaConditionFailure
	LinearSolverNoRecovery
	LinearSolverInitFailure
	LinearSetupFailure
	LinearSolveFailure
	SystemFunctionFailure
	FirstSystemFunctionFailure
	RepeatedSystemFunctionFailure
	VectorOpErr
)

var exnText = [...]string{
	IllInput:                       "illegal input",
	LineSearchNonConvergence:       "line search did not converge",
	MaxIterationsReached:           "maximum number of iterations reached",
	MaxNewtonStepExceeded:          "five consecutive steps exceeded the maximum Newton step",
	LineSearchBetaConditionFailure: "line search beta condition failed",
	LinearSolverNoRecovery:         "linear solver cannot recover",
	LinearSolverInitFailure:        "linear solver initialization failed",
	LinearSetupFailure:             "linear solver setup failed",
	LinearSolveFailure:             "linear solver solve failed",
	SystemFunctionFailure:          "system function failed",
	FirstSystemFunctionFailure:     "system function failed at first call",
	RepeatedSystemFunctionFailure:  "system function failed repeatedly",
	VectorOpErr:                    "vector operation error",
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

func (e Exn) Error() string { return "kinsol: " + e.String() }

var returnCodes = map[int]Exn{
	native.KINIllInput:          IllInput,
	native.KINNoMalloc:          IllInput,
	native.KINLineSearchNonConv: LineSearchNonConvergence,
	native.KINMaxIterReached:    MaxIterationsReached,
	native.KINMxNewt5xExceeded:  MaxNewtonStepExceeded,
	native.KINLineSearchBCFail:  LineSearchBetaConditionFailure,
	native.KINLinSolvNoRecovery: LinearSolverNoRecovery,
	native.KINLinitFail:         LinearSolverInitFailure,
	native.KINLsetupFail:        LinearSetupFailure,
	native.KINLsolveFail:        LinearSolveFailure,
	native.KINSysFuncFail:       SystemFunctionFailure,
	native.KINFirstSysFuncErr:   FirstSystemFunctionFailure,
	native.KINReptdSysFuncErr:   RepeatedSystemFunctionFailure,
	native.KINVectorOpErr:       VectorOpErr,
}

// TranslateReturnCode maps a failing KINSOL return flag to an error.
// Success and the positive informational flags yield nil.
func TranslateReturnCode(call string, code int) error {
	if code >= 0 {
		return nil
	}
	switch code {
	case native.KINMemNull:
		return &sundials.SolverError{Call: call, Code: code, Err: sundials.ErrUseAfterFree}
	case native.KINMemFail:
		return &sundials.SolverError{Call: call, Code: code, Err: sundials.ErrOutOfMemory}
	}
	if exn, ok := returnCodes[code]; ok {
		return &sundials.SolverError{Call: call, Code: code, Err: exn}
	}
	return &sundials.InternalSolverError{Call: call, Code: code}
}

var lsCodes = map[int]Exn{
	native.KINLSLmemNull:   IllInput,
	native.KINLSIllInput:   IllInput,
	native.KINLSPmemNull:   IllInput,
	native.KINLSJacFuncErr: LinearSetupFailure,
	native.KINLSSunMatFail: LinearSolverInitFailure,
	native.KINLSSunLSFail:  LinearSolverInitFailure,
}

// TranslateLSCode maps a failing KINLS flag.
func TranslateLSCode(call string, code int) error {
	if code >= 0 {
		return nil
	}
	switch code {
	case native.KINLSMemNull:
		return &sundials.SolverError{Call: call, Code: code, Err: sundials.ErrUseAfterFree}
	case native.KINLSMemFail:
		return &sundials.SolverError{Call: call, Code: code, Err: sundials.ErrOutOfMemory}
	}
	if exn, ok := lsCodes[code]; ok {
		return &sundials.SolverError{Call: call, Code: code, Err: exn}
	}
	return &sundials.InternalSolverError{Call: call, Code: code}
}
