package kinsol

import "github.com/sunml/sundials-go/pkg/sundials"

// Slices passed to callbacks alias solver storage and are only valid until
// the callback returns. Return sundials.Recoverable(err) to ask the solver to
// retry with a damped step.

// SysFn computes fval = F(u). With FixedPoint, it computes G(u).
type SysFn func(u, fval []float64) error

// JacArgs are the arguments of a Jacobian callback.
type JacArgs struct {
	U   []float64
	FU  []float64
	Tmp [2][]float64
}

// JacFn fills jac with the dense Jacobian dF/du at u.
type JacFn func(args JacArgs, jac sundials.Dense) error

// PrecArgs are the arguments shared by the preconditioner callbacks.
type PrecArgs struct {
	U      []float64
	UScale []float64
	FVal   []float64
	FScale []float64
}

// PrecSetupFn prepares the right preconditioner at u.
type PrecSetupFn func(args PrecArgs) error

// PrecSolveFn solves P x = v and overwrites v with x.
type PrecSolveFn func(args PrecArgs, v []float64) error

// ErrorDetails is an error report from the native solver.
type ErrorDetails struct {
	Code     int
	Module   string
	Function string
	Message  string
}

// ErrorHandler receives native error reports.
type ErrorHandler func(ErrorDetails) error

// InfoDetails is an informational message from the native solver.
type InfoDetails struct {
	Module   string
	Function string
	Message  string
}

// InfoHandler receives informational messages.
type InfoHandler func(InfoDetails) error
