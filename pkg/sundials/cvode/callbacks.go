package cvode

import "github.com/sunml/sundials-go/pkg/sundials"

// Slices passed to callbacks alias solver storage and are only valid until
// the callback returns. Return sundials.Recoverable(err) from a callback
// that supports retries to ask the solver to try again with a smaller step;
// any other error aborts the native call and is returned, unchanged, by the
// session method that triggered it.

// RHSFn computes ydot = f(t, y).
type RHSFn func(t float64, y, ydot []float64) error

// RootsFn fills g with the root function values g(t, y). Recoverable errors
// are treated like any other error.
type RootsFn func(t float64, y, g []float64) error

// JacArgs are the arguments shared by Jacobian and preconditioner callbacks.
type JacArgs struct {
	T   float64
	Y   []float64
	FY  []float64
	Tmp [3][]float64
}

// JacFn fills jac with the dense Jacobian df/dy at (t, y).
type JacFn func(args JacArgs, jac sundials.Dense) error

// PrecSetupFn prepares a preconditioner. jok reports whether previously
// computed Jacobian data may be reused; the returned jcur reports whether
// Jacobian data was recomputed.
type PrecSetupFn func(args JacArgs, jok bool, gamma float64) (jcur bool, err error)

// PrecSolveFn solves P z = r, where P is the left (left == true) or right
// preconditioner.
type PrecSolveFn func(args JacArgs, r, z []float64, gamma, delta float64, left bool) error

// ProjFn projects ycur onto the constraint manifold, writing the correction
// into corr and, if errv is non-nil, projecting the error estimate in place.
type ProjFn func(t float64, ycur, corr []float64, epsProj float64, errv []float64) error

// MonitorFn is called every few steps with the session and current time.
// Recoverable errors are treated like any other error.
type MonitorFn func(s *Session, t float64) error

// ErrorDetails is an error report from the native solver.
type ErrorDetails struct {
	Code     int
	Module   string
	Function string
	Message  string
}

// ErrorHandler receives native error reports. An error it returns is
// surfaced by the session method in progress, or logged and dropped outside
// one.
type ErrorHandler func(ErrorDetails) error
