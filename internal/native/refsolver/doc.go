// Package refsolver is a pure-Go emulation of the SUNDIALS CVODE and KINSOL
// entry points used by the session packages.
//
// It speaks the same protocol as the cgo backend in internal/native: an
// opaque Mem per problem, a numeric user-data key handed back to every
// callback, three-valued callback statuses (0 success, positive recoverable,
// negative unrecoverable) and the documented SUNDIALS return flags. The
// numerics are intentionally small. CVODE steps are fixed-size explicit Euler
// steps (linearly implicit along the Jacobian diagonal when a dense Jacobian
// is attached); KINSOL iterations are fixed-point or diagonal Newton updates.
// The package exists to drive callbacks through realistic control flow, not
// to produce accurate solutions.
//
// Recoverable callback failures halve the step (CVODE) or damp the update
// (KINSOL) and retry, up to a fixed limit, after which the matching
// "repeated failure" flag is returned. Unlike CVODE proper, a recoverable
// failure on the very first right-hand-side evaluation is retried rather
// than reported as CV_FIRST_RHSFUNC_ERR.
//
// Live reports the number of solver memories created and not yet freed; the
// session tests use it to observe collector-driven teardown.
package refsolver
