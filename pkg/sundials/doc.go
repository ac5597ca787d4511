// Package sundials holds the solver-family independent half of the bridge
// between Go sessions and the SUNDIALS solver libraries.
//
// # Sessions and back-references
//
// A session (cvode.Session, kinsol.Session) owns one native solver memory.
// Native callbacks only receive the UserData key the session stored in the
// native user-data slot. Register keeps a weak pointer under that key, so the
// key never keeps the session reachable, and Resolve recovers the live
// session inside a callback. The native memory is freed by Close or, if the
// program drops the session without closing it, by a runtime cleanup
// attached to the session.
//
// # Callback faults
//
// Every callback body runs through Invoke, which recovers panics and
// classifies the outcome for native code:
//
//	nil error                                 -> 0  (success)
//	Recoverable(err), slot allows retries     -> 1  (solver retries)
//	anything else                             -> -1 (fault is stashed)
//
// When the native call returns, Guard.Reraise surfaces the stashed fault
// unchanged; it takes precedence over the native return code. Without a
// stashed fault, negative codes are translated by the family package into a
// *SolverError wrapping one of its Exn values, or an *InternalSolverError for
// codes outside the documented set.
//
// # Reentrancy
//
// A session accepts one native call at a time. Solve, ReInit and the setters
// that touch native memory fail with ErrReentrant when called from inside a
// callback of the same session; statistics getters are allowed.
//
// # Backends
//
// BackendNative uses the cgo bindings (build with -tags sundials);
// BackendReference uses a pure-Go emulation of the same protocol. The
// default, BackendAuto, picks the native backend when it is linked.
package sundials
