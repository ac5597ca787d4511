// Package native contains all cgo bindings to the SUNDIALS C libraries.
//
// # Design Principles
//
// 1. Isolation: ALL cgo code lives in this package. No other package should
//    import "C". The session packages talk to the library only through the
//    CVodeLib and KinsolLib interfaces.
//
// 2. Minimal Surface: Expose only the entry points the sessions need
//    (create/init/setters/solve/reinit/stats/free). Don't wrap every C function.
//
// 3. Return codes, not errors: every entry point returns the raw SUNDIALS
//    flag. Translation into Go errors happens in the session packages, after
//    any stashed callback fault has been considered.
//
// 4. Callbacks: native callbacks carry only the numeric user-data key the
//    session registered. C shims forward each callback to an exported Go
//    function, which forwards to the trampoline table passed to NewCVode or
//    NewKinsol. Buffers are exposed to Go with unsafe.Slice, never copied.
//
// 5. Pinning: Go memory stored into a C-allocated N_Vector is pinned with
//    runtime.Pinner and the vector is destroyed before the call returns.
//
// # Build tags
//
// The real bindings build with `-tags sundials` and cgo enabled. Every other
// build compiles stubs whose constructors return ErrNotBuilt; the refsolver
// subpackage provides a pure-Go emulation of the same protocol.
//
// # Threading
//
// SUNDIALS solver memory is NOT thread-safe. A single Mem must only be used by
// one goroutine at a time; the session packages enforce this with a
// reentrancy guard.
package native
