//go:build !cgo || !sundials

package native

// Stub constructors for builds without cgo or without the sundials tag.
// These allow the session packages to compile but report ErrNotBuilt when a
// native backend is requested.

// Linked reports whether the SUNDIALS libraries were linked into the binary.
func Linked() bool { return false }

// Version returns the version string of the linked SUNDIALS library, or empty
// if the bindings are not built.
func Version() string { return "" }

// NewCVode returns ErrNotBuilt in non-native builds.
func NewCVode(*CVodeCallbacks) (CVodeLib, error) { return nil, ErrNotBuilt }

// NewKinsol returns ErrNotBuilt in non-native builds.
func NewKinsol(*KinsolCallbacks) (KinsolLib, error) { return nil, ErrNotBuilt }
