package sundials

import "github.com/sunml/sundials-go/internal/native"

var (
	Version         = "v0.0.0-in-progress"
	SupportedNative = "6.x"
)

// WrapperVersion returns the semantic version populated at build time via
// ldflags. In development it defaults to v0.0.0-in-progress.
func WrapperVersion() string {
	return Version
}

// NativeVersion returns the version string reported by the linked SUNDIALS
// library if available; otherwise it reports the supported major series.
func NativeVersion() string {
	if v := native.Version(); v != "" {
		return v
	}
	return "unlinked (supports " + SupportedNative + ")"
}

// NativeLinked reports whether the SUNDIALS bindings were compiled in.
func NativeLinked() bool { return native.Linked() }
