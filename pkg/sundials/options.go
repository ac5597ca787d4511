package sundials

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/sunml/sundials-go/internal/native"
	"github.com/sunml/sundials-go/pkg/sundials/logging"
)

// Backend selects the implementation behind a session.
type Backend string

const (
	// BackendAuto uses the native library when it is linked and the
	// reference emulation otherwise.
	BackendAuto Backend = ""
	// BackendNative requires the cgo SUNDIALS bindings.
	BackendNative Backend = "native"
	// BackendReference uses the pure-Go emulation.
	BackendReference Backend = "reference"
)

// ParseBackend validates a backend name.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(s); b {
	case BackendAuto, BackendNative, BackendReference:
		return b, nil
	case "auto":
		return BackendAuto, nil
	}
	return "", fmt.Errorf("%w: unknown backend %q", ErrIllegalInput, s)
}

// Resolve returns the concrete backend for b.
func (b Backend) Resolve() Backend {
	if b != BackendAuto {
		return b
	}
	if native.Linked() {
		return BackendNative
	}
	return BackendReference
}

// Options are the settings shared by every session constructor.
type Options struct {
	Backend        Backend
	Logger         logging.Logger
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// Option configures Options.
type Option func(*Options)

// WithBackend selects the session backend.
func WithBackend(b Backend) Option { return func(o *Options) { o.Backend = b } }

// WithLogger sets the session logger.
func WithLogger(l logging.Logger) Option { return func(o *Options) { o.Logger = l } }

// WithTracerProvider sets the provider spans are created from.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *Options) { o.TracerProvider = tp }
}

// WithMeterProvider sets the provider instruments are created from.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *Options) { o.MeterProvider = mp }
}

// NewOptions applies opts over the defaults.
func NewOptions(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.Logger == nil {
		o.Logger = logging.New(nil)
	}
	o.Backend = o.Backend.Resolve()
	return o
}
