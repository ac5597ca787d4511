package sundials

import (
	"context"
	"runtime"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sunml/sundials-go/pkg/sundials/logging"
)

// Core is the part of a session that does not depend on the solver family:
// the back-reference key, the reentrancy guard and stash, the native
// teardown, and logging and telemetry. Session types embed a Core and bind
// it to themselves with Bind.
type Core struct {
	family  string
	id      string
	ud      UserData
	guard   Guard
	log     logging.Logger
	tel     *Telemetry
	state   *NativeState
	cleanup runtime.Cleanup
	bound   bool

	callCtx  context.Context
	lastCode int
	lastMsg  string
}

// Setup initialises c for a session of the given family.
func (c *Core) Setup(family string, o Options) {
	c.family = family
	c.id = uuid.NewString()
	c.log = o.Logger.With("session", c.id, "family", family)
	c.guard.Log = c.log
	c.tel = NewTelemetry(o.TracerProvider, o.MeterProvider)
}

// Bind registers a weak back-reference to owner, whose embedded Core is c,
// and arranges for free to run exactly once: on Close, on Release, or when
// owner is collected. free must not refer to owner.
func Bind[T any](c *Core, owner *T, free func()) UserData {
	c.ud = Register(owner)
	c.state = NewNativeState(c.ud, free)
	c.cleanup = attach(owner, c.state)
	c.bound = true
	c.log.Debug(context.Background(), "session created", "key", uint64(c.ud))
	return c.ud
}

// ID returns the session's unique identifier.
func (c *Core) ID() string { return c.id }

// Key returns the back-reference key stored in the native user-data slot.
func (c *Core) Key() UserData { return c.ud }

// Logger returns the session logger.
func (c *Core) Logger() logging.Logger { return c.log }

// Guard exposes the session's reentrancy guard and fault stash.
func (c *Core) Guard() *Guard { return &c.guard }

// Check fails with ErrUseAfterFree once the session is closed.
func (c *Core) Check() error { return c.guard.Check() }

// Enter begins a guarded native call. ctx is made available to callbacks
// through Context until Exit.
func (c *Core) Enter(ctx context.Context) error {
	if err := c.guard.Enter(); err != nil {
		return err
	}
	c.callCtx = ctx
	return nil
}

// Exit ends the guarded call started by Enter.
func (c *Core) Exit() {
	c.callCtx = nil
	c.guard.Exit()
}

// Context returns the context of the native call in progress, or
// context.Background outside one.
func (c *Core) Context() context.Context {
	if c.callCtx != nil {
		return c.callCtx
	}
	return context.Background()
}

// Start opens a span for a native entry point of this session.
func (c *Core) Start(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.tel.Start(ctx, name,
		attribute.String("sundials.session", c.id),
		attribute.String("sundials.family", c.family),
	)
}

// End records err on span and ends it.
func (c *Core) End(span trace.Span, err error) { c.tel.End(span, err) }

// Invoke runs a status-returning callback body and records its outcome.
func (c *Core) Invoke(kind CallbackKind, fn func() error) Status {
	st := Invoke(&c.guard, kind, fn)
	c.tel.callback(c.Context(), c.family, kind, st)
	return st
}

// Report runs an error or info handler body. Handlers return nothing to
// native code, so a fault is stashed when a guarded call is running and
// logged and dropped otherwise.
func (c *Core) Report(kind CallbackKind, fn func() error) {
	err := capture(fn)
	st := StatusSuccess
	if err != nil {
		st = StatusUnrecoverable
		if c.guard.Active() {
			c.guard.Stash(err)
		} else {
			c.log.Warn(c.Context(), "dropping fault raised by report handler", "kind", kind.String(), "err", err)
		}
	}
	c.tel.callback(c.Context(), c.family, kind, st)
}

// Remember keeps a native error report for the InitializationError of a
// failing constructor.
func (c *Core) Remember(code int, msg string) {
	c.lastCode, c.lastMsg = code, msg
}

// NativeError is the default error handler: it logs the report and
// remembers it.
func (c *Core) NativeError(code int, module, function, msg string) {
	c.Remember(code, msg)
	c.log.Warn(c.Context(), "native solver error", logging.NativeReport(code, module, function, msg))
}

// NativeCall records the result of a native entry point.
func (c *Core) NativeCall(ctx context.Context, call string, code int) {
	c.tel.nativeCall(ctx, call, code)
}

// Reraise returns the stashed fault if any, otherwise translate's error for
// a negative code.
func (c *Core) Reraise(call string, code int, translate Translator) error {
	return c.guard.Reraise(call, code, translate)
}

// InitError builds the error for a failing constructor call.
func (c *Core) InitError(call string, code int, translate Translator) error {
	e := &InitializationError{Call: call, Code: code}
	if c.lastCode == code {
		e.Msg = c.lastMsg
	}
	if err := c.guard.take(); err != nil {
		e.Err = err
	} else if translate != nil {
		e.Err = translate(call, code)
	}
	return e
}

// Close frees the native memory and unregisters the session. It is
// idempotent. Closing from inside a callback of the same session fails with
// ErrReentrant.
func (c *Core) Close(ctx context.Context) error {
	if c.guard.Active() {
		return ErrReentrant
	}
	if !c.guard.MarkFreed() {
		return nil
	}
	c.release()
	c.log.Debug(ctx, "session closed")
	return nil
}

// Release tears down a session whose constructor failed.
func (c *Core) Release() {
	if c.guard.MarkFreed() {
		c.release()
	}
}

func (c *Core) release() {
	if !c.bound {
		return
	}
	c.cleanup.Stop()
	c.state.Release()
}
