package sundials

import "errors"

// Classify maps a callback outcome to the status returned to native code.
// A nil error is success. An error tagged with ErrRecoverable is recoverable
// when r allows retries. Anything else is stashed on g and reported as
// unrecoverable.
func Classify(g *Guard, err error, r Recoverability) Status {
	if err == nil {
		return StatusSuccess
	}
	if r == MayRetry && errors.Is(err, ErrRecoverable) {
		return StatusRecoverable
	}
	g.Stash(err)
	return StatusUnrecoverable
}

// Invoke runs fn as the body of a callback of the given kind and classifies
// its outcome. A panic in fn is recovered and classified as a *PanicError;
// no panic propagates to the caller.
func Invoke(g *Guard, kind CallbackKind, fn func() error) (st Status) {
	defer func() {
		if v := recover(); v != nil {
			st = Classify(g, newPanicError(v), kind.Recoverability())
		}
	}()
	return Classify(g, fn(), kind.Recoverability())
}

// capture runs a report handler and returns its fault, including a
// recovered panic.
func capture(fn func() error) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = newPanicError(v)
		}
	}()
	return fn()
}
