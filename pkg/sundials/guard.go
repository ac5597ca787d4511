package sundials

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sunml/sundials-go/pkg/sundials/logging"
)

// Guard serialises native calls on one session and holds the fault stashed
// by a failing callback until the call that triggered it returns.
//
// The zero value is ready to use.
type Guard struct {
	busy  atomic.Bool
	freed atomic.Bool

	mu    sync.Mutex
	stash error

	// Log receives a warning when a second fault is dropped. Nil is allowed.
	Log logging.Logger
}

// Enter marks the start of a native call. It fails with ErrUseAfterFree on a
// freed session and with ErrReentrant if a call is already running.
func (g *Guard) Enter() error {
	if g.freed.Load() {
		return ErrUseAfterFree
	}
	if !g.busy.CompareAndSwap(false, true) {
		return ErrReentrant
	}
	g.mu.Lock()
	g.stash = nil
	g.mu.Unlock()
	return nil
}

// Exit ends the call started by Enter.
func (g *Guard) Exit() { g.busy.Store(false) }

// Active reports whether a native call is running.
func (g *Guard) Active() bool { return g.busy.Load() }

// Check reports ErrUseAfterFree for a freed session without entering.
func (g *Guard) Check() error {
	if g.freed.Load() {
		return ErrUseAfterFree
	}
	return nil
}

// MarkFreed flags the session as freed. It reports whether this call did
// the flagging, so teardown runs once.
func (g *Guard) MarkFreed() bool { return g.freed.CompareAndSwap(false, true) }

// Freed reports whether MarkFreed has been called.
func (g *Guard) Freed() bool { return g.freed.Load() }

// Stash records err as the in-flight fault. The first fault wins; a later
// one is logged and dropped. It reports whether err was kept.
func (g *Guard) Stash(err error) bool {
	g.mu.Lock()
	if g.stash == nil {
		g.stash = err
		g.mu.Unlock()
		return true
	}
	g.mu.Unlock()
	if g.Log != nil {
		g.Log.Warn(context.Background(), "dropping callback fault, one is already stashed", "err", err)
	}
	return false
}

// Stashed returns the stashed fault without clearing it.
func (g *Guard) Stashed() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stash
}

func (g *Guard) take() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	err := g.stash
	g.stash = nil
	return err
}

// Reraise produces the error a native call should surface. A stashed fault
// is returned unchanged and takes precedence over code. Otherwise a negative
// code is passed to translate; non-negative codes yield nil.
func (g *Guard) Reraise(call string, code int, translate Translator) error {
	if err := g.take(); err != nil {
		return err
	}
	if code >= 0 {
		return nil
	}
	if translate == nil {
		return &InternalSolverError{Call: call, Code: code}
	}
	return translate(call, code)
}
