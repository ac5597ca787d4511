package sundials

import (
	"sync"
	"weak"
)

// UserData is the key a session stores in the native user-data slot. It is
// the only value native callbacks receive from which to recover the session.
// Keys are never reused, so a stale key resolves to ErrUseAfterFree instead
// of to an unrelated session.
type UserData uintptr

var (
	regMu   sync.Mutex
	regNext UserData = 1
	reg              = map[UserData]any{}
)

// Register records a weak back-reference to p and returns its key. The entry
// never keeps p reachable: once the program drops every other reference, p
// can be collected and Resolve reports ErrUseAfterFree.
func Register[T any](p *T) UserData {
	wp := weak.Make(p)
	regMu.Lock()
	defer regMu.Unlock()
	ud := regNext
	regNext++
	reg[ud] = wp
	return ud
}

// Resolve returns the live value registered under ud.
func Resolve[T any](ud UserData) (*T, error) {
	if ud == 0 {
		return nil, ErrUseAfterFree
	}
	regMu.Lock()
	v, ok := reg[ud]
	regMu.Unlock()
	if !ok {
		return nil, ErrUseAfterFree
	}
	wp, ok := v.(weak.Pointer[T])
	if !ok {
		return nil, ErrUseAfterFree
	}
	p := wp.Value()
	if p == nil {
		return nil, ErrUseAfterFree
	}
	return p, nil
}

// Unregister removes ud. It is safe to call more than once.
func Unregister(ud UserData) {
	regMu.Lock()
	delete(reg, ud)
	regMu.Unlock()
}

// LiveSessions returns the number of registered back-references.
func LiveSessions() int {
	regMu.Lock()
	defer regMu.Unlock()
	return len(reg)
}
