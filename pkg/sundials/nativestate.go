package sundials

import (
	"runtime"
	"sync"
)

// NativeState owns the native side of a session: its back-reference key and
// the function that frees the native solver memory. It must not point back
// at the session, so the session stays collectable.
type NativeState struct {
	once sync.Once
	ud   UserData
	free func()
}

// NewNativeState pairs a registered key with the function releasing the
// native memory.
func NewNativeState(ud UserData, free func()) *NativeState {
	return &NativeState{ud: ud, free: free}
}

// Release unregisters the key and frees the native memory. Only the first
// call has an effect.
func (n *NativeState) Release() {
	n.once.Do(func() {
		Unregister(n.ud)
		if n.free != nil {
			n.free()
		}
	})
}

// attach arranges for st to be released once owner becomes unreachable.
func attach[T any](owner *T, st *NativeState) runtime.Cleanup {
	return runtime.AddCleanup(owner, (*NativeState).Release, st)
}
