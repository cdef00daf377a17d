package bridge

import (
	"errors"
	"sync/atomic"
)

var ErrNoBridge = errors.New("bridge: no NativeBridge registered")

type holder struct{ b NativeBridge }

var global atomic.Pointer[holder]

// Register is called once from native before Init. A nil bridge clears the
// registration.
func Register(b NativeBridge) {
	if b == nil {
		global.Store(nil)
		return
	}
	global.Store(&holder{b: b})
}

// Get returns the registered bridge. Panics if Register was never called.
func Get() NativeBridge {
	b, err := Safe()
	if err != nil {
		panic("bridge: no NativeBridge registered, call RegisterBridge before Init")
	}
	return b
}

// Safe returns the bridge and an error instead of panicking.
func Safe() (NativeBridge, error) {
	h := global.Load()
	if h == nil {
		return nil, ErrNoBridge
	}
	return h.b, nil
}
