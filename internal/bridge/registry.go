package bridge

import (
	"errors"
	"sync"
)

var ErrNotRegistered = errors.New("bridge: no NativeBridge registered")

var (
	mu     sync.RWMutex
	global NativeBridge
)

// Register is called once from native (Swift/Kotlin) before any SDK call.
// Registering again replaces the previous bridge.
func Register(b NativeBridge) {
	mu.Lock()
	defer mu.Unlock()
	global = b
}

// Unregister drops the registered bridge.
func Unregister() {
	mu.Lock()
	defer mu.Unlock()
	global = nil
}

// Safe returns the bridge and an error instead of panicking.
func Safe() (NativeBridge, error) {
	mu.RLock()
	defer mu.RUnlock()
	if global == nil {
		return nil, ErrNotRegistered
	}
	return global, nil
}
