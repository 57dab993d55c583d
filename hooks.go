package flux

import "sync"

// Process-wide sink for signals that had nowhere to go: values arriving after
// a terminal signal or cancel, and errors that could not be delivered
// downstream. Set at program start, reset by teardown; tests override per
// fixture.

var (
	hookMu           sync.RWMutex
	errorDroppedHook func(error)
	nextDroppedHook  func(interface{})
)

func SetErrorDroppedHook(f func(error)) {
	hookMu.Lock()
	defer hookMu.Unlock()
	errorDroppedHook = f
}

func SetNextDroppedHook(f func(interface{})) {
	hookMu.Lock()
	defer hookMu.Unlock()
	nextDroppedHook = f
}

// ResetDroppedHooks restores the log-and-drop defaults.
func ResetDroppedHooks() {
	hookMu.Lock()
	defer hookMu.Unlock()
	errorDroppedHook = nil
	nextDroppedHook = nil
}

func onErrorDropped(err error) {
	hookMu.RLock()
	h := errorDroppedHook
	hookMu.RUnlock()
	if h != nil {
		h(err)
		return
	}
	if config().GetBoolDefault("flux.hooks.log-dropped", true) {
		log.Warnf("dropped error: %v", err)
	}
}

func onNextDropped(v interface{}) {
	hookMu.RLock()
	h := nextDroppedHook
	hookMu.RUnlock()
	if h != nil {
		h(v)
		return
	}
	if config().GetBoolDefault("flux.hooks.log-dropped", true) {
		log.Warnf("dropped value: %v", v)
	}
}
