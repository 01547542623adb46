package invite

import (
	"convene/internal/agent"
	"convene/internal/store"
)

// Engine binds the invitation operations to a store and the calling
// agent's identity. Every operation is a synchronous call; the engine
// owns no goroutines, retries or caches.
type Engine struct {
	store store.Store
	keys  *agent.Keypair
	hook  Hook
}

func NewEngine(st store.Store, keys *agent.Keypair) *Engine {
	return &Engine{store: st, keys: keys}
}

// Self returns the identity of the calling agent.
func (e *Engine) Self() agent.ID {
	return e.keys.ID()
}

// SetHook registers the post-commit observer. Writes that happen
// before a hook is set are simply not observed.
func (e *Engine) SetHook(hook Hook) {
	e.hook = hook
}

func (e *Engine) emit(ev WriteEvent) {
	if e.hook != nil {
		e.hook(ev)
	}
}
