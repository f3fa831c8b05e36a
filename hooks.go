package panbuild

import (
	"slices"
	"sync"

	"github.com/louib/panbuild/pkg/reconciler"
)

// ChangeHook is called for each project written by a discovery run.
type ChangeHook func(change reconciler.Change)

// Hooks registers callbacks on store changes.
type Hooks interface {
	// OnProjectCreated registers a callback for newly created projects
	OnProjectCreated(fn ChangeHook)

	// OnProjectUpdated registers a callback for projects that gained data
	OnProjectUpdated(fn ChangeHook)

	// OnProjectFailed registers a callback for candidates that could not
	// be reconciled
	OnProjectFailed(fn ChangeHook)
}

type hooks struct {
	mu        sync.RWMutex
	onCreated []ChangeHook
	onUpdated []ChangeHook
	onFailed  []ChangeHook
}

func newHooks() *hooks {
	return &hooks{}
}

func (c *client) OnProjectCreated(fn ChangeHook) { c.hooks.add(&c.hooks.onCreated, fn) }
func (c *client) OnProjectUpdated(fn ChangeHook) { c.hooks.add(&c.hooks.onUpdated, fn) }
func (c *client) OnProjectFailed(fn ChangeHook)  { c.hooks.add(&c.hooks.onFailed, fn) }

func (h *hooks) add(list *[]ChangeHook, fn ChangeHook) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	*list = append(*list, fn)
}

// trigger dispatches the changes of one reconciliation.
func (h *hooks) trigger(result *reconciler.Result) {
	if result == nil {
		return
	}
	// Callbacks run unlocked so they may register further hooks.
	h.mu.RLock()
	onCreated := slices.Clone(h.onCreated)
	onUpdated := slices.Clone(h.onUpdated)
	onFailed := slices.Clone(h.onFailed)
	h.mu.RUnlock()

	for _, change := range result.Changes {
		var list []ChangeHook
		switch change.Action {
		case reconciler.ActionCreated:
			list = onCreated
		case reconciler.ActionUpdated:
			list = onUpdated
		case reconciler.ActionFailed:
			list = onFailed
		}
		for _, fn := range list {
			fn(change)
		}
	}
}
