package bidcompare

import (
	"sync"

	"github.com/agentstation/bidcompare/pkg/compare"
	"github.com/agentstation/bidcompare/pkg/sources"
)

// Hook function types for comparison events
type (
	// LoadedHook is called when an endpoint load finishes, failed or not
	LoadedHook func(result sources.Result)

	// DiscrepancyHook is called for every discrepancy, in report order
	DiscrepancyHook func(d compare.Discrepancy)
)

// hooks manages event callbacks
type hooks struct {
	mu            sync.RWMutex
	onLoaded      []LoadedHook
	onDiscrepancy []DiscrepancyHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnLoaded registers a callback for finished loads
func (h *hooks) OnLoaded(fn LoadedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onLoaded = append(h.onLoaded, fn)
}

// OnDiscrepancy registers a callback for reported discrepancies
func (h *hooks) OnDiscrepancy(fn DiscrepancyHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onDiscrepancy = append(h.onDiscrepancy, fn)
}

// triggerLoaded runs from concurrent loads; the write lock keeps hook
// calls from overlapping.
func (h *hooks) triggerLoaded(r sources.Result) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, hook := range h.onLoaded {
		hook(r)
	}
}

func (h *hooks) triggerDiscrepancies(ds []compare.Discrepancy) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, d := range ds {
		for _, hook := range h.onDiscrepancy {
			hook(d)
		}
	}
}
