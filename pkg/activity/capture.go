package activity

import (
	"context"
	"sync"
)

// CaptureHook keeps every event it receives. It is meant for tests and
// examples. Err, when set, is returned from each Notify after recording.
type CaptureHook struct {
	mu     sync.Mutex
	Events []Event
	Err    error
}

// Notify implements Hook.
func (h *CaptureHook) Notify(_ context.Context, event Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = append(h.Events, event.Normalize())
	return h.Err
}

// Verbs lists the captured verbs in arrival order.
func (h *CaptureHook) Verbs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	verbs := make([]string, len(h.Events))
	for i, event := range h.Events {
		verbs[i] = event.Verb
	}
	return verbs
}
