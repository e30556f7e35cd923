package activity

import (
	"context"
	"errors"
)

// Hook receives attribute events.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, event Event) error

// Notify calls fn.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks fans an event out to several hooks.
type Hooks []Hook

// Compact returns the non-nil hooks, or nil when there are none.
func (h Hooks) Compact() Hooks {
	var out Hooks
	for _, hook := range h {
		if hook != nil {
			out = append(out, hook)
		}
	}
	return out
}

// Notify normalizes event and delivers it to every hook. Events without a
// verb or object are dropped. Every hook runs even when an earlier one fails;
// the failures are joined.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	event = event.Normalize()
	if len(h) == 0 || !event.Valid() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
