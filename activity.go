package attrs

import (
	"context"

	"github.com/goliatone/go-redis-attrs/pkg/activity"
)

// WithActivityHooks emits an activity event for every scalar write, scalar
// delete, collection assignment and batch initialize. Nil hooks are dropped.
// An empty channel defaults to activity.DefaultChannel.
func WithActivityHooks(channel string, hooks ...activity.Hook) Option {
	compact := activity.Hooks(hooks).Compact()
	return func(cfg *registryConfig) {
		cfg.activityHooks = compact
		cfg.activity = activity.Config{Enabled: len(compact) > 0, Channel: channel}
	}
}

// emit stamps event with the record's owner and forwards it. Hook failures
// are logged and never fail the store operation that already happened.
func (r *Record) emit(ctx context.Context, identity string, event activity.Event) {
	registry := r.model.registry
	if !registry.emitter.Enabled() {
		return
	}
	event.Model = r.model.prefix
	event.Identity = identity
	if err := registry.emitter.Emit(ctx, event); err != nil {
		registry.logger.LogOperation(OperationEvent{
			Op:        "activity",
			Model:     event.Model,
			Identity:  event.Identity,
			Attribute: event.Attribute,
			Err:       err,
		})
	}
}
