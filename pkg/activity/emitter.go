package activity

import (
	"context"
	"strings"
)

// DefaultChannel is applied to events emitted without a channel.
const DefaultChannel = "attrs"

// Config holds the emission settings loaded from configuration.
type Config struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Channel string `yaml:"channel" json:"channel"`
}

// Emitter stamps events with the configured channel and the actor and tenant
// carried by the context, then hands them to its hooks.
type Emitter struct {
	hooks   Hooks
	channel string
}

// NewEmitter returns an emitter for hooks. It stays disabled unless
// cfg.Enabled is set and at least one hook is non-nil.
func NewEmitter(cfg Config, hooks ...Hook) *Emitter {
	e := &Emitter{channel: strings.TrimSpace(cfg.Channel)}
	if e.channel == "" {
		e.channel = DefaultChannel
	}
	if cfg.Enabled {
		e.hooks = Hooks(hooks).Compact()
	}
	return e
}

// Enabled reports whether Emit delivers anything.
func (e *Emitter) Enabled() bool {
	return e != nil && len(e.hooks) > 0
}

// Channel returns the channel applied to events without one.
func (e *Emitter) Channel() string {
	if e == nil {
		return DefaultChannel
	}
	return e.channel
}

// Emit delivers event. Explicit channel, actor and tenant values win over
// the defaults.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	if event.ActorID == "" {
		event.ActorID = ActorFromContext(ctx)
	}
	if event.TenantID == "" {
		event.TenantID = TenantFromContext(ctx)
	}
	return e.hooks.Notify(ctx, event)
}
