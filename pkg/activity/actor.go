package activity

import (
	"context"
	"strings"
)

type contextKey int

const (
	actorKey contextKey = iota
	tenantKey
)

// WithActor returns a context whose emitted events carry actorID.
func WithActor(ctx context.Context, actorID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorKey, strings.TrimSpace(actorID))
}

// ActorFromContext returns the actor set by WithActor, or "".
func ActorFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	actor, _ := ctx.Value(actorKey).(string)
	return actor
}

// WithTenant returns a context whose emitted events carry tenantID.
func WithTenant(ctx context.Context, tenantID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, tenantKey, strings.TrimSpace(tenantID))
}

// TenantFromContext returns the tenant set by WithTenant, or "".
func TenantFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	tenant, _ := ctx.Value(tenantKey).(string)
	return tenant
}
