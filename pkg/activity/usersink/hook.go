// Package usersink forwards attribute events to a go-users ActivitySink.
package usersink

import (
	"context"

	"github.com/goliatone/go-redis-attrs/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook is an activity.Hook writing one ActivityRecord per event.
type Hook struct {
	Sink usertypes.ActivitySink
}

// Notify maps the owner model and identity to the record's object type and
// id, and the attribute fields to its data. go-users keys actors and tenants
// by UUID, so other identifiers become uuid.Nil and a non-UUID actor is kept
// under data["actor"].
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	event = event.Normalize()
	if h.Sink == nil || !event.Valid() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	record := usertypes.ActivityRecord{
		ActorID:    toUUID(event.ActorID),
		TenantID:   toUUID(event.TenantID),
		Verb:       event.Verb,
		ObjectType: event.Model,
		ObjectID:   event.Identity,
		Channel:    event.Channel,
		Data:       event.Data(),
		OccurredAt: event.OccurredAt,
	}
	if event.ActorID != "" && record.ActorID == uuid.Nil {
		if record.Data == nil {
			record.Data = map[string]any{}
		}
		record.Data["actor"] = event.ActorID
	}
	return h.Sink.Log(ctx, record)
}

func toUUID(value string) uuid.UUID {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil
	}
	return id
}
