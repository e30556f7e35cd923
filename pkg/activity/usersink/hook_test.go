package usersink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-redis-attrs/pkg/activity"
	"github.com/goliatone/go-redis-attrs/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookMapsOwnerAndAttribute(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	tenantID := uuid.New()

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       activity.VerbAttributeSet,
		ActorID:    actorID.String(),
		TenantID:   tenantID.String(),
		Model:      "film",
		Identity:   "1",
		Attribute:  "title",
		Key:        "film:1:title",
		Value:      "Argo",
		Channel:    activity.DefaultChannel,
		OccurredAt: now,
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}

	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID || record.TenantID != tenantID {
		t.Fatalf("unexpected actor or tenant %s %s", record.ActorID, record.TenantID)
	}
	if record.Verb != activity.VerbAttributeSet || record.ObjectType != "film" || record.ObjectID != "1" {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != activity.DefaultChannel || !record.OccurredAt.Equal(now) {
		t.Fatalf("unexpected channel or time: %+v", record)
	}
	if record.Data["attribute"] != "title" || record.Data["key"] != "film:1:title" || record.Data["value"] != "Argo" {
		t.Fatalf("expected attribute fields in data, got %v", record.Data)
	}
	if _, ok := record.Data["actor"]; ok {
		t.Fatalf("uuid actor should not be duplicated into data")
	}
}

func TestHookKeepsNonUUIDActor(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:     activity.VerbAttributeDeleted,
		ActorID:  "cli",
		Model:    "film",
		Identity: "1",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	record := sink.records[0]
	if record.ActorID != uuid.Nil {
		t.Fatalf("expected nil actor uuid, got %s", record.ActorID)
	}
	if record.Data["actor"] != "cli" {
		t.Fatalf("expected raw actor in data, got %v", record.Data)
	}
}

func TestHookSkipsInvalidEvents(t *testing.T) {
	sink := &recordingSink{}
	if err := (usersink.Hook{Sink: sink}).Notify(context.Background(), activity.Event{Verb: activity.VerbAttributeSet}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if err := (usersink.Hook{}).Notify(context.Background(), activity.Event{Verb: activity.VerbAttributeSet, Model: "film", Identity: "1"}); err != nil {
		t.Fatalf("a hook without sink is a no-op, got %v", err)
	}
	if len(sink.records) != 0 {
		t.Fatalf("expected no records, got %d", len(sink.records))
	}
}

func TestHookStampsTimeAndReturnsSinkErrors(t *testing.T) {
	boom := errors.New("sink down")
	sink := &recordingSink{err: boom}
	hook := usersink.Hook{Sink: sink}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:     activity.VerbScalarsInitialized,
		Model:    "film",
		Identity: "1",
		Count:    4,
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
	record := sink.records[0]
	if record.OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be stamped")
	}
	if record.Data["count"] != 4 {
		t.Fatalf("expected count in data, got %v", record.Data)
	}
}
