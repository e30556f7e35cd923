package activity

import (
	"testing"
	"time"
)

func TestEventNormalize(t *testing.T) {
	meta := map[string]any{"source": "cli"}
	event := Event{
		Verb:      " attrs.set ",
		ActorID:   " editor ",
		Model:     " film ",
		Identity:  " 42 ",
		Attribute: " title ",
		Channel:   " catalog ",
		Metadata:  meta,
	}

	got := event.Normalize()
	if got.Verb != VerbAttributeSet || got.Model != "film" || got.Identity != "42" || got.Attribute != "title" {
		t.Fatalf("unexpected normalized event %+v", got)
	}
	if got.ActorID != "editor" || got.Channel != "catalog" {
		t.Fatalf("unexpected trimming %+v", got)
	}
	if got.OccurredAt.IsZero() || got.OccurredAt.Location() != time.UTC {
		t.Fatalf("expected a UTC timestamp, got %v", got.OccurredAt)
	}
	got.Metadata["source"] = "changed"
	if meta["source"] != "cli" {
		t.Fatalf("metadata must be copied")
	}

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if kept := (Event{OccurredAt: at}).Normalize(); !kept.OccurredAt.Equal(at) {
		t.Fatalf("explicit timestamps must be kept, got %v", kept.OccurredAt)
	}
}

func TestEventValid(t *testing.T) {
	cases := map[string]Event{
		"no verb":     {Model: "film", Identity: "1"},
		"no model":    {Verb: VerbAttributeSet, Identity: "1"},
		"no identity": {Verb: VerbAttributeSet, Model: "film"},
	}
	for name, event := range cases {
		if event.Valid() {
			t.Fatalf("%s: expected invalid", name)
		}
	}
	if !(Event{Verb: VerbAttributeSet, Model: "film", Identity: "1"}).Valid() {
		t.Fatalf("expected valid event")
	}
}

func TestEventData(t *testing.T) {
	event := Event{
		Attribute: "title",
		Key:       "film:1:title",
		Value:     "Argo",
		Metadata:  map[string]any{"source": "cli", "attribute": "spoofed"},
	}
	data := event.Data()
	if data["attribute"] != "title" || data["key"] != "film:1:title" || data["value"] != "Argo" || data["source"] != "cli" {
		t.Fatalf("unexpected data %v", data)
	}
	if _, ok := data["count"]; ok {
		t.Fatalf("zero count must be omitted")
	}
	if event.Metadata["attribute"] != "spoofed" {
		t.Fatalf("metadata must not be mutated")
	}

	batch := Event{Verb: VerbScalarsInitialized, Count: 3}.Data()
	if len(batch) != 1 || batch["count"] != 3 {
		t.Fatalf("unexpected batch data %v", batch)
	}
	if (Event{}).Data() != nil {
		t.Fatalf("empty events carry no data")
	}
}
