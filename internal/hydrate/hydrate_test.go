package hydrate

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

type film struct {
	Title    string    `json:"title"`
	Stars    int64     `json:"stars"`
	Rating   float64   `json:"rating"`
	Released time.Time `json:"released"`
	Public   bool      `json:"public"`
}

func TestDecodeMapsAttributesByJSONTag(t *testing.T) {
	released := time.Date(2010, 7, 16, 0, 0, 0, 0, time.UTC)
	payload := map[string]any{
		"title":    "Inception",
		"stars":    int64(5),
		"rating":   8.8,
		"released": released,
		"public":   true,
	}

	got, err := NewDecoder[film]().Decode(Context{Model: "film", Identity: "42"}, payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Title != "Inception" || got.Stars != 5 || got.Rating != 8.8 || !got.Public {
		t.Fatalf("unexpected film %+v", got)
	}
	if !got.Released.Equal(released) {
		t.Fatalf("expected released %v, got %v", released, got.Released)
	}
}

func TestDecodeNilPayload(t *testing.T) {
	_, err := NewDecoder[film]().Decode(Context{Model: "film", Identity: "1"}, nil)
	if err == nil || !strings.Contains(err.Error(), "film#1") {
		t.Fatalf("expected nil payload error naming the owner, got %v", err)
	}
}

func TestDecodeDisallowUnknownFields(t *testing.T) {
	payload := map[string]any{"title": "Heat", "director": "Mann"}

	if _, err := NewDecoder[film]().Decode(Context{Model: "film"}, payload); err != nil {
		t.Fatalf("lenient decode: %v", err)
	}
	_, err := NewDecoder(WithDisallowUnknownFields[film]()).Decode(Context{Model: "film"}, payload)
	if err == nil || !strings.Contains(err.Error(), "director") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestDecodeHooks(t *testing.T) {
	payload := map[string]any{"title": "  alien "}

	pre := func(_ Context, in map[string]any) (map[string]any, error) {
		if title, ok := in["title"].(string); ok {
			in["title"] = strings.TrimSpace(title)
		}
		return in, nil
	}
	post := func(ctx Context, f *film) error {
		if f.Stars == 0 {
			f.Stars = int64(len(ctx.Identity))
		}
		return nil
	}

	got, err := NewDecoder(WithPreHook[film](pre), WithPostHook[film](post)).Decode(Context{Model: "film", Identity: "abc"}, payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Title != "alien" || got.Stars != 3 {
		t.Fatalf("unexpected film %+v", got)
	}
	if payload["title"] != "  alien " {
		t.Fatalf("pre-hook modified the caller payload: %v", payload["title"])
	}
}

func TestDecodeHookFailures(t *testing.T) {
	errBoom := errors.New("boom")

	_, err := NewDecoder(WithPreHook[film](func(Context, map[string]any) (map[string]any, error) {
		return nil, errBoom
	})).Decode(Context{Model: "film"}, map[string]any{})
	if !errors.Is(err, errBoom) || !strings.Contains(err.Error(), "pre-hook") {
		t.Fatalf("expected wrapped pre-hook error, got %v", err)
	}

	_, err = NewDecoder(WithPostHook[film](func(Context, *film) error {
		return errBoom
	})).Decode(Context{Model: "film"}, map[string]any{})
	if !errors.Is(err, errBoom) || !strings.Contains(err.Error(), "post-hook") {
		t.Fatalf("expected wrapped post-hook error, got %v", err)
	}
}

func TestDecodeUseNumber(t *testing.T) {
	type loose struct {
		Stars any `json:"stars"`
	}
	got, err := NewDecoder(WithUseNumber[loose]()).Decode(Context{Model: "film"}, map[string]any{"stars": int64(7)})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n, ok := got.Stars.(json.Number); !ok || n.String() != "7" {
		t.Fatalf("expected json.Number 7, got %#v", got.Stars)
	}
}
