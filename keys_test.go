package attrs

import (
	"errors"
	"testing"
)

func TestKeyPrefix(t *testing.T) {
	cases := map[string]string{
		"Film":                "film",
		"FilmReview":          "film_review",
		"catalog.FilmReview":  "catalog/film_review",
		"Catalog::FilmReview": "catalog/film_review",
		"*catalog.Film":       "catalog/film",
		" HTTPRequest ":       "http_request",
		"Top10List":           "top10_list",
		"MP3Player":           "mp3_player",
		"catalog.HTTP2Server": "catalog/http2_server",
		"Film2":               "film2",
	}
	for in, want := range cases {
		if got := KeyPrefix(in); got != want {
			t.Fatalf("KeyPrefix(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestDeriveKey(t *testing.T) {
	key, err := DeriveKey("film", "42", "title")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if key != "film:42:title" {
		t.Fatalf("unexpected key %q", key)
	}
	if _, err := DeriveKey("film", "", "title"); !errors.Is(err, ErrMissingIdentity) {
		t.Fatalf("expected ErrMissingIdentity, got %v", err)
	}
}

func TestDerivedKeysAreUnique(t *testing.T) {
	registry := NewRegistry()
	film := registry.MustModel("Film")
	review := registry.MustModel("FilmReview")
	for _, model := range []*Model{film, review} {
		for _, name := range []string{"title", "stars"} {
			if _, err := model.Attr(name, TypeString); err != nil {
				t.Fatalf("declare %s: %v", name, err)
			}
		}
	}

	seen := map[string]string{}
	for _, model := range []*Model{film, review} {
		for _, identity := range []string{"1", "2", "1:2", "title"} {
			for _, attr := range model.Attributes() {
				key, err := attr.Key(identity)
				if err != nil {
					t.Fatalf("key: %v", err)
				}
				triple := model.Name() + "|" + identity + "|" + attr.Name()
				if other, dup := seen[key]; dup {
					t.Fatalf("key %q derived for both %s and %s", key, other, triple)
				}
				seen[key] = triple
			}
		}
	}
}

func TestNamesRejectSeparator(t *testing.T) {
	registry := NewRegistry()
	film := registry.MustModel("Film")
	if _, err := film.Attr("bad:name", TypeString); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if _, err := film.Attr(" ", TypeString); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName for blank name, got %v", err)
	}
	if _, err := registry.Model(""); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName for blank model, got %v", err)
	}
}
