package attrs

import (
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRegistry(t *testing.T, opts ...Option) (*Registry, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })
	registry := NewRegistry(append([]Option{WithConnection(client)}, opts...)...)
	return registry, server
}

// declareFilm declares the Film model used across the tests.
func declareFilm(t *testing.T, registry *Registry) *Model {
	t.Helper()
	film, err := registry.Model("Film")
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	err = film.Declare(
		Field{Name: "title", Type: TypeString},
		Field{Name: "released_on", Type: TypeDate},
		Field{Name: "length", Type: TypeInteger},
		Field{Name: "rating", Type: TypeFloat},
		Field{Name: "released_at", Type: TypeTime},
		Field{Name: "featured", Type: TypeBoolean},
		Field{Name: "stars", Type: TypeInteger, Options: []AttrOption{WithDefault(0)}},
		Field{Name: "genres", Type: TypeSet, Options: []AttrOption{WithFilterFunc(lowerTrim)}},
		Field{Name: "cast", Type: TypeList},
		Field{Name: "ratings", Type: TypeSortedSet},
		Field{Name: "props", Type: TypeHash},
		Field{Name: "views", Type: TypeCounter},
		Field{Name: "editing", Type: TypeLock, Options: []AttrOption{WithLockTimeout(50 * time.Millisecond)}},
	)
	if err != nil {
		t.Fatalf("declare: %v", err)
	}
	return film
}

func lowerTrim(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
