/*
Package attrs stores typed per-instance attributes in Redis.

A Registry holds the connection, the attribute types and the declared
models. A Model is an owner type; each attribute declared on it maps to one
Redis key per owner instance:

	<key prefix>:<identity>:<attribute>

The key prefix is the snake-cased type name, with package or module
qualifiers turned into path segments (catalog.FilmReview becomes
catalog/film_review).

Scalar attributes (string, boolean, integer, float, date, time and custom
types registered with RegisterType) are plain string keys converted by a
Codec. Lists, sets, sorted sets, hashes, counters and locks are reached
through proxies returned by Record, and every proxy call is a direct Redis
command. Nothing is cached apart from the proxy objects themselves.

	registry := attrs.NewRegistry(attrs.WithConnection(client))
	film := registry.MustModel("Film")
	_ = film.Declare(
		attrs.Field{Name: "title", Type: attrs.TypeString},
		attrs.Field{Name: "genres", Type: attrs.TypeSet, Options: []attrs.AttrOption{
			attrs.WithFilterExpr("lower(trim(value))"),
		}},
	)
	record := film.Bind(attrs.StaticID("42"))
	_ = record.Put(ctx, "title", "Inception")

Filters normalize list, set and sorted set members on write, membership test
and delete. They are Go functions or expressions compiled by the registry's
Evaluator (expr by default, CEL, or goja under the js_eval build tag).
*/
package attrs
