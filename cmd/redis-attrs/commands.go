package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	attrs "github.com/goliatone/go-redis-attrs"
)

type app struct {
	registry *attrs.Registry
	client   *redis.Client
	stdout   io.Writer
	format   string
}

func (a *app) Close() error {
	return a.client.Close()
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "describe":
		return a.describe(args)
	case "key":
		return a.key(args)
	case "get":
		return a.get(ctx, args)
	case "set":
		return a.set(ctx, args)
	case "del":
		return a.del(ctx, args)
	case "fetch":
		return a.fetch(ctx, args)
	case "init":
		return a.init(ctx, args)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) describe(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: describe <model>")
	}
	model, err := a.model(args[0])
	if err != nil {
		return err
	}
	switch a.format {
	case "", "descriptors":
		return a.print(model.Describe())
	case "openapi":
		return a.print(model.OpenAPISchema())
	default:
		return fmt.Errorf("unknown describe format %q", a.format)
	}
}

func (a *app) key(args []string) error {
	record, name, err := a.record(args, 3, "key <model> <id> <attr>")
	if err != nil {
		return err
	}
	key, err := record.Key(name)
	if err != nil {
		return err
	}
	return a.print(key)
}

func (a *app) get(ctx context.Context, args []string) error {
	record, name, err := a.record(args, 3, "get <model> <id> <attr>")
	if err != nil {
		return err
	}
	attr, _ := record.Model().Attribute(name)
	switch attr.Kind() {
	case attrs.KindScalar, attrs.KindCounter:
		value, err := record.Get(ctx, name)
		if err != nil {
			return err
		}
		return a.print(value)
	case attrs.KindList:
		list, err := record.List(name)
		if err != nil {
			return err
		}
		return a.result(list.Values(ctx))
	case attrs.KindSet:
		set, err := record.Set(name)
		if err != nil {
			return err
		}
		return a.result(set.Members(ctx))
	case attrs.KindSortedSet:
		zset, err := record.SortedSet(name)
		if err != nil {
			return err
		}
		return a.result(zset.Range(ctx, 0, -1))
	case attrs.KindHash:
		hash, err := record.Hash(name)
		if err != nil {
			return err
		}
		return a.result(hash.All(ctx))
	case attrs.KindLock:
		lock, err := record.Lock(name)
		if err != nil {
			return err
		}
		return a.result(lock.Locked(ctx))
	default:
		return fmt.Errorf("cannot read %s attribute %q", attr.Kind(), name)
	}
}

func (a *app) set(ctx context.Context, args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("usage: set <model> <id> <attr> <value>...")
	}
	record, name, err := a.record(args[:3], 3, "set <model> <id> <attr> <value>...")
	if err != nil {
		return err
	}
	values := args[3:]
	attr, _ := record.Model().Attribute(name)

	var value any
	switch attr.Kind() {
	case attrs.KindScalar:
		if len(values) != 1 {
			return fmt.Errorf("%s takes one value", name)
		}
		if value, err = attr.Deserialize(values[0]); err != nil {
			return err
		}
	case attrs.KindCounter:
		if len(values) != 1 {
			return fmt.Errorf("%s takes one value", name)
		}
		n, err := strconv.ParseInt(values[0], 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		counter, err := record.Counter(name)
		if err != nil {
			return err
		}
		return counter.Reset(ctx, n)
	case attrs.KindList, attrs.KindSet:
		value = values
	case attrs.KindHash:
		fields, err := splitPairs(values)
		if err != nil {
			return err
		}
		value = fields
	case attrs.KindSortedSet:
		pairs, err := splitPairs(values)
		if err != nil {
			return err
		}
		scores := make(map[string]float64, len(pairs))
		for member, raw := range pairs {
			score, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fmt.Errorf("score of %q: %w", member, err)
			}
			scores[member] = score
		}
		value = scores
	default:
		return fmt.Errorf("%w: %s attribute %q", attrs.ErrNotAssignable, attr.Kind(), name)
	}
	return record.Put(ctx, name, value)
}

func (a *app) del(ctx context.Context, args []string) error {
	record, name, err := a.record(args, 3, "del <model> <id> <attr>")
	if err != nil {
		return err
	}
	return record.Delete(ctx, name)
}

func (a *app) fetch(ctx context.Context, args []string) error {
	record, _, err := a.record(args, 2, "fetch <model> <id>")
	if err != nil {
		return err
	}
	return a.result(record.FetchAllScalars(ctx))
}

func (a *app) init(ctx context.Context, args []string) error {
	record, _, err := a.record(args, 2, "init <model> <id>")
	if err != nil {
		return err
	}
	return record.InitAllScalars(ctx)
}

func (a *app) model(name string) (*attrs.Model, error) {
	model, ok := a.registry.FindModel(name)
	if !ok {
		return nil, fmt.Errorf("model %q is not in the schema", name)
	}
	return model, nil
}

// record resolves <model> <id> [attr] arguments.
func (a *app) record(args []string, want int, usage string) (*attrs.Record, string, error) {
	if len(args) != want {
		return nil, "", fmt.Errorf("usage: %s", usage)
	}
	model, err := a.model(args[0])
	if err != nil {
		return nil, "", err
	}
	record := model.Bind(attrs.StaticID(args[1]))
	if want < 3 {
		return record, "", nil
	}
	if _, ok := model.Attribute(args[2]); !ok {
		return nil, "", fmt.Errorf("%w: %s.%s", attrs.ErrUnknownAttribute, model.Name(), args[2])
	}
	return record, args[2], nil
}

func (a *app) print(value any) error {
	encoder := json.NewEncoder(a.stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func (a *app) result(value any, err error) error {
	if err != nil {
		return err
	}
	return a.print(value)
}

func splitPairs(values []string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, pair := range values {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", pair)
		}
		out[key] = value
	}
	return out, nil
}
