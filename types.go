package attrs

import (
	"github.com/goliatone/go-redis-attrs/pkg/activity"
	"github.com/redis/go-redis/v9"
)

// TypeTag names an attribute type such as "string" or "sorted_set".
type TypeTag string

const (
	TypeString  TypeTag = "string"
	TypeBoolean TypeTag = "boolean"
	TypeInteger TypeTag = "integer"
	TypeFloat   TypeTag = "float"
	TypeDate    TypeTag = "date"
	TypeTime    TypeTag = "time"

	TypeCounter   TypeTag = "counter"
	TypeLock      TypeTag = "lock"
	TypeHash      TypeTag = "hash"
	TypeList      TypeTag = "list"
	TypeSet       TypeTag = "set"
	TypeSortedSet TypeTag = "sorted_set"
)

// Kind is the storage shape behind a type tag.
type Kind int

const (
	KindScalar Kind = iota
	KindList
	KindSet
	KindSortedSet
	KindHash
	KindCounter
	KindLock
)

var kindNames = map[Kind]string{
	KindScalar:    "scalar",
	KindList:      "list",
	KindSet:       "set",
	KindSortedSet: "sorted_set",
	KindHash:      "hash",
	KindCounter:   "counter",
	KindLock:      "lock",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Assignable reports whether a whole collection can be replaced through
// Record.Put.
func (k Kind) Assignable() bool {
	switch k {
	case KindList, KindSet, KindSortedSet, KindHash:
		return true
	default:
		return false
	}
}

// Filterable reports whether the kind applies attribute filters to members.
func (k Kind) Filterable() bool {
	switch k {
	case KindList, KindSet, KindSortedSet:
		return true
	default:
		return false
	}
}

type typeEntry struct {
	tag   TypeTag
	kind  Kind
	codec Codec
}

func builtinTypes() map[TypeTag]typeEntry {
	return map[TypeTag]typeEntry{
		TypeString:  {tag: TypeString, kind: KindScalar, codec: stringCodec{}},
		TypeBoolean: {tag: TypeBoolean, kind: KindScalar, codec: booleanCodec{}},
		TypeInteger: {tag: TypeInteger, kind: KindScalar, codec: integerCodec{}},
		TypeFloat:   {tag: TypeFloat, kind: KindScalar, codec: floatCodec{}},
		TypeDate:    {tag: TypeDate, kind: KindScalar, codec: dateCodec{}},
		TypeTime:    {tag: TypeTime, kind: KindScalar, codec: timeCodec{}},

		TypeCounter:   {tag: TypeCounter, kind: KindCounter},
		TypeLock:      {tag: TypeLock, kind: KindLock},
		TypeHash:      {tag: TypeHash, kind: KindHash},
		TypeList:      {tag: TypeList, kind: KindList},
		TypeSet:       {tag: TypeSet, kind: KindSet},
		TypeSortedSet: {tag: TypeSortedSet, kind: KindSortedSet},
	}
}

// Option configures a Registry.
type Option func(*registryConfig)

type registryConfig struct {
	conn          redis.UniversalClient
	logger        Logger
	evaluator     Evaluator
	programCache  ProgramCache
	functions     *FunctionRegistry
	activityHooks activity.Hooks
	activity      activity.Config
}

func applyOptions(opts []Option) registryConfig {
	cfg := registryConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithConnection sets the Redis connection at construction time.
func WithConnection(conn redis.UniversalClient) Option {
	return func(cfg *registryConfig) {
		cfg.conn = conn
	}
}

// WithFilterEvaluator selects the engine compiling WithFilterExpr
// expressions. The default is the expr evaluator.
func WithFilterEvaluator(e Evaluator) Option {
	return func(cfg *registryConfig) {
		cfg.evaluator = e
	}
}
