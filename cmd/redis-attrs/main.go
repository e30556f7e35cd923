// redis-attrs inspects and edits typed attributes stored in Redis.
//
// Models come from a schema document (YAML or JSONC) and the connection from
// a config file, the --url flag or REDIS_ATTRS_URL. Every command prints
// JSON on stdout.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	attrs "github.com/goliatone/go-redis-attrs"
	"github.com/goliatone/go-redis-attrs/pkg/activity"
	"github.com/goliatone/go-redis-attrs/pkg/config"
	"github.com/goliatone/go-redis-attrs/pkg/schema"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	schemaPath string
	url        string
	engine     string
	format     string
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var opts options
	flagSet := pflag.NewFlagSet("redis-attrs", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.SetInterspersed(false)
	flagSet.StringVarP(&opts.configPath, "config", "c", "", "path to a YAML or JSONC config file")
	flagSet.StringVarP(&opts.schemaPath, "schema", "s", "", "path to the model schema document (overrides the config)")
	flagSet.StringVar(&opts.url, "url", "", "redis:// URL (overrides the config and "+config.EnvURL+")")
	flagSet.StringVar(&opts.engine, "engine", "", "filter expression engine: expr, cel or js")
	flagSet.StringVar(&opts.format, "format", "descriptors", "describe output: descriptors or openapi")
	flagSet.Usage = func() { printHelp(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	rest := flagSet.Args()
	if len(rest) == 0 {
		printHelp(stderr, flagSet)
		return fmt.Errorf("missing command")
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.url != "" {
		cfg.Redis = config.RedisConfig{URL: opts.url, DialTimeout: cfg.Redis.DialTimeout}
	}
	if opts.schemaPath != "" {
		cfg.Schema = opts.schemaPath
	}
	if opts.engine != "" {
		cfg.Filters.Engine = opts.engine
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	app, err := newApp(cfg, stdout, stderr)
	if err != nil {
		return err
	}
	defer app.Close()
	app.format = opts.format
	return app.dispatch(ctx, rest[0], rest[1:])
}

func newApp(cfg *config.Config, stdout, stderr io.Writer) (*app, error) {
	logger, err := cfg.Log.NewLogger(stderr)
	if err != nil {
		return nil, err
	}
	evaluator, err := newEvaluator(cfg.Filters.Engine)
	if err != nil {
		return nil, err
	}
	options := []attrs.Option{
		attrs.WithLogger(attrs.SlogLogger(logger)),
		attrs.WithFilterEvaluator(evaluator),
	}
	if cfg.Activity.Enabled {
		options = append(options, attrs.WithActivityHooks(cfg.Activity.Channel, auditHook(logger)))
	}
	registry := attrs.NewRegistry(options...)

	if cfg.Schema == "" {
		return nil, fmt.Errorf("no schema document; pass --schema or set schema in the config")
	}
	doc, err := schema.ReadFile(cfg.Schema)
	if err != nil {
		return nil, err
	}
	if _, err := doc.Apply(registry); err != nil {
		return nil, err
	}

	client, err := cfg.NewClient()
	if err != nil {
		return nil, err
	}
	if err := registry.Connect(client); err != nil {
		client.Close()
		return nil, err
	}
	return &app{
		registry: registry,
		client:   client,
		stdout:   stdout,
	}, nil
}

// auditHook writes attribute changes to the tool's log.
func auditHook(logger *slog.Logger) activity.Hook {
	return activity.HookFunc(func(ctx context.Context, event activity.Event) error {
		logger.LogAttrs(ctx, slog.LevelInfo, "attribute changed",
			slog.String("verb", event.Verb),
			slog.String("channel", event.Channel),
			slog.String("model", event.Model),
			slog.String("identity", event.Identity),
			slog.String("attribute", event.Attribute),
			slog.Int("count", event.Count),
		)
		return nil
	})
}

func newEvaluator(engine string) (attrs.Evaluator, error) {
	cache := attrs.EvaluatorCache(attrs.NewMemoryProgramCache())
	switch engine {
	case "", "expr":
		return attrs.NewExprEvaluator(cache), nil
	case "cel":
		return attrs.NewCELEvaluator(cache), nil
	case "js":
		if !attrs.JSEvaluatorAvailable() {
			return nil, fmt.Errorf("js filters need a binary built with -tags js_eval")
		}
		return attrs.NewJSEvaluator(cache), nil
	default:
		return nil, fmt.Errorf("unknown filter engine %q", engine)
	}
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `redis-attrs inspects and edits typed attributes stored in Redis.

Usage:
  redis-attrs [flags] <command> [arguments]

Commands:
  describe <model>                  list the declared attributes
  key      <model> <id> <attr>      print the storage key
  get      <model> <id> <attr>      read one attribute
  set      <model> <id> <attr> <v>  write one attribute; lists and sets take
                                    several values, hashes field=value pairs
                                    and sorted sets member=score pairs
  del      <model> <id> <attr>      delete one attribute
  fetch    <model> <id>             read every scalar attribute
  init     <model> <id>             reset every scalar attribute to its default

Flags:
`)
	fmt.Fprint(w, flagSet.FlagUsages())
}
