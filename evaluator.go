package attrs

import "fmt"

// EvaluatorOption configures any of the bundled filter evaluators.
type EvaluatorOption func(*evaluatorConfig)

type evaluatorConfig struct {
	cache     ProgramCache
	functions *FunctionRegistry
}

// EvaluatorCache stores compiled programs in cache, keyed by engine and
// expression.
func EvaluatorCache(cache ProgramCache) EvaluatorOption {
	return func(cfg *evaluatorConfig) {
		cfg.cache = cache
	}
}

// EvaluatorFunctions exposes a snapshot of functions to expressions.
func EvaluatorFunctions(functions *FunctionRegistry) EvaluatorOption {
	return func(cfg *evaluatorConfig) {
		if functions != nil {
			cfg.functions = functions.Clone()
		}
	}
}

func newEvaluatorConfig(opts []EvaluatorOption) evaluatorConfig {
	var cfg evaluatorConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// programEvaluator adapts one engine's compile and run steps to Evaluator.
// P is the engine's compiled program type.
type programEvaluator[P any] struct {
	engine  string
	cache   ProgramCache
	compile func(expression string) (P, error)
	run     func(program P, ctx RuleContext) (any, error)
}

// Engine names the expression language.
func (e *programEvaluator[P]) Engine() string {
	return e.engine
}

func (e *programEvaluator[P]) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

func (e *programEvaluator[P]) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	program, err := e.load(expression)
	if err != nil {
		return nil, err
	}
	return ruleFunc(func(ctx RuleContext) (any, error) {
		out, err := e.run(program, ctx.withDefaultMaps())
		if err != nil {
			return nil, wrapFilterError(e.engine, expression, ctx.Attribute, ctx.Value, err)
		}
		return out, nil
	}), nil
}

func (e *programEvaluator[P]) load(expression string) (P, error) {
	key := e.engine + ":" + expression
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(P); ok {
				return program, nil
			}
		}
	}
	program, err := e.compile(expression)
	if err != nil {
		var zero P
		return zero, wrapFilterError(e.engine, expression, "", "", err)
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

type ruleFunc func(ctx RuleContext) (any, error)

func (f ruleFunc) Evaluate(ctx RuleContext) (any, error) {
	return f(ctx)
}
