package attrs

import (
	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"
)

// NewCELEvaluator returns an Evaluator backed by cel-go. The environment loads
// ext.Strings, so value.trim().lowerAscii() works. Registered functions are
// exposed as unary functions over strings, e.g. squish(value).
func NewCELEvaluator(opts ...EvaluatorOption) Evaluator {
	cfg := newEvaluatorConfig(opts)
	return &programEvaluator[celgo.Program]{
		engine: "cel",
		cache:  cfg.cache,
		compile: func(expression string) (celgo.Program, error) {
			env, err := celEnv(cfg.functions)
			if err != nil {
				return nil, err
			}
			ast, issues := env.Compile(expression)
			if issues != nil && issues.Err() != nil {
				return nil, issues.Err()
			}
			return env.Program(ast)
		},
		run: func(program celgo.Program, ctx RuleContext) (any, error) {
			out, _, err := program.Eval(ctx.binding())
			if err != nil {
				return nil, err
			}
			return out.Value(), nil
		},
	}
}

func celEnv(functions *FunctionRegistry) (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		ext.Strings(),
		celgo.Variable("value", celgo.StringType),
		celgo.Variable("attribute", celgo.StringType),
		celgo.Variable("model", celgo.StringType),
		celgo.Variable("args", celgo.MapType(celgo.StringType, celgo.DynType)),
	}
	functions.each(func(name string, fn Function) {
		opts = append(opts, celgo.Function(name,
			celgo.Overload(name+"_string",
				[]*celgo.Type{celgo.StringType},
				celgo.DynType,
				celgo.UnaryBinding(celUnary(name, fn)),
			),
		))
	})
	return celgo.NewEnv(opts...)
}

func celUnary(name string, fn Function) func(ref.Val) ref.Val {
	return func(arg ref.Val) ref.Val {
		result, err := fn(arg.Value())
		if err != nil {
			return types.NewErr("attrs: %s: %v", name, err)
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}
