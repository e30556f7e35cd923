package attrs

import (
	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// NewExprEvaluator returns an Evaluator backed by github.com/expr-lang/expr.
// Expressions see value, attribute, model and args next to expr's builtins,
// so lower(trim(value)) is a complete filter.
func NewExprEvaluator(opts ...EvaluatorOption) Evaluator {
	cfg := newEvaluatorConfig(opts)
	env := RuleContext{}.withDefaultMaps().binding()
	return &programEvaluator[*exprvm.Program]{
		engine: "expr",
		cache:  cfg.cache,
		compile: func(expression string) (*exprvm.Program, error) {
			options := []exprlang.Option{exprlang.Env(env)}
			cfg.functions.each(func(name string, fn Function) {
				options = append(options, exprlang.Function(name, fn))
			})
			return exprlang.Compile(expression, options...)
		},
		run: func(program *exprvm.Program, ctx RuleContext) (any, error) {
			return exprlang.Run(program, ctx.binding())
		},
	}
}
