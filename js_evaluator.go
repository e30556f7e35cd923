//go:build js_eval

package attrs

import (
	"github.com/dop251/goja"
)

// NewJSEvaluator returns an Evaluator backed by goja. Expressions are plain
// JavaScript such as value.trim().toLowerCase().
func NewJSEvaluator(opts ...EvaluatorOption) Evaluator {
	cfg := newEvaluatorConfig(opts)
	return &programEvaluator[*goja.Program]{
		engine: "js",
		cache:  cfg.cache,
		compile: func(expression string) (*goja.Program, error) {
			return goja.Compile("", "(function(){ return ("+expression+"); })()", false)
		},
		run: func(program *goja.Program, ctx RuleContext) (any, error) {
			// goja runtimes are single goroutine, so each run gets its own.
			vm := goja.New()
			for key, value := range ctx.binding() {
				if err := vm.Set(key, value); err != nil {
					return nil, err
				}
			}
			var err error
			cfg.functions.each(func(name string, fn Function) {
				if err == nil {
					err = vm.Set(name, fn)
				}
			})
			if err != nil {
				return nil, err
			}
			value, err := vm.RunProgram(program)
			if err != nil {
				return nil, err
			}
			return value.Export(), nil
		},
	}
}

// JSEvaluatorAvailable reports whether the binary was built with js_eval.
func JSEvaluatorAvailable() bool {
	return true
}
