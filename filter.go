package attrs

import (
	"fmt"
	"strings"
)

// Filter normalizes collection members before they are written, tested for
// membership or deleted. Stored values are returned unfiltered.
type Filter interface {
	Apply(value string) (string, error)
}

// FilterFunc adapts an infallible function to Filter.
type FilterFunc func(value string) string

// Apply implements Filter.
func (f FilterFunc) Apply(value string) (string, error) {
	if f == nil {
		return value, nil
	}
	return f(value), nil
}

// ChainFilters applies filters left to right.
func ChainFilters(filters ...Filter) Filter {
	chain := make([]Filter, 0, len(filters))
	for _, filter := range filters {
		if filter != nil {
			chain = append(chain, filter)
		}
	}
	return filterChain(chain)
}

type filterChain []Filter

func (c filterChain) Apply(value string) (string, error) {
	var err error
	for _, filter := range c {
		value, err = filter.Apply(value)
		if err != nil {
			return "", err
		}
	}
	return value, nil
}

// Squish trims value and collapses inner whitespace runs to one space.
func Squish(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// RuleContext carries the inputs of one filter expression evaluation.
type RuleContext struct {
	Value     string
	Attribute string
	Model     string
	Args      map[string]any
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) binding() map[string]any {
	return map[string]any{
		"value":     ctx.Value,
		"attribute": ctx.Attribute,
		"model":     ctx.Model,
		"args":      ctx.Args,
	}
}

// Evaluator executes filter expressions.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

type exprFilter struct {
	engine    string
	expr      string
	rule      CompiledRule
	attribute string
	model     string
}

func compileFilter(evaluator Evaluator, expr, model, attribute string) (Filter, error) {
	engine := evaluatorEngineName(evaluator)
	if evaluator == nil {
		return nil, wrapFilterError(engine, expr, attribute, "", fmt.Errorf("evaluator not available"))
	}
	rule, err := evaluator.Compile(expr)
	if err != nil {
		return nil, wrapFilterError(engine, expr, attribute, "", err)
	}
	return &exprFilter{
		engine:    engine,
		expr:      expr,
		rule:      rule,
		attribute: attribute,
		model:     model,
	}, nil
}

func (f *exprFilter) Apply(value string) (string, error) {
	out, err := f.rule.Evaluate(RuleContext{
		Value:     value,
		Attribute: f.attribute,
		Model:     f.model,
	})
	if err != nil {
		return "", wrapFilterError(f.engine, f.expr, f.attribute, value, err)
	}
	result, ok := out.(string)
	if !ok {
		return "", wrapFilterError(f.engine, f.expr, f.attribute, value, fmt.Errorf("filter returned %T, want string", out))
	}
	return result, nil
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	if named, ok := e.(interface{ Engine() string }); ok {
		return named.Engine()
	}
	return "custom"
}

// memberFilter applies an attribute filter and tags failures with the
// attribute name.
type memberFilter struct {
	attribute string
	filter    Filter
}

func (m memberFilter) apply(value string) (string, error) {
	if m.filter == nil {
		return value, nil
	}
	out, err := m.filter.Apply(value)
	if err != nil {
		return "", wrapFilterError("func", "", m.attribute, value, err)
	}
	return out, nil
}

func (m memberFilter) applyAll(values []string) ([]string, error) {
	if m.filter == nil {
		return values, nil
	}
	out := make([]string, len(values))
	for i, value := range values {
		filtered, err := m.apply(value)
		if err != nil {
			return nil, err
		}
		out[i] = filtered
	}
	return out, nil
}
