//go:build !js_eval

package attrs

// NewJSEvaluator returns nil unless the binary is built with -tags js_eval.
func NewJSEvaluator(...EvaluatorOption) Evaluator {
	return nil
}

// JSEvaluatorAvailable reports whether the binary was built with js_eval.
func JSEvaluatorAvailable() bool {
	return false
}
