package attrs

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapFilterErrorCreatesMetadata(t *testing.T) {
	base := errors.New("boom")
	err := wrapFilterError("expr", "lower(missing)", "genres", "Action", base)

	var filterErr *FilterError
	if !errors.As(err, &filterErr) {
		t.Fatalf("expected FilterError, got %T", err)
	}
	if filterErr.Engine != "expr" {
		t.Fatalf("expected engine expr, got %q", filterErr.Engine)
	}
	if filterErr.Expr != "lower(missing)" {
		t.Fatalf("expected expression metadata, got %q", filterErr.Expr)
	}
	if filterErr.Attribute != "genres" || filterErr.Value != "Action" {
		t.Fatalf("expected attribute and value metadata, got %q %q", filterErr.Attribute, filterErr.Value)
	}
	if !errors.Is(err, base) {
		t.Fatalf("wrapped error should unwrap to base error")
	}
	if wrapFilterError("expr", "x", "a", "v", nil) != nil {
		t.Fatalf("nil error should stay nil")
	}
}

func TestWrapFilterErrorAugmentsExisting(t *testing.T) {
	base := errors.New("compile failure")
	existing := &FilterError{
		Engine: "cel",
		Expr:   "value.lowerAscii(",
		Err:    base,
	}

	err := wrapFilterError("func", "", "genres", " Drama", existing)
	if !errors.Is(err, base) {
		t.Fatalf("expected base error to unwrap")
	}
	if existing.Engine != "cel" {
		t.Fatalf("existing engine should not be overwritten, got %q", existing.Engine)
	}
	if existing.Expr != "value.lowerAscii(" {
		t.Fatalf("existing expression should be kept, got %q", existing.Expr)
	}
	if existing.Attribute != "genres" || existing.Value != " Drama" {
		t.Fatalf("attribute and value should be filled, got %q %q", existing.Attribute, existing.Value)
	}
}

func TestFilterErrorMessage(t *testing.T) {
	err := &FilterError{Engine: "func", Attribute: "cast", Value: "x", Err: errors.New("bad")}
	if msg := err.Error(); !strings.Contains(msg, "expr=<func>") || !strings.Contains(msg, `value="x"`) {
		t.Fatalf("unexpected message %q", msg)
	}
	var nilErr *FilterError
	if nilErr.Error() != "<nil>" || nilErr.Unwrap() != nil {
		t.Fatalf("nil FilterError should be safe to use")
	}
}

func TestCoercionErrorUnwrap(t *testing.T) {
	cause := errors.New("strconv failure")
	err := coercionFailure(TypeInteger, "many", cause)
	if !errors.Is(err, ErrTypeCoercion) || !errors.Is(err, cause) {
		t.Fatalf("expected both sentinel and cause, got %v", err)
	}
	if !strings.Contains(err.Error(), `deserialize "many"`) {
		t.Fatalf("unexpected message %q", err.Error())
	}

	err = serializeFailure(TypeDate, 42, nil)
	if !errors.Is(err, ErrTypeCoercion) || !strings.Contains(err.Error(), "serialize int") {
		t.Fatalf("unexpected serialize failure %v", err)
	}

	bare := &CoercionError{Tag: TypeFloat, Raw: "x"}
	if !errors.Is(bare, ErrTypeCoercion) {
		t.Fatalf("CoercionError without cause should still match the sentinel")
	}
}
