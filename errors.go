package attrs

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected     = errors.New("attrs: redis connection not configured")
	ErrAlreadyConnected = errors.New("attrs: redis connection already configured")
	ErrMissingIdentity  = errors.New("attrs: owner identity is missing")

	ErrUnknownType   = errors.New("attrs: unknown attribute type")
	ErrDuplicateType = errors.New("attrs: attribute type already registered")
	ErrInvalidCodec  = errors.New("attrs: codec does not implement the scalar contract")
	ErrTypeCoercion  = errors.New("attrs: value cannot be coerced")

	ErrInvalidName        = errors.New("attrs: invalid name")
	ErrDuplicateAttribute = errors.New("attrs: attribute already declared")
	ErrDuplicateModel     = errors.New("attrs: model key prefix already registered")
	ErrUnknownAttribute   = errors.New("attrs: unknown attribute")
	ErrWrongKind          = errors.New("attrs: attribute kind mismatch")
	ErrNotAssignable      = errors.New("attrs: attribute is not assignable")
	ErrInvalidOption      = errors.New("attrs: invalid attribute option")

	ErrLockTimeout = errors.New("attrs: lock not acquired before timeout")
)

// CoercionError reports a value that a codec could not convert.
type CoercionError struct {
	Tag   TypeTag
	Raw   string
	Value any
	Err   error
}

func (e *CoercionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Value != nil {
		return fmt.Sprintf("attrs: %s codec cannot serialize %T: %v", e.Tag, e.Value, e.Err)
	}
	return fmt.Sprintf("attrs: %s codec cannot deserialize %q: %v", e.Tag, e.Raw, e.Err)
}

func (e *CoercionError) Unwrap() []error {
	if e == nil {
		return nil
	}
	if e.Err == nil {
		return []error{ErrTypeCoercion}
	}
	return []error{ErrTypeCoercion, e.Err}
}

// FilterError captures filter metadata alongside the originating error.
type FilterError struct {
	Engine    string
	Expr      string
	Attribute string
	Value     string
	Err       error
}

func (e *FilterError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("attrs: %s filter %s attribute=%s value=%q: %v", e.Engine, describeExpression(e.Expr), e.Attribute, e.Value, e.Err)
}

func (e *FilterError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<func>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func coercionFailure(tag TypeTag, raw string, err error) error {
	return &CoercionError{Tag: tag, Raw: raw, Err: err}
}

func serializeFailure(tag TypeTag, value any, err error) error {
	if err == nil {
		err = fmt.Errorf("unsupported type %T", value)
	}
	return &CoercionError{Tag: tag, Value: value, Err: err}
}

func wrapFilterError(engine, expr, attribute, value string, err error) error {
	if err == nil {
		return nil
	}

	var filterErr *FilterError
	if errors.As(err, &filterErr) {
		if filterErr.Engine == "" {
			filterErr.Engine = engine
		}
		if filterErr.Expr == "" {
			filterErr.Expr = expr
		}
		if filterErr.Attribute == "" {
			filterErr.Attribute = attribute
		}
		if filterErr.Value == "" {
			filterErr.Value = value
		}
		return filterErr
	}

	return &FilterError{
		Engine:    engine,
		Expr:      expr,
		Attribute: attribute,
		Value:     value,
		Err:       err,
	}
}
