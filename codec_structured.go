package attrs

import (
	"encoding/json"

	"github.com/fxamacker/cbor/v2"
)

// JSONCodec stores values of T as JSON documents. Register it under a custom
// tag to keep small structured values in a single scalar key.
type JSONCodec[T any] struct{}

// Serialize implements Codec.
func (JSONCodec[T]) Serialize(value any) (string, error) {
	typed, ok := value.(T)
	if !ok {
		return "", serializeFailure("json", value, nil)
	}
	payload, err := json.Marshal(typed)
	if err != nil {
		return "", serializeFailure("json", value, err)
	}
	return string(payload), nil
}

// Deserialize implements Codec.
func (JSONCodec[T]) Deserialize(raw string) (any, error) {
	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, coercionFailure("json", raw, err)
	}
	return value, nil
}

// CBORCodec stores values of T as CBOR. Redis strings are binary safe, so the
// encoded bytes are stored as-is.
type CBORCodec[T any] struct{}

// Serialize implements Codec.
func (CBORCodec[T]) Serialize(value any) (string, error) {
	typed, ok := value.(T)
	if !ok {
		return "", serializeFailure("cbor", value, nil)
	}
	payload, err := cbor.Marshal(typed)
	if err != nil {
		return "", serializeFailure("cbor", value, err)
	}
	return string(payload), nil
}

// Deserialize implements Codec.
func (CBORCodec[T]) Deserialize(raw string) (any, error) {
	var value T
	if err := cbor.Unmarshal([]byte(raw), &value); err != nil {
		return nil, coercionFailure("cbor", raw, err)
	}
	return value, nil
}
