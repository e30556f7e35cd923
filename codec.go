package attrs

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Codec converts between caller values and the string stored in Redis. Both
// methods must be pure functions of their input.
type Codec interface {
	Serialize(value any) (string, error)
	Deserialize(raw string) (any, error)
}

// CodecFuncs adapts plain functions to Codec. A nil SerializeFunc formats the
// value with fmt.Sprint and a nil DeserializeFunc returns the raw string.
type CodecFuncs struct {
	SerializeFunc   func(value any) (string, error)
	DeserializeFunc func(raw string) (any, error)
}

// Serialize implements Codec.
func (c CodecFuncs) Serialize(value any) (string, error) {
	if c.SerializeFunc == nil {
		return fmt.Sprint(value), nil
	}
	return c.SerializeFunc(value)
}

// Deserialize implements Codec.
func (c CodecFuncs) Deserialize(raw string) (any, error) {
	if c.DeserializeFunc == nil {
		return raw, nil
	}
	return c.DeserializeFunc(raw)
}

const (
	dateLayout = "2006-01-02"
	timeLayout = time.RFC3339Nano
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 -07:00",
	"2006-01-02 15:04:05Z07:00",
	time.RFC1123Z,
	time.RFC1123,
	// Zone-less timestamps are read as UTC.
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

type stringCodec struct{}

func (stringCodec) Serialize(value any) (string, error) {
	switch typed := value.(type) {
	case string:
		return typed, nil
	case []byte:
		return string(typed), nil
	case fmt.Stringer:
		return typed.String(), nil
	default:
		return "", serializeFailure(TypeString, value, nil)
	}
}

func (stringCodec) Deserialize(raw string) (any, error) {
	return raw, nil
}

type booleanCodec struct{}

func (booleanCodec) Serialize(value any) (string, error) {
	typed, ok := value.(bool)
	if !ok {
		return "", serializeFailure(TypeBoolean, value, nil)
	}
	return strconv.FormatBool(typed), nil
}

// Deserialize treats "true" and "yes" (any case) as true and everything else
// as false; it never fails.
func (booleanCodec) Deserialize(raw string) (any, error) {
	switch strings.ToLower(raw) {
	case "true", "yes":
		return true, nil
	default:
		return false, nil
	}
}

type integerCodec struct{}

func (integerCodec) Serialize(value any) (string, error) {
	switch typed := value.(type) {
	case int:
		return strconv.FormatInt(int64(typed), 10), nil
	case int8:
		return strconv.FormatInt(int64(typed), 10), nil
	case int16:
		return strconv.FormatInt(int64(typed), 10), nil
	case int32:
		return strconv.FormatInt(int64(typed), 10), nil
	case int64:
		return strconv.FormatInt(typed, 10), nil
	case uint:
		return strconv.FormatUint(uint64(typed), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(typed), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(typed), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(typed), 10), nil
	case uint64:
		if typed > math.MaxInt64 {
			return "", serializeFailure(TypeInteger, value, errors.New("overflows int64"))
		}
		return strconv.FormatUint(typed, 10), nil
	default:
		return "", serializeFailure(TypeInteger, value, nil)
	}
}

func (integerCodec) Deserialize(raw string) (any, error) {
	parsed, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil, coercionFailure(TypeInteger, raw, err)
	}
	return parsed, nil
}

type floatCodec struct{}

func (floatCodec) Serialize(value any) (string, error) {
	switch typed := value.(type) {
	case float64:
		return strconv.FormatFloat(typed, 'g', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(typed), 'g', -1, 64), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return integerCodec{}.Serialize(typed)
	default:
		return "", serializeFailure(TypeFloat, value, nil)
	}
}

func (floatCodec) Deserialize(raw string) (any, error) {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, coercionFailure(TypeFloat, raw, err)
	}
	return parsed, nil
}

type dateCodec struct{}

func (dateCodec) Serialize(value any) (string, error) {
	typed, ok := value.(time.Time)
	if !ok {
		return "", serializeFailure(TypeDate, value, nil)
	}
	return typed.Format(dateLayout), nil
}

// Deserialize returns the calendar date as midnight UTC.
func (dateCodec) Deserialize(raw string) (any, error) {
	trimmed := strings.TrimSpace(raw)
	if parsed, err := time.Parse(dateLayout, trimmed); err == nil {
		return parsed, nil
	}
	parsed, err := parseTime(trimmed)
	if err != nil {
		return nil, coercionFailure(TypeDate, raw, err)
	}
	return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
}

type timeCodec struct{}

func (timeCodec) Serialize(value any) (string, error) {
	typed, ok := value.(time.Time)
	if !ok {
		return "", serializeFailure(TypeTime, value, nil)
	}
	return typed.Format(timeLayout), nil
}

func (timeCodec) Deserialize(raw string) (any, error) {
	parsed, err := parseTime(strings.TrimSpace(raw))
	if err != nil {
		return nil, coercionFailure(TypeTime, raw, err)
	}
	return parsed, nil
}

func parseTime(raw string) (time.Time, error) {
	var firstErr error
	for _, layout := range timeLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			return parsed, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
