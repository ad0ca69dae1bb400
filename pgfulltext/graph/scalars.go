package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	in "github.com/nonibytes/pgfulltext/pgfulltext/introspection"
)

// ErrInvalidValue is returned by scalar parsers.
var ErrInvalidValue = errors.New("graph: invalid value")

// Built-in scalar names.
const (
	ScalarInt      = "Int"
	ScalarBigInt   = "BigInt"
	ScalarFloat    = "Float"
	ScalarString   = "String"
	ScalarBoolean  = "Boolean"
	ScalarDatetime = "Datetime"
	ScalarJSON     = "JSON"
)

func builtinScalars() []*Scalar {
	return []*Scalar{
		{Name: ScalarInt, Serialize: serializeInt, Parse: parseInt},
		{Name: ScalarBigInt, Description: "A signed eight-byte integer, encoded as a string.", Serialize: serializeBigInt, Parse: parseBigInt},
		{Name: ScalarFloat, Serialize: SerializeFloat, Parse: parseFloat},
		{Name: ScalarString, Serialize: serializeString, Parse: parseString},
		{Name: ScalarBoolean, Serialize: identity, Parse: parseBool},
		{Name: ScalarDatetime, Description: "A point in time as described by the ISO 8601 standard.", Serialize: serializeDatetime, Parse: parseString},
		{Name: ScalarJSON, Description: "A JavaScript object encoded in the JSON format.", Serialize: serializeJSON, Parse: identityParse},
	}
}

var scalarByOID = map[in.OID]string{
	in.BoolOID:        ScalarBoolean,
	in.Int2OID:        ScalarInt,
	in.Int4OID:        ScalarInt,
	in.Int8OID:        ScalarBigInt,
	in.Float4OID:      ScalarFloat,
	in.Float8OID:      ScalarFloat,
	in.NumericOID:     ScalarFloat,
	in.TextOID:        ScalarString,
	in.VarcharOID:     ScalarString,
	in.UUIDOID:        ScalarString,
	in.DateOID:        ScalarDatetime,
	in.TimestampOID:   ScalarDatetime,
	in.TimestamptzOID: ScalarDatetime,
	in.JSONOID:        ScalarJSON,
	in.JSONBOID:       ScalarJSON,
}

// IsBuiltinScalar reports whether name is predefined by GraphQL itself.
func IsBuiltinScalar(name string) bool {
	switch name {
	case ScalarInt, ScalarFloat, ScalarString, ScalarBoolean, "ID":
		return true
	}
	return false
}

func identity(v any) any { return v }

func identityParse(v any) (any, error) { return v, nil }

func serializeInt(v any) any {
	switch x := v.(type) {
	case int64:
		return x
	case int32:
		return int64(x)
	case int:
		return int64(x)
	case float64:
		return int64(x)
	case []byte:
		if n, err := strconv.ParseInt(string(x), 10, 64); err == nil {
			return n
		}
	case string:
		if n, err := strconv.ParseInt(x, 10, 64); err == nil {
			return n
		}
	}
	return v
}

func parseInt(v any) (any, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	case float64:
		if x == math.Trunc(x) && x >= math.MinInt32 && x <= math.MaxInt32 {
			return int64(x), nil
		}
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
	}
	return nil, fmt.Errorf("%w: expected Int, got %v", ErrInvalidValue, v)
}

func serializeBigInt(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(x)
	case string:
		return x
	case float64:
		return strconv.FormatInt(int64(x), 10)
	default:
		return fmt.Sprint(x)
	}
}

func parseBigInt(v any) (any, error) {
	switch x := v.(type) {
	case string:
		if _, err := strconv.ParseInt(x, 10, 64); err == nil {
			return x, nil
		}
	case float64:
		if x == math.Trunc(x) {
			return strconv.FormatInt(int64(x), 10), nil
		}
	case int, int64:
		return fmt.Sprint(x), nil
	}
	return nil, fmt.Errorf("%w: expected BigInt, got %v", ErrInvalidValue, v)
}

// SerializeFloat normalizes the float representations the driver and JSON
// decoding produce to float64. Unparseable values become nil.
func SerializeFloat(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		return x
	case float32:
		return float64(x)
	case int64:
		return float64(x)
	case int:
		return float64(x)
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f
		}
	case []byte:
		if f, err := strconv.ParseFloat(string(x), 64); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return f
		}
	}
	return nil
}

func parseFloat(v any) (any, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case json.Number:
		return x.Float64()
	}
	return nil, fmt.Errorf("%w: expected Float, got %v", ErrInvalidValue, v)
}

func serializeString(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	}
	return v
}

func parseString(v any) (any, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: expected String, got %v", ErrInvalidValue, v)
}

func parseBool(v any) (any, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return nil, fmt.Errorf("%w: expected Boolean, got %v", ErrInvalidValue, v)
}

func serializeDatetime(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case []byte:
		return string(x)
	}
	return v
}

func serializeJSON(v any) any {
	var raw []byte
	switch x := v.(type) {
	case []byte:
		raw = x
	case string:
		raw = []byte(x)
	default:
		return v
	}
	if !json.Valid(raw) {
		return string(raw)
	}
	return json.RawMessage(append([]byte(nil), raw...))
}
