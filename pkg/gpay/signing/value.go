package signing

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotScalar is returned when a JSON value cannot be signed as a single field
var ErrNotScalar = errors.New("value is not a scalar")

// Kind identifies which scalar a Value holds
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Value is a signed field value. Boolean false, integer zero and the empty
// string are distinct values and canonicalize to "false", "0" and "".
type Value struct {
	kind Kind
	b    bool
	i    int64
	s    string
}

// Null returns the null value
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean value
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integer value
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// String returns a string value
func String(s string) Value { return Value{kind: KindString, s: s} }

// Kind reports the scalar kind held by v
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null
func (v Value) IsNull() bool { return v.kind == KindNull }

// String returns the wire form of v used in the canonical string
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindString:
		return v.s
	default:
		return ""
	}
}

// Interface returns the native Go value: nil, bool, int64 or string
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindString:
		return v.s
	default:
		return nil
	}
}

// MarshalJSON encodes v with its typed identity
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON decodes a JSON scalar into v
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := decodeJSON(data, &raw); err != nil {
		return err
	}
	parsed, err := FromJSON(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// FromJSON converts a value produced by a json.Decoder with UseNumber into a
// Value. Numbers that fit an int64 become Int. Other numbers become the
// string a GPay server computes for a float: 14 significant digits without
// trailing zeros, switching to exponent form ("1.0E+25") outside 1e-4..1e14.
// So 10.50 and 10.5 both sign as "10.5".
func FromJSON(raw interface{}) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case json.Number:
		return fromNumber(x.String())
	case float64:
		return fromFloat(x), nil
	case int:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	default:
		return Value{}, errors.Wrapf(ErrNotScalar, "got %T", raw)
	}
}

func fromNumber(lit string) (Value, error) {
	if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return Int(i), nil
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return Value{}, errors.Wrapf(err, "invalid number %q", lit)
	}
	return fromFloat(f), nil
}

func fromFloat(f float64) Value {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return Int(int64(f))
	}
	return String(floatString(f))
}

// floatString formats f with 14 significant digits
func floatString(f float64) string {
	const precision = 14
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strings.ToUpper(strconv.FormatFloat(f, 'g', -1, 64))
	}

	sci := strconv.FormatFloat(f, 'e', precision-1, 64)
	mantissa, expText, _ := strings.Cut(sci, "e")
	exp, _ := strconv.Atoi(expText)

	if exp < -4 || exp >= precision {
		mantissa = strings.TrimRight(mantissa, "0")
		if strings.HasSuffix(mantissa, ".") {
			mantissa += "0"
		}
		sign := "+"
		if exp < 0 {
			sign, exp = "-", -exp
		}
		return mantissa + "E" + sign + strconv.Itoa(exp)
	}

	fixed := strconv.FormatFloat(f, 'f', precision-1-exp, 64)
	if strings.Contains(fixed, ".") {
		fixed = strings.TrimRight(strings.TrimRight(fixed, "0"), ".")
	}
	return fixed
}
