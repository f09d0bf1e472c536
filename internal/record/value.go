package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindText
	KindInt
	KindFloat
	KindBool
	KindOther // opaque driver value (bytes, time, decimals, ...)
)

// NullToken is the canonical rendering of a SQL NULL.
const NullToken = "null"

// Separator joins the rendered cells of a row.
const Separator = ","

var kindNames = [...]string{
	KindNull:  "null",
	KindText:  "text",
	KindInt:   "int",
	KindFloat: "float",
	KindBool:  "bool",
	KindOther: "other",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Value is one cell of a result row.
type Value struct {
	kind Kind
	text string
	i    int64
	f    float64
	b    bool
	raw  any
}

func Null() Value { return Value{kind: KindNull} }

func Text(s string) Value { return Value{kind: KindText, text: s} }

func Int(i int64) Value { return Value{kind: KindInt, i: i} }

func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func Other(v any) Value { return Value{kind: KindOther, raw: v} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// FromDriver converts a value scanned into an *any by database/sql.
// Drivers hand back int64, float64, bool, []byte, string, time.Time or nil;
// narrower numeric types are accepted for fakes and custom drivers.
func FromDriver(src any) Value {
	switch x := src.(type) {
	case nil:
		return Null()
	case string:
		return Text(x)
	case []byte:
		// text columns arrive as []byte on several drivers (mysql without parseTime)
		return Text(string(x))
	case int64:
		return Int(x)
	case int:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case uint8:
		return Int(int64(x))
	case uint16:
		return Int(int64(x))
	case uint32:
		return Int(int64(x))
	case float64:
		return Float(x)
	case float32:
		return Float(float64(x))
	case bool:
		return Bool(x)
	default:
		return Other(x)
	}
}

// String renders the canonical textual form. It never depends on locale.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return NullToken
	case KindText:
		return v.text
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	}

	switch x := v.raw.(type) {
	case nil:
		return NullToken
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// Row is an immutable, already width-adjusted sequence of values.
type Row struct {
	vals []Value
}

// NewRow copies vals so later changes by the caller do not leak in.
func NewRow(vals []Value) Row {
	cp := make([]Value, len(vals))
	copy(cp, vals)
	return Row{vals: cp}
}

func (r Row) Len() int { return len(r.vals) }

func (r Row) At(i int) Value { return r.vals[i] }

// String is the canonical row-string: cells joined by Separator, no quoting.
func (r Row) String() string {
	parts := make([]string, len(r.vals))
	for i, v := range r.vals {
		parts[i] = v.String()
	}
	return strings.Join(parts, Separator)
}
