// Package instance models the attributed-graph records returned by metadata
// repositories: typed property values, ordered property bags, and the entity
// and relationship records that carry them.
package instance

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Kind identifies which member of the Value union is set.
type Kind int

const (
	KindNone Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindEnum
	KindMap
	KindArray
)

var kindNames = map[Kind]string{
	KindNone:   "none",
	KindString: "string",
	KindInt:    "int",
	KindFloat:  "float",
	KindBool:   "bool",
	KindEnum:   "enum",
	KindMap:    "map",
	KindArray:  "array",
}

// String returns the kind name used in the JSON encoding.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func parseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindNone, fmt.Errorf("unknown value kind: %s", s)
}

// Value is a single typed property value. The zero Value has KindNone.
type Value struct {
	kind    Kind
	str     string
	num     int64
	flt     float64
	flag    bool
	ordinal int
	nested  *Properties
	items   []Value
}

// String creates a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int creates an integer value.
func Int(n int64) Value { return Value{kind: KindInt, num: n} }

// Float creates a floating point value.
func Float(f float64) Value { return Value{kind: KindFloat, flt: f} }

// Bool creates a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// Enum creates an enum value from its symbolic name and ordinal.
func Enum(symbolicName string, ordinal int) Value {
	return Value{kind: KindEnum, str: symbolicName, ordinal: ordinal}
}

// Map creates a nested map value. The bag is not copied.
func Map(p *Properties) Value { return Value{kind: KindMap, nested: p} }

// Array creates an array value.
func Array(items ...Value) Value { return Value{kind: KindArray, items: items} }

// Kind returns the kind of the value.
func (v Value) Kind() Kind { return v.kind }

// IsZero reports whether no member of the union is set.
func (v Value) IsZero() bool { return v.kind == KindNone }

// Str returns the string or enum symbolic name, or "" for other kinds.
func (v Value) Str() string {
	if v.kind == KindString || v.kind == KindEnum {
		return v.str
	}
	return ""
}

// IntValue returns the integer member.
func (v Value) IntValue() int64 { return v.num }

// FloatValue returns the floating point member.
func (v Value) FloatValue() float64 { return v.flt }

// BoolValue returns the boolean member.
func (v Value) BoolValue() bool { return v.flag }

// Ordinal returns the enum ordinal.
func (v Value) Ordinal() int { return v.ordinal }

// Nested returns the nested bag of a map value, or nil.
func (v Value) Nested() *Properties { return v.nested }

// Items returns the elements of an array value.
func (v Value) Items() []Value { return v.items }

// Interface returns the value in native Go form: string, int64, float64,
// bool, map[string]any or []any. Enums render as their symbolic name.
func (v Value) Interface() any {
	switch v.kind {
	case KindString, KindEnum:
		return v.str
	case KindInt:
		return v.num
	case KindFloat:
		return v.flt
	case KindBool:
		return v.flag
	case KindMap:
		if v.nested == nil {
			return nil
		}
		if m := v.nested.Remainder(); m != nil {
			return m
		}
		return map[string]any{}
	case KindArray:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

// Text renders a primitive value as a string. Maps and arrays render with
// fmt so that they are never silently lost when a string is expected.
func (v Value) Text() string {
	switch v.kind {
	case KindString, KindEnum:
		return v.str
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindFloat:
		return strconv.FormatFloat(v.flt, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.flag)
	case KindNone:
		return ""
	default:
		return fmt.Sprint(v.Interface())
	}
}

func (v Value) clone() Value {
	switch v.kind {
	case KindMap:
		v.nested = v.nested.Clone()
	case KindArray:
		items := make([]Value, len(v.items))
		for i, item := range v.items {
			items[i] = item.clone()
		}
		v.items = items
	}
	return v
}

// FromAny converts a native Go value, as produced by a YAML or JSON decoder,
// into a Value. Map keys are sorted so the resulting bag order is stable.
// Unsupported types fall back to their fmt representation.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Value{}
	case Value:
		return t
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return fromUint(uint64(t))
	case uint64:
		return fromUint(t)
	case float32:
		return Float(float64(t))
	case float64:
		if t >= math.MinInt64 && t < math.MaxInt64 && t == math.Trunc(t) {
			return Int(int64(t))
		}
		return Float(t)
	case map[string]any:
		return Map(PropertiesFromMap(t))
	case map[string]string:
		p := NewProperties()
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			p.Set(k, String(t[k]))
		}
		return Map(p)
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = FromAny(item)
		}
		return Array(items...)
	case []string:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = String(item)
		}
		return Array(items...)
	default:
		return String(fmt.Sprint(t))
	}
}

// fromUint keeps unsigned values above the int64 range as their exact
// decimal text rather than wrapping them negative.
func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return String(strconv.FormatUint(u, 10))
	}
	return Int(int64(u))
}
