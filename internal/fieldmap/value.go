// Package fieldmap maps defect-reporter records onto Jira field descriptors.
//
// Values are carried as a tagged variant instead of interface{} trees so that
// type checks, token substitution and default synthesis are explicit switches
// over a closed set of kinds.
package fieldmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Kind enumerates the shapes a Value can take.
type Kind int

const (
	// KindUndefined is the zero Value: a key that was never set.
	KindUndefined Kind = iota
	KindNull
	KindString
	KindNumber
	KindBool
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "undefined"
	}
}

// Value is an immutable-by-convention JSON value. Objects keep key order.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	obj  *Object
	arr  []Value
}

func Null() Value { return Value{kind: KindNull} }
func StringValue(s string) Value { return Value{kind: KindString, str: s} }
func NumberValue(f float64) Value { return Value{kind: KindNumber, num: f} }
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }
func ArrayValue(elems ...Value) Value { return Value{kind: KindArray, arr: append([]Value{}, elems...)} }
func ObjectValue(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{kind: KindObject, obj: o}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindString
}

func (v Value) Num() (float64, bool) {
	return v.num, v.kind == KindNumber
}

func (v Value) Boolean() (bool, bool) {
	return v.b, v.kind == KindBool
}

// Object returns the object behind v, or nil when v is not an object.
func (v Value) Object() *Object {
	if v.kind != KindObject {
		return nil
	}
	return v.obj
}

// Array returns the elements of v. The slice must not be modified.
func (v Value) Array() ([]Value, bool) {
	return v.arr, v.kind == KindArray
}

// JSType reports what JavaScript's typeof would say about v.
func (v Value) JSType() string {
	switch v.kind {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindNull, KindObject, KindArray:
		return "object"
	default:
		return "undefined"
	}
}

// String renders v as text for token substitution. Containers render as JSON.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return formatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNull:
		return "null"
	case KindObject, KindArray:
		b, err := v.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return "undefined"
	}
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindObject:
		return ObjectValue(v.obj.Clone())
	case KindArray:
		out := make([]Value, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Clone()
		}
		return Value{kind: KindArray, arr: out}
	default:
		return v
	}
}

// Equal compares two values structurally. Object key order is ignored.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if v.obj.Len() != o.obj.Len() {
			return false
		}
		for _, k := range v.obj.keys {
			ov, ok := o.obj.Get(k)
			if !ok || !v.obj.vals[k].Equal(ov) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Walk rebuilds v, passing every non-container node through leaf.
func Walk(v Value, leaf func(Value) Value) Value {
	switch v.kind {
	case KindObject:
		out := NewObject()
		for _, k := range v.obj.keys {
			out.Set(k, Walk(v.obj.vals[k], leaf))
		}
		return ObjectValue(out)
	case KindArray:
		out := make([]Value, len(v.arr))
		for i, e := range v.arr {
			out[i] = Walk(e, leaf)
		}
		return Value{kind: KindArray, arr: out}
	default:
		return leaf(v)
	}
}

// Any converts v to the interface{} tree encoding/json would produce.
func (v Value) Any() interface{} {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindObject:
		m := make(map[string]interface{}, v.obj.Len())
		for _, k := range v.obj.keys {
			m[k] = v.obj.vals[k].Any()
		}
		return m
	case KindArray:
		out := make([]interface{}, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Any()
		}
		return out
	default:
		return nil
	}
}

// FromAny converts a decoded JSON tree (or anything encoding/json can
// marshal) into a Value. Map keys are sorted since Go maps carry no order.
func FromAny(x interface{}) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case string:
		return StringValue(t), nil
	case bool:
		return BoolValue(t), nil
	case float64:
		return NumberValue(t), nil
	case float32:
		return NumberValue(float64(t)), nil
	case int:
		return NumberValue(float64(t)), nil
	case int32:
		return NumberValue(float64(t)), nil
	case int64:
		return NumberValue(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, err
		}
		return NumberValue(f), nil
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			e, err := FromAny(t[k])
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k, err)
			}
			obj.Set(k, e)
		}
		return ObjectValue(obj), nil
	case []interface{}:
		out := make([]Value, len(t))
		for i, e := range t {
			ev, err := FromAny(e)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = ev
		}
		return Value{kind: KindArray, arr: out}, nil
	default:
		raw, err := json.Marshal(x)
		if err != nil {
			return Value{}, fmt.Errorf("fieldmap: unsupported value %T: %w", x, err)
		}
		var v Value
		if err := json.Unmarshal(raw, &v); err != nil {
			return Value{}, err
		}
		return v, nil
	}
}

// MustParse decodes JSON text and panics on error. Intended for tests and literals.
func MustParse(text string) Value {
	var v Value
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		panic(err)
	}
	return v
}

func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindString:
		b, err := json.Marshal(v.str)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return fmt.Errorf("fieldmap: cannot encode %v", v.num)
		}
		buf.WriteString(formatNumber(v.num))
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindObject:
		buf.WriteByte('{')
		for i, k := range v.obj.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := v.obj.vals[k].encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case KindArray:
		buf.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		buf.WriteString("null")
	}
	return nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	out, err := decodeValue(dec)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := kt.(string)
				if !ok {
					return Value{}, fmt.Errorf("fieldmap: object key %v is not a string", kt)
				}
				e, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				obj.Set(key, e)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return ObjectValue(obj), nil
		case '[':
			arr := []Value{}
			for dec.More() {
				e, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				arr = append(arr, e)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Value{kind: KindArray, arr: arr}, nil
		}
	case string:
		return StringValue(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, err
		}
		return NumberValue(f), nil
	case bool:
		return BoolValue(t), nil
	case nil:
		return Null(), nil
	}
	return Value{}, fmt.Errorf("fieldmap: unexpected token %v", tok)
}

// Object is an insertion-ordered string-keyed map of Values.
type Object struct {
	keys []string
	vals map[string]Value
}

func NewObject() *Object {
	return &Object{vals: map[string]Value{}}
}

func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	v, ok := o.vals[key]
	return v, ok
}

// Set adds or replaces key. Replacing keeps the original position.
func (o *Object) Set(key string, v Value) {
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

func (o *Object) Delete(key string) {
	if _, ok := o.vals[key]; !ok {
		return
	}
	delete(o.vals, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i:i], o.keys[i+1:]...)
			break
		}
	}
}

func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.keys...)
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

func (o *Object) Clone() *Object {
	out := NewObject()
	if o == nil {
		return out
	}
	for _, k := range o.keys {
		out.Set(k, o.vals[k].Clone())
	}
	return out
}
