package fieldmap

import (
	"errors"
	"fmt"
)

var ErrNotArray = errors.New("field value is not an array")

// NewArrayElement returns the blank element added when a user grows an array field.
func NewArrayElement(elemType string) Value {
	switch elemType {
	case "object":
		return ObjectValue(nil)
	case "number":
		return NumberValue(0)
	case "boolean":
		return BoolValue(false)
	default:
		return StringValue("")
	}
}

// AppendElement adds a blank element of elemType to f. A blank string value
// is first turned into an empty array.
func AppendElement(f *Field, elemType string) error {
	if s, ok := f.Value.Str(); ok && s == "" {
		f.Value = ArrayValue()
	}
	elems, ok := f.Value.Array()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotArray, f.Value.Kind())
	}
	f.Value = ArrayValue(append(append([]Value{}, elems...), NewArrayElement(elemType))...)
	return nil
}

// RemoveElement deletes the element at index from f.
func RemoveElement(f *Field, index int) error {
	elems, ok := f.Value.Array()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotArray, f.Value.Kind())
	}
	if index < 0 || index >= len(elems) {
		return fmt.Errorf("index %d out of range [0,%d)", index, len(elems))
	}
	out := make([]Value, 0, len(elems)-1)
	out = append(out, elems[:index]...)
	out = append(out, elems[index+1:]...)
	f.Value = ArrayValue(out...)
	return nil
}
