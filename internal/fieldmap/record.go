package fieldmap

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Field is a wrapped record entry.
type Field struct {
	Value Value `json:"value"`
	Valid bool  `json:"valid"`
}

func (f *Field) Clone() *Field {
	if f == nil {
		return nil
	}
	return &Field{Value: f.Value.Clone(), Valid: f.Valid}
}

// UnmarshalJSON treats a missing "valid" as true; pre-wrapped defect
// entries usually carry only "value".
func (f *Field) UnmarshalJSON(data []byte) error {
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}
	field, err := fieldFromValue(v)
	if err != nil {
		return err
	}
	*f = *field
	return nil
}

func fieldFromValue(v Value) (*Field, error) {
	obj := v.Object()
	if obj == nil {
		return nil, fmt.Errorf("fieldmap: field must be an object, got %s", v.Kind())
	}
	f := &Field{Valid: true}
	f.Value, _ = obj.Get("value")
	if valid, ok := obj.Get("valid"); ok {
		if b, ok := valid.Boolean(); ok {
			f.Valid = b
		}
	}
	return f, nil
}

// Record is a defect record or a simplified record, keyed by field name.
type Record map[string]*Field

// RecordFromValue builds a Record from a decoded object. Entries that are
// objects with a "value" key are taken as already wrapped; anything else is
// wrapped as {value: entry, valid: true}.
func RecordFromValue(v Value) (Record, error) {
	obj := v.Object()
	if obj == nil {
		return nil, fmt.Errorf("fieldmap: record must be an object, got %s", v.Kind())
	}
	rec := make(Record, obj.Len())
	for _, k := range obj.Keys() {
		entry, _ := obj.Get(k)
		if eo := entry.Object(); eo != nil {
			if _, wrapped := eo.Get("value"); wrapped {
				f, err := fieldFromValue(entry)
				if err != nil {
					return nil, err
				}
				rec[k] = f
				continue
			}
		}
		rec[k] = &Field{Value: entry, Valid: true}
	}
	return rec, nil
}

// RecordFromAny is RecordFromValue over a decoded interface{} tree, as
// delivered in Zeebe job variables.
func RecordFromAny(x interface{}) (Record, error) {
	if x == nil {
		return Record{}, nil
	}
	v, err := FromAny(x)
	if err != nil {
		return nil, err
	}
	return RecordFromValue(v)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}
	if v.IsNull() {
		*r = nil
		return nil
	}
	rec, err := RecordFromValue(v)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}

func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, f := range r {
		out[k] = f.Clone()
	}
	return out
}

// Keys returns the record's field names in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Unwrap drops the valid flags and returns the plain report data.
func Unwrap(r Record) map[string]interface{} {
	out := make(map[string]interface{}, len(r))
	for k, f := range r {
		if f == nil {
			out[k] = nil
			continue
		}
		out[k] = f.Value.Any()
	}
	return out
}

// ToAny returns the record as the interface{} tree encoding/json would
// produce, suitable for Zeebe variables.
func (r Record) ToAny() (map[string]interface{}, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
