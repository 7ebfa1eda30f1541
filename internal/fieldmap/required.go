package fieldmap

import "strings"

// IsEmpty reports whether v carries no user data: undefined, null, a blank
// string, or a container whose elements are all empty. Numbers and booleans
// are never empty.
func IsEmpty(v Value) bool {
	if v.IsUndefined() || v.IsNull() {
		return true
	}
	switch v.Kind() {
	case KindString:
		s, _ := v.Str()
		return strings.TrimSpace(s) == ""
	case KindObject:
		obj := v.Object()
		for _, k := range obj.Keys() {
			e, _ := obj.Get(k)
			if !IsEmpty(e) {
				return false
			}
		}
		return true
	case KindArray:
		elems, _ := v.Array()
		for _, e := range elems {
			if !IsEmpty(e) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// CheckRequired rewrites the Valid flag of every mapped field in record and
// reports whether all of them are valid. A field is valid unless it is
// required and empty. Descriptors whose field is absent from record are
// skipped.
func CheckRequired(record Record, descriptors []Descriptor) bool {
	valid := true
	for _, d := range descriptors {
		mapping, isText := d.MappingText()
		if !isText || mapping == "" {
			continue
		}
		f, ok := record[mapping]
		if !ok || f == nil {
			continue
		}
		f.Valid = !d.Required || !IsEmpty(f.Value)
		if !f.Valid {
			valid = false
		}
	}
	return valid
}

// MissingRequired lists the ids of required fields CheckRequired marked invalid.
func MissingRequired(record Record, descriptors []Descriptor) []string {
	var out []string
	for _, d := range descriptors {
		mapping, _ := d.MappingText()
		if f, ok := record[mapping]; ok && f != nil && d.Required && !f.Valid {
			out = append(out, d.ID)
		}
	}
	return out
}
