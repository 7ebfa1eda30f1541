package fieldmap

import (
	"encoding/json"
	"fmt"

	apperrors "defect-reporter/internal/common/errors"
)

// Schema is the shape Jira declares for a field. Properties keeps the
// declaration order; a nil Properties means the schema had none.
type Schema struct {
	Type       string
	Items      *Schema
	Properties Properties
	System     string
	Custom     string
	CustomID   int64
}

// Property is one named entry of an object schema.
type Property struct {
	Name   string
	Schema Schema
}

type Properties []Property

func (p Properties) Get(name string) (Schema, bool) {
	for _, prop := range p {
		if prop.Name == name {
			return prop.Schema, true
		}
	}
	return Schema{}, false
}

// Without returns a copy of p minus name. A non-nil p stays non-nil.
func (p Properties) Without(name string) Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, 0, len(p))
	for _, prop := range p {
		if prop.Name != name {
			out = append(out, prop)
		}
	}
	return out
}

func (s Schema) Clone() Schema {
	out := s
	if s.Items != nil {
		items := s.Items.Clone()
		out.Items = &items
	}
	if s.Properties != nil {
		out.Properties = make(Properties, len(s.Properties))
		for i, prop := range s.Properties {
			out.Properties[i] = Property{Name: prop.Name, Schema: prop.Schema.Clone()}
		}
	}
	return out
}

func (s Schema) toValue() Value {
	obj := NewObject()
	obj.Set("type", StringValue(s.Type))
	if s.Items != nil {
		obj.Set("items", s.Items.toValue())
	}
	if s.Properties != nil {
		props := NewObject()
		for _, prop := range s.Properties {
			props.Set(prop.Name, prop.Schema.toValue())
		}
		obj.Set("properties", ObjectValue(props))
	}
	if s.System != "" {
		obj.Set("system", StringValue(s.System))
	}
	if s.Custom != "" {
		obj.Set("custom", StringValue(s.Custom))
	}
	if s.CustomID != 0 {
		obj.Set("customId", NumberValue(float64(s.CustomID)))
	}
	return ObjectValue(obj)
}

// schemaFromValue accepts both the object form and Jira's shorthand where
// "items" is just the element type name.
func schemaFromValue(v Value) (Schema, error) {
	if s, ok := v.Str(); ok {
		return Schema{Type: s}, nil
	}
	obj := v.Object()
	if obj == nil {
		return Schema{}, fmt.Errorf("fieldmap: schema must be an object, got %s", v.Kind())
	}

	var s Schema
	if t, ok := obj.Get("type"); ok {
		s.Type, _ = t.Str()
	}
	if items, ok := obj.Get("items"); ok && !items.IsNull() {
		is, err := schemaFromValue(items)
		if err != nil {
			return Schema{}, fmt.Errorf("items: %w", err)
		}
		s.Items = &is
	}
	if props, ok := obj.Get("properties"); ok {
		if po := props.Object(); po != nil {
			s.Properties = make(Properties, 0, po.Len())
			for _, name := range po.Keys() {
				pv, _ := po.Get(name)
				ps, err := schemaFromValue(pv)
				if err != nil {
					return Schema{}, fmt.Errorf("properties.%s: %w", name, err)
				}
				s.Properties = append(s.Properties, Property{Name: name, Schema: ps})
			}
		}
	}
	if sys, ok := obj.Get("system"); ok {
		s.System, _ = sys.Str()
	}
	if c, ok := obj.Get("custom"); ok {
		s.Custom, _ = c.Str()
	}
	if id, ok := obj.Get("customId"); ok {
		if f, ok := id.Num(); ok {
			s.CustomID = int64(f)
		}
	}
	return s, nil
}

func (s Schema) MarshalJSON() ([]byte, error) {
	return s.toValue().MarshalJSON()
}

func (s *Schema) UnmarshalJSON(data []byte) error {
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}
	if v.IsNull() {
		*s = Schema{}
		return nil
	}
	out, err := schemaFromValue(v)
	if err != nil {
		return err
	}
	*s = out
	return nil
}

// Descriptor maps one Jira field. Mapping is either the name of a defect
// field or a literal, possibly containing [token] placeholders. The Is* flags
// are derived from Schema during Simplify.
type Descriptor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Key      string `json:"key,omitempty"`
	Mapping  Value  `json:"mapping"`
	Required bool   `json:"required"`
	Schema   Schema `json:"schema"`

	IsArrayType         bool `json:"isArrayType,omitempty"`
	IsArrayOfPrimitives bool `json:"isArrayOfPrimitives,omitempty"`
	IsArrayOfObjects    bool `json:"isArrayOfObjects,omitempty"`
	IsObjectType        bool `json:"isObjectType,omitempty"`
}

func (d Descriptor) Clone() Descriptor {
	out := d
	out.Mapping = d.Mapping.Clone()
	out.Schema = d.Schema.Clone()
	return out
}

// MappingText returns the mapping when it is a string. Null and missing
// mappings read as "".
func (d Descriptor) MappingText() (string, bool) {
	if d.Mapping.IsUndefined() || d.Mapping.IsNull() {
		return "", true
	}
	switch d.Mapping.Kind() {
	case KindString:
		s, _ := d.Mapping.Str()
		return s, true
	default:
		return "", false
	}
}

func (d Descriptor) hasMapping() bool {
	text, isText := d.MappingText()
	return !isText || text != ""
}

const selfProperty = "self"

// prepare derives the Is* flags and strips the "self" back-reference from
// the property list.
func (d *Descriptor) prepare() error {
	d.IsArrayType = d.Schema.Type == "array"
	d.IsArrayOfPrimitives = false
	d.IsArrayOfObjects = false
	d.IsObjectType = d.Schema.Type == "object" && d.Schema.Properties != nil

	if d.IsArrayType {
		if d.Schema.Items == nil {
			return malformed(d.ID, "array schema without items")
		}
		d.IsArrayOfObjects = d.Schema.Items.Type == "object"
		d.IsArrayOfPrimitives = !d.IsArrayOfObjects
	}

	switch {
	case d.IsArrayOfObjects:
		if d.Schema.Items.Properties == nil {
			return malformed(d.ID, "array of objects without item properties")
		}
		d.Schema.Items.Properties = d.Schema.Items.Properties.Without(selfProperty)
	case d.IsObjectType:
		d.Schema.Properties = d.Schema.Properties.Without(selfProperty)
	}
	return nil
}

// ErrMalformedSchema is wrapped by every error about a structurally broken schema.
var ErrMalformedSchema = fmt.Errorf("malformed field schema")

func malformed(fieldID, details string) error {
	e := apperrors.NewMalformedSchemaError(fieldID, details)
	e.Cause = ErrMalformedSchema
	return e
}

// ParseDescriptors decodes a JSON array of descriptors.
func ParseDescriptors(data []byte) ([]Descriptor, error) {
	var out []Descriptor
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
