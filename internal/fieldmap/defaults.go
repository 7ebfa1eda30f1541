package fieldmap

// DefaultFor synthesizes the value of a required field that nothing maps to.
// d must have been prepared by Simplify so its Is* flags are set.
//
//	object           -> each property false (boolean) or null; {} without properties
//	array of objects -> one element shaped like the object case
//	array            -> []
//	boolean          -> false
//	anything else    -> null
func DefaultFor(d Descriptor) Value {
	switch {
	case d.IsArrayOfObjects:
		return ArrayValue(defaultObject(d.Schema.Items.Properties))
	case d.IsObjectType, d.Schema.Type == "object":
		return defaultObject(d.Schema.Properties)
	case d.IsArrayType:
		return ArrayValue()
	case d.Schema.Type == "boolean":
		return BoolValue(false)
	default:
		return Null()
	}
}

func defaultObject(props Properties) Value {
	obj := NewObject()
	for _, p := range props {
		if p.Schema.Type == "boolean" {
			obj.Set(p.Name, BoolValue(false))
		} else {
			obj.Set(p.Name, Null())
		}
	}
	return ObjectValue(obj)
}
