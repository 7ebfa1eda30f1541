package fieldmap

// CheckFormat reports whether v fits schema. A blank string always fits.
// For arrays only the first element is checked against the item schema.
func CheckFormat(schema Schema, v Value) bool {
	if s, ok := v.Str(); ok && s == "" {
		return true
	}

	switch schema.Type {
	case "string", "number", "boolean", "object":
		return schema.Type == v.JSType()
	case "array":
		elems, ok := v.Array()
		if !ok || len(elems) == 0 {
			return false
		}
		if schema.Items == nil {
			return true
		}
		return CheckFormat(*schema.Items, elems[0])
	default:
		return true
	}
}
