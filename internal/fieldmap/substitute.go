package fieldmap

import "regexp"

// tokenPattern matches [name] placeholders, including blanks inside the brackets.
var tokenPattern = regexp.MustCompile(`\[\s*\w*\s*\]`)

// Substitute replaces every [name] token in the string leaves of mapping with
// the text of defect[name].Value. The text between the brackets is used as
// the key verbatim. Tokens with no entry in defect are left in place.
func Substitute(mapping Value, defect Record) Value {
	return Walk(mapping, func(leaf Value) Value {
		s, ok := leaf.Str()
		if !ok {
			return leaf
		}
		return StringValue(SubstituteText(s, defect))
	})
}

// SubstituteText applies token replacement to a single string in one pass.
func SubstituteText(s string, defect Record) string {
	return tokenPattern.ReplaceAllStringFunc(s, func(token string) string {
		entry, ok := defect[token[1:len(token)-1]]
		if !ok || entry == nil {
			return token
		}
		return entry.Value.String()
	})
}

// Tokens lists the placeholder keys referenced by s, in order of appearance.
func Tokens(s string) []string {
	matches := tokenPattern.FindAllString(s, -1)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m[1 : len(m)-1]
	}
	return out
}
