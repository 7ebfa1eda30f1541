package fieldmap

const (
	// SummaryFieldID is the Jira issue title; its descriptor is always listed first.
	SummaryFieldID = "summary"

	AttachmentIDKey = "attachment_id"
	UUIDKey         = "universal_unique_identifier"
)

// Mismatch records a defect property whose value does not fit the schema of
// the Jira field it maps to.
type Mismatch struct {
	Mapping   string `json:"mapping"`
	FieldID   string `json:"fieldId"`
	FieldName string `json:"fieldName"`
}

// Result is the outcome of one Simplify pass.
type Result struct {
	// Record is keyed by Jira field id.
	Record Record
	// Descriptors are prepared copies whose mapping now names their own id.
	Descriptors []Descriptor
	Mismatches  []Mismatch
}

// Simplify maps defect onto descriptors. Neither argument is modified.
//
// For each descriptor, in order:
//   - a mapping naming a defect field copies that field under the descriptor
//     id, after checking it against the schema;
//   - any other non-empty mapping is a literal; its [tokens] are substituted
//     from defect unless grouped is set;
//   - an empty mapping on a required field takes defect[id] if present,
//     otherwise a synthesized default.
//
// Schema mismatches are collected, not returned as errors. Only a malformed
// schema stops the pass.
func Simplify(defect Record, descriptors []Descriptor, grouped bool) (*Result, error) {
	out := Record{}
	if !grouped {
		for _, key := range []string{AttachmentIDKey, UUIDKey} {
			if f, ok := defect[key]; ok && f != nil {
				out[key] = f.Clone()
			}
		}
	}

	res := &Result{Record: out, Descriptors: make([]Descriptor, 0, len(descriptors))}
	summary := -1

	for _, orig := range descriptors {
		d := orig.Clone()
		if err := d.prepare(); err != nil {
			return nil, err
		}

		mapping, isText := d.MappingText()
		switch {
		case !d.hasMapping():
			if d.Required {
				if src, ok := defect[d.ID]; ok && src != nil {
					out[d.ID] = src.Clone()
				} else {
					out[d.ID] = &Field{Value: DefaultFor(d), Valid: true}
				}
			}
		case isText && defect[mapping] != nil:
			src := defect[mapping]
			if !CheckFormat(d.Schema, src.Value) {
				res.Mismatches = append(res.Mismatches, Mismatch{Mapping: mapping, FieldID: d.ID, FieldName: d.Name})
			}
			out[d.ID] = src.Clone()
		default:
			value := d.Mapping.Clone()
			if !grouped {
				value = Substitute(d.Mapping, defect)
			}
			out[d.ID] = &Field{Value: value, Valid: true}
		}

		if d.ID == SummaryFieldID && summary < 0 {
			summary = len(res.Descriptors)
		}
		d.Mapping = StringValue(d.ID)
		res.Descriptors = append(res.Descriptors, d)
	}

	if summary > 0 {
		s := res.Descriptors[summary]
		copy(res.Descriptors[1:summary+1], res.Descriptors[:summary])
		res.Descriptors[0] = s
	}
	return res, nil
}
