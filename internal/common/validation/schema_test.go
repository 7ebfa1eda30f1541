package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"type": "object",
	"required": ["name"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"tags": {"type": "array", "items": {"type": "string"}}
	}
}`

func TestSchema_Validate(t *testing.T) {
	s := MustCompile(testSchema)

	tests := []struct {
		name      string
		doc       interface{}
		wantValid bool
		wantField string
	}{
		{
			name:      "valid",
			doc:       map[string]interface{}{"name": "crash", "tags": []interface{}{"a"}},
			wantValid: true,
		},
		{
			name:      "missing required",
			doc:       map[string]interface{}{"tags": []interface{}{}},
			wantField: "(root)",
		},
		{
			name:      "wrong item type",
			doc:       map[string]interface{}{"name": "x", "tags": []interface{}{1}},
			wantField: "tags.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.Validate(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, res.Valid)
			if tt.wantField != "" {
				assert.True(t, res.HasErrors(tt.wantField), "errors: %v", res.GetErrorMessages())
			}
		})
	}
}

func TestCompile_Invalid(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
	assert.Panics(t, func() { MustCompile(`not json`) })
}

func TestValidationResult_Add(t *testing.T) {
	res := &ValidationResult{Valid: true}
	res.Add("functions.0.params.1", "PARAM_SYNTAX", "expected \"Type name\"")

	assert.False(t, res.Valid)
	assert.Len(t, res.GetErrorsForField("functions.0"), 1)
	assert.Equal(t, []string{`functions.0.params.1: expected "Type name"`}, res.GetErrorMessages())
}
