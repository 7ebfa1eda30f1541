package fieldmap

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "defect-reporter/internal/common/errors"
)

func mustRecord(t *testing.T, text string) Record {
	t.Helper()
	var r Record
	require.NoError(t, json.Unmarshal([]byte(text), &r))
	return r
}

func mustDescriptors(t *testing.T, text string) []Descriptor {
	t.Helper()
	ds, err := ParseDescriptors([]byte(text))
	require.NoError(t, err)
	return ds
}

func recordJSON(t *testing.T, r Record) string {
	t.Helper()
	b, err := json.Marshal(r)
	require.NoError(t, err)
	return string(b)
}

func TestSimplify_TokenSubstitution(t *testing.T) {
	defect := mustRecord(t, `{"foo":{"value":"bar"}}`)
	ds := mustDescriptors(t, `[{"mapping":"[foo] baz","id":"x","schema":{"type":"string"},"required":false}]`)

	res, err := Simplify(defect, ds, true)
	require.NoError(t, err)
	// grouped: literal kept as-is
	assert.JSONEq(t, `{"x":{"value":"[foo] baz","valid":true}}`, recordJSON(t, res.Record))

	res, err = Simplify(defect, ds, false)
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":{"value":"bar baz","valid":true}}`, recordJSON(t, res.Record))
}

func TestSimplify_RequiredObjectDefault(t *testing.T) {
	ds := mustDescriptors(t, `[{"mapping":"","id":"y","required":true,
		"schema":{"type":"object","properties":{"a":{"type":"boolean"}}}}]`)

	res, err := Simplify(Record{}, ds, true)
	require.NoError(t, err)
	assert.JSONEq(t, `{"y":{"valid":true,"value":{"a":false}}}`, recordJSON(t, res.Record))
}

func TestSimplify_RequiredDefaultsByShape(t *testing.T) {
	ds := mustDescriptors(t, `[
		{"mapping":"","id":"components","required":true,
		 "schema":{"type":"array","items":{"type":"object","properties":{"self":{"type":"string"},"name":{"type":"string"},"archived":{"type":"boolean"}}}}},
		{"mapping":"","id":"labels","required":true,"schema":{"type":"array","items":"string"}},
		{"mapping":"","id":"flagged","required":true,"schema":{"type":"boolean"}},
		{"mapping":"","id":"duedate","required":true,"schema":{"type":"date"}},
		{"mapping":"","id":"customfield_20","required":true,"schema":{"type":"object"}},
		{"mapping":"","id":"optional","required":false,"schema":{"type":"string"}}
	]`)

	res, err := Simplify(Record{}, ds, true)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"components":{"valid":true,"value":[{"name":null,"archived":false}]},
		"labels":{"valid":true,"value":[]},
		"flagged":{"valid":true,"value":false},
		"duedate":{"valid":true,"value":null},
		"customfield_20":{"valid":true,"value":{}}
	}`, recordJSON(t, res.Record))

	assert.True(t, res.Descriptors[0].IsArrayOfObjects)
	assert.True(t, res.Descriptors[1].IsArrayOfPrimitives)
	_, hasSelf := res.Descriptors[0].Schema.Items.Properties.Get("self")
	assert.False(t, hasSelf)
}

func TestSimplify_RequiredUsesDefectValueByID(t *testing.T) {
	defect := mustRecord(t, `{"priority":{"value":"High"}}`)
	ds := mustDescriptors(t, `[{"mapping":"","id":"priority","required":true,"schema":{"type":"string"}}]`)

	res, err := Simplify(defect, ds, true)
	require.NoError(t, err)
	assert.JSONEq(t, `{"priority":{"value":"High","valid":true}}`, recordJSON(t, res.Record))
}

func TestSimplify_DirectMappingAndMismatch(t *testing.T) {
	defect := mustRecord(t, `{
		"title":{"value":"Crash on load","valid":true},
		"fps":{"value":"thirty","valid":true},
		"attachment_id":{"value":"att-1"},
		"universal_unique_identifier":{"value":"u-1"}
	}`)
	ds := mustDescriptors(t, `[
		{"mapping":"fps","id":"customfield_100","name":"Frame rate","schema":{"type":"number"}},
		{"mapping":"title","id":"summary","name":"Summary","required":true,"schema":{"type":"string"}}
	]`)

	res, err := Simplify(defect, ds, false)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"attachment_id":{"value":"att-1","valid":true},
		"universal_unique_identifier":{"value":"u-1","valid":true},
		"customfield_100":{"value":"thirty","valid":true},
		"summary":{"value":"Crash on load","valid":true}
	}`, recordJSON(t, res.Record))

	require.Len(t, res.Mismatches, 1)
	assert.Equal(t, Mismatch{Mapping: "fps", FieldID: "customfield_100", FieldName: "Frame rate"}, res.Mismatches[0])

	require.Len(t, res.Descriptors, 2)
	assert.Equal(t, "summary", res.Descriptors[0].ID, "summary listed first")
	for _, d := range res.Descriptors {
		m, _ := d.MappingText()
		assert.Equal(t, d.ID, m)
	}
}

func TestSimplify_SummaryAlwaysFirst(t *testing.T) {
	ds := mustDescriptors(t, `[
		{"mapping":"","id":"a","schema":{"type":"string"}},
		{"mapping":"","id":"b","schema":{"type":"string"}},
		{"mapping":"literal","id":"summary","schema":{"type":"string"}},
		{"mapping":"","id":"c","schema":{"type":"string"}}
	]`)

	res, err := Simplify(Record{}, ds, false)
	require.NoError(t, err)

	ids := make([]string, len(res.Descriptors))
	for i, d := range res.Descriptors {
		ids[i] = d.ID
	}
	assert.Equal(t, []string{"summary", "a", "b", "c"}, ids)
}

func TestSimplify_GroupedSkipsSeedFields(t *testing.T) {
	defect := mustRecord(t, `{"attachment_id":{"value":"att-1"}}`)
	res, err := Simplify(defect, nil, true)
	require.NoError(t, err)
	assert.Empty(t, res.Record)
}

func TestSimplify_DoesNotModifyInputs(t *testing.T) {
	defect := mustRecord(t, `{"os":{"value":"Linux"}}`)
	ds := mustDescriptors(t, `[{"mapping":"[os] box","id":"environment","schema":{"type":"object","properties":{"self":{"type":"string"},"x":{"type":"string"}}}}]`)
	before := recordJSON(t, defect)

	res, err := Simplify(defect, ds, false)
	require.NoError(t, err)

	res.Record["environment"].Value = StringValue("changed")
	assert.Equal(t, before, recordJSON(t, defect))
	m, _ := ds[0].MappingText()
	assert.Equal(t, "[os] box", m)
	_, hasSelf := ds[0].Schema.Properties.Get("self")
	assert.True(t, hasSelf)
}

func TestSimplify_MalformedSchema(t *testing.T) {
	tests := []struct {
		name string
		desc string
	}{
		{"array without items", `[{"mapping":"","id":"labels","schema":{"type":"array"}}]`},
		{"object items without properties", `[{"mapping":"","id":"parts","schema":{"type":"array","items":{"type":"object"}}}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Simplify(Record{}, mustDescriptors(t, tt.desc), false)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedSchema))
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeMalformedSchema))
		})
	}
}

func TestSimplify_NullMappingIsEmpty(t *testing.T) {
	ds := mustDescriptors(t, `[{"mapping":null,"id":"flag","required":true,"schema":{"type":"boolean"}}]`)
	res, err := Simplify(Record{}, ds, false)
	require.NoError(t, err)
	assert.JSONEq(t, `{"flag":{"value":false,"valid":true}}`, recordJSON(t, res.Record))
}

func TestRecordFromValue_WrapsRawEntries(t *testing.T) {
	rec, err := RecordFromValue(MustParse(`{"raw":"text","obj":{"a":1},"wrapped":{"value":3,"valid":false}}`))
	require.NoError(t, err)

	assert.Equal(t, &Field{Value: StringValue("text"), Valid: true}, rec["raw"])
	assert.True(t, rec["obj"].Value.Equal(MustParse(`{"a":1}`)))
	assert.True(t, rec["obj"].Valid)
	assert.Equal(t, &Field{Value: NumberValue(3), Valid: false}, rec["wrapped"])
}

func TestUnwrap(t *testing.T) {
	rec := mustRecord(t, `{"summary":{"value":"t"},"labels":{"value":["a"]}}`)
	assert.Equal(t, map[string]interface{}{
		"summary": "t",
		"labels":  []interface{}{"a"},
	}, Unwrap(rec))
}

func TestDescriptor_MappingText(t *testing.T) {
	ds := mustDescriptors(t, `[
		{"id":"a","schema":{"type":"string"}},
		{"id":"b","mapping":null,"schema":{"type":"string"}},
		{"id":"c","mapping":"[title]","schema":{"type":"string"}},
		{"id":"d","mapping":{"name":"[title]"},"schema":{"type":"string"}}
	]`)
	require.Len(t, ds, 4)
	assert.True(t, ds[0].Mapping.IsUndefined())

	tests := []struct {
		want   string
		wantOK bool
	}{{"", true}, {"", true}, {"[title]", true}, {"", false}}
	for i, tt := range tests {
		got, ok := ds[i].MappingText()
		assert.Equal(t, tt.want, got, ds[i].ID)
		assert.Equal(t, tt.wantOK, ok, ds[i].ID)
	}
}
