package fieldmap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_JSONKeepsKeyOrder(t *testing.T) {
	in := `{"zeta":1,"alpha":{"b":[true,null,"x"],"a":2.5},"mid":""}`

	var v Value
	require.NoError(t, json.Unmarshal([]byte(in), &v))
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, v.Object().Keys())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
	assert.Equal(t, in, string(out))
}

func TestValue_JSType(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"undefined", Value{}, "undefined"},
		{"null", Null(), "object"},
		{"string", StringValue("a"), "string"},
		{"number", NumberValue(3), "number"},
		{"bool", BoolValue(true), "boolean"},
		{"object", MustParse(`{}`), "object"},
		{"array", MustParse(`[1]`), "object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.JSType())
		})
	}
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "bar", StringValue("bar").String())
	assert.Equal(t, "42", NumberValue(42).String())
	assert.Equal(t, "0.5", NumberValue(0.5).String())
	assert.Equal(t, "false", BoolValue(false).String())
	assert.Equal(t, "null", Null().String())
	assert.Equal(t, `{"os":"win"}`, MustParse(`{"os":"win"}`).String())
	assert.Equal(t, `[1,2]`, MustParse(`[1,2]`).String())
}

func TestFromAny(t *testing.T) {
	v, err := FromAny(map[string]interface{}{
		"b": []interface{}{1, "two", nil},
		"a": map[string]interface{}{"ok": true},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v.Object().Keys())
	assert.True(t, v.Equal(MustParse(`{"a":{"ok":true},"b":[1,"two",null]}`)))

	back := v.Any().(map[string]interface{})
	assert.Equal(t, []interface{}{float64(1), "two", nil}, back["b"])
}

func TestWalk_VisitsOnlyLeaves(t *testing.T) {
	v := MustParse(`{"a":"x","b":[1,{"c":"y"}],"d":{}}`)

	var leaves []string
	out := Walk(v, func(leaf Value) Value {
		leaves = append(leaves, leaf.String())
		if s, ok := leaf.Str(); ok {
			return StringValue(s + "!")
		}
		return leaf
	})

	assert.Equal(t, []string{"x", "1", "y"}, leaves)
	assert.True(t, out.Equal(MustParse(`{"a":"x!","b":[1,{"c":"y!"}],"d":{}}`)))
	assert.True(t, v.Equal(MustParse(`{"a":"x","b":[1,{"c":"y"}],"d":{}}`)), "input untouched")
}

func TestObject_Delete(t *testing.T) {
	obj := MustParse(`{"a":1,"self":"x","b":2}`).Object()
	obj.Delete("self")
	obj.Delete("missing")
	assert.Equal(t, []string{"a", "b"}, obj.Keys())
}
