package fieldmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckFormat(t *testing.T) {
	str := Schema{Type: "string"}
	num := Schema{Type: "number"}
	obj := Schema{Type: "object"}
	arrOfStr := Schema{Type: "array", Items: &Schema{Type: "string"}}
	arrOfObj := Schema{Type: "array", Items: &Schema{Type: "object"}}

	tests := []struct {
		name   string
		schema Schema
		v      Value
		want   bool
	}{
		{"blank string fits anything", num, StringValue(""), true},
		{"string ok", str, StringValue("x"), true},
		{"number for string", str, NumberValue(1), false},
		{"bool for number", num, BoolValue(true), false},
		{"object ok", obj, MustParse(`{"a":1}`), true},
		{"null counts as object", obj, Null(), true},
		{"array counts as object", obj, MustParse(`[]`), true},
		{"missing value for string", str, Value{}, false},
		{"array first element ok", arrOfStr, MustParse(`["a",1]`), true},
		{"array first element wrong", arrOfStr, MustParse(`[1,"a"]`), false},
		{"empty array rejected", arrOfStr, MustParse(`[]`), false},
		{"non array rejected", arrOfStr, StringValue("a"), false},
		{"array of objects", arrOfObj, MustParse(`[{"name":"x"}]`), true},
		{"unknown type passes", Schema{Type: "datetime"}, NumberValue(5), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckFormat(tt.schema, tt.v))
		})
	}
}
