package fieldmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendElement(t *testing.T) {
	f := &Field{Value: StringValue(""), Valid: true}

	require.NoError(t, AppendElement(f, "object"))
	require.NoError(t, AppendElement(f, "number"))
	require.NoError(t, AppendElement(f, "boolean"))
	require.NoError(t, AppendElement(f, "string"))

	assert.True(t, f.Value.Equal(MustParse(`[{},0,false,""]`)))
}

func TestAppendElement_NotArray(t *testing.T) {
	f := &Field{Value: StringValue("text")}
	assert.ErrorIs(t, AppendElement(f, "string"), ErrNotArray)
}

func TestRemoveElement(t *testing.T) {
	f := &Field{Value: MustParse(`["a","b","c"]`)}

	require.NoError(t, RemoveElement(f, 1))
	assert.True(t, f.Value.Equal(MustParse(`["a","c"]`)))

	assert.Error(t, RemoveElement(f, 5))
	assert.ErrorIs(t, RemoveElement(&Field{Value: Null()}, 0), ErrNotArray)
}
