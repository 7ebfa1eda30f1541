package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_HasMapJiraFields(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	a, ok := reg.Find("map-jira-fields")
	require.True(t, ok)
	assert.Equal(t, "defect.jira.map-fields", a.ID)
	assert.Contains(t, a.ErrorCodes, "FIELD_MAPPINGS_FETCH_FAILED")
	assert.NotEmpty(t, a.InputSchema)

	_, ok = reg.Find("unknown")
	assert.False(t, ok)
}

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":"2","activities":[{"taskType":"a"}]}`), 0o644))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "2", reg.Version)

	_, err = Parse([]byte("{"))
	assert.Error(t, err)
}
