package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const description = `{
	"namespace": "Sample.Client",
	"resourceGroup": "Sample",
	"otherClasses": [{"name": "Item", "props": [{"name": "id", "type": "string"}]}],
	"functions": [{"functionName": "get_item", "http_method": "GET", "path": "/item", "responseType": "Item"}]
}`

func writeDescription(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "service.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGenerate_WritesFile(t *testing.T) {
	src := writeDescription(t, description)
	outDir := t.TempDir()

	cmd := newRootCmd()
	cmd.SetArgs([]string{"generate", src, "--output-dir", outDir, "--namespace", "Override.Ns"})
	require.NoError(t, cmd.Execute())

	got, err := os.ReadFile(filepath.Join(outDir, "SampleClientComponent.cs"))
	require.NoError(t, err)
	assert.Contains(t, string(got), "namespace Override.Ns {")
	assert.Contains(t, string(got), "public class get_itemRequest : JsonServiceRequest")
}

func TestGenerate_Stdout(t *testing.T) {
	src := writeDescription(t, description)
	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"generate", src, "--stdout"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `return "Sample.ServiceApi";`)
}

func TestGenerate_ConfigDefaults(t *testing.T) {
	src := writeDescription(t, description)
	outDir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	cfgYAML := "codegen:\n  output_dir: " + outDir + "\n  resource_group: FromConfig\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o644))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"generate", src, "--config", cfgPath})
	require.NoError(t, cmd.Execute())

	got, err := os.ReadFile(filepath.Join(outDir, "FromConfigClientComponent.cs"))
	require.NoError(t, err)
	assert.Contains(t, string(got), `return "FromConfig.ServiceApi";`)
}

func TestValidate_ReportsEachFile(t *testing.T) {
	good := writeDescription(t, description)
	bad := writeDescription(t, `{"namespace": "X", "resourceGroup": "R", "functions": [{"functionName": "f", "http_method": "GET", "path": "/{id}"}]}`)
	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"validate", good, bad})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, out.String(), "OK: "+good)
	assert.Contains(t, out.String(), "ERROR in "+bad)
}
