package codegen

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"defect-reporter/internal/common/errors"
	"defect-reporter/internal/common/logger"
	"defect-reporter/internal/common/metrics"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const clientTemplate = "component_client.cs.tmpl"

// valueTypes are the C# types read with a typed ReadAs* call and never
// constructed with new. listPrimitives adds object, which is written with
// WriteValue but still constructed.
var (
	valueTypes     = map[string]bool{"string": true, "int": true, "bool": true, "double": true}
	listPrimitives = map[string]bool{"string": true, "int": true, "bool": true, "double": true, "object": true}
)

var funcs = template.FuncMap{
	"valueType":     func(t string) bool { return valueTypes[t] },
	"listPrimitive": func(t string) bool { return listPrimitives[t] },
	"readAs":        readAs,
	"tokenTest":     tokenTest,
	"httpMethod":    httpMethod,
	"fieldType": func(p Prop) string {
		if p.IsArray {
			return "List<" + p.Type + ">"
		}
		return p.Type
	},
}

func readAs(t string) string {
	switch t {
	case "int":
		return "jsonReader.ReadAsInt32().Value"
	case "bool":
		return "jsonReader.ReadAsBoolean().Value"
	case "double":
		return "jsonReader.ReadAsDouble().Value"
	case "string":
		return "jsonReader.ReadAsString()"
	default:
		return "jsonReader.Value"
	}
}

func tokenTest(t string) string {
	switch t {
	case "int":
		return "jsonReader.TokenType == JsonToken.Integer"
	case "bool":
		return "jsonReader.TokenType == JsonToken.Boolean"
	case "double":
		return "jsonReader.Value is double || jsonReader.Value is int"
	default:
		return "jsonReader.TokenType == JsonToken.String"
	}
}

// httpMethod turns "GET" or "get" into the HttpMethod property name "Get".
func httpMethod(m string) string {
	m = strings.ToLower(m)
	if m == "" {
		return m
	}
	return strings.ToUpper(m[:1]) + m[1:]
}

type functionView struct {
	Function
	Params []Param
}

type descriptionView struct {
	*Description
	Functions []functionView
}

// Emitter renders descriptions into C# source.
type Emitter struct {
	tmpl   *template.Template
	logger logger.Logger
}

func NewEmitter(log logger.Logger) (*Emitter, error) {
	tmpl, err := template.New(clientTemplate).Funcs(funcs).ParseFS(templateFS, "templates/"+clientTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client template: %w", err)
	}
	return &Emitter{tmpl: tmpl, logger: log}, nil
}

// Render validates desc and returns the generated client source.
func (e *Emitter) Render(desc *Description) ([]byte, error) {
	if err := ValidateDescription(desc); err != nil {
		metrics.ClientsGenerated.WithLabelValues("invalid").Inc()
		return nil, err
	}

	view := descriptionView{Description: desc, Functions: make([]functionView, 0, len(desc.Functions))}
	for _, fn := range desc.Functions {
		params, err := fn.DeclaredParams()
		if err != nil {
			metrics.ClientsGenerated.WithLabelValues("invalid").Inc()
			return nil, errors.NewDescriptionInvalidError(err.Error())
		}
		view.Functions = append(view.Functions, functionView{Function: fn, Params: params})
	}

	var buf bytes.Buffer
	if err := e.tmpl.ExecuteTemplate(&buf, clientTemplate, view); err != nil {
		metrics.ClientsGenerated.WithLabelValues("failed").Inc()
		return nil, errors.NewCodegenFailedError(err)
	}

	metrics.ClientsGenerated.WithLabelValues("ok").Inc()
	e.logger.Debug("client rendered", map[string]interface{}{
		"namespace": desc.Namespace,
		"classes":   len(desc.OtherClasses),
		"functions": len(desc.Functions),
	})
	return buf.Bytes(), nil
}

// FileName is the conventional output name for desc's client.
func FileName(desc *Description) string {
	return desc.ResourceGroup + "ClientComponent.cs"
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(path string, content []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
