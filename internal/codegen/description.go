// Package codegen renders C# service-client classes from a schema
// description: request/response model classes plus one request type per
// remote function.
package codegen

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"defect-reporter/internal/common/errors"
	"defect-reporter/internal/common/validation"
)

// Description is the input document of the generator.
type Description struct {
	Namespace     string     `json:"namespace" yaml:"namespace"`
	ResourceGroup string     `json:"resourceGroup" yaml:"resourceGroup"`
	OtherClasses  []Class    `json:"otherClasses,omitempty" yaml:"otherClasses"`
	Functions     []Function `json:"functions,omitempty" yaml:"functions"`
}

// Class is a model type. An array class derives from List<Elements>;
// any other class is an object with Props.
type Class struct {
	Name     string `json:"name" yaml:"name"`
	IsArray  bool   `json:"isArray,omitempty" yaml:"isArray,omitempty"`
	Elements string `json:"elements,omitempty" yaml:"elements,omitempty"`
	Props    []Prop `json:"props,omitempty" yaml:"props,omitempty"`
}

// Prop is one field of an object class. Init is emitted verbatim after the
// field name, e.g. " = 0".
type Prop struct {
	Name    string `json:"name" yaml:"name"`
	Type    string `json:"type" yaml:"type"`
	IsArray bool   `json:"isArray,omitempty" yaml:"isArray,omitempty"`
	Init    string `json:"init,omitempty" yaml:"init,omitempty"`
}

// Function is one remote endpoint. Params are "Type name" pairs; the
// *ParamNames lists say where each one is bound.
type Function struct {
	FunctionName    string   `json:"functionName" yaml:"functionName"`
	HTTPMethod      string   `json:"http_method" yaml:"http_method"`
	Path            string   `json:"path" yaml:"path"`
	Params          []string `json:"params,omitempty" yaml:"params,omitempty"`
	ResponseType    string   `json:"responseType,omitempty" yaml:"responseType,omitempty"`
	QueryParamNames []string `json:"queryParamNames,omitempty" yaml:"queryParamNames,omitempty"`
	PathParamNames  []string `json:"pathParamNames,omitempty" yaml:"pathParamNames,omitempty"`
	ParamNames      []string `json:"paramNames,omitempty" yaml:"paramNames,omitempty"`
}

// Param is a parsed "Type name" entry.
type Param struct {
	Type string
	Name string
}

// ParseParam splits a "Type name" entry.
func ParseParam(s string) (Param, error) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return Param{}, fmt.Errorf("param %q: expected \"Type name\"", s)
	}
	return Param{Type: parts[0], Name: parts[1]}, nil
}

// DeclaredParams parses every entry of f.Params.
func (f Function) DeclaredParams() ([]Param, error) {
	out := make([]Param, 0, len(f.Params))
	for _, s := range f.Params {
		p, err := ParseParam(s)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// LoadDescription reads a description from a .json, .yaml or .yml file.
func LoadDescription(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read description: %w", err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return ParseDescription(data, format)
}

// ParseDescription decodes data as "json" or "yaml"/"yml".
func ParseDescription(data []byte, format string) (*Description, error) {
	var desc Description
	switch format {
	case "json":
		if err := json.Unmarshal(data, &desc); err != nil {
			return nil, fmt.Errorf("failed to parse description: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &desc); err != nil {
			return nil, fmt.Errorf("failed to parse description: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported description format %q", format)
	}
	return &desc, nil
}

//go:embed description.schema.json
var descriptionSchemaJSON string

var descriptionSchema = validation.MustCompile(descriptionSchemaJSON)

var pathPlaceholder = regexp.MustCompile(`\{([^{}]+)\}`)

// ValidateDescription checks desc against the description schema and then
// cross-checks each function's parameter bindings. The returned error is a
// DESCRIPTION_INVALID StandardError listing every problem found.
func ValidateDescription(desc *Description) error {
	res, err := descriptionSchema.Validate(desc)
	if err != nil {
		return errors.NewDescriptionInvalidError(err.Error())
	}

	for i, fn := range desc.Functions {
		field := fmt.Sprintf("functions.%d", i)
		declared := map[string]bool{}
		for j, s := range fn.Params {
			p, err := ParseParam(s)
			if err != nil {
				res.Add(fmt.Sprintf("%s.params.%d", field, j), "PARAM_SYNTAX", err.Error())
				continue
			}
			declared[p.Name] = true
		}

		bindings := []struct {
			name  string
			names []string
		}{
			{"queryParamNames", fn.QueryParamNames},
			{"pathParamNames", fn.PathParamNames},
			{"paramNames", fn.ParamNames},
		}
		for _, b := range bindings {
			for _, name := range b.names {
				if !declared[name] {
					res.Add(field+"."+b.name, "UNDECLARED_PARAM", fmt.Sprintf("%q is not in params", name))
				}
			}
		}

		for _, name := range fn.PathParamNames {
			if !strings.Contains(fn.Path, "{"+name+"}") {
				res.Add(field+".path", "PATH_PARAM_UNUSED", fmt.Sprintf("path has no {%s} placeholder", name))
			}
		}
		for _, m := range pathPlaceholder.FindAllStringSubmatch(fn.Path, -1) {
			if !contains(fn.PathParamNames, m[1]) {
				res.Add(field+".path", "PATH_PARAM_UNBOUND", fmt.Sprintf("placeholder {%s} is not in pathParamNames", m[1]))
			}
		}
	}

	if !res.Valid {
		return errors.NewDescriptionInvalidError(strings.Join(res.GetErrorMessages(), "; "))
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
