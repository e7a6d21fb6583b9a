package registry

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema renders the JSON schema of a node type's parameters.
func (r *Registry) Schema(typeName string) (map[string]any, error) {
	spec, err := r.GetSpec(typeName)
	if err != nil {
		return nil, err
	}

	properties := make(map[string]any, len(spec.RequiredParams)+len(spec.OptionalParams))

	for _, param := range spec.Params() {
		paramType := spec.Types[param]
		if paramType == "" {
			paramType = "string"
		}

		property := map[string]any{"type": paramType}

		if paramType == "array" {
			property["items"] = map[string]any{"type": "string"}
		}

		if format, ok := spec.Formats[param]; ok {
			property["format"] = format
		}

		if paramType == "string" && spec.Requires(param) {
			property["minLength"] = 1
		}

		properties[param] = property
	}

	required := spec.RequiredParams
	if required == nil {
		required = []string{}
	}

	schema := map[string]any{
		"type":       "object",
		"title":      spec.Name,
		"properties": properties,
		"required":   required,
	}

	if spec.Description != "" {
		schema["description"] = spec.Description
	}

	return schema, nil
}

// ValidateParameters checks resolved parameters against the node type schema.
func (r *Registry) ValidateParameters(typeName string, params map[string]any) error {
	schema, err := r.Schema(typeName)
	if err != nil {
		return err
	}

	if params == nil {
		params = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(params),
	)
	if err != nil {
		return &NodeTypeError{Op: "ValidateParameters", NodeType: typeName, Err: fmt.Errorf("%w: %w", ErrInvalidParameters, err)}
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return &NodeTypeError{
			Op:       "ValidateParameters",
			NodeType: typeName,
			Err:      fmt.Errorf("%w: %s", ErrInvalidParameters, strings.Join(details, "; ")),
		}
	}

	return nil
}
