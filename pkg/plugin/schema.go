package plugin

import (
	"errors"
	"fmt"

	"github.com/example/nodeplugin/proto"
	"github.com/xeipuuv/gojsonschema"
)

// JSONSchema renders input definitions as a JSON schema object, for hosts
// that validate node configuration before a flow ever runs.
func JSONSchema(defs []*proto.ParameterDef) map[string]any {
	properties := make(map[string]any, len(defs))
	required := []any{}

	for _, def := range defs {
		prop := map[string]any{}
		if t := jsonType(def.Type); t != "" {
			prop["type"] = t
		}
		if def.Description != "" {
			prop["description"] = def.Description
		}
		if dv := def.GetDefaultValue(); !dv.IsNull() {
			prop["default"] = ValueToGo(dv)
		}
		if len(def.Options) > 0 {
			enum := make([]any, 0, len(def.Options))
			for _, opt := range def.Options {
				enum = append(enum, ValueToGo(opt.GetValue()))
			}
			prop["enum"] = enum
		}
		properties[def.Name] = prop

		if def.Required && def.GetDefaultValue().IsNull() {
			required = append(required, def.Name)
		}
	}

	schema := map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": true,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func jsonType(t proto.ParameterType) string {
	switch t {
	case proto.ParameterType_PARAM_TYPE_STRING,
		proto.ParameterType_PARAM_TYPE_ENUM,
		proto.ParameterType_PARAM_TYPE_SECRET,
		proto.ParameterType_PARAM_TYPE_EXPRESSION,
		proto.ParameterType_PARAM_TYPE_CODE,
		proto.ParameterType_PARAM_TYPE_BYTES:
		return "string"
	case proto.ParameterType_PARAM_TYPE_INT:
		return "integer"
	case proto.ParameterType_PARAM_TYPE_FLOAT:
		return "number"
	case proto.ParameterType_PARAM_TYPE_BOOL:
		return "boolean"
	case proto.ParameterType_PARAM_TYPE_ARRAY:
		return "array"
	case proto.ParameterType_PARAM_TYPE_OBJECT:
		return "object"
	}
	return ""
}

// ValidateJSON validates native parameters against the schema of defs. Bytes
// travel as base64 strings in JSON and are checked as strings.
func ValidateJSON(defs []*proto.ParameterDef, params map[string]any) error {
	if params == nil {
		params = map[string]any{}
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(JSONSchema(defs)),
		gojsonschema.NewGoLoader(params),
	)
	if err != nil {
		return fmt.Errorf("failed to validate parameters: %w", err)
	}
	if result.Valid() {
		return nil
	}

	errs := make([]error, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		field := re.Field()
		if field == "(root)" {
			if prop, ok := re.Details()["property"].(string); ok {
				field = prop
			}
		}
		errs = append(errs, &ValidationError{Param: field, Reason: re.Description()})
	}
	return errors.Join(errs...)
}
