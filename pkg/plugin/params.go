package plugin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/nodeplugin/proto"
)

// AcceptsValue reports whether a non-null value has a case allowed for the
// declared parameter type. FLOAT also takes ints; JSON takes any case.
func AcceptsValue(t proto.ParameterType, v *proto.Value) bool {
	switch v.GetKind().(type) {
	case *proto.Value_StringValue:
		switch t {
		case proto.ParameterType_PARAM_TYPE_STRING,
			proto.ParameterType_PARAM_TYPE_ENUM,
			proto.ParameterType_PARAM_TYPE_SECRET,
			proto.ParameterType_PARAM_TYPE_EXPRESSION,
			proto.ParameterType_PARAM_TYPE_CODE,
			proto.ParameterType_PARAM_TYPE_JSON:
			return true
		}
	case *proto.Value_IntValue:
		return t == proto.ParameterType_PARAM_TYPE_INT ||
			t == proto.ParameterType_PARAM_TYPE_FLOAT ||
			t == proto.ParameterType_PARAM_TYPE_JSON
	case *proto.Value_DoubleValue:
		return t == proto.ParameterType_PARAM_TYPE_FLOAT || t == proto.ParameterType_PARAM_TYPE_JSON
	case *proto.Value_BoolValue:
		return t == proto.ParameterType_PARAM_TYPE_BOOL || t == proto.ParameterType_PARAM_TYPE_JSON
	case *proto.Value_BytesValue:
		return t == proto.ParameterType_PARAM_TYPE_BYTES || t == proto.ParameterType_PARAM_TYPE_JSON
	case *proto.Value_ListValue:
		return t == proto.ParameterType_PARAM_TYPE_ARRAY || t == proto.ParameterType_PARAM_TYPE_JSON
	case *proto.Value_MapValue:
		return t == proto.ParameterType_PARAM_TYPE_OBJECT || t == proto.ParameterType_PARAM_TYPE_JSON
	}
	return false
}

// ValidateValue checks a supplied, non-null value against its definition:
// the case must match the declared type and, when options are declared, the
// value must equal one of them.
func ValidateValue(def *proto.ParameterDef, v *proto.Value) error {
	if !AcceptsValue(def.Type, v) {
		return &ValidationError{
			Param:  def.Name,
			Reason: fmt.Sprintf("expected %s, got %s", typeName(def.Type), KindName(v)),
		}
	}
	if len(def.Options) == 0 {
		return nil
	}
	for _, opt := range def.Options {
		if Equal(opt.GetValue(), v) {
			return nil
		}
	}
	allowed := make([]string, 0, len(def.Options))
	for _, opt := range def.Options {
		allowed = append(allowed, fmt.Sprintf("%v", ValueToGo(opt.GetValue())))
	}
	return &ValidationError{
		Param:  def.Name,
		Reason: fmt.Sprintf("value %v is not one of [%s]", ValueToGo(v), strings.Join(allowed, ", ")),
	}
}

// ValidateSupplied checks every supplied, non-null parameter that has a
// definition. Missing parameters are not an error here.
func ValidateSupplied(defs []*proto.ParameterDef, params map[string]*proto.Value) error {
	var errs []error
	for _, def := range defs {
		v, ok := params[def.Name]
		if !ok || v.IsNull() {
			continue
		}
		if err := ValidateValue(def, v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ResolveParameters merges parameter layers, highest priority first, and
// fills declared defaults for whatever is still missing. A null value counts
// as missing. Undeclared parameters pass through unchecked.
//
// Every declared parameter that ends up with a value is type checked, and a
// required parameter without a value or default fails. All failures are
// reported together; a failed resolution returns no parameters.
func ResolveParameters(defs []*proto.ParameterDef, layers ...map[string]*proto.Value) (map[string]*proto.Value, error) {
	resolved := make(map[string]*proto.Value)
	for i := len(layers) - 1; i >= 0; i-- {
		for k, v := range layers[i] {
			if !v.IsNull() {
				resolved[k] = v
			}
		}
	}

	var errs []error
	for _, def := range defs {
		v, ok := resolved[def.Name]
		if !ok {
			if dv := def.GetDefaultValue(); !dv.IsNull() {
				resolved[def.Name] = dv
				continue
			}
			if def.Required {
				errs = append(errs, &ValidationError{Param: def.Name, Reason: "required parameter is missing"})
			}
			continue
		}
		if err := ValidateValue(def, v); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return resolved, nil
}

func typeName(t proto.ParameterType) string {
	return strings.ToLower(strings.TrimPrefix(t.String(), "PARAM_TYPE_"))
}
