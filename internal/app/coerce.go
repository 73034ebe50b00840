package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/example/nodeplugin/pkg/plugin"
	"github.com/example/nodeplugin/proto"
)

// CoerceParameters turns command line strings into values of the declared
// parameter types. A parameter with options takes the option whose value
// prints as the string. Undeclared parameters stay strings.
func CoerceParameters(defs []*proto.ParameterDef, raw map[string]string) (map[string]*proto.Value, error) {
	byName := make(map[string]*proto.ParameterDef, len(defs))
	for _, def := range defs {
		byName[def.Name] = def
	}

	values := make(map[string]*proto.Value, len(raw))
	var errs []error
	for name, s := range raw {
		def, ok := byName[name]
		if !ok {
			values[name] = proto.NewStringValue(s)
			continue
		}
		v, err := coerce(def, s)
		if err != nil {
			errs = append(errs, &plugin.ValidationError{Param: name, Reason: err.Error()})
			continue
		}
		values[name] = v
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return values, nil
}

func coerce(def *proto.ParameterDef, s string) (*proto.Value, error) {
	for _, opt := range def.Options {
		if fmt.Sprintf("%v", plugin.ValueToGo(opt.GetValue())) == s {
			return opt.GetValue(), nil
		}
	}

	switch def.Type {
	case proto.ParameterType_PARAM_TYPE_INT:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q as int", s)
		}
		return proto.NewIntValue(i), nil
	case proto.ParameterType_PARAM_TYPE_FLOAT:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q as float", s)
		}
		return proto.NewDoubleValue(f), nil
	case proto.ParameterType_PARAM_TYPE_BOOL:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q as bool", s)
		}
		return proto.NewBoolValue(b), nil
	case proto.ParameterType_PARAM_TYPE_BYTES:
		return proto.NewBytesValue([]byte(s)), nil
	case proto.ParameterType_PARAM_TYPE_ARRAY, proto.ParameterType_PARAM_TYPE_OBJECT:
		v, err := parseJSON(s)
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q as %s: %v", s, typeName(def.Type), err)
		}
		if !plugin.AcceptsValue(def.Type, v) {
			return nil, fmt.Errorf("expected %s, got %s", typeName(def.Type), plugin.KindName(v))
		}
		return v, nil
	case proto.ParameterType_PARAM_TYPE_JSON:
		if v, err := parseJSON(s); err == nil {
			return v, nil
		}
		return proto.NewStringValue(s), nil
	}
	return proto.NewStringValue(s), nil
}

// parseJSON decodes s keeping integral numbers as ints.
func parseJSON(s string) (*proto.Value, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var native any
	if err := dec.Decode(&native); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data")
	}
	return plugin.GoToValue(normalizeNumbers(native))
}

func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case []any:
		for i := range t {
			t[i] = normalizeNumbers(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = normalizeNumbers(t[k])
		}
		return t
	}
	return v
}

func typeName(t proto.ParameterType) string {
	switch t {
	case proto.ParameterType_PARAM_TYPE_ARRAY:
		return "array"
	case proto.ParameterType_PARAM_TYPE_OBJECT:
		return "object"
	}
	return t.String()
}
