package app

import (
	"testing"

	"github.com/example/nodeplugin/pkg/plugin"
	"github.com/example/nodeplugin/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceParameters(t *testing.T) {
	defs := []*proto.ParameterDef{
		{Name: "s", Type: proto.ParameterType_PARAM_TYPE_STRING},
		{Name: "i", Type: proto.ParameterType_PARAM_TYPE_INT},
		{Name: "f", Type: proto.ParameterType_PARAM_TYPE_FLOAT},
		{Name: "b", Type: proto.ParameterType_PARAM_TYPE_BOOL},
		{Name: "raw", Type: proto.ParameterType_PARAM_TYPE_BYTES},
		{Name: "list", Type: proto.ParameterType_PARAM_TYPE_ARRAY},
		{Name: "obj", Type: proto.ParameterType_PARAM_TYPE_OBJECT},
		{Name: "j", Type: proto.ParameterType_PARAM_TYPE_JSON},
		{Name: "level", Type: proto.ParameterType_PARAM_TYPE_ENUM, Options: []*proto.ParameterOption{
			{Label: "Low", Value: proto.NewIntValue(1)},
			{Label: "High", Value: proto.NewIntValue(9)},
		}},
	}

	tests := []struct {
		name string
		raw  string
		in   string
		want *proto.Value
	}{
		{"string", "s", "42", proto.NewStringValue("42")},
		{"int", "i", "-7", proto.NewIntValue(-7)},
		{"float", "f", "2.5", proto.NewDoubleValue(2.5)},
		{"float from integer text", "f", "3", proto.NewDoubleValue(3)},
		{"bool", "b", "true", proto.NewBoolValue(true)},
		{"bytes", "raw", "abc", proto.NewBytesValue([]byte("abc"))},
		{"array", "list", `[1, "two", 3.5]`, proto.NewListValue(proto.NewIntValue(1), proto.NewStringValue("two"), proto.NewDoubleValue(3.5))},
		{"object", "obj", `{"a": {"b": true}}`, proto.NewMapValue(map[string]*proto.Value{
			"a": proto.NewMapValue(map[string]*proto.Value{"b": proto.NewBoolValue(true)}),
		})},
		{"json number", "j", "12", proto.NewIntValue(12)},
		{"json falls back to string", "j", "not json", proto.NewStringValue("not json")},
		{"option value", "level", "9", proto.NewIntValue(9)},
		{"undeclared", "extra", "x", proto.NewStringValue("x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := CoerceParameters(defs, map[string]string{tt.raw: tt.in})
			require.NoError(t, err)
			assert.True(t, plugin.Equal(tt.want, values[tt.raw]), "got %v", plugin.ValueToGo(values[tt.raw]))
		})
	}
}

func TestCoerceParameters_Errors(t *testing.T) {
	defs := []*proto.ParameterDef{
		{Name: "i", Type: proto.ParameterType_PARAM_TYPE_INT},
		{Name: "b", Type: proto.ParameterType_PARAM_TYPE_BOOL},
		{Name: "list", Type: proto.ParameterType_PARAM_TYPE_ARRAY},
		{Name: "obj", Type: proto.ParameterType_PARAM_TYPE_OBJECT},
	}

	tests := []struct {
		name    string
		raw     map[string]string
		wantErr string
	}{
		{"int", map[string]string{"i": "1.5"}, `parameter "i": cannot parse "1.5" as int`},
		{"bool", map[string]string{"b": "maybe"}, `parameter "b": cannot parse "maybe" as bool`},
		{"array not json", map[string]string{"list": "[1,"}, `cannot parse "[1," as array`},
		{"object is a list", map[string]string{"obj": "[1]"}, "expected object, got list"},
		{"trailing data", map[string]string{"list": "[1] [2]"}, "trailing data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := CoerceParameters(defs, tt.raw)
			require.Error(t, err)
			assert.Nil(t, values)
			assert.ErrorIs(t, err, plugin.ErrValidation)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
