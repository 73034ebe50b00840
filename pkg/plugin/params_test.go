package plugin

import (
	"testing"

	"github.com/example/nodeplugin/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDefs() []*proto.ParameterDef {
	return []*proto.ParameterDef{
		{Name: "message", Type: proto.ParameterType_PARAM_TYPE_STRING, Required: true},
		{Name: "prefix", Type: proto.ParameterType_PARAM_TYPE_STRING, DefaultValue: proto.NewStringValue("[Echo]")},
		{Name: "delay", Type: proto.ParameterType_PARAM_TYPE_INT, DefaultValue: proto.NewIntValue(0)},
		{
			Name: "mode",
			Type: proto.ParameterType_PARAM_TYPE_ENUM,
			Options: []*proto.ParameterOption{
				{Label: "Fast", Value: proto.NewStringValue("fast")},
				{Label: "Slow", Value: proto.NewStringValue("slow")},
			},
		},
	}
}

func TestAcceptsValue(t *testing.T) {
	tests := []struct {
		name  string
		typ   proto.ParameterType
		value *proto.Value
		want  bool
	}{
		{"string for string", proto.ParameterType_PARAM_TYPE_STRING, proto.NewStringValue("a"), true},
		{"string for secret", proto.ParameterType_PARAM_TYPE_SECRET, proto.NewStringValue("a"), true},
		{"int for string", proto.ParameterType_PARAM_TYPE_STRING, proto.NewIntValue(1), false},
		{"int for float", proto.ParameterType_PARAM_TYPE_FLOAT, proto.NewIntValue(1), true},
		{"double for int", proto.ParameterType_PARAM_TYPE_INT, proto.NewDoubleValue(1), false},
		{"bool for bool", proto.ParameterType_PARAM_TYPE_BOOL, proto.NewBoolValue(true), true},
		{"bytes for bytes", proto.ParameterType_PARAM_TYPE_BYTES, proto.NewBytesValue(nil), true},
		{"list for array", proto.ParameterType_PARAM_TYPE_ARRAY, proto.NewListValue(), true},
		{"map for array", proto.ParameterType_PARAM_TYPE_ARRAY, proto.NewMapValue(nil), false},
		{"map for object", proto.ParameterType_PARAM_TYPE_OBJECT, proto.NewMapValue(nil), true},
		{"anything for json", proto.ParameterType_PARAM_TYPE_JSON, proto.NewListValue(), true},
		{"null for json", proto.ParameterType_PARAM_TYPE_JSON, proto.NewNullValue(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AcceptsValue(tt.typ, tt.value))
		})
	}
}

func TestValidateValue(t *testing.T) {
	defs := testDefs()

	err := ValidateValue(defs[0], proto.NewIntValue(3))
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), `parameter "message": expected string, got int`)

	assert.NoError(t, ValidateValue(defs[3], proto.NewStringValue("slow")))

	err = ValidateValue(defs[3], proto.NewStringValue("warp"))
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "value warp is not one of [fast, slow]")
}

func TestValidateSupplied(t *testing.T) {
	defs := testDefs()

	assert.NoError(t, ValidateSupplied(defs, nil))
	assert.NoError(t, ValidateSupplied(defs, map[string]*proto.Value{
		"message": proto.NewNullValue(),
		"extra":   proto.NewBoolValue(true),
	}))

	err := ValidateSupplied(defs, map[string]*proto.Value{
		"delay": proto.NewStringValue("3"),
		"mode":  proto.NewStringValue("warp"),
	})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), `"delay"`)
	assert.Contains(t, err.Error(), `"mode"`)
}

func TestResolveParameters(t *testing.T) {
	defs := testDefs()

	t.Run("defaults fill missing values", func(t *testing.T) {
		got, err := ResolveParameters(defs, map[string]*proto.Value{
			"message": proto.NewStringValue("hi"),
		})
		require.NoError(t, err)
		assert.Equal(t, "hi", got["message"].GetStringValue())
		assert.Equal(t, "[Echo]", got["prefix"].GetStringValue())
		assert.Equal(t, int64(0), got["delay"].GetIntValue())
		assert.NotContains(t, got, "mode")
	})

	t.Run("earlier layers win", func(t *testing.T) {
		call := map[string]*proto.Value{"prefix": proto.NewStringValue(">>")}
		node := map[string]*proto.Value{
			"message": proto.NewStringValue("from node"),
			"prefix":  proto.NewStringValue("node"),
		}
		got, err := ResolveParameters(defs, call, node)
		require.NoError(t, err)
		assert.Equal(t, ">>", got["prefix"].GetStringValue())
		assert.Equal(t, "from node", got["message"].GetStringValue())
	})

	t.Run("null counts as missing", func(t *testing.T) {
		call := map[string]*proto.Value{
			"message": proto.NewStringValue("hi"),
			"prefix":  proto.NewNullValue(),
		}
		got, err := ResolveParameters(defs, call)
		require.NoError(t, err)
		assert.Equal(t, "[Echo]", got["prefix"].GetStringValue())
	})

	t.Run("required without value fails", func(t *testing.T) {
		got, err := ResolveParameters(defs, map[string]*proto.Value{"message": proto.NewNullValue()})
		require.ErrorIs(t, err, ErrValidation)
		assert.Contains(t, err.Error(), "required parameter is missing")
		assert.Nil(t, got)
	})

	t.Run("type mismatch fails", func(t *testing.T) {
		_, err := ResolveParameters(defs, map[string]*proto.Value{
			"message": proto.NewStringValue("hi"),
			"delay":   proto.NewDoubleValue(0.5),
		})
		require.ErrorIs(t, err, ErrValidation)
		assert.Contains(t, err.Error(), "expected int, got double")
	})

	t.Run("undeclared parameters pass through", func(t *testing.T) {
		got, err := ResolveParameters(defs, map[string]*proto.Value{
			"message": proto.NewStringValue("hi"),
			"trace":   proto.NewBoolValue(true),
		})
		require.NoError(t, err)
		assert.True(t, got["trace"].GetBoolValue())
	})
}
