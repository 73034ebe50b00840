package plugin

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/example/nodeplugin/proto"
)

// GoToValue converts a native Go value into a Value.
//
// Accepted: nil, string, bool, every integer and float kind, []byte, slices
// and arrays, maps with string keys, pointers to any of these, and *proto.Value
// itself. Anything else yields an *UnsupportedTypeError; GoToValue never falls
// back to a string rendering. Unsigned integers above math.MaxInt64 are
// rejected rather than wrapped.
func GoToValue(v any) (*proto.Value, error) {
	return goToValue(v, "$", 0)
}

func goToValue(v any, path string, depth int) (*proto.Value, error) {
	if depth > proto.MaxDepth {
		return nil, fmt.Errorf("%s: %w", path, proto.ErrDepthExceeded)
	}

	switch x := v.(type) {
	case nil:
		return proto.NewNullValue(), nil
	case *proto.Value:
		if x == nil {
			return proto.NewNullValue(), nil
		}
		return x, nil
	case string:
		return proto.NewStringValue(x), nil
	case bool:
		return proto.NewBoolValue(x), nil
	case int:
		return proto.NewIntValue(int64(x)), nil
	case int8:
		return proto.NewIntValue(int64(x)), nil
	case int16:
		return proto.NewIntValue(int64(x)), nil
	case int32:
		return proto.NewIntValue(int64(x)), nil
	case int64:
		return proto.NewIntValue(x), nil
	case float32:
		return proto.NewDoubleValue(float64(x)), nil
	case float64:
		return proto.NewDoubleValue(x), nil
	case []byte:
		return proto.NewBytesValue(x), nil
	case []any:
		list := make([]*proto.Value, 0, len(x))
		for i, item := range x {
			pv, err := goToValue(item, path+"["+strconv.Itoa(i)+"]", depth+1)
			if err != nil {
				return nil, err
			}
			list = append(list, pv)
		}
		return proto.NewListValue(list...), nil
	case map[string]any:
		fields := make(map[string]*proto.Value, len(x))
		for k, item := range x {
			pv, err := goToValue(item, path+"."+k, depth+1)
			if err != nil {
				return nil, err
			}
			fields[k] = pv
		}
		return proto.NewMapValue(fields), nil
	}

	return reflectToValue(reflect.ValueOf(v), path, depth)
}

// reflectToValue handles typed slices, maps, named types and pointers.
func reflectToValue(rv reflect.Value, path string, depth int) (*proto.Value, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return proto.NewNullValue(), nil
		}
		return goToValue(rv.Elem().Interface(), path, depth+1)
	case reflect.String:
		return proto.NewStringValue(rv.String()), nil
	case reflect.Bool:
		return proto.NewBoolValue(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return proto.NewIntValue(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("%s: unsigned value %d overflows int64", path, u)
		}
		return proto.NewIntValue(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return proto.NewDoubleValue(rv.Float()), nil
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			if rv.Kind() == reflect.Slice && rv.IsNil() {
				return proto.NewBytesValue(nil), nil
			}
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return proto.NewBytesValue(b), nil
		}
		list := make([]*proto.Value, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			pv, err := goToValue(rv.Index(i).Interface(), path+"["+strconv.Itoa(i)+"]", depth+1)
			if err != nil {
				return nil, err
			}
			list = append(list, pv)
		}
		return proto.NewListValue(list...), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		fields := make(map[string]*proto.Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			pv, err := goToValue(iter.Value().Interface(), path+"."+k, depth+1)
			if err != nil {
				return nil, err
			}
			fields[k] = pv
		}
		return proto.NewMapValue(fields), nil
	}

	var t reflect.Type
	if rv.IsValid() {
		t = rv.Type()
	}
	return nil, &UnsupportedTypeError{Type: t, Path: path}
}

// ValueToGo converts a Value into its native form: nil, string, int64,
// float64, bool, []byte, []any or map[string]any.
func ValueToGo(v *proto.Value) any {
	switch k := v.GetKind().(type) {
	case *proto.Value_StringValue:
		return k.StringValue
	case *proto.Value_IntValue:
		return k.IntValue
	case *proto.Value_DoubleValue:
		return k.DoubleValue
	case *proto.Value_BoolValue:
		return k.BoolValue
	case *proto.Value_BytesValue:
		return k.BytesValue
	case *proto.Value_ListValue:
		values := k.ListValue.GetValues()
		out := make([]any, len(values))
		for i, item := range values {
			out[i] = ValueToGo(item)
		}
		return out
	case *proto.Value_MapValue:
		return ValuesToMap(k.MapValue.GetFields())
	}
	return nil
}

// ValuesToMap converts a Value map into a native map.
func ValuesToMap(values map[string]*proto.Value) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = ValueToGo(v)
	}
	return out
}

// MapToValues converts a native map into a Value map.
func MapToValues(m map[string]any) (map[string]*proto.Value, error) {
	out := make(map[string]*proto.Value, len(m))
	for k, v := range m {
		pv, err := goToValue(v, "$."+k, 0)
		if err != nil {
			return nil, err
		}
		out[k] = pv
	}
	return out, nil
}

// StringifyValue converts v like GoToValue, but renders anything without a
// Value case through fmt as a string.
//
// This destroys information: the result cannot be converted back to the
// original type. Use it only where a display string is acceptable.
func StringifyValue(v any) *proto.Value {
	pv, err := GoToValue(v)
	if err != nil {
		return proto.NewStringValue(fmt.Sprintf("%v", v))
	}
	return pv
}

// Equal reports whether two values are equal. nil, an unset kind and the null
// case are all equal; doubles compare by bit pattern so NaN equals itself.
func Equal(a, b *proto.Value) bool {
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}

	switch x := a.Kind.(type) {
	case *proto.Value_StringValue:
		y, ok := b.Kind.(*proto.Value_StringValue)
		return ok && x.StringValue == y.StringValue
	case *proto.Value_IntValue:
		y, ok := b.Kind.(*proto.Value_IntValue)
		return ok && x.IntValue == y.IntValue
	case *proto.Value_DoubleValue:
		y, ok := b.Kind.(*proto.Value_DoubleValue)
		return ok && math.Float64bits(x.DoubleValue) == math.Float64bits(y.DoubleValue)
	case *proto.Value_BoolValue:
		y, ok := b.Kind.(*proto.Value_BoolValue)
		return ok && x.BoolValue == y.BoolValue
	case *proto.Value_BytesValue:
		y, ok := b.Kind.(*proto.Value_BytesValue)
		return ok && bytes.Equal(x.BytesValue, y.BytesValue)
	case *proto.Value_ListValue:
		y, ok := b.Kind.(*proto.Value_ListValue)
		if !ok {
			return false
		}
		xs, ys := x.ListValue.GetValues(), y.ListValue.GetValues()
		if len(xs) != len(ys) {
			return false
		}
		for i := range xs {
			if !Equal(xs[i], ys[i]) {
				return false
			}
		}
		return true
	case *proto.Value_MapValue:
		y, ok := b.Kind.(*proto.Value_MapValue)
		return ok && EqualMaps(x.MapValue.GetFields(), y.MapValue.GetFields())
	}
	return false
}

// EqualMaps compares two Value maps key by key.
func EqualMaps(a, b map[string]*proto.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !Equal(av, bv) {
			return false
		}
	}
	return true
}

// KindName names the case held by v, for messages.
func KindName(v *proto.Value) string {
	switch v.GetKind().(type) {
	case *proto.Value_StringValue:
		return "string"
	case *proto.Value_IntValue:
		return "int"
	case *proto.Value_DoubleValue:
		return "double"
	case *proto.Value_BoolValue:
		return "bool"
	case *proto.Value_BytesValue:
		return "bytes"
	case *proto.Value_ListValue:
		return "list"
	case *proto.Value_MapValue:
		return "map"
	}
	return "null"
}
