package proto

// Value is a dynamically typed value. A Value with no Kind set is null.
type Value struct {
	// Types that are assignable to Kind:
	//
	//	*Value_NullValue
	//	*Value_StringValue
	//	*Value_IntValue
	//	*Value_DoubleValue
	//	*Value_BoolValue
	//	*Value_BytesValue
	//	*Value_ListValue
	//	*Value_MapValue
	Kind isValue_Kind
}

type isValue_Kind interface {
	isValue_Kind()
}

type Value_NullValue struct {
	NullValue NullValue
}

type Value_StringValue struct {
	StringValue string
}

type Value_IntValue struct {
	IntValue int64
}

type Value_DoubleValue struct {
	DoubleValue float64
}

type Value_BoolValue struct {
	BoolValue bool
}

type Value_BytesValue struct {
	BytesValue []byte
}

type Value_ListValue struct {
	ListValue *ListValue
}

type Value_MapValue struct {
	MapValue *MapValue
}

func (*Value_NullValue) isValue_Kind()   {}
func (*Value_StringValue) isValue_Kind() {}
func (*Value_IntValue) isValue_Kind()    {}
func (*Value_DoubleValue) isValue_Kind() {}
func (*Value_BoolValue) isValue_Kind()   {}
func (*Value_BytesValue) isValue_Kind()  {}
func (*Value_ListValue) isValue_Kind()   {}
func (*Value_MapValue) isValue_Kind()    {}

// IsNull reports whether v is nil, has no kind, or holds the null case.
func (x *Value) IsNull() bool {
	if x == nil || x.Kind == nil {
		return true
	}
	_, ok := x.Kind.(*Value_NullValue)
	return ok
}

func (x *Value) GetStringValue() string {
	if k, ok := x.GetKind().(*Value_StringValue); ok {
		return k.StringValue
	}
	return ""
}

func (x *Value) GetIntValue() int64 {
	if k, ok := x.GetKind().(*Value_IntValue); ok {
		return k.IntValue
	}
	return 0
}

func (x *Value) GetDoubleValue() float64 {
	if k, ok := x.GetKind().(*Value_DoubleValue); ok {
		return k.DoubleValue
	}
	return 0
}

func (x *Value) GetBoolValue() bool {
	if k, ok := x.GetKind().(*Value_BoolValue); ok {
		return k.BoolValue
	}
	return false
}

func (x *Value) GetBytesValue() []byte {
	if k, ok := x.GetKind().(*Value_BytesValue); ok {
		return k.BytesValue
	}
	return nil
}

func (x *Value) GetListValue() *ListValue {
	if k, ok := x.GetKind().(*Value_ListValue); ok {
		return k.ListValue
	}
	return nil
}

func (x *Value) GetMapValue() *MapValue {
	if k, ok := x.GetKind().(*Value_MapValue); ok {
		return k.MapValue
	}
	return nil
}

func (x *Value) GetKind() isValue_Kind {
	if x != nil {
		return x.Kind
	}
	return nil
}

type ListValue struct {
	Values []*Value
}

func (x *ListValue) GetValues() []*Value {
	if x != nil {
		return x.Values
	}
	return nil
}

type MapValue struct {
	Fields map[string]*Value
}

func (x *MapValue) GetFields() map[string]*Value {
	if x != nil {
		return x.Fields
	}
	return nil
}

// Constructors for the common cases.

func NewNullValue() *Value { return &Value{Kind: &Value_NullValue{}} }

func NewStringValue(s string) *Value { return &Value{Kind: &Value_StringValue{StringValue: s}} }

func NewIntValue(i int64) *Value { return &Value{Kind: &Value_IntValue{IntValue: i}} }

func NewDoubleValue(f float64) *Value { return &Value{Kind: &Value_DoubleValue{DoubleValue: f}} }

func NewBoolValue(b bool) *Value { return &Value{Kind: &Value_BoolValue{BoolValue: b}} }

func NewBytesValue(b []byte) *Value { return &Value{Kind: &Value_BytesValue{BytesValue: b}} }

func NewListValue(values ...*Value) *Value {
	return &Value{Kind: &Value_ListValue{ListValue: &ListValue{Values: values}}}
}

func NewMapValue(fields map[string]*Value) *Value {
	return &Value{Kind: &Value_MapValue{MapValue: &MapValue{Fields: fields}}}
}
