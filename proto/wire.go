package proto

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"

	"google.golang.org/protobuf/encoding/protowire"
)

// MaxDepth bounds message nesting on both encode and decode.
const MaxDepth = 10000

var (
	ErrUnknownEnum   = errors.New("unknown enum value")
	ErrWireType      = errors.New("unexpected wire type")
	ErrDepthExceeded = errors.New("maximum nesting depth exceeded")
)

// Message is implemented by every message type of this package.
type Message interface {
	appendWire(b []byte, depth int) ([]byte, error)
	consumeWire(b []byte, depth int) error
}

// Marshal returns the protobuf wire encoding of m. Map entries are written in
// key order so equal messages produce equal bytes.
func Marshal(m Message) ([]byte, error) {
	b, err := m.appendWire(nil, 0)
	if err != nil {
		return nil, fmt.Errorf("proto: marshal %T: %w", m, err)
	}
	return b, nil
}

// Unmarshal parses b into m, replacing its contents. Unknown fields are
// skipped; unknown enum numbers are rejected.
func Unmarshal(b []byte, m Message) error {
	if err := m.consumeWire(b, 0); err != nil {
		return fmt.Errorf("proto: unmarshal %T: %w", m, err)
	}
	return nil
}

// encoder accumulates fields and the first error.
type encoder struct {
	b     []byte
	depth int
	err   error
}

func (e *encoder) string(num protowire.Number, v string) {
	if v == "" {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendString(e.b, v)
}

func (e *encoder) strings(num protowire.Number, vs []string) {
	for _, v := range vs {
		e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
		e.b = protowire.AppendString(e.b, v)
	}
}

func (e *encoder) bool(num protowire.Number, v bool) {
	if !v {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, 1)
}

func (e *encoder) int64(num protowire.Number, v int64) {
	if v == 0 {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, uint64(v))
}

// int32 values and enums are sign extended, as protoc does.
func (e *encoder) int32(num protowire.Number, v int32) {
	e.int64(num, int64(v))
}

func (e *encoder) double(num protowire.Number, v float64) {
	bits := math.Float64bits(v)
	if bits == 0 {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.Fixed64Type)
	e.b = protowire.AppendFixed64(e.b, bits)
}

func (e *encoder) message(num protowire.Number, m Message) {
	if e.err != nil {
		return
	}
	if e.depth+1 > MaxDepth {
		e.err = ErrDepthExceeded
		return
	}
	inner, err := m.appendWire(nil, e.depth+1)
	if err != nil {
		e.err = err
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendBytes(e.b, inner)
}

func (e *encoder) stringMap(num protowire.Number, m map[string]string) {
	for _, k := range slices.Sorted(maps.Keys(m)) {
		entry := encoder{}
		entry.string(1, k)
		entry.string(2, m[k])
		e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
		e.b = protowire.AppendBytes(e.b, entry.b)
	}
}

func (e *encoder) valueMap(num protowire.Number, m map[string]*Value) {
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if e.err != nil {
			return
		}
		v := m[k]
		if v == nil {
			v = &Value{}
		}
		entry := encoder{depth: e.depth + 1}
		entry.string(1, k)
		entry.message(2, v)
		if entry.err != nil {
			e.err = entry.err
			return
		}
		e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
		e.b = protowire.AppendBytes(e.b, entry.b)
	}
}

// fieldFunc decodes one field from the front of b and reports how many bytes
// it consumed. Returning 0 skips the field as unknown.
type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

func walkFields(b []byte, fn fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		n, err := fn(num, typ, b)
		if err != nil {
			return fmt.Errorf("field %d: %w", num, err)
		}
		if n == 0 {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
		}
		b = b[n:]
	}
	return nil
}

func expectType(got, want protowire.Type) error {
	if got != want {
		return fmt.Errorf("%w %d, want %d", ErrWireType, got, want)
	}
	return nil
}

func consumeString(typ protowire.Type, b []byte, dst *string) (int, error) {
	if err := expectType(typ, protowire.BytesType); err != nil {
		return 0, err
	}
	v, n := protowire.ConsumeString(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*dst = v
	return n, nil
}

func consumeStrings(typ protowire.Type, b []byte, dst *[]string) (int, error) {
	var s string
	n, err := consumeString(typ, b, &s)
	if err != nil {
		return 0, err
	}
	*dst = append(*dst, s)
	return n, nil
}

// consumeBytes copies, the input buffer may be reused by the transport.
func consumeBytes(typ protowire.Type, b []byte, dst *[]byte) (int, error) {
	if err := expectType(typ, protowire.BytesType); err != nil {
		return 0, err
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*dst = append([]byte{}, v...)
	return n, nil
}

func consumeVarint(typ protowire.Type, b []byte) (uint64, int, error) {
	if err := expectType(typ, protowire.VarintType); err != nil {
		return 0, 0, err
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func consumeBool(typ protowire.Type, b []byte, dst *bool) (int, error) {
	v, n, err := consumeVarint(typ, b)
	if err != nil {
		return 0, err
	}
	*dst = protowire.DecodeBool(v)
	return n, nil
}

func consumeInt64(typ protowire.Type, b []byte, dst *int64) (int, error) {
	v, n, err := consumeVarint(typ, b)
	if err != nil {
		return 0, err
	}
	*dst = int64(v)
	return n, nil
}

func consumeInt32(typ protowire.Type, b []byte, dst *int32) (int, error) {
	v, n, err := consumeVarint(typ, b)
	if err != nil {
		return 0, err
	}
	*dst = int32(v)
	return n, nil
}

func consumeDouble(typ protowire.Type, b []byte, dst *float64) (int, error) {
	if err := expectType(typ, protowire.Fixed64Type); err != nil {
		return 0, err
	}
	v, n := protowire.ConsumeFixed64(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*dst = math.Float64frombits(v)
	return n, nil
}

type enum interface {
	~int32
	IsValid() bool
}

func consumeEnum[E enum](typ protowire.Type, b []byte, dst *E) (int, error) {
	v, n, err := consumeVarint(typ, b)
	if err != nil {
		return 0, err
	}
	e := E(int32(v))
	if !e.IsValid() {
		return 0, fmt.Errorf("%w %d for %T", ErrUnknownEnum, int32(v), e)
	}
	*dst = e
	return n, nil
}

func consumeMessage[T any, P interface {
	*T
	Message
}](typ protowire.Type, b []byte, depth int, dst **T) (int, error) {
	if err := expectType(typ, protowire.BytesType); err != nil {
		return 0, err
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	if depth+1 > MaxDepth {
		return 0, ErrDepthExceeded
	}
	m := P(new(T))
	if err := m.consumeWire(v, depth+1); err != nil {
		return 0, err
	}
	*dst = (*T)(m)
	return n, nil
}

func consumeMessages[T any, P interface {
	*T
	Message
}](typ protowire.Type, b []byte, depth int, dst *[]*T) (int, error) {
	var m *T
	n, err := consumeMessage[T, P](typ, b, depth, &m)
	if err != nil {
		return 0, err
	}
	*dst = append(*dst, m)
	return n, nil
}

func consumeStringMapEntry(typ protowire.Type, b []byte, dst *map[string]string) (int, error) {
	if err := expectType(typ, protowire.BytesType); err != nil {
		return 0, err
	}
	entry, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	var key, val string
	err := walkFields(entry, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &key)
		case 2:
			return consumeString(typ, b, &val)
		}
		return 0, nil
	})
	if err != nil {
		return 0, err
	}
	if *dst == nil {
		*dst = make(map[string]string)
	}
	(*dst)[key] = val
	return n, nil
}

func consumeValueMapEntry(typ protowire.Type, b []byte, depth int, dst *map[string]*Value) (int, error) {
	if err := expectType(typ, protowire.BytesType); err != nil {
		return 0, err
	}
	entry, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	if depth+1 > MaxDepth {
		return 0, ErrDepthExceeded
	}
	var key string
	var val *Value
	err := walkFields(entry, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &key)
		case 2:
			return consumeMessage(typ, b, depth+1, &val)
		}
		return 0, nil
	})
	if err != nil {
		return 0, err
	}
	if val == nil {
		val = &Value{}
	}
	if *dst == nil {
		*dst = make(map[string]*Value)
	}
	(*dst)[key] = val
	return n, nil
}
