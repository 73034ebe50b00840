package proto

import (
	"fmt"

	"google.golang.org/grpc/encoding"
	protov2 "google.golang.org/protobuf/proto"
)

// CodecName is the content subtype the codec is registered under. It
// replaces grpc's default codec so that messages of this package and
// generated messages (such as grpc health) travel over the same connection.
const CodecName = "proto"

func init() {
	encoding.RegisterCodec(Codec{})
}

// Codec is a grpc codec for the messages of this package. Any other
// protobuf message is handed to the protobuf runtime.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	switch m := v.(type) {
	case Message:
		return Marshal(m)
	case protov2.Message:
		return protov2.Marshal(m)
	}
	return nil, fmt.Errorf("proto: cannot marshal %T", v)
}

func (Codec) Unmarshal(data []byte, v any) error {
	switch m := v.(type) {
	case Message:
		return Unmarshal(data, m)
	case protov2.Message:
		return protov2.Unmarshal(data, m)
	}
	return fmt.Errorf("proto: cannot unmarshal into %T", v)
}

func (Codec) Name() string { return CodecName }
