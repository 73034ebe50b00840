package proto

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Oneof members are written even when they hold the zero value, so that an
// int 0 stays distinct from null after a round trip.
func (x *Value) appendWire(b []byte, depth int) ([]byte, error) {
	e := encoder{b: b, depth: depth}
	switch k := x.Kind.(type) {
	case *Value_NullValue:
		e.b = protowire.AppendTag(e.b, 1, protowire.VarintType)
		e.b = protowire.AppendVarint(e.b, uint64(k.NullValue))
	case *Value_StringValue:
		e.b = protowire.AppendTag(e.b, 2, protowire.BytesType)
		e.b = protowire.AppendString(e.b, k.StringValue)
	case *Value_IntValue:
		e.b = protowire.AppendTag(e.b, 3, protowire.VarintType)
		e.b = protowire.AppendVarint(e.b, uint64(k.IntValue))
	case *Value_DoubleValue:
		e.b = protowire.AppendTag(e.b, 4, protowire.Fixed64Type)
		e.b = protowire.AppendFixed64(e.b, math.Float64bits(k.DoubleValue))
	case *Value_BoolValue:
		e.b = protowire.AppendTag(e.b, 5, protowire.VarintType)
		e.b = protowire.AppendVarint(e.b, protowire.EncodeBool(k.BoolValue))
	case *Value_BytesValue:
		e.b = protowire.AppendTag(e.b, 6, protowire.BytesType)
		e.b = protowire.AppendBytes(e.b, k.BytesValue)
	case *Value_ListValue:
		lv := k.ListValue
		if lv == nil {
			lv = &ListValue{}
		}
		e.message(7, lv)
	case *Value_MapValue:
		mv := k.MapValue
		if mv == nil {
			mv = &MapValue{}
		}
		e.message(8, mv)
	}
	return e.b, e.err
}

func (x *Value) consumeWire(b []byte, depth int) error {
	x.Kind = nil
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			var v NullValue
			n, err := consumeEnum(typ, b, &v)
			if err == nil {
				x.Kind = &Value_NullValue{NullValue: v}
			}
			return n, err
		case 2:
			var v string
			n, err := consumeString(typ, b, &v)
			if err == nil {
				x.Kind = &Value_StringValue{StringValue: v}
			}
			return n, err
		case 3:
			var v int64
			n, err := consumeInt64(typ, b, &v)
			if err == nil {
				x.Kind = &Value_IntValue{IntValue: v}
			}
			return n, err
		case 4:
			var v float64
			n, err := consumeDouble(typ, b, &v)
			if err == nil {
				x.Kind = &Value_DoubleValue{DoubleValue: v}
			}
			return n, err
		case 5:
			var v bool
			n, err := consumeBool(typ, b, &v)
			if err == nil {
				x.Kind = &Value_BoolValue{BoolValue: v}
			}
			return n, err
		case 6:
			var v []byte
			n, err := consumeBytes(typ, b, &v)
			if err == nil {
				x.Kind = &Value_BytesValue{BytesValue: v}
			}
			return n, err
		case 7:
			var v *ListValue
			n, err := consumeMessage(typ, b, depth, &v)
			if err == nil {
				x.Kind = &Value_ListValue{ListValue: v}
			}
			return n, err
		case 8:
			var v *MapValue
			n, err := consumeMessage(typ, b, depth, &v)
			if err == nil {
				x.Kind = &Value_MapValue{MapValue: v}
			}
			return n, err
		}
		return 0, nil
	})
}

func (x *ListValue) appendWire(b []byte, depth int) ([]byte, error) {
	e := encoder{b: b, depth: depth}
	for _, v := range x.Values {
		if v == nil {
			v = &Value{}
		}
		e.message(1, v)
	}
	return e.b, e.err
}

func (x *ListValue) consumeWire(b []byte, depth int) error {
	*x = ListValue{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeMessages(typ, b, depth, &x.Values)
		}
		return 0, nil
	})
}

func (x *MapValue) appendWire(b []byte, depth int) ([]byte, error) {
	e := encoder{b: b, depth: depth}
	e.valueMap(1, x.Fields)
	return e.b, e.err
}

func (x *MapValue) consumeWire(b []byte, depth int) error {
	*x = MapValue{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeValueMapEntry(typ, b, depth, &x.Fields)
		}
		return 0, nil
	})
}

func (x *ParameterOption) appendWire(b []byte, depth int) ([]byte, error) {
	e := encoder{b: b, depth: depth}
	e.string(1, x.Label)
	if x.Value != nil {
		e.message(2, x.Value)
	}
	return e.b, e.err
}

func (x *ParameterOption) consumeWire(b []byte, depth int) error {
	*x = ParameterOption{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &x.Label)
		case 2:
			return consumeMessage(typ, b, depth, &x.Value)
		}
		return 0, nil
	})
}

func (x *ParameterDef) appendWire(b []byte, depth int) ([]byte, error) {
	e := encoder{b: b, depth: depth}
	e.string(1, x.Name)
	e.string(2, x.DisplayName)
	e.int32(3, int32(x.Type))
	e.string(4, x.Description)
	e.bool(5, x.Required)
	if x.DefaultValue != nil {
		e.message(6, x.DefaultValue)
	}
	e.int32(7, int32(x.UiType))
	for _, o := range x.Options {
		if o != nil {
			e.message(8, o)
		}
	}
	return e.b, e.err
}

func (x *ParameterDef) consumeWire(b []byte, depth int) error {
	*x = ParameterDef{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &x.Name)
		case 2:
			return consumeString(typ, b, &x.DisplayName)
		case 3:
			return consumeEnum(typ, b, &x.Type)
		case 4:
			return consumeString(typ, b, &x.Description)
		case 5:
			return consumeBool(typ, b, &x.Required)
		case 6:
			return consumeMessage(typ, b, depth, &x.DefaultValue)
		case 7:
			return consumeEnum(typ, b, &x.UiType)
		case 8:
			return consumeMessages(typ, b, depth, &x.Options)
		}
		return 0, nil
	})
}

func (x *Capabilities) appendWire(b []byte, depth int) ([]byte, error) {
	e := encoder{b: b, depth: depth}
	e.bool(1, x.SupportsStreaming)
	e.bool(2, x.SupportsCancel)
	e.bool(3, x.SupportsRetry)
	e.bool(4, x.SupportsBatch)
	e.bool(5, x.RequiresCredential)
	e.int32(6, x.MaxConcurrent)
	e.int64(7, x.DefaultTimeoutMs)
	return e.b, e.err
}

func (x *Capabilities) consumeWire(b []byte, depth int) error {
	*x = Capabilities{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeBool(typ, b, &x.SupportsStreaming)
		case 2:
			return consumeBool(typ, b, &x.SupportsCancel)
		case 3:
			return consumeBool(typ, b, &x.SupportsRetry)
		case 4:
			return consumeBool(typ, b, &x.SupportsBatch)
		case 5:
			return consumeBool(typ, b, &x.RequiresCredential)
		case 6:
			return consumeInt32(typ, b, &x.MaxConcurrent)
		case 7:
			return consumeInt64(typ, b, &x.DefaultTimeoutMs)
		}
		return 0, nil
	})
}

func (x *GetMetadataRequest) appendWire(b []byte, depth int) ([]byte, error) {
	e := encoder{b: b, depth: depth}
	e.string(1, x.ProtocolVersion)
	return e.b, e.err
}

func (x *GetMetadataRequest) consumeWire(b []byte, depth int) error {
	*x = GetMetadataRequest{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeString(typ, b, &x.ProtocolVersion)
		}
		return 0, nil
	})
}

func (x *GetMetadataResponse) appendWire(b []byte, depth int) ([]byte, error) {
	e := encoder{b: b, depth: depth}
	e.string(1, x.Name)
	e.string(2, x.DisplayName)
	e.string(3, x.Description)
	e.string(4, x.Version)
	e.string(5, x.Icon)
	e.int32(6, int32(x.Category))
	e.int32(7, int32(x.NodeType))
	for _, p := range x.InputParameters {
		if p != nil {
			e.message(8, p)
		}
	}
	for _, p := range x.OutputParameters {
		if p != nil {
			e.message(9, p)
		}
	}
	if x.Capabilities != nil {
		e.message(10, x.Capabilities)
	}
	e.string(11, x.CredentialType)
	return e.b, e.err
}

func (x *GetMetadataResponse) consumeWire(b []byte, depth int) error {
	*x = GetMetadataResponse{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &x.Name)
		case 2:
			return consumeString(typ, b, &x.DisplayName)
		case 3:
			return consumeString(typ, b, &x.Description)
		case 4:
			return consumeString(typ, b, &x.Version)
		case 5:
			return consumeString(typ, b, &x.Icon)
		case 6:
			return consumeEnum(typ, b, &x.Category)
		case 7:
			return consumeEnum(typ, b, &x.NodeType)
		case 8:
			return consumeMessages(typ, b, depth, &x.InputParameters)
		case 9:
			return consumeMessages(typ, b, depth, &x.OutputParameters)
		case 10:
			return consumeMessage(typ, b, depth, &x.Capabilities)
		case 11:
			return consumeString(typ, b, &x.CredentialType)
		}
		return 0, nil
	})
}

func (x *RequestContext) appendWire(b []byte, depth int) ([]byte, error) {
	e := encoder{b: b, depth: depth}
	e.string(1, x.WorkflowId)
	e.string(2, x.ExecutionId)
	e.string(3, x.NodeId)
	e.string(4, x.TraceId)
	e.string(5, x.SpanId)
	e.int32(6, x.RetryCount)
	e.int64(7, x.TimeoutMs)
	e.stringMap(8, x.Metadata)
	return e.b, e.err
}

func (x *RequestContext) consumeWire(b []byte, depth int) error {
	*x = RequestContext{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &x.WorkflowId)
		case 2:
			return consumeString(typ, b, &x.ExecutionId)
		case 3:
			return consumeString(typ, b, &x.NodeId)
		case 4:
			return consumeString(typ, b, &x.TraceId)
		case 5:
			return consumeString(typ, b, &x.SpanId)
		case 6:
			return consumeInt32(typ, b, &x.RetryCount)
		case 7:
			return consumeInt64(typ, b, &x.TimeoutMs)
		case 8:
			return consumeStringMapEntry(typ, b, &x.Metadata)
		}
		return 0, nil
	})
}

func (x *NodeConfig) appendWire(b []byte, depth int) ([]byte, error) {
	e := encoder{b: b, depth: depth}
	e.string(1, x.Id)
	e.string(2, x.Name)
	e.string(3, x.Kind)
	e.valueMap(4, x.Parameters)
	e.stringMap(5, x.Labels)
	return e.b, e.err
}

func (x *NodeConfig) consumeWire(b []byte, depth int) error {
	*x = NodeConfig{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &x.Id)
		case 2:
			return consumeString(typ, b, &x.Name)
		case 3:
			return consumeString(typ, b, &x.Kind)
		case 4:
			return consumeValueMapEntry(typ, b, depth, &x.Parameters)
		case 5:
			return consumeStringMapEntry(typ, b, &x.Labels)
		}
		return 0, nil
	})
}

func (x *WorkflowConfig) appendWire(b []byte, depth int) ([]byte, error) {
	e := encoder{b: b, depth: depth}
	e.string(1, x.Id)
	e.string(2, x.Name)
	e.string(3, x.Version)
	e.valueMap(4, x.GlobalVars)
	e.stringMap(5, x.Env)
	return e.b, e.err
}

func (x *WorkflowConfig) consumeWire(b []byte, depth int) error {
	*x = WorkflowConfig{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &x.Id)
		case 2:
			return consumeString(typ, b, &x.Name)
		case 3:
			return consumeString(typ, b, &x.Version)
		case 4:
			return consumeValueMapEntry(typ, b, depth, &x.GlobalVars)
		case 5:
			return consumeStringMapEntry(typ, b, &x.Env)
		}
		return 0, nil
	})
}

func (x *Credential) appendWire(b []byte, depth int) ([]byte, error) {
	e := encoder{b: b, depth: depth}
	e.string(1, x.Type)
	e.stringMap(2, x.Fields)
	e.int64(3, x.ExpiresAtMs)
	return e.b, e.err
}

func (x *Credential) consumeWire(b []byte, depth int) error {
	*x = Credential{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &x.Type)
		case 2:
			return consumeStringMapEntry(typ, b, &x.Fields)
		case 3:
			return consumeInt64(typ, b, &x.ExpiresAtMs)
		}
		return 0, nil
	})
}

func (x *InitRequest) appendWire(b []byte, depth int) ([]byte, error) {
	e := encoder{b: b, depth: depth}
	if x.Context != nil {
		e.message(1, x.Context)
	}
	if x.NodeConfig != nil {
		e.message(2, x.NodeConfig)
	}
	if x.WorkflowConfig != nil {
		e.message(3, x.WorkflowConfig)
	}
	e.string(4, x.ServerEndpoint)
	if x.Credential != nil {
		e.message(5, x.Credential)
	}
	e.valueMap(6, x.Parameters)
	return e.b, e.err
}

func (x *InitRequest) consumeWire(b []byte, depth int) error {
	*x = InitRequest{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeMessage(typ, b, depth, &x.Context)
		case 2:
			return consumeMessage(typ, b, depth, &x.NodeConfig)
		case 3:
			return consumeMessage(typ, b, depth, &x.WorkflowConfig)
		case 4:
			return consumeString(typ, b, &x.ServerEndpoint)
		case 5:
			return consumeMessage(typ, b, depth, &x.Credential)
		case 6:
			return consumeValueMapEntry(typ, b, depth, &x.Parameters)
		}
		return 0, nil
	})
}

func (x *InitResponse) appendWire(b []byte, depth int) ([]byte, error) {
	e := encoder{b: b, depth: depth}
	e.bool(1, x.Success)
	e.string(2, x.ErrorMessage)
	e.string(3, x.ErrorCode)
	return e.b, e.err
}

func (x *InitResponse) consumeWire(b []byte, depth int) error {
	*x = InitResponse{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeBool(typ, b, &x.Success)
		case 2:
			return consumeString(typ, b, &x.ErrorMessage)
		case 3:
			return consumeString(typ, b, &x.ErrorCode)
		}
		return 0, nil
	})
}

func (x *RunRequest) appendWire(b []byte, depth int) ([]byte, error) {
	e := encoder{b: b, depth: depth}
	if x.Context != nil {
		e.message(1, x.Context)
	}
	e.valueMap(2, x.Parameters)
	e.valueMap(3, x.ParentOutput)
	e.valueMap(4, x.GlobalVars)
	e.valueMap(5, x.LocalVars)
	e.string(6, x.RunId)
	if x.Credential != nil {
		e.message(7, x.Credential)
	}
	return e.b, e.err
}

func (x *RunRequest) consumeWire(b []byte, depth int) error {
	*x = RunRequest{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeMessage(typ, b, depth, &x.Context)
		case 2:
			return consumeValueMapEntry(typ, b, depth, &x.Parameters)
		case 3:
			return consumeValueMapEntry(typ, b, depth, &x.ParentOutput)
		case 4:
			return consumeValueMapEntry(typ, b, depth, &x.GlobalVars)
		case 5:
			return consumeValueMapEntry(typ, b, depth, &x.LocalVars)
		case 6:
			return consumeString(typ, b, &x.RunId)
		case 7:
			return consumeMessage(typ, b, depth, &x.Credential)
		}
		return 0, nil
	})
}

func (x *LogPayload) appendWire(b []byte, depth int) ([]byte, error) {
	e := encoder{b: b, depth: depth}
	e.int32(1, int32(x.Level))
	e.string(2, x.Message)
	return e.b, e.err
}

func (x *LogPayload) consumeWire(b []byte, depth int) error {
	*x = LogPayload{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeEnum(typ, b, &x.Level)
		case 2:
			return consumeString(typ, b, &x.Message)
		}
		return 0, nil
	})
}

func (x *ProgressPayload) appendWire(b []byte, depth int) ([]byte, error) {
	e := encoder{b: b, depth: depth}
	e.int32(1, x.Current)
	e.int32(2, x.Total)
	e.double(3, x.Percentage)
	e.string(4, x.Message)
	return e.b, e.err
}

func (x *ProgressPayload) consumeWire(b []byte, depth int) error {
	*x = ProgressPayload{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeInt32(typ, b, &x.Current)
		case 2:
			return consumeInt32(typ, b, &x.Total)
		case 3:
			return consumeDouble(typ, b, &x.Percentage)
		case 4:
			return consumeString(typ, b, &x.Message)
		}
		return 0, nil
	})
}

func (x *ResultPayload) appendWire(b []byte, depth int) ([]byte, error) {
	e := encoder{b: b, depth: depth}
	e.valueMap(1, x.Output)
	e.int32(2, x.BranchIndex)
	e.int32(3, int32(x.Status))
	e.int64(4, x.DurationMs)
	e.string(5, x.ErrorMessage)
	e.string(6, x.ErrorCode)
	return e.b, e.err
}

func (x *ResultPayload) consumeWire(b []byte, depth int) error {
	*x = ResultPayload{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeValueMapEntry(typ, b, depth, &x.Output)
		case 2:
			return consumeInt32(typ, b, &x.BranchIndex)
		case 3:
			return consumeEnum(typ, b, &x.Status)
		case 4:
			return consumeInt64(typ, b, &x.DurationMs)
		case 5:
			return consumeString(typ, b, &x.ErrorMessage)
		case 6:
			return consumeString(typ, b, &x.ErrorCode)
		}
		return 0, nil
	})
}

func (x *RunResponse) appendWire(b []byte, depth int) ([]byte, error) {
	e := encoder{b: b, depth: depth}
	e.int32(1, int32(x.Type))
	e.int64(2, x.TimestampMs)
	e.string(3, x.RunId)
	switch p := x.Payload.(type) {
	case *RunResponse_Log:
		if p.Log != nil {
			e.message(4, p.Log)
		} else {
			e.message(4, &LogPayload{})
		}
	case *RunResponse_Progress:
		if p.Progress != nil {
			e.message(5, p.Progress)
		} else {
			e.message(5, &ProgressPayload{})
		}
	case *RunResponse_Result:
		if p.Result != nil {
			e.message(6, p.Result)
		} else {
			e.message(6, &ResultPayload{})
		}
	}
	return e.b, e.err
}

func (x *RunResponse) consumeWire(b []byte, depth int) error {
	*x = RunResponse{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeEnum(typ, b, &x.Type)
		case 2:
			return consumeInt64(typ, b, &x.TimestampMs)
		case 3:
			return consumeString(typ, b, &x.RunId)
		case 4:
			var v *LogPayload
			n, err := consumeMessage(typ, b, depth, &v)
			if err == nil {
				x.Payload = &RunResponse_Log{Log: v}
			}
			return n, err
		case 5:
			var v *ProgressPayload
			n, err := consumeMessage(typ, b, depth, &v)
			if err == nil {
				x.Payload = &RunResponse_Progress{Progress: v}
			}
			return n, err
		case 6:
			var v *ResultPayload
			n, err := consumeMessage(typ, b, depth, &v)
			if err == nil {
				x.Payload = &RunResponse_Result{Result: v}
			}
			return n, err
		}
		return 0, nil
	})
}

func (x *StopRequest) appendWire(b []byte, depth int) ([]byte, error) {
	e := encoder{b: b, depth: depth}
	if x.Context != nil {
		e.message(1, x.Context)
	}
	e.string(2, x.Reason)
	e.string(3, x.RunId)
	return e.b, e.err
}

func (x *StopRequest) consumeWire(b []byte, depth int) error {
	*x = StopRequest{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeMessage(typ, b, depth, &x.Context)
		case 2:
			return consumeString(typ, b, &x.Reason)
		case 3:
			return consumeString(typ, b, &x.RunId)
		}
		return 0, nil
	})
}

func (x *StopResponse) appendWire(b []byte, depth int) ([]byte, error) {
	e := encoder{b: b, depth: depth}
	e.bool(1, x.Success)
	e.int32(2, int32(x.Status))
	e.string(3, x.Message)
	e.string(4, x.RunId)
	return e.b, e.err
}

func (x *StopResponse) consumeWire(b []byte, depth int) error {
	*x = StopResponse{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeBool(typ, b, &x.Success)
		case 2:
			return consumeEnum(typ, b, &x.Status)
		case 3:
			return consumeString(typ, b, &x.Message)
		case 4:
			return consumeString(typ, b, &x.RunId)
		}
		return 0, nil
	})
}

func (x *TestCredentialRequest) appendWire(b []byte, depth int) ([]byte, error) {
	e := encoder{b: b, depth: depth}
	if x.Credential != nil {
		e.message(1, x.Credential)
	}
	if x.Context != nil {
		e.message(2, x.Context)
	}
	return e.b, e.err
}

func (x *TestCredentialRequest) consumeWire(b []byte, depth int) error {
	*x = TestCredentialRequest{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeMessage(typ, b, depth, &x.Credential)
		case 2:
			return consumeMessage(typ, b, depth, &x.Context)
		}
		return 0, nil
	})
}

func (x *TestCredentialResponse) appendWire(b []byte, depth int) ([]byte, error) {
	e := encoder{b: b, depth: depth}
	e.bool(1, x.Success)
	e.string(2, x.ErrorMessage)
	e.stringMap(3, x.Info)
	return e.b, e.err
}

func (x *TestCredentialResponse) consumeWire(b []byte, depth int) error {
	*x = TestCredentialResponse{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeBool(typ, b, &x.Success)
		case 2:
			return consumeString(typ, b, &x.ErrorMessage)
		case 3:
			return consumeStringMapEntry(typ, b, &x.Info)
		}
		return 0, nil
	})
}

func (x *HealthCheckRequest) appendWire(b []byte, depth int) ([]byte, error) {
	return b, nil
}

func (x *HealthCheckRequest) consumeWire(b []byte, depth int) error {
	return walkFields(b, func(protowire.Number, protowire.Type, []byte) (int, error) {
		return 0, nil
	})
}

func (x *HealthCheckResponse) appendWire(b []byte, depth int) ([]byte, error) {
	e := encoder{b: b, depth: depth}
	e.int32(1, int32(x.Status))
	e.string(2, x.Message)
	e.string(3, x.PluginVersion)
	e.string(4, x.ProtocolVersion)
	e.strings(5, x.SupportedFeatures)
	e.int32(6, x.ActiveRuns)
	return e.b, e.err
}

func (x *HealthCheckResponse) consumeWire(b []byte, depth int) error {
	*x = HealthCheckResponse{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeEnum(typ, b, &x.Status)
		case 2:
			return consumeString(typ, b, &x.Message)
		case 3:
			return consumeString(typ, b, &x.PluginVersion)
		case 4:
			return consumeString(typ, b, &x.ProtocolVersion)
		case 5:
			return consumeStrings(typ, b, &x.SupportedFeatures)
		case 6:
			return consumeInt32(typ, b, &x.ActiveRuns)
		}
		return 0, nil
	})
}
