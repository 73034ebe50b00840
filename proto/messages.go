// Package proto holds the Go types of the node_plugin protocol described in
// node_plugin.proto, together with their binary encoding and the gRPC service
// bindings. The types are written by hand in the shape protoc-gen-go would
// produce; their encoding is the standard protobuf wire format.
package proto

type ParameterOption struct {
	Label string
	Value *Value
}

func (x *ParameterOption) GetLabel() string {
	if x != nil {
		return x.Label
	}
	return ""
}

func (x *ParameterOption) GetValue() *Value {
	if x != nil {
		return x.Value
	}
	return nil
}

type ParameterDef struct {
	Name         string
	DisplayName  string
	Type         ParameterType
	Description  string
	Required     bool
	DefaultValue *Value
	UiType       UIType
	Options      []*ParameterOption
}

func (x *ParameterDef) GetDefaultValue() *Value {
	if x != nil {
		return x.DefaultValue
	}
	return nil
}

type Capabilities struct {
	SupportsStreaming  bool
	SupportsCancel     bool
	SupportsRetry      bool
	SupportsBatch      bool
	RequiresCredential bool
	MaxConcurrent      int32
	DefaultTimeoutMs   int64
}

type GetMetadataRequest struct {
	ProtocolVersion string
}

type GetMetadataResponse struct {
	Name             string
	DisplayName      string
	Description      string
	Version          string
	Icon             string
	Category         NodeCategory
	NodeType         NodeType
	InputParameters  []*ParameterDef
	OutputParameters []*ParameterDef
	Capabilities     *Capabilities
	CredentialType   string
}

func (x *GetMetadataResponse) GetCapabilities() *Capabilities {
	if x != nil {
		return x.Capabilities
	}
	return nil
}

type RequestContext struct {
	WorkflowId  string
	ExecutionId string
	NodeId      string
	TraceId     string
	SpanId      string
	RetryCount  int32
	TimeoutMs   int64
	Metadata    map[string]string
}

type NodeConfig struct {
	Id         string
	Name       string
	Kind       string
	Parameters map[string]*Value
	Labels     map[string]string
}

func (x *NodeConfig) GetName() string {
	if x != nil {
		return x.Name
	}
	return ""
}

func (x *NodeConfig) GetParameters() map[string]*Value {
	if x != nil {
		return x.Parameters
	}
	return nil
}

type WorkflowConfig struct {
	Id         string
	Name       string
	Version    string
	GlobalVars map[string]*Value
	Env        map[string]string
}

type Credential struct {
	Type        string
	Fields      map[string]string
	ExpiresAtMs int64
}

type InitRequest struct {
	Context        *RequestContext
	NodeConfig     *NodeConfig
	WorkflowConfig *WorkflowConfig
	ServerEndpoint string
	Credential     *Credential
	Parameters     map[string]*Value
}

func (x *InitRequest) GetContext() *RequestContext {
	if x != nil {
		return x.Context
	}
	return nil
}

func (x *InitRequest) GetNodeConfig() *NodeConfig {
	if x != nil {
		return x.NodeConfig
	}
	return nil
}

type InitResponse struct {
	Success      bool
	ErrorMessage string
	ErrorCode    string
}

type RunRequest struct {
	Context      *RequestContext
	Parameters   map[string]*Value
	ParentOutput map[string]*Value
	GlobalVars   map[string]*Value
	LocalVars    map[string]*Value
	RunId        string
	Credential   *Credential
}

func (x *RunRequest) GetContext() *RequestContext {
	if x != nil {
		return x.Context
	}
	return nil
}

type LogPayload struct {
	Level   LogLevel
	Message string
}

type ProgressPayload struct {
	Current    int32
	Total      int32
	Percentage float64
	Message    string
}

type ResultPayload struct {
	Output       map[string]*Value
	BranchIndex  int32
	Status       ExecutionStatus
	DurationMs   int64
	ErrorMessage string
	ErrorCode    string
}

// RunResponse is one frame of a Run stream.
type RunResponse struct {
	Type        ResponseType
	TimestampMs int64
	RunId       string
	// Types that are assignable to Payload:
	//
	//	*RunResponse_Log
	//	*RunResponse_Progress
	//	*RunResponse_Result
	Payload isRunResponse_Payload
}

type isRunResponse_Payload interface {
	isRunResponse_Payload()
}

type RunResponse_Log struct {
	Log *LogPayload
}

type RunResponse_Progress struct {
	Progress *ProgressPayload
}

type RunResponse_Result struct {
	Result *ResultPayload
}

func (*RunResponse_Log) isRunResponse_Payload()      {}
func (*RunResponse_Progress) isRunResponse_Payload() {}
func (*RunResponse_Result) isRunResponse_Payload()   {}

func (x *RunResponse) GetLog() *LogPayload {
	if p, ok := x.GetPayload().(*RunResponse_Log); ok {
		return p.Log
	}
	return nil
}

func (x *RunResponse) GetProgress() *ProgressPayload {
	if p, ok := x.GetPayload().(*RunResponse_Progress); ok {
		return p.Progress
	}
	return nil
}

func (x *RunResponse) GetResult() *ResultPayload {
	if p, ok := x.GetPayload().(*RunResponse_Result); ok {
		return p.Result
	}
	return nil
}

func (x *RunResponse) GetPayload() isRunResponse_Payload {
	if x != nil {
		return x.Payload
	}
	return nil
}

type StopRequest struct {
	Context *RequestContext
	Reason  string
	RunId   string
}

type StopResponse struct {
	Success bool
	Status  StopStatus
	Message string
	RunId   string
}

type TestCredentialRequest struct {
	Credential *Credential
	Context    *RequestContext
}

type TestCredentialResponse struct {
	Success      bool
	ErrorMessage string
	Info         map[string]string
}

type HealthCheckRequest struct{}

type HealthCheckResponse struct {
	Status            HealthStatus
	Message           string
	PluginVersion     string
	ProtocolVersion   string
	SupportedFeatures []string
	ActiveRuns        int32
}
