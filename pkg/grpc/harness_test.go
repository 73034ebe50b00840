package grpc

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/example/nodeplugin/pkg/plugin"
	"github.com/example/nodeplugin/proto"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

const bufSize = 1 << 20

func testMetadata() *proto.GetMetadataResponse {
	return &proto.GetMetadataResponse{
		Name:        "echo_plugin",
		DisplayName: "Echo Plugin",
		Version:     "1.0.0",
		Category:    proto.NodeCategory_CATEGORY_ACTION,
		NodeType:    proto.NodeType_NODE_TYPE_PROCESSOR,
		InputParameters: []*proto.ParameterDef{
			{Name: "message", Type: proto.ParameterType_PARAM_TYPE_STRING, Required: true},
			{Name: "prefix", Type: proto.ParameterType_PARAM_TYPE_STRING, DefaultValue: proto.NewStringValue("[Echo]")},
			{Name: "count", Type: proto.ParameterType_PARAM_TYPE_INT, DefaultValue: proto.NewIntValue(0)},
		},
		OutputParameters: []*proto.ParameterDef{
			{Name: "result", Type: proto.ParameterType_PARAM_TYPE_STRING},
		},
		Capabilities: &proto.Capabilities{
			SupportsStreaming: true,
			SupportsCancel:    true,
			SupportsRetry:     true,
			MaxConcurrent:     2,
		},
	}
}

// stubPlugin echoes by default; every hook can be replaced per test.
type stubPlugin struct {
	md       *proto.GetMetadataResponse
	initFn   func(ctx context.Context, ic *plugin.InitContext) error
	runFn    func(ctx context.Context, exec *plugin.ExecutionContext, events plugin.EventSink) (*plugin.Result, error)
	credFn   func(ctx context.Context, cred *proto.Credential) (*plugin.CredentialResult, error)
	healthFn func() (proto.HealthStatus, string)
}

func newStub() *stubPlugin {
	return &stubPlugin{md: testMetadata()}
}

func (p *stubPlugin) Metadata() *proto.GetMetadataResponse {
	return p.md
}

func (p *stubPlugin) Init(ctx context.Context, ic *plugin.InitContext) error {
	if p.initFn != nil {
		return p.initFn(ctx, ic)
	}
	return nil
}

func (p *stubPlugin) Run(ctx context.Context, exec *plugin.ExecutionContext, events plugin.EventSink) (*plugin.Result, error) {
	if p.runFn != nil {
		return p.runFn(ctx, exec, events)
	}
	return echoRun(ctx, exec, events)
}

func echoRun(_ context.Context, exec *plugin.ExecutionContext, events plugin.EventSink) (*plugin.Result, error) {
	message := exec.Param("message").GetStringValue()
	if err := events.Log(proto.LogLevel_LOG_LEVEL_INFO, "echoing "+message); err != nil {
		return nil, err
	}
	count := int32(exec.Param("count").GetIntValue())
	for i := int32(1); i <= count; i++ {
		if err := events.Progress(i, count, "working"); err != nil {
			return nil, err
		}
	}
	return &plugin.Result{Output: map[string]any{
		"result": exec.Param("prefix").GetStringValue() + " " + message,
	}}, nil
}

func (p *stubPlugin) TestCredential(ctx context.Context, cred *proto.Credential) (*plugin.CredentialResult, error) {
	if p.credFn != nil {
		return p.credFn(ctx, cred)
	}
	return plugin.DefaultPlugin{}.TestCredential(ctx, cred)
}

func (p *stubPlugin) Health(context.Context) (proto.HealthStatus, string) {
	if p.healthFn != nil {
		return p.healthFn()
	}
	return proto.HealthStatus_HEALTH_STATUS_UNSPECIFIED, ""
}

// blockingRun returns a run hook that signals started and then waits for
// release or cancellation.
func blockingRun(started chan<- string, release <-chan struct{}) func(context.Context, *plugin.ExecutionContext, plugin.EventSink) (*plugin.Result, error) {
	return func(ctx context.Context, exec *plugin.ExecutionContext, _ plugin.EventSink) (*plugin.Result, error) {
		started <- exec.RunID
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-release:
			return &plugin.Result{Output: map[string]any{"result": "released"}}, nil
		}
	}
}

// serve starts a grpc server for svc on an in-memory listener.
func serve(t *testing.T, svc proto.NodePluginServiceServer, opts ...grpc.ServerOption) *bufconn.Listener {
	t.Helper()

	lis := bufconn.Listen(bufSize)
	gs := plugin.NewGRPCServer(DefaultMaxMessageSize, opts...)
	proto.RegisterNodePluginServiceServer(gs, svc)
	plugin.StartHealthServer(gs)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)
	return lis
}

func dial(t *testing.T, lis *bufconn.Listener, opts ...ClientOption) *Client {
	t.Helper()

	opts = append([]ClientOption{WithDialOptions(grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))}, opts...)
	client, err := NewClientWithAddress("passthrough:///bufnet", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

// startPlugin serves p through a Server and returns both ends.
func startPlugin(t *testing.T, p plugin.Plugin, opts ...Option) (*Server, *Client) {
	t.Helper()

	srv, err := NewServer(p, opts...)
	require.NoError(t, err)
	return srv, dial(t, serve(t, srv))
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func initPlugin(t *testing.T, ctx context.Context, client *Client) {
	t.Helper()
	_, err := client.Init(ctx, &proto.InitRequest{NodeConfig: &proto.NodeConfig{Id: "node-1", Name: "echo"}})
	require.NoError(t, err)
}

func echoRequest(message string) *proto.RunRequest {
	return &proto.RunRequest{Parameters: map[string]*proto.Value{"message": proto.NewStringValue(message)}}
}

// recorder is an OutputHandler that keeps every frame it sees.
type recorder struct {
	mu       sync.Mutex
	events   []string
	progress []plugin.Progress
	result   *plugin.RunResult
}

func (r *recorder) OnLog(level proto.LogLevel, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "log:"+message)
	return nil
}

func (r *recorder) OnProgress(p plugin.Progress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "progress:"+p.Message)
	r.progress = append(r.progress, p)
	return nil
}

func (r *recorder) OnResult(result *plugin.RunResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "result:"+result.Status.String())
	r.result = result
	return nil
}

// fakeStream collects the frames of a Run called without a transport.
type fakeStream struct {
	grpc.ServerStream
	ctx     context.Context
	mu      sync.Mutex
	frames  []*proto.RunResponse
	sendErr error
}

func newFakeStream(ctx context.Context) *fakeStream {
	return &fakeStream{ctx: ctx}
}

func (f *fakeStream) Context() context.Context {
	return f.ctx
}

func (f *fakeStream) Send(frame *proto.RunResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeStream) Frames() []*proto.RunResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*proto.RunResponse(nil), f.frames...)
}

// clockAt returns a clock reading the given milliseconds in turn and then
// sticking to the last one.
func clockAt(ms ...int64) func() time.Time {
	var mu sync.Mutex
	i := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := time.UnixMilli(ms[min(i, len(ms)-1)])
		i++
		return t
	}
}
