package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/example/nodeplugin/pkg/plugin"
	"github.com/example/nodeplugin/proto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestNewServer_InvalidMetadata(t *testing.T) {
	stub := newStub()
	stub.md.Capabilities.MaxConcurrent = 0

	_, err := NewServer(stub)
	require.Error(t, err)
	assert.ErrorIs(t, err, plugin.ErrInvalidMetadata)
}

func TestServer_GetMetadata(t *testing.T) {
	srv, err := NewServer(newStub())
	require.NoError(t, err)

	tests := []struct {
		name    string
		version string
		code    codes.Code
	}{
		{"no version", "", codes.OK},
		{"same major", "2.1.0", codes.OK},
		{"older major", "1.0.0", codes.FailedPrecondition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := srv.GetMetadata(context.Background(), &proto.GetMetadataRequest{ProtocolVersion: tt.version})
			assert.Equal(t, tt.code, status.Code(err))
			if tt.code == codes.OK {
				assert.Equal(t, "echo_plugin", md.Name)
			}
		})
	}
}

func TestServer_RunBeforeInit(t *testing.T) {
	_, client := startPlugin(t, newStub())
	ctx := testContext(t)

	_, err := client.Run(ctx, echoRequest("hi"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, plugin.ErrNotInitialized)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestServer_Run(t *testing.T) {
	stub := newStub()
	var seen *plugin.ExecutionContext
	stub.runFn = func(ctx context.Context, exec *plugin.ExecutionContext, events plugin.EventSink) (*plugin.Result, error) {
		seen = exec
		return echoRun(ctx, exec, events)
	}
	_, client := startPlugin(t, stub)
	ctx := testContext(t)
	initPlugin(t, ctx, client)

	req := echoRequest("hi")
	req.RunId = "run-1"
	req.Parameters["count"] = proto.NewIntValue(2)
	req.GlobalVars = map[string]*proto.Value{"env": proto.NewStringValue("test")}

	rec := &recorder{}
	result, err := client.Run(ctx, req, rec)
	require.NoError(t, err)

	assert.Equal(t, proto.ExecutionStatus_EXECUTION_STATUS_SUCCESS, result.Status)
	assert.Equal(t, "run-1", result.RunID)
	assert.Equal(t, "[Echo] hi", result.Output["result"].GetStringValue())
	assert.Equal(t, 1, result.Logs)
	assert.Equal(t, 2, result.Progresses)
	assert.GreaterOrEqual(t, result.DurationMs, int64(0))
	assert.NoError(t, result.Err())

	assert.Equal(t, []string{
		"log:echoing hi",
		"progress:working",
		"progress:working",
		"result:EXECUTION_STATUS_SUCCESS",
	}, rec.events)
	assert.InDelta(t, 50.0, rec.progress[0].Percentage, 0.001)
	assert.InDelta(t, 100.0, rec.progress[1].Percentage, 0.001)

	require.NotNil(t, seen)
	assert.Equal(t, "run-1", seen.RunID)
	assert.Equal(t, "node-1", seen.NodeConfig.Id)
	assert.Equal(t, "test", seen.GlobalVars["env"].GetStringValue())
}

func TestServer_RunParameterLayers(t *testing.T) {
	stub := newStub()
	params := make(chan map[string]*proto.Value, 1)
	stub.runFn = func(_ context.Context, exec *plugin.ExecutionContext, _ plugin.EventSink) (*plugin.Result, error) {
		params <- exec.Parameters
		return &plugin.Result{Output: map[string]any{"result": "ok"}}, nil
	}
	_, client := startPlugin(t, stub)
	ctx := testContext(t)

	_, err := client.Init(ctx, &proto.InitRequest{
		Parameters: map[string]*proto.Value{"prefix": proto.NewStringValue(">>")},
		NodeConfig: &proto.NodeConfig{Parameters: map[string]*proto.Value{
			"prefix":  proto.NewStringValue("ignored"),
			"message": proto.NewStringValue("from node"),
		}},
	})
	require.NoError(t, err)

	tests := []struct {
		name       string
		params     map[string]*proto.Value
		wantPrefix string
		wantMsg    string
		wantCount  int64
	}{
		{
			name:       "init values",
			params:     nil,
			wantPrefix: ">>",
			wantMsg:    "from node",
			wantCount:  0,
		},
		{
			name: "run values win",
			params: map[string]*proto.Value{
				"message": proto.NewStringValue("from run"),
				"count":   proto.NewIntValue(3),
			},
			wantPrefix: ">>",
			wantMsg:    "from run",
			wantCount:  3,
		},
		{
			name:       "null falls back",
			params:     map[string]*proto.Value{"message": proto.NewNullValue()},
			wantPrefix: ">>",
			wantMsg:    "from node",
			wantCount:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Run(ctx, &proto.RunRequest{Parameters: tt.params}, nil)
			require.NoError(t, err)

			got := <-params
			assert.Equal(t, tt.wantPrefix, got["prefix"].GetStringValue())
			assert.Equal(t, tt.wantMsg, got["message"].GetStringValue())
			assert.Equal(t, tt.wantCount, got["count"].GetIntValue())
		})
	}
}

func TestServer_RunValidation(t *testing.T) {
	ran := false
	stub := newStub()
	stub.runFn = func(context.Context, *plugin.ExecutionContext, plugin.EventSink) (*plugin.Result, error) {
		ran = true
		return &plugin.Result{}, nil
	}
	_, client := startPlugin(t, stub)
	ctx := testContext(t)
	initPlugin(t, ctx, client)

	tests := []struct {
		name     string
		params   map[string]*proto.Value
		errorMsg string
	}{
		{
			name:     "missing required",
			params:   map[string]*proto.Value{"prefix": proto.NewStringValue(">")},
			errorMsg: `parameter "message": required parameter is missing`,
		},
		{
			name: "wrong type",
			params: map[string]*proto.Value{
				"message": proto.NewStringValue("hi"),
				"count":   proto.NewStringValue("three"),
			},
			errorMsg: `parameter "count": expected int, got string`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Run(ctx, &proto.RunRequest{Parameters: tt.params}, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, plugin.ErrValidation)
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
	assert.False(t, ran, "plugin must not run with invalid parameters")
}

func TestServer_InitFailureBlocksRun(t *testing.T) {
	stub := newStub()
	fail := true
	stub.initFn = func(context.Context, *plugin.InitContext) error {
		if fail {
			return errors.New("database unreachable")
		}
		return nil
	}
	_, client := startPlugin(t, stub)
	ctx := testContext(t)

	resp, err := client.Init(ctx, &proto.InitRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, plugin.ErrInitFailed)
	assert.False(t, resp.Success)
	assert.Equal(t, plugin.CodeInitFailed, resp.ErrorCode)
	assert.Equal(t, "database unreachable", resp.ErrorMessage)

	_, err = client.Run(ctx, echoRequest("hi"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, plugin.ErrInitFailed)
	assert.Contains(t, err.Error(), "database unreachable")

	health, err := client.HealthCheck(ctx)
	require.NoError(t, err)
	assert.Equal(t, proto.HealthStatus_HEALTH_STATUS_DEGRADED, health.Status)

	fail = false
	initPlugin(t, ctx, client)

	result, err := client.Run(ctx, echoRequest("hi"), nil)
	require.NoError(t, err)
	assert.True(t, result.Succeeded())

	health, err = client.HealthCheck(ctx)
	require.NoError(t, err)
	assert.Equal(t, proto.HealthStatus_HEALTH_STATUS_HEALTHY, health.Status)
}

func TestServer_Init(t *testing.T) {
	tests := []struct {
		name     string
		initFn   func(context.Context, *plugin.InitContext) error
		params   map[string]*proto.Value
		wantCode string
		errorMsg string
	}{
		{
			name:     "wrong parameter type",
			params:   map[string]*proto.Value{"count": proto.NewStringValue("1")},
			wantCode: plugin.CodeInvalidParameters,
			errorMsg: "invalid node parameters",
		},
		{
			name: "coded error",
			initFn: func(context.Context, *plugin.InitContext) error {
				return plugin.NewExecutionError("AUTH_FAILED", "token expired", nil)
			},
			wantCode: "AUTH_FAILED",
			errorMsg: "token expired",
		},
		{
			name: "panic",
			initFn: func(context.Context, *plugin.InitContext) error {
				panic("boom")
			},
			wantCode: plugin.CodePanic,
			errorMsg: "init panicked: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := newStub()
			stub.initFn = tt.initFn
			srv, err := NewServer(stub)
			require.NoError(t, err)

			resp, err := srv.Init(context.Background(), &proto.InitRequest{Parameters: tt.params})
			require.NoError(t, err)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.ErrorCode)
			assert.Contains(t, resp.ErrorMessage, tt.errorMsg)
		})
	}
}

func TestServer_InitSeesMergedParameters(t *testing.T) {
	stub := newStub()
	var got *plugin.InitContext
	stub.initFn = func(_ context.Context, ic *plugin.InitContext) error {
		got = ic
		return nil
	}
	srv, err := NewServer(stub)
	require.NoError(t, err)

	resp, err := srv.Init(context.Background(), &proto.InitRequest{
		ServerEndpoint: "localhost:3001",
		Parameters:     map[string]*proto.Value{"prefix": proto.NewStringValue("A")},
		NodeConfig: &proto.NodeConfig{Parameters: map[string]*proto.Value{
			"prefix":  proto.NewStringValue("B"),
			"message": proto.NewStringValue("C"),
		}},
	})
	require.NoError(t, err)
	require.True(t, resp.Success)

	require.NotNil(t, got)
	assert.Equal(t, "localhost:3001", got.ServerEndpoint)
	assert.Equal(t, "A", got.Parameters["prefix"].GetStringValue())
	assert.Equal(t, "C", got.Parameters["message"].GetStringValue())
}

func TestServer_RunResults(t *testing.T) {
	tests := []struct {
		name       string
		runFn      func(context.Context, *plugin.ExecutionContext, plugin.EventSink) (*plugin.Result, error)
		strict     bool
		wantStatus proto.ExecutionStatus
		wantCode   string
		errorMsg   string
	}{
		{
			name: "plain error",
			runFn: func(context.Context, *plugin.ExecutionContext, plugin.EventSink) (*plugin.Result, error) {
				return nil, errors.New("upstream returned 502")
			},
			wantStatus: proto.ExecutionStatus_EXECUTION_STATUS_FAILED,
			wantCode:   plugin.CodeExecutionError,
			errorMsg:   "upstream returned 502",
		},
		{
			name: "coded error",
			runFn: func(context.Context, *plugin.ExecutionContext, plugin.EventSink) (*plugin.Result, error) {
				return nil, plugin.NewExecutionError("RATE_LIMITED", "slow down", nil)
			},
			wantStatus: proto.ExecutionStatus_EXECUTION_STATUS_FAILED,
			wantCode:   "RATE_LIMITED",
			errorMsg:   "slow down",
		},
		{
			name: "panic",
			runFn: func(context.Context, *plugin.ExecutionContext, plugin.EventSink) (*plugin.Result, error) {
				panic("index out of range")
			},
			wantStatus: proto.ExecutionStatus_EXECUTION_STATUS_FAILED,
			wantCode:   plugin.CodePanic,
			errorMsg:   "plugin panicked: index out of range",
		},
		{
			name: "nil result",
			runFn: func(context.Context, *plugin.ExecutionContext, plugin.EventSink) (*plugin.Result, error) {
				return nil, nil
			},
			wantStatus: proto.ExecutionStatus_EXECUTION_STATUS_SUCCESS,
		},
		{
			name: "skipped",
			runFn: func(context.Context, *plugin.ExecutionContext, plugin.EventSink) (*plugin.Result, error) {
				return &plugin.Result{
					Output: map[string]any{"result": ""},
					Status: proto.ExecutionStatus_EXECUTION_STATUS_SKIPPED,
				}, nil
			},
			wantStatus: proto.ExecutionStatus_EXECUTION_STATUS_SKIPPED,
		},
		{
			name: "unconvertible output",
			runFn: func(context.Context, *plugin.ExecutionContext, plugin.EventSink) (*plugin.Result, error) {
				return &plugin.Result{Output: map[string]any{"result": make(chan int)}}, nil
			},
			wantStatus: proto.ExecutionStatus_EXECUTION_STATUS_FAILED,
			wantCode:   plugin.CodeInvalidOutput,
			errorMsg:   "unsupported value type",
		},
		{
			name: "output mismatch is tolerated",
			runFn: func(context.Context, *plugin.ExecutionContext, plugin.EventSink) (*plugin.Result, error) {
				return &plugin.Result{Output: map[string]any{"extra": 1}}, nil
			},
			wantStatus: proto.ExecutionStatus_EXECUTION_STATUS_SUCCESS,
		},
		{
			name: "output mismatch fails when strict",
			runFn: func(context.Context, *plugin.ExecutionContext, plugin.EventSink) (*plugin.Result, error) {
				return &plugin.Result{Output: map[string]any{"extra": 1}}, nil
			},
			strict:     true,
			wantStatus: proto.ExecutionStatus_EXECUTION_STATUS_FAILED,
			wantCode:   plugin.CodeInvalidOutput,
			errorMsg:   `output mismatch: missing "result", undeclared "extra"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := newStub()
			stub.runFn = tt.runFn
			var opts []Option
			if tt.strict {
				opts = append(opts, WithStrictOutputs())
			}
			_, client := startPlugin(t, stub, opts...)
			ctx := testContext(t)
			initPlugin(t, ctx, client)

			result, err := client.Run(ctx, echoRequest("hi"), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, tt.wantCode, result.ErrorCode)
			assert.Contains(t, result.ErrorMessage, tt.errorMsg)
		})
	}
}

func TestCheckOutputs(t *testing.T) {
	defs := []*proto.ParameterDef{
		{Name: "result", Type: proto.ParameterType_PARAM_TYPE_STRING},
		{Name: "total", Type: proto.ParameterType_PARAM_TYPE_FLOAT},
	}

	tests := []struct {
		name     string
		defs     []*proto.ParameterDef
		output   map[string]*proto.Value
		errorMsg string
	}{
		{
			name: "match",
			defs: defs,
			output: map[string]*proto.Value{
				"result": proto.NewStringValue("x"),
				"total":  proto.NewIntValue(3),
			},
		},
		{
			name: "null is accepted",
			defs: defs,
			output: map[string]*proto.Value{
				"result": proto.NewNullValue(),
				"total":  proto.NewDoubleValue(1.5),
			},
		},
		{
			name:   "nothing declared",
			output: map[string]*proto.Value{"anything": proto.NewBoolValue(true)},
		},
		{
			name: "wrong type",
			defs: defs,
			output: map[string]*proto.Value{
				"result": proto.NewIntValue(1),
				"total":  proto.NewIntValue(3),
			},
			errorMsg: `output mismatch: "result" is int, declared PARAM_TYPE_STRING`,
		},
		{
			name: "missing and undeclared",
			defs: defs,
			output: map[string]*proto.Value{
				"result": proto.NewStringValue("x"),
				"b":      proto.NewStringValue("x"),
				"a":      proto.NewStringValue("x"),
			},
			errorMsg: `output mismatch: missing "total", undeclared "a", undeclared "b"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkOutputs(tt.defs, tt.output)
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.errorMsg)
		})
	}
}

func TestServer_Backpressure(t *testing.T) {
	stub := newStub()
	stub.md.Capabilities.MaxConcurrent = 1
	started := make(chan string, 1)
	release := make(chan struct{})
	stub.runFn = blockingRun(started, release)

	_, client := startPlugin(t, stub)
	ctx := testContext(t)
	initPlugin(t, ctx, client)

	done := make(chan *plugin.RunResult, 1)
	go func() {
		result, _ := client.Run(ctx, echoRequest("first"), nil)
		done <- result
	}()
	<-started

	_, err := client.Run(ctx, echoRequest("second"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, plugin.ErrBackpressure)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))

	close(release)
	first := <-done
	require.NotNil(t, first)
	assert.Equal(t, "released", first.Output["result"].GetStringValue())

	// The slot is free again.
	stub.runFn = nil
	result, err := client.Run(ctx, echoRequest("third"), nil)
	require.NoError(t, err)
	assert.True(t, result.Succeeded())
}

func TestServer_DuplicateRunID(t *testing.T) {
	stub := newStub()
	started := make(chan string, 1)
	release := make(chan struct{})
	defer close(release)
	stub.runFn = blockingRun(started, release)

	_, client := startPlugin(t, stub)
	ctx := testContext(t)
	initPlugin(t, ctx, client)

	req := echoRequest("hi")
	req.RunId = "same"
	go func() { _, _ = client.Run(ctx, req, nil) }()
	<-started

	_, err := client.Run(ctx, req, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, plugin.ErrDuplicateRun)
	assert.Equal(t, codes.AlreadyExists, status.Code(err))
}

func TestServer_Stop(t *testing.T) {
	stub := newStub()
	started := make(chan string, 2)
	release := make(chan struct{})
	defer close(release)
	stub.runFn = blockingRun(started, release)

	srv, client := startPlugin(t, stub)
	ctx := testContext(t)
	initPlugin(t, ctx, client)

	resp, err := client.Stop(ctx, "", "", nil)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, proto.StopStatus_STOP_STATUS_NOT_RUNNING, resp.Status)

	results := make(chan *plugin.RunResult, 2)
	for _, id := range []string{"a", "b"} {
		req := echoRequest("hi")
		req.RunId = id
		go func() {
			result, _ := client.Run(ctx, req, nil)
			results <- result
		}()
		<-started
	}
	assert.Equal(t, 2, srv.ActiveRuns())

	_, err = client.Stop(ctx, "", "", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, plugin.ErrAmbiguousStop)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	resp, err = client.Stop(ctx, "missing", "", nil)
	require.NoError(t, err)
	assert.Equal(t, proto.StopStatus_STOP_STATUS_NOT_RUNNING, resp.Status)
	assert.Equal(t, "missing", resp.RunId)

	resp, err = client.Stop(ctx, "a", "user cancelled", nil)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, proto.StopStatus_STOP_STATUS_STOPPED, resp.Status)
	assert.Equal(t, "a", resp.RunId)

	stopped := <-results
	require.NotNil(t, stopped)
	assert.Equal(t, "a", stopped.RunID)
	assert.Equal(t, proto.ExecutionStatus_EXECUTION_STATUS_STOPPED, stopped.Status)
	assert.Equal(t, plugin.CodeStopped, stopped.ErrorCode)
	assert.Contains(t, stopped.ErrorMessage, "user cancelled")
	assert.ErrorIs(t, stopped.Err(), plugin.ErrStopped)

	// One run left: no id needed.
	resp, err = client.Stop(ctx, "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "b", resp.RunId)

	stopped = <-results
	require.NotNil(t, stopped)
	assert.Equal(t, proto.ExecutionStatus_EXECUTION_STATUS_STOPPED, stopped.Status)
	assert.Contains(t, stopped.ErrorMessage, "stop requested")
}

func TestServer_StopWithoutCancelSupport(t *testing.T) {
	stub := newStub()
	stub.md.Capabilities.SupportsCancel = false
	started := make(chan string, 1)
	release := make(chan struct{})
	stub.runFn = blockingRun(started, release)

	_, client := startPlugin(t, stub)
	ctx := testContext(t)
	initPlugin(t, ctx, client)

	done := make(chan *plugin.RunResult, 1)
	go func() {
		result, _ := client.Run(ctx, echoRequest("hi"), nil)
		done <- result
	}()
	runID := <-started

	resp, err := client.Stop(ctx, runID, "", nil)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, proto.StopStatus_STOP_STATUS_ERROR, resp.Status)

	close(release)
	result := <-done
	require.NotNil(t, result)
	assert.True(t, result.Succeeded())
}

func TestServer_HealthCheck(t *testing.T) {
	stub := newStub()
	started := make(chan string, 1)
	release := make(chan struct{})
	stub.runFn = blockingRun(started, release)

	_, client := startPlugin(t, stub)
	ctx := testContext(t)

	health, err := client.HealthCheck(ctx)
	require.NoError(t, err)
	assert.Equal(t, proto.HealthStatus_HEALTH_STATUS_HEALTHY, health.Status)
	assert.Equal(t, "1.0.0", health.PluginVersion)
	assert.Equal(t, plugin.ProtocolVersion, health.ProtocolVersion)
	assert.Equal(t, []string{plugin.FeatureStreaming, plugin.FeatureCancel, plugin.FeatureRetry}, health.SupportedFeatures)
	assert.Zero(t, health.ActiveRuns)

	initPlugin(t, ctx, client)
	done := make(chan struct{})
	go func() {
		_, _ = client.Run(ctx, echoRequest("hi"), nil)
		close(done)
	}()
	<-started

	health, err = client.HealthCheck(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), health.ActiveRuns)

	stub.healthFn = func() (proto.HealthStatus, string) {
		return proto.HealthStatus_HEALTH_STATUS_UNHEALTHY, "disk full"
	}
	health, err = client.HealthCheck(ctx)
	require.NoError(t, err)
	assert.Equal(t, proto.HealthStatus_HEALTH_STATUS_UNHEALTHY, health.Status)
	assert.Equal(t, "disk full", health.Message)

	close(release)
	<-done
}

func TestServer_TestCredential(t *testing.T) {
	tests := []struct {
		name        string
		credFn      func(context.Context, *proto.Credential) (*plugin.CredentialResult, error)
		wantSuccess bool
		wantMessage string
		wantInfo    map[string]string
	}{
		{
			name:        "default",
			wantSuccess: true,
			wantInfo:    map[string]string{"type": "api_key"},
		},
		{
			name: "rejected",
			credFn: func(context.Context, *proto.Credential) (*plugin.CredentialResult, error) {
				return &plugin.CredentialResult{Success: false, ErrorMessage: "invalid key"}, nil
			},
			wantMessage: "invalid key",
		},
		{
			name: "error",
			credFn: func(context.Context, *proto.Credential) (*plugin.CredentialResult, error) {
				return nil, errors.New("auth server down")
			},
			wantMessage: "auth server down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := newStub()
			stub.credFn = tt.credFn
			_, client := startPlugin(t, stub)
			ctx := testContext(t)

			// No Init: credentials can be tested at any time.
			res, err := client.TestCredential(ctx, &proto.Credential{
				Type:   "api_key",
				Fields: map[string]string{"key": "secret"},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantSuccess, res.Success)
			assert.Equal(t, tt.wantMessage, res.ErrorMessage)
			if tt.wantInfo != nil {
				assert.Equal(t, tt.wantInfo, res.Info)
			}
		})
	}
}

func TestServer_RunStampsFrames(t *testing.T) {
	stub := newStub()
	stub.runFn = func(_ context.Context, _ *plugin.ExecutionContext, events plugin.EventSink) (*plugin.Result, error) {
		if err := events.Log(proto.LogLevel_LOG_LEVEL_UNSPECIFIED, "first"); err != nil {
			return nil, err
		}
		if err := events.Progress(1, 4, "quarter"); err != nil {
			return nil, err
		}
		return &plugin.Result{Output: map[string]any{"result": "done"}, BranchIndex: 1}, nil
	}
	// start, log, progress (clock went back), end, result
	srv, err := NewServer(stub, withClock(clockAt(1000, 1010, 990, 1250, 1250)))
	require.NoError(t, err)

	_, err = srv.Init(context.Background(), &proto.InitRequest{})
	require.NoError(t, err)

	stream := newFakeStream(context.Background())
	require.NoError(t, srv.Run(&proto.RunRequest{
		RunId:      "run-7",
		Parameters: map[string]*proto.Value{"message": proto.NewStringValue("hi")},
	}, stream))

	frames := stream.Frames()
	require.Len(t, frames, 3)

	var stamps []int64
	for _, frame := range frames {
		assert.Equal(t, "run-7", frame.RunId)
		stamps = append(stamps, frame.TimestampMs)
	}
	assert.Equal(t, []int64{1010, 1010, 1250}, stamps)

	assert.Equal(t, proto.ResponseType_RESPONSE_TYPE_LOG, frames[0].Type)
	assert.Equal(t, proto.LogLevel_LOG_LEVEL_INFO, frames[0].GetLog().Level)

	assert.Equal(t, proto.ResponseType_RESPONSE_TYPE_PROGRESS, frames[1].Type)
	assert.InDelta(t, 25.0, frames[1].GetProgress().Percentage, 0.001)

	result := frames[2].GetResult()
	require.NotNil(t, result)
	assert.Equal(t, proto.ResponseType_RESPONSE_TYPE_RESULT, frames[2].Type)
	assert.Equal(t, proto.ExecutionStatus_EXECUTION_STATUS_SUCCESS, result.Status)
	assert.Equal(t, int32(1), result.BranchIndex)
	assert.Equal(t, int64(250), result.DurationMs)
}

func TestServer_RunGeneratesRunID(t *testing.T) {
	srv, err := NewServer(newStub())
	require.NoError(t, err)
	_, err = srv.Init(context.Background(), &proto.InitRequest{})
	require.NoError(t, err)

	stream := newFakeStream(context.Background())
	require.NoError(t, srv.Run(echoRequest("hi"), stream))

	frames := stream.Frames()
	require.NotEmpty(t, frames)
	runID := frames[0].RunId
	assert.Len(t, runID, 36)
	for _, frame := range frames {
		assert.Equal(t, runID, frame.RunId)
	}
	assert.Zero(t, srv.ActiveRuns())
}

func TestServer_RunSendFailure(t *testing.T) {
	srv, err := NewServer(newStub())
	require.NoError(t, err)
	_, err = srv.Init(context.Background(), &proto.InitRequest{})
	require.NoError(t, err)

	stream := newFakeStream(context.Background())
	stream.sendErr = errors.New("connection reset")

	err = srv.Run(echoRequest("hi"), stream)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Zero(t, srv.ActiveRuns())
}

func TestFrameWriter_NothingAfterResult(t *testing.T) {
	stream := newFakeStream(context.Background())
	w := newFrameWriter(stream, "run-1", clockAt(5), nil)

	require.NoError(t, w.Log(proto.LogLevel_LOG_LEVEL_WARN, "careful"))
	require.NoError(t, w.finish(&proto.ResultPayload{Status: proto.ExecutionStatus_EXECUTION_STATUS_SUCCESS}))

	err := w.Log(proto.LogLevel_LOG_LEVEL_INFO, "late")
	assert.ErrorIs(t, err, plugin.ErrProtocolViolation)
	err = w.Progress(1, 1, "late")
	assert.ErrorIs(t, err, plugin.ErrProtocolViolation)

	assert.Len(t, stream.Frames(), 2)
	logs, progresses := w.counts()
	assert.Equal(t, 1, logs)
	assert.Zero(t, progresses)
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	srv, err := NewServer(newStub(), WithMetrics(metrics))
	require.NoError(t, err)

	err = srv.Run(echoRequest("hi"), newFakeStream(context.Background()))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = srv.Init(context.Background(), &proto.InitRequest{})
	require.NoError(t, err)
	req := echoRequest("hi")
	req.Parameters["count"] = proto.NewIntValue(3)
	require.NoError(t, srv.Run(req, newFakeStream(context.Background())))

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.runsRejected.WithLabelValues("not_initialized")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.runsTotal.WithLabelValues("EXECUTION_STATUS_SUCCESS")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.framesSent.WithLabelValues("RESPONSE_TYPE_LOG")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.framesSent.WithLabelValues("RESPONSE_TYPE_PROGRESS")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.framesSent.WithLabelValues("RESPONSE_TYPE_RESULT")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.runsInFlight), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.runLatency))
}
