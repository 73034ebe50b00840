package grpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/example/nodeplugin/pkg/logger"
	"github.com/example/nodeplugin/pkg/plugin"
	"github.com/example/nodeplugin/proto"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// DefaultMaxMessageSize bounds every message in both directions.
const DefaultMaxMessageSize = 50 << 20

const (
	defaultStopGrace = 5 * time.Second
	defaultRetryWait = 500 * time.Millisecond
)

// Client is the host side of the protocol for one plugin address.
type Client struct {
	client  proto.NodePluginServiceClient
	health  healthpb.HealthClient
	conn    *grpc.ClientConn
	address string
	log     *zap.SugaredLogger

	cache       *MetadataCache
	dialOptions []grpc.DialOption
	runTimeout  time.Duration
	stopGrace   time.Duration
	maxRetries  int
	retryWait   time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithMetadataCache shares a descriptor cache between clients.
func WithMetadataCache(cache *MetadataCache) ClientOption {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithDialOptions appends grpc dial options.
func WithDialOptions(opts ...grpc.DialOption) ClientOption {
	return func(c *Client) {
		c.dialOptions = append(c.dialOptions, opts...)
	}
}

// WithRunTimeout overrides the default_timeout_ms the plugin advertises.
func WithRunTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.runTimeout = d
	}
}

// WithStopGrace sets how long a timed out run may take to honour Stop
// before the stream is cancelled.
func WithStopGrace(d time.Duration) ClientOption {
	return func(c *Client) {
		c.stopGrace = d
	}
}

// WithRetry sets how often a run that could not reach the plugin is retried.
// Retries only happen for plugins that declare supports_retry.
func WithRetry(maxRetries int, wait time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryWait = wait
	}
}

func NewClient(port int, opts ...ClientOption) (*Client, error) {
	address := fmt.Sprintf("localhost:%d", port)
	return NewClientWithAddress(address, opts...)
}

// NewClientWithAddress creates a new plugin client that connects to a specific address
func NewClientWithAddress(address string, opts ...ClientOption) (*Client, error) {
	c := &Client{
		address:   address,
		log:       logger.NewLogger("grpc.client").With("address", address),
		stopGrace: defaultStopGrace,
		retryWait: defaultRetryWait,
		dialOptions: []grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(DefaultMaxMessageSize),
				grpc.MaxCallSendMsgSize(DefaultMaxMessageSize),
			),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = NewMetadataCache(1, 0)
	}

	conn, err := grpc.NewClient(address, c.dialOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to address %s: %w", address, err)
	}
	c.conn = conn
	c.client = proto.NewNodePluginServiceClient(conn)
	c.health = healthpb.NewHealthClient(conn)
	return c, nil
}

func (c *Client) Address() string {
	return c.address
}

// GetMetadata returns the plugin descriptor, from the cache when possible.
func (c *Client) GetMetadata(ctx context.Context) (*proto.GetMetadataResponse, error) {
	if md, ok := c.cache.get(c.address); ok {
		return md, nil
	}

	md, err := c.client.GetMetadata(ctx, &proto.GetMetadataRequest{ProtocolVersion: plugin.ProtocolVersion})
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata: %w", fromStatus(err))
	}
	if err := plugin.ValidateMetadata(md); err != nil {
		return nil, err
	}
	c.cache.set(c.address, md)
	return md, nil
}

// Init initializes the plugin instance. A rejected Init is returned both as
// the response and as an error wrapping plugin.ErrInitFailed.
func (c *Client) Init(ctx context.Context, req *proto.InitRequest) (*proto.InitResponse, error) {
	resp, err := c.client.Init(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to init plugin: %w", fromStatus(err))
	}
	if !resp.Success {
		return resp, fmt.Errorf("%w: %s: %s", plugin.ErrInitFailed, resp.ErrorCode, resp.ErrorMessage)
	}
	return resp, nil
}

// ValidateParameters checks native parameters against the declared inputs
// before a run is ever attempted.
func (c *Client) ValidateParameters(ctx context.Context, params map[string]any) error {
	md, err := c.GetMetadata(ctx)
	if err != nil {
		return fmt.Errorf("failed to get plugin metadata: %w", err)
	}
	return plugin.ValidateJSON(md.InputParameters, params)
}

// Run starts an invocation and feeds its frames to handler until the result
// frame arrives. A missing run id is filled in before the call.
//
// Execution failures come back as a RunResult with a failed or stopped
// status and a nil error. The error is reserved for protocol errors, broken
// streams and handler failures.
func (c *Client) Run(ctx context.Context, req *proto.RunRequest, handler plugin.OutputHandler) (*plugin.RunResult, error) {
	if handler == nil {
		handler = discardHandler{}
	}
	call := *req
	if call.RunId == "" {
		call.RunId = uuid.NewString()
	}

	md, err := c.GetMetadata(ctx)
	if err != nil {
		return nil, err
	}
	caps := md.GetCapabilities()

	timeout := c.runTimeout
	if timeout == 0 && call.Context != nil && call.Context.TimeoutMs > 0 {
		timeout = time.Duration(call.Context.TimeoutMs) * time.Millisecond
	}
	if timeout == 0 {
		timeout = time.Duration(caps.DefaultTimeoutMs) * time.Millisecond
	}

	retries := 0
	if caps.SupportsRetry {
		retries = c.maxRetries
	}

	for attempt := 0; ; attempt++ {
		result, started, err := c.runOnce(ctx, &call, timeout, handler)
		if err == nil || started || attempt >= retries || status.Code(err) != codes.Unavailable {
			return result, err
		}

		c.log.Warnw("plugin unavailable, retrying run", "run_id", call.RunId, "attempt", attempt+1, "err", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryWait):
		}
	}
}

// runOnce performs one attempt. started reports whether any frame arrived,
// after which the run is never retried.
func (c *Client) runOnce(ctx context.Context, req *proto.RunRequest, timeout time.Duration, handler plugin.OutputHandler) (*plugin.RunResult, bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var timedOut atomic.Bool
	if timeout > 0 {
		timer := time.AfterFunc(timeout, func() {
			timedOut.Store(true)
			c.stopAfterTimeout(ctx, cancel, req, timeout)
		})
		defer timer.Stop()
	}

	stream, err := c.client.Run(ctx, req)
	if err != nil {
		return nil, false, fmt.Errorf("failed to start run: %w", fromStatus(err))
	}

	result := &plugin.RunResult{RunID: req.RunId}
	started, done := false, false
	var lastMs int64

	for {
		frame, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			if !done {
				return nil, started, fmt.Errorf("run %s: %w", req.RunId, plugin.ErrIncompleteStream)
			}
			return result, true, nil
		}
		if err != nil {
			if timedOut.Load() {
				return nil, started, fmt.Errorf("run %s timed out after %v: %w", req.RunId, timeout, context.DeadlineExceeded)
			}
			return nil, started, fmt.Errorf("run %s: %w", req.RunId, fromStatus(err))
		}
		started = true

		if err := checkFrame(frame, req.RunId, lastMs, done); err != nil {
			return nil, true, err
		}
		lastMs = frame.TimestampMs

		switch p := frame.Payload.(type) {
		case *proto.RunResponse_Log:
			result.Logs++
			if err := handler.OnLog(p.Log.Level, p.Log.Message); err != nil {
				return nil, true, fmt.Errorf("error handling log: %w", err)
			}
		case *proto.RunResponse_Progress:
			result.Progresses++
			if err := handler.OnProgress(plugin.Progress{
				Current:    p.Progress.Current,
				Total:      p.Progress.Total,
				Percentage: p.Progress.Percentage,
				Message:    p.Progress.Message,
			}); err != nil {
				return nil, true, fmt.Errorf("error handling progress: %w", err)
			}
		case *proto.RunResponse_Result:
			done = true
			result.Status = p.Result.Status
			result.Output = p.Result.Output
			result.BranchIndex = p.Result.BranchIndex
			result.DurationMs = p.Result.DurationMs
			result.ErrorMessage = p.Result.ErrorMessage
			result.ErrorCode = p.Result.ErrorCode
			if err := handler.OnResult(result); err != nil {
				return nil, true, fmt.Errorf("error handling result: %w", err)
			}
		}
	}
}

// checkFrame enforces the stream invariants: every frame belongs to the run,
// carries a payload matching its type, does not go back in time and does not
// follow the result.
func checkFrame(frame *proto.RunResponse, runID string, lastMs int64, done bool) error {
	var want proto.ResponseType
	switch frame.Payload.(type) {
	case *proto.RunResponse_Log:
		want = proto.ResponseType_RESPONSE_TYPE_LOG
	case *proto.RunResponse_Progress:
		want = proto.ResponseType_RESPONSE_TYPE_PROGRESS
	case *proto.RunResponse_Result:
		want = proto.ResponseType_RESPONSE_TYPE_RESULT
	default:
		return fmt.Errorf("%w: frame without payload", plugin.ErrProtocolViolation)
	}

	switch {
	case done:
		return fmt.Errorf("%w: %s frame after the result", plugin.ErrProtocolViolation, frame.Type)
	case frame.Type != want:
		return fmt.Errorf("%w: %s frame carries a %s payload", plugin.ErrProtocolViolation, frame.Type, want)
	case frame.RunId != runID:
		return fmt.Errorf("%w: frame for run %q on stream of run %q", plugin.ErrProtocolViolation, frame.RunId, runID)
	case frame.TimestampMs < lastMs:
		return fmt.Errorf("%w: timestamp %d before %d", plugin.ErrProtocolViolation, frame.TimestampMs, lastMs)
	}
	return nil
}

// stopAfterTimeout asks the plugin to stop a run that outlived its timeout
// and cancels the stream if the run has not ended after the grace period.
func (c *Client) stopAfterTimeout(ctx context.Context, cancel context.CancelFunc, req *proto.RunRequest, timeout time.Duration) {
	c.log.Warnw("run exceeded its timeout, stopping", "run_id", req.RunId, "timeout", timeout)

	stopCtx, stopCancel := context.WithTimeout(context.WithoutCancel(ctx), c.stopGrace)
	defer stopCancel()
	if _, err := c.Stop(stopCtx, req.RunId, "timeout", req.Context); err != nil {
		c.log.Warnw("failed to stop timed out run", "run_id", req.RunId, "err", err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(c.stopGrace):
		cancel()
	}
}

// Stop asks the plugin to stop runID, or its only run when runID is empty.
func (c *Client) Stop(ctx context.Context, runID, reason string, rc *proto.RequestContext) (*proto.StopResponse, error) {
	resp, err := c.client.Stop(ctx, &proto.StopRequest{Context: rc, Reason: reason, RunId: runID})
	if err != nil {
		return nil, fmt.Errorf("failed to stop run: %w", fromStatus(err))
	}
	return resp, nil
}

func (c *Client) TestCredential(ctx context.Context, cred *proto.Credential) (*plugin.CredentialResult, error) {
	resp, err := c.client.TestCredential(ctx, &proto.TestCredentialRequest{Credential: cred})
	if err != nil {
		return nil, fmt.Errorf("failed to test credential: %w", fromStatus(err))
	}
	return &plugin.CredentialResult{
		Success:      resp.Success,
		ErrorMessage: resp.ErrorMessage,
		Info:         resp.Info,
	}, nil
}

func (c *Client) HealthCheck(ctx context.Context) (*proto.HealthCheckResponse, error) {
	resp, err := c.client.HealthCheck(ctx, &proto.HealthCheckRequest{})
	if err != nil {
		return nil, fmt.Errorf("health check failed: %w", fromStatus(err))
	}
	return resp, nil
}

// Serving asks the standard grpc health service whether the plugin serves.
func (c *Client) Serving(ctx context.Context) (bool, error) {
	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: plugin.ServiceName})
	if err != nil {
		return false, err
	}
	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING, nil
}

// Close closes the client connection
func (c *Client) Close() error {
	return c.conn.Close()
}

type discardHandler struct{}

func (discardHandler) OnLog(proto.LogLevel, string) error { return nil }
func (discardHandler) OnProgress(plugin.Progress) error   { return nil }
func (discardHandler) OnResult(*plugin.RunResult) error   { return nil }
