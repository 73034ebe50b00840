package grpc

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/nodeplugin/pkg/logger"
	"github.com/example/nodeplugin/pkg/plugin"
	"github.com/example/nodeplugin/pkg/tracing"
	"github.com/example/nodeplugin/proto"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// Server serves a plugin.Plugin as a NodePluginService.
//
// The plugin metadata is read and validated once, in NewServer. Init installs
// an immutable instance snapshot that every later Run reads; Run admits at
// most max_concurrent invocations and refuses the rest.
type Server struct {
	proto.UnimplementedNodePluginServiceServer

	impl     plugin.Plugin
	metadata *proto.GetMetadataResponse
	features []string
	slots    chan struct{}

	strictOutputs bool
	log           *zap.SugaredLogger
	metrics       *Metrics
	now           func() time.Time

	mu       sync.RWMutex
	instance *instance
	runs     map[string]*activeRun
}

// instance is what the last Init left behind. It is replaced, never mutated.
type instance struct {
	init *plugin.InitContext
	err  error
}

type activeRun struct {
	id     string
	cancel context.CancelCauseFunc
}

// Option configures a Server.
type Option func(*Server)

// WithStrictOutputs fails runs whose output does not match the declared
// output parameters. By default a mismatch is only logged.
func WithStrictOutputs() Option {
	return func(s *Server) {
		s.strictOutputs = true
	}
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Server) {
		s.log = log
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

func withClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// NewServer validates the metadata of impl and wraps it in a Server.
func NewServer(impl plugin.Plugin, opts ...Option) (*Server, error) {
	md := impl.Metadata()
	if err := plugin.ValidateMetadata(md); err != nil {
		return nil, err
	}

	s := &Server{
		impl:     impl,
		metadata: md,
		features: plugin.SupportedFeatures(md.Capabilities),
		slots:    make(chan struct{}, md.Capabilities.MaxConcurrent),
		log:      logger.NewLogger("grpc.server").With("plugin", md.Name),
		now:      time.Now,
		runs:     make(map[string]*activeRun),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register adds the service to a grpc server.
func (s *Server) Register(gs grpc.ServiceRegistrar) {
	proto.RegisterNodePluginServiceServer(gs, s)
}

// Metadata returns the validated descriptor the server was built with.
func (s *Server) Metadata() *proto.GetMetadataResponse {
	return s.metadata
}

// ActiveRuns returns the number of runs in flight.
func (s *Server) ActiveRuns() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

func (s *Server) GetMetadata(ctx context.Context, req *proto.GetMetadataRequest) (*proto.GetMetadataResponse, error) {
	if err := plugin.CheckProtocolVersion(req.ProtocolVersion); err != nil {
		s.log.Warnw("metadata requested with incompatible protocol", "peer_version", req.ProtocolVersion)
		return nil, toStatus(err)
	}
	return s.metadata, nil
}

// Init validates the node-level parameters and hands them to the plugin. A
// failed Init blocks Run until a later Init succeeds.
func (s *Server) Init(ctx context.Context, req *proto.InitRequest) (*proto.InitResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "NodePlugin/Init", tracing.RequestAttributes(req.Context)...)
	defer span.End()

	// Without definitions ResolveParameters only merges.
	params, _ := plugin.ResolveParameters(nil, req.Parameters, req.GetNodeConfig().GetParameters())
	ic := &plugin.InitContext{
		Request:        req.Context,
		NodeConfig:     req.NodeConfig,
		WorkflowConfig: req.WorkflowConfig,
		Credential:     req.Credential,
		ServerEndpoint: req.ServerEndpoint,
		Parameters:     params,
	}

	err := plugin.ValidateSupplied(s.metadata.InputParameters, params)
	if err != nil {
		err = plugin.NewExecutionError(plugin.CodeInvalidParameters, "invalid node parameters", err)
	} else {
		err = s.initPlugin(ctx, ic)
	}

	s.mu.Lock()
	s.instance = &instance{init: ic, err: err}
	s.mu.Unlock()

	log := s.log.With(requestFields(req.Context)...)
	if err != nil {
		tracing.SetError(span, err)
		log.Warnw("plugin initialization failed", "err", err)
		return &proto.InitResponse{
			Success:      false,
			ErrorMessage: plugin.ErrorMessage(err),
			ErrorCode:    plugin.ErrorCode(err, plugin.CodeInitFailed),
		}, nil
	}

	log.Infow("plugin initialized", "node", req.GetNodeConfig().GetName())
	return &proto.InitResponse{Success: true}, nil
}

func (s *Server) initPlugin(ctx context.Context, ic *plugin.InitContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("plugin panicked in init", "panic", r, "stack", string(debug.Stack()))
			err = plugin.NewExecutionError(plugin.CodePanic, fmt.Sprintf("init panicked: %v", r), nil)
		}
	}()
	return s.impl.Init(ctx, ic)
}

// Run executes one invocation and streams its frames. Protocol errors are
// returned before any frame is sent; everything that happens once the plugin
// runs ends in a result frame.
func (s *Server) Run(req *proto.RunRequest, stream proto.NodePluginService_RunServer) error {
	s.mu.RLock()
	inst := s.instance
	s.mu.RUnlock()

	switch {
	case inst == nil:
		s.metrics.runRejected("not_initialized")
		return toStatus(plugin.ErrNotInitialized)
	case inst.err != nil:
		s.metrics.runRejected("init_failed")
		return toStatus(fmt.Errorf("%w: %s", plugin.ErrInitFailed, plugin.ErrorMessage(inst.err)))
	}

	params, err := plugin.ResolveParameters(s.metadata.InputParameters, req.Parameters, inst.init.Parameters)
	if err != nil {
		s.metrics.runRejected("invalid_parameters")
		return toStatus(err)
	}

	select {
	case s.slots <- struct{}{}:
	default:
		s.metrics.runRejected("backpressure")
		return toStatus(fmt.Errorf("%w: limit is %d", plugin.ErrBackpressure, cap(s.slots)))
	}
	defer func() { <-s.slots }()

	runID := req.RunId
	if runID == "" {
		runID = uuid.NewString()
	}

	ctx, cancel := context.WithCancelCause(stream.Context())
	defer cancel(nil)

	if err := s.track(&activeRun{id: runID, cancel: cancel}); err != nil {
		s.metrics.runRejected("duplicate_run_id")
		return toStatus(err)
	}
	defer s.untrack(runID)

	attrs := append(tracing.RequestAttributes(req.Context),
		attribute.String(tracing.RunIDKey, runID),
		attribute.String(tracing.PluginNameKey, s.metadata.Name),
	)
	ctx, span := tracing.StartSpan(ctx, "NodePlugin/Run", attrs...)
	defer span.End()

	credential := req.Credential
	if credential == nil {
		credential = inst.init.Credential
	}
	exec := &plugin.ExecutionContext{
		RunID:          runID,
		Request:        req.Context,
		Parameters:     params,
		ParentOutput:   req.ParentOutput,
		GlobalVars:     req.GlobalVars,
		LocalVars:      req.LocalVars,
		NodeConfig:     inst.init.NodeConfig,
		WorkflowConfig: inst.init.WorkflowConfig,
		Credential:     credential,
	}

	log := s.log.With(append(requestFields(req.Context), "run_id", runID)...)
	frames := newFrameWriter(stream, runID, s.now, s.metrics)

	s.metrics.runStarted()
	log.Debugw("run started")
	start := s.now()

	res, runErr := s.invoke(ctx, exec, frames)
	result := s.resultPayload(ctx, res, runErr, log)

	elapsed := s.now().Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}
	result.DurationMs = elapsed.Milliseconds()
	s.metrics.runFinished(result.Status, elapsed)

	span.SetAttributes(attribute.String(tracing.StatusKey, result.Status.String()))
	if result.Status == proto.ExecutionStatus_EXECUTION_STATUS_FAILED {
		tracing.SetError(span, errors.New(result.ErrorMessage))
	}
	logs, progresses := frames.counts()
	log.Infow("run finished", "status", result.Status.String(), "duration_ms", result.DurationMs,
		"logs", logs, "progresses", progresses)

	if err := frames.finish(result); err != nil {
		log.Warnw("failed to deliver result", "err", err)
		return err
	}
	return nil
}

func (s *Server) track(run *activeRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[run.id]; exists {
		return fmt.Errorf("%w: %s", plugin.ErrDuplicateRun, run.id)
	}
	s.runs[run.id] = run
	return nil
}

func (s *Server) untrack(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, runID)
}

func (s *Server) invoke(ctx context.Context, exec *plugin.ExecutionContext, events plugin.EventSink) (res *plugin.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("plugin panicked", "run_id", exec.RunID, "panic", r, "stack", string(debug.Stack()))
			res, err = nil, plugin.NewExecutionError(plugin.CodePanic, fmt.Sprintf("plugin panicked: %v", r), nil)
		}
	}()
	return s.impl.Run(ctx, exec, events)
}

// resultPayload turns what the plugin returned into the terminal frame.
func (s *Server) resultPayload(ctx context.Context, res *plugin.Result, runErr error, log *zap.SugaredLogger) *proto.ResultPayload {
	if runErr != nil {
		if cause := context.Cause(ctx); errors.Is(cause, plugin.ErrStopped) {
			return &proto.ResultPayload{
				Status:       proto.ExecutionStatus_EXECUTION_STATUS_STOPPED,
				ErrorCode:    plugin.CodeStopped,
				ErrorMessage: cause.Error(),
			}
		}
		return failedResult(plugin.ErrorCode(runErr, plugin.CodeExecutionError), plugin.ErrorMessage(runErr))
	}

	if res == nil {
		res = &plugin.Result{}
	}
	output, err := plugin.MapToValues(res.Output)
	if err != nil {
		return failedResult(plugin.CodeInvalidOutput, err.Error())
	}
	if err := checkOutputs(s.metadata.OutputParameters, output); err != nil {
		if s.strictOutputs {
			return failedResult(plugin.CodeInvalidOutput, err.Error())
		}
		log.Warnw("output does not match the declared outputs", "err", err)
	}

	status := res.Status
	if status == proto.ExecutionStatus_EXECUTION_STATUS_UNSPECIFIED {
		status = proto.ExecutionStatus_EXECUTION_STATUS_SUCCESS
	}
	if !status.IsValid() {
		return failedResult(plugin.CodeInvalidOutput, fmt.Sprintf("unknown execution status %d", status))
	}
	return &proto.ResultPayload{Output: output, BranchIndex: res.BranchIndex, Status: status}
}

func failedResult(code, message string) *proto.ResultPayload {
	return &proto.ResultPayload{
		Status:       proto.ExecutionStatus_EXECUTION_STATUS_FAILED,
		ErrorCode:    code,
		ErrorMessage: message,
	}
}

// checkOutputs compares an output map with the declared outputs. Plugins
// that declare no outputs are not checked.
func checkOutputs(defs []*proto.ParameterDef, output map[string]*proto.Value) error {
	if len(defs) == 0 {
		return nil
	}

	var problems []string
	declared := make(map[string]bool, len(defs))
	for _, def := range defs {
		declared[def.Name] = true
		v, ok := output[def.Name]
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("missing %q", def.Name))
		case !v.IsNull() && !plugin.AcceptsValue(def.Type, v):
			problems = append(problems, fmt.Sprintf("%q is %s, declared %s", def.Name, plugin.KindName(v), def.Type))
		}
	}

	var extra []string
	for name := range output {
		if !declared[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		problems = append(problems, fmt.Sprintf("undeclared %q", name))
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("output mismatch: %s", strings.Join(problems, ", "))
}

// Stop signals cancellation to one run. Without a run id it targets the
// only run in flight and refuses to guess between several.
func (s *Server) Stop(ctx context.Context, req *proto.StopRequest) (*proto.StopResponse, error) {
	s.mu.RLock()
	run, err := s.stopTarget(req.RunId)
	s.mu.RUnlock()
	if err != nil {
		return nil, toStatus(err)
	}

	if run == nil {
		msg := "no run in flight"
		if req.RunId != "" {
			msg = fmt.Sprintf("run %s is not in flight", req.RunId)
		}
		return &proto.StopResponse{
			Status:  proto.StopStatus_STOP_STATUS_NOT_RUNNING,
			Message: msg,
			RunId:   req.RunId,
		}, nil
	}

	if !s.metadata.Capabilities.SupportsCancel {
		return &proto.StopResponse{
			Status:  proto.StopStatus_STOP_STATUS_ERROR,
			Message: "plugin does not support cancellation",
			RunId:   run.id,
		}, nil
	}

	reason := req.Reason
	if reason == "" {
		reason = "stop requested"
	}
	run.cancel(fmt.Errorf("%w: %s", plugin.ErrStopped, reason))
	s.log.With(requestFields(req.Context)...).Infow("run stop signaled", "run_id", run.id, "reason", reason)

	return &proto.StopResponse{
		Success: true,
		Status:  proto.StopStatus_STOP_STATUS_STOPPED,
		Message: fmt.Sprintf("stop signaled to run %s", run.id),
		RunId:   run.id,
	}, nil
}

// stopTarget must be called with s.mu held.
func (s *Server) stopTarget(runID string) (*activeRun, error) {
	if runID != "" {
		return s.runs[runID], nil
	}
	switch len(s.runs) {
	case 0:
		return nil, nil
	case 1:
		for _, run := range s.runs {
			return run, nil
		}
	}
	return nil, fmt.Errorf("%w: %d runs in flight", plugin.ErrAmbiguousStop, len(s.runs))
}

// TestCredential never touches instance state. A credential the plugin
// rejects is a normal response, not an error.
func (s *Server) TestCredential(ctx context.Context, req *proto.TestCredentialRequest) (*proto.TestCredentialResponse, error) {
	res, err := s.impl.TestCredential(ctx, req.Credential)
	if err != nil {
		return &proto.TestCredentialResponse{Success: false, ErrorMessage: plugin.ErrorMessage(err)}, nil
	}
	if res == nil {
		return &proto.TestCredentialResponse{Success: true}, nil
	}
	return &proto.TestCredentialResponse{
		Success:      res.Success,
		ErrorMessage: res.ErrorMessage,
		Info:         res.Info,
	}, nil
}

// HealthCheck answers in any state and never waits on a run.
func (s *Server) HealthCheck(ctx context.Context, _ *proto.HealthCheckRequest) (*proto.HealthCheckResponse, error) {
	s.mu.RLock()
	inst := s.instance
	active := len(s.runs)
	s.mu.RUnlock()

	health, message := proto.HealthStatus_HEALTH_STATUS_HEALTHY, "OK"
	if inst != nil && inst.err != nil {
		health = proto.HealthStatus_HEALTH_STATUS_DEGRADED
		message = "last init failed: " + plugin.ErrorMessage(inst.err)
	}
	if reporter, ok := s.impl.(plugin.HealthReporter); ok {
		if st, msg := reporter.Health(ctx); st != proto.HealthStatus_HEALTH_STATUS_UNSPECIFIED && st.IsValid() {
			health, message = st, msg
		}
	}

	return &proto.HealthCheckResponse{
		Status:            health,
		Message:           message,
		PluginVersion:     s.metadata.Version,
		ProtocolVersion:   plugin.ProtocolVersion,
		SupportedFeatures: s.features,
		ActiveRuns:        int32(active),
	}, nil
}

func requestFields(rc *proto.RequestContext) []any {
	if rc == nil {
		return nil
	}
	return []any{"workflow_id", rc.WorkflowId, "execution_id", rc.ExecutionId, "node_id", rc.NodeId}
}
