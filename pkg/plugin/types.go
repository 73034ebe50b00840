package plugin

import (
	"fmt"
	"time"

	"github.com/example/nodeplugin/proto"
	"github.com/mitchellh/mapstructure"
)

// InitContext is what a plugin receives from Init. Parameters are the
// node-level values, already type checked.
type InitContext struct {
	Request        *proto.RequestContext
	NodeConfig     *proto.NodeConfig
	WorkflowConfig *proto.WorkflowConfig
	Credential     *proto.Credential
	ServerEndpoint string
	Parameters     map[string]*proto.Value
}

// ExecutionContext carries one Run invocation. It is owned by the server and
// read-only to the plugin.
type ExecutionContext struct {
	RunID          string
	Request        *proto.RequestContext
	Parameters     map[string]*proto.Value
	ParentOutput   map[string]*proto.Value
	GlobalVars     map[string]*proto.Value
	LocalVars      map[string]*proto.Value
	NodeConfig     *proto.NodeConfig
	WorkflowConfig *proto.WorkflowConfig
	Credential     *proto.Credential
}

// Param returns the resolved value of a parameter, or nil.
func (e *ExecutionContext) Param(name string) *proto.Value {
	return e.Parameters[name]
}

// Native returns the parameters as native Go values.
func (e *ExecutionContext) Native() map[string]any {
	return ValuesToMap(e.Parameters)
}

// Decode copies the parameters into target, a pointer to a struct whose
// fields are tagged `param:"name"`.
func (e *ExecutionContext) Decode(target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "param",
		Result:  target,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(e.Native()); err != nil {
		return fmt.Errorf("failed to decode parameters: %w", err)
	}
	return nil
}

// Result is what a successful Run returns. Output values go through
// GoToValue; a zero Status means success.
type Result struct {
	Output      map[string]any
	BranchIndex int32
	Status      proto.ExecutionStatus
}

// EventSink receives the intermediate frames of a run, in order.
type EventSink interface {
	Log(level proto.LogLevel, message string) error
	Progress(current, total int32, message string) error
}

// CredentialResult is the outcome of TestCredential.
type CredentialResult struct {
	Success      bool
	ErrorMessage string
	Info         map[string]string
}

// Progress represents execution progress information
type Progress struct {
	Current    int32
	Total      int32
	Percentage float64
	Message    string
}

// Percentage computes current/total*100, or 0 when total is not positive.
func Percentage(current, total int32) float64 {
	if total <= 0 {
		return 0
	}
	return float64(current) / float64(total) * 100
}

// OutputHandler handles the frames a host reads from a run.
type OutputHandler interface {
	OnLog(level proto.LogLevel, message string) error
	OnProgress(progress Progress) error
	OnResult(result *RunResult) error
}

// RunResult is the terminal frame of a run as seen by the host.
type RunResult struct {
	RunID        string
	Status       proto.ExecutionStatus
	Output       map[string]*proto.Value
	BranchIndex  int32
	DurationMs   int64
	ErrorMessage string
	ErrorCode    string
	Logs         int
	Progresses   int
}

// Succeeded reports whether the run finished with status success.
func (r *RunResult) Succeeded() bool {
	return r != nil && r.Status == proto.ExecutionStatus_EXECUTION_STATUS_SUCCESS
}

// Err returns nil for successful runs and an error describing the rest.
func (r *RunResult) Err() error {
	switch r.Status {
	case proto.ExecutionStatus_EXECUTION_STATUS_SUCCESS, proto.ExecutionStatus_EXECUTION_STATUS_SKIPPED:
		return nil
	case proto.ExecutionStatus_EXECUTION_STATUS_STOPPED:
		return fmt.Errorf("run %s: %w", r.RunID, ErrStopped)
	}
	code := r.ErrorCode
	if code == "" {
		code = CodeExecutionError
	}
	return NewExecutionError(code, r.ErrorMessage, nil)
}

// ExecutionSummary contains all information about a plugin's execution
type ExecutionSummary struct {
	PluginName string
	RunID      string
	StartTime  int64
	EndTime    int64
	Duration   float64 // in milliseconds
	Status     proto.ExecutionStatus
	Success    bool
	Error      error
	Metadata   map[string]string
	Metrics    map[string]float64
}

// NewExecutionSummary builds a summary from the host's view of a run.
func NewExecutionSummary(pluginName string, start, end time.Time, result *RunResult, err error) *ExecutionSummary {
	s := &ExecutionSummary{
		PluginName: pluginName,
		StartTime:  start.UnixNano(),
		EndTime:    end.UnixNano(),
		Duration:   float64(end.Sub(start)) / float64(time.Millisecond),
		Error:      err,
		Metadata:   map[string]string{},
		Metrics:    map[string]float64{},
	}
	if result != nil {
		s.RunID = result.RunID
		s.Status = result.Status
		s.Success = err == nil && result.Succeeded()
		if s.Error == nil {
			s.Error = result.Err()
		}
		s.Metadata["status"] = result.Status.String()
		s.Metadata["branch_index"] = fmt.Sprintf("%d", result.BranchIndex)
		s.Metrics["plugin_duration_ms"] = float64(result.DurationMs)
		s.Metrics["log_frames"] = float64(result.Logs)
		s.Metrics["progress_frames"] = float64(result.Progresses)
	}
	s.Metrics["execution_time_ms"] = s.Duration
	return s
}
