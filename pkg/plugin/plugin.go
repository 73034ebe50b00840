package plugin

import (
	"context"

	"github.com/example/nodeplugin/proto"
)

// ProtocolVersion is the node plugin protocol spoken by this module.
const ProtocolVersion = "2.0.0"

// Optional features reported by HealthCheck.
const (
	FeatureStreaming  = "streaming"
	FeatureCancel     = "cancel"
	FeatureRetry      = "retry"
	FeatureBatch      = "batch"
	FeatureCredential = "credential"
)

// Plugin is the interface that plugins must implement.
//
// Metadata is read once when the server starts and must not change
// afterwards. Init may be called repeatedly; Run may be called concurrently
// up to the advertised max_concurrent, so implementations keep per-call state
// inside Run.
type Plugin interface {
	Metadata() *proto.GetMetadataResponse
	Init(ctx context.Context, init *InitContext) error
	Run(ctx context.Context, exec *ExecutionContext, events EventSink) (*Result, error)
	TestCredential(ctx context.Context, cred *proto.Credential) (*CredentialResult, error)
}

// HealthReporter is implemented by plugins that can judge their own health.
type HealthReporter interface {
	Health(ctx context.Context) (proto.HealthStatus, string)
}

// DefaultPlugin provides no-op Init and TestCredential. Embed it in plugins
// that need neither.
type DefaultPlugin struct{}

func (DefaultPlugin) Init(context.Context, *InitContext) error { return nil }

func (DefaultPlugin) TestCredential(_ context.Context, cred *proto.Credential) (*CredentialResult, error) {
	info := map[string]string{}
	if cred != nil && cred.Type != "" {
		info["type"] = cred.Type
	}
	return &CredentialResult{Success: true, Info: info}, nil
}
