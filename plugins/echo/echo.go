package main

import (
	"context"
	"fmt"
	"time"

	"github.com/example/nodeplugin/pkg/logger"
	"github.com/example/nodeplugin/pkg/plugin"
	"github.com/example/nodeplugin/proto"
	"go.uber.org/zap"
)

const (
	pluginName    = "echo_plugin"
	pluginVersion = "1.0.0"

	timestampLayout = "2006-01-02 15:04:05"
	logPreviewLen   = 50
)

// EchoPlugin returns its message with a prefix, optionally after a delay
// reported as one progress frame per step.
type EchoPlugin struct {
	// step is the length of one delay unit.
	step time.Duration
	now  func() time.Time
	log  *zap.SugaredLogger
}

type echoParams struct {
	Message string `param:"message"`
	Prefix  string `param:"prefix"`
	Delay   int    `param:"delay"`
}

func NewEchoPlugin() *EchoPlugin {
	return &EchoPlugin{
		step: time.Second,
		now:  time.Now,
		log:  logger.NewLogger("echo"),
	}
}

func (p *EchoPlugin) Metadata() *proto.GetMetadataResponse {
	return &proto.GetMetadataResponse{
		Name:        pluginName,
		DisplayName: "Echo Plugin",
		Description: "Echoes a message back, for testing the plugin system",
		Version:     pluginVersion,
		Icon:        "MessageCircle",
		Category:    proto.NodeCategory_CATEGORY_ACTION,
		NodeType:    proto.NodeType_NODE_TYPE_PROCESSOR,
		InputParameters: []*proto.ParameterDef{
			{
				Name:         "message",
				DisplayName:  "Message",
				Type:         proto.ParameterType_PARAM_TYPE_STRING,
				Description:  "The message to echo",
				Required:     true,
				DefaultValue: proto.NewStringValue("Hello, World!"),
				UiType:       proto.UIType_UI_TYPE_TEXTAREA,
			},
			{
				Name:         "prefix",
				DisplayName:  "Prefix",
				Type:         proto.ParameterType_PARAM_TYPE_STRING,
				Description:  "Put in front of the message",
				DefaultValue: proto.NewStringValue("[Echo]"),
				UiType:       proto.UIType_UI_TYPE_TEXT,
			},
			{
				Name:         "delay",
				DisplayName:  "Delay (seconds)",
				Type:         proto.ParameterType_PARAM_TYPE_INT,
				Description:  "Processing delay",
				DefaultValue: proto.NewIntValue(0),
				UiType:       proto.UIType_UI_TYPE_NUMBER,
			},
		},
		OutputParameters: []*proto.ParameterDef{
			{Name: "result", DisplayName: "Result", Type: proto.ParameterType_PARAM_TYPE_STRING, Description: "The echoed message"},
			{Name: "timestamp", DisplayName: "Timestamp", Type: proto.ParameterType_PARAM_TYPE_STRING, Description: "When the message was processed"},
			{Name: "original_message", DisplayName: "Original message", Type: proto.ParameterType_PARAM_TYPE_STRING},
			{Name: "prefix", DisplayName: "Prefix", Type: proto.ParameterType_PARAM_TYPE_STRING},
		},
		Capabilities: &proto.Capabilities{
			SupportsStreaming: true,
			SupportsCancel:    true,
			SupportsRetry:     true,
			MaxConcurrent:     10,
			DefaultTimeoutMs:  30000,
		},
	}
}

func (p *EchoPlugin) Init(_ context.Context, ic *plugin.InitContext) error {
	p.log.Infow("initialized", "node", ic.NodeConfig.GetName())
	return nil
}

func (p *EchoPlugin) Run(ctx context.Context, exec *plugin.ExecutionContext, events plugin.EventSink) (*plugin.Result, error) {
	var params echoParams
	if err := exec.Decode(&params); err != nil {
		return nil, plugin.NewExecutionError(plugin.CodeInvalidParameters, "cannot read parameters", err)
	}
	if params.Delay < 0 {
		return nil, plugin.NewExecutionError(plugin.CodeInvalidParameters, fmt.Sprintf("delay must not be negative, got %d", params.Delay), nil)
	}

	if err := events.Log(proto.LogLevel_LOG_LEVEL_INFO, "processing message: "+preview(params.Message)); err != nil {
		return nil, err
	}

	total := int32(params.Delay)
	for i := int32(1); i <= total; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.step):
		}
		if err := events.Progress(i, total, fmt.Sprintf("processing... %d/%d", i, total)); err != nil {
			return nil, err
		}
	}

	p.log.Debugw("echoed", "run_id", exec.RunID, "delay", params.Delay)
	return &plugin.Result{Output: map[string]any{
		"result":           params.Prefix + " " + params.Message,
		"timestamp":        p.now().Format(timestampLayout),
		"original_message": params.Message,
		"prefix":           params.Prefix,
	}}, nil
}

func (p *EchoPlugin) TestCredential(context.Context, *proto.Credential) (*plugin.CredentialResult, error) {
	return &plugin.CredentialResult{
		Success: true,
		Info:    map[string]string{"message": "this plugin needs no credential"},
	}, nil
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= logPreviewLen {
		return s
	}
	return string(r[:logPreviewLen]) + "..."
}
