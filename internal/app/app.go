package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/example/nodeplugin/internal/manager"
	"github.com/example/nodeplugin/pkg/grpc"
	"github.com/example/nodeplugin/pkg/logger"
	"github.com/example/nodeplugin/pkg/plugin"
	"github.com/example/nodeplugin/pkg/ui"
	"github.com/example/nodeplugin/proto"
	"github.com/google/uuid"
)

const infoTimeout = 10 * time.Second

var log = logger.NewLogger("app")

// withPlugin starts the configured plugin kind for the duration of fn.
func withPlugin(config *manager.AppConfig, kind string, fn func(cfg plugin.PluginConfig, client *grpc.Client) error) error {
	pluginConfig, err := config.GetPluginConfig(kind)
	if err != nil {
		return err
	}
	if err := pluginConfig.Validate(); err != nil {
		return fmt.Errorf("invalid plugin configuration for %s: %w", kind, err)
	}
	// one-shot commands probe the plugin themselves
	pluginConfig.HealthCheck = false

	pluginManager := manager.NewPluginManager(config)
	defer pluginManager.StopAll()

	if err := pluginManager.StartPlugin(pluginConfig, nil); err != nil {
		return fmt.Errorf("failed to start plugin %s: %w", kind, err)
	}
	log.Debugw("started plugin", "kind", kind, "type", pluginConfig.Type, "address", pluginConfig.Address())

	client, err := pluginManager.GetClient(kind)
	if err != nil {
		return fmt.Errorf("failed to get plugin %s: %w", kind, err)
	}
	return fn(pluginConfig, client)
}

func ShowPluginInfo(ctx context.Context, w io.Writer, config *manager.AppConfig, kind string) error {
	ctx, cancel := context.WithTimeout(ctx, infoTimeout)
	defer cancel()

	return withPlugin(config, kind, func(cfg plugin.PluginConfig, client *grpc.Client) error {
		md, err := client.GetMetadata(ctx)
		if err != nil {
			return fmt.Errorf("failed to get plugin metadata: %w", err)
		}
		ui.DisplayPluginInfo(w, md, cfg)
		return nil
	})
}

// ExecutePlugin runs a plugin once. Configured defaults initialize the node,
// params from the command line go to the run and win over them.
func ExecutePlugin(ctx context.Context, w io.Writer, config *manager.AppConfig, kind string, params map[string]string) (*plugin.ExecutionSummary, error) {
	var summary *plugin.ExecutionSummary
	err := withPlugin(config, kind, func(cfg plugin.PluginConfig, client *grpc.Client) error {
		md, err := client.GetMetadata(ctx)
		if err != nil {
			return fmt.Errorf("failed to get plugin metadata: %w", err)
		}

		nodeParams, err := CoerceParameters(md.InputParameters, cfg.Defaults)
		if err != nil {
			return fmt.Errorf("invalid configured defaults for %s: %w", kind, err)
		}
		runParams, err := CoerceParameters(md.InputParameters, params)
		if err != nil {
			return err
		}

		merged := make(map[string]*proto.Value, len(nodeParams)+len(runParams))
		for k, v := range nodeParams {
			merged[k] = v
		}
		for k, v := range runParams {
			merged[k] = v
		}
		if err := client.ValidateParameters(ctx, plugin.ValuesToMap(merged)); err != nil {
			return err
		}

		rc := &proto.RequestContext{ExecutionId: uuid.NewString(), NodeId: kind}
		if cfg.RequestTimeout > 0 {
			rc.TimeoutMs = cfg.RequestTimeout.Milliseconds()
		}
		if _, err := client.Init(ctx, &proto.InitRequest{
			Context:    rc,
			NodeConfig: &proto.NodeConfig{Id: kind, Name: cfg.Name, Kind: kind, Parameters: nodeParams},
			Parameters: nodeParams,
		}); err != nil {
			return err
		}

		start := time.Now()
		result, runErr := client.Run(ctx, &proto.RunRequest{
			Context:    rc,
			Parameters: runParams,
		}, ui.NewOutputHandler(w, kind))
		end := time.Now()

		summary = plugin.NewExecutionSummary(kind, start, end, result, runErr)
		summary.Metadata["plugin_type"] = string(cfg.Type)
		summary.Metadata["execution_id"] = rc.ExecutionId
		if result != nil {
			ui.DisplayResult(w, result)
		}
		ui.DisplayExecutionSummary(w, summary)

		if errors.Is(ctx.Err(), context.Canceled) {
			log.Infow("plugin execution canceled", "kind", kind)
			return nil
		}
		if runErr != nil {
			return runErr
		}
		return result.Err()
	})
	if err != nil {
		return summary, fmt.Errorf("plugin %s execution failed: %w", kind, err)
	}
	log.Debugw("plugin execution completed", "kind", kind, "run_id", summary.RunID)
	return summary, nil
}

// CheckHealth reports the health of a plugin. A plugin that is not healthy
// is an error.
func CheckHealth(ctx context.Context, w io.Writer, config *manager.AppConfig, kind string) error {
	return withPlugin(config, kind, func(_ plugin.PluginConfig, client *grpc.Client) error {
		resp, err := client.HealthCheck(ctx)
		if err != nil {
			return err
		}
		ui.DisplayHealth(w, kind, resp)
		if resp.Status != proto.HealthStatus_HEALTH_STATUS_HEALTHY {
			return fmt.Errorf("plugin %s is %s", kind, strings.ToLower(strings.TrimPrefix(resp.Status.String(), "HEALTH_STATUS_")))
		}
		return nil
	})
}

// StopRun asks a plugin to stop one of its runs. A run that is no longer
// running is not an error.
func StopRun(ctx context.Context, w io.Writer, config *manager.AppConfig, kind, runID, reason string) error {
	return withPlugin(config, kind, func(_ plugin.PluginConfig, client *grpc.Client) error {
		resp, err := client.Stop(ctx, runID, reason, nil)
		if err != nil {
			return err
		}
		ui.DisplayStop(w, resp)
		if resp.Status == proto.StopStatus_STOP_STATUS_ERROR {
			return fmt.Errorf("failed to stop run %s: %s", resp.RunId, resp.Message)
		}
		return nil
	})
}

// ParsePluginFlags parses command line arguments into a map. It supports:
// --key=value
// --key value
// --key (as a boolean true)
func ParsePluginFlags(args []string) map[string]string {
	params := make(map[string]string)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue // Ignore non-flag arguments
		}

		key := strings.TrimLeft(arg, "-")

		// Handle --key=value
		if strings.Contains(key, "=") {
			parts := strings.SplitN(key, "=", 2)
			params[parts[0]] = parts[1]
			continue
		}

		// Handle --key value
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			params[key] = args[i+1]
			i++ // Skip the next arg as it was the value
			continue
		}

		// Handle boolean flag like --verbose
		params[key] = "true"
	}
	return params
}
