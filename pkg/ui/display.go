package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/example/nodeplugin/pkg/plugin"
	"github.com/example/nodeplugin/proto"
)

// DisplayPluginInfo prints plugin information in a formatted way
func DisplayPluginInfo(w io.Writer, md *proto.GetMetadataResponse, config plugin.PluginConfig) {
	fmt.Fprintf(w, "Plugin Information:\n")
	fmt.Fprintf(w, "  Kind: %s\n", config.Kind)
	fmt.Fprintf(w, "  Name: %s\n", md.Name)
	if md.DisplayName != "" {
		fmt.Fprintf(w, "  Display Name: %s\n", md.DisplayName)
	}
	fmt.Fprintf(w, "  Version: %s\n", md.Version)
	fmt.Fprintf(w, "  Description: %s\n", md.Description)
	fmt.Fprintf(w, "  Category: %s\n", plugin.CategoryName(md.Category))
	fmt.Fprintf(w, "  Node Type: %s\n", enumName(md.NodeType.String(), "NODE_TYPE_"))
	fmt.Fprintf(w, "  Type: %s\n", config.Type)

	// Build usage string
	var usageParams []string
	for _, def := range md.InputParameters {
		if def.Required {
			usageParams = append(usageParams, fmt.Sprintf("--%s <value>", def.Name))
		} else {
			usageParams = append(usageParams, fmt.Sprintf("[--%s <value>]", def.Name))
		}
	}
	fmt.Fprintf(w, "\nUsage:\n")
	fmt.Fprintf(w, "  app run %s %s\n\n", config.Kind, strings.Join(usageParams, " "))

	fmt.Fprintf(w, "Details:\n")
	fmt.Fprintf(w, "  Address: %s\n", config.Address())
	if config.Type == plugin.PluginTypeCommand {
		fmt.Fprintf(w, "  Command Template: %s\n", config.Command)
	}
	if config.WorkingDir != "" {
		fmt.Fprintf(w, "  Working Directory: %s\n", config.WorkingDir)
	}
	if len(config.Environment) > 0 {
		fmt.Fprintf(w, "  Environment Variables:\n")
		for _, k := range sortedKeys(config.Environment) {
			fmt.Fprintf(w, "    %s: %s\n", k, config.Environment[k])
		}
	}
	if caps := md.GetCapabilities(); caps != nil {
		fmt.Fprintf(w, "  Features: %s\n", strings.Join(plugin.SupportedFeatures(caps), ", "))
		if caps.MaxConcurrent > 0 {
			fmt.Fprintf(w, "  Max Concurrent Runs: %d\n", caps.MaxConcurrent)
		}
		if caps.DefaultTimeoutMs > 0 {
			fmt.Fprintf(w, "  Default Timeout: %dms\n", caps.DefaultTimeoutMs)
		}
	}
	if md.CredentialType != "" {
		fmt.Fprintf(w, "  Credential Type: %s\n", md.CredentialType)
	}

	fmt.Fprintf(w, "\nParameters:\n")
	for _, def := range md.InputParameters {
		fmt.Fprintf(w, "  - %s (%s):\n", def.Name, enumName(def.Type.String(), "PARAM_TYPE_"))
		if def.Description != "" {
			fmt.Fprintf(w, "      Description: %s\n", def.Description)
		}
		fmt.Fprintf(w, "      Required: %v\n", def.Required)
		if dv := def.GetDefaultValue(); !dv.IsNull() {
			fmt.Fprintf(w, "      Schema Default: %v\n", plugin.ValueToGo(dv))
		}
		if configDefault, ok := config.Defaults[def.Name]; ok {
			fmt.Fprintf(w, "      Config Default: %s\n", configDefault)
		}
		if len(def.Options) > 0 {
			allowed := make([]string, 0, len(def.Options))
			for _, opt := range def.Options {
				allowed = append(allowed, fmt.Sprintf("%v", plugin.ValueToGo(opt.GetValue())))
			}
			fmt.Fprintf(w, "      Allowed Values: %s\n", strings.Join(allowed, ", "))
		}
	}

	if len(md.OutputParameters) > 0 {
		fmt.Fprintf(w, "\nOutputs:\n")
		for _, def := range md.OutputParameters {
			fmt.Fprintf(w, "  - %s (%s)\n", def.Name, enumName(def.Type.String(), "PARAM_TYPE_"))
		}
	}
}

// DisplayExecutionSummary prints the execution summary in a formatted way
func DisplayExecutionSummary(w io.Writer, summary *plugin.ExecutionSummary) {
	fmt.Fprintf(w, "Plugin Summary: %s\n", summary.PluginName)
	fmt.Fprintf(w, "  Run ID: %s\n", summary.RunID)
	fmt.Fprintf(w, "  Success: %v\n", summary.Success)
	fmt.Fprintf(w, "  Duration: %.2fms\n", summary.Duration)
	if summary.Error != nil {
		fmt.Fprintf(w, "  Error: %v\n", summary.Error)
	}
	if len(summary.Metadata) > 0 {
		fmt.Fprintf(w, "  Metadata:\n")
		for _, k := range sortedKeys(summary.Metadata) {
			fmt.Fprintf(w, "    %s: %s\n", k, summary.Metadata[k])
		}
	}
	if len(summary.Metrics) > 0 {
		fmt.Fprintf(w, "  Metrics:\n")
		for _, k := range sortedKeys(summary.Metrics) {
			fmt.Fprintf(w, "    %s: %.2f\n", k, summary.Metrics[k])
		}
	}
}

// DisplayResult prints the outputs of a finished run.
func DisplayResult(w io.Writer, result *plugin.RunResult) {
	fmt.Fprintf(w, "Result: %s\n", enumName(result.Status.String(), "EXECUTION_STATUS_"))
	if result.ErrorCode != "" || result.ErrorMessage != "" {
		fmt.Fprintf(w, "  Error %s: %s\n", result.ErrorCode, result.ErrorMessage)
	}
	if len(result.Output) > 0 {
		fmt.Fprintf(w, "  Output:\n")
		for _, k := range sortedKeys(result.Output) {
			fmt.Fprintf(w, "    %s: %v\n", k, plugin.ValueToGo(result.Output[k]))
		}
	}
	fmt.Fprintf(w, "  Branch: %d\n", result.BranchIndex)
}

// DisplayHealth prints a health check response.
func DisplayHealth(w io.Writer, kind string, resp *proto.HealthCheckResponse) {
	fmt.Fprintf(w, "Plugin %s: %s\n", kind, enumName(resp.Status.String(), "HEALTH_STATUS_"))
	if resp.Message != "" {
		fmt.Fprintf(w, "  Message: %s\n", resp.Message)
	}
	fmt.Fprintf(w, "  Plugin Version: %s\n", resp.PluginVersion)
	fmt.Fprintf(w, "  Protocol Version: %s\n", resp.ProtocolVersion)
	fmt.Fprintf(w, "  Active Runs: %d\n", resp.ActiveRuns)
	if len(resp.SupportedFeatures) > 0 {
		fmt.Fprintf(w, "  Features: %s\n", strings.Join(resp.SupportedFeatures, ", "))
	}
}

// DisplayStop prints the outcome of a stop request.
func DisplayStop(w io.Writer, resp *proto.StopResponse) {
	fmt.Fprintf(w, "Stop %s: %s\n", resp.RunId, enumName(resp.Status.String(), "STOP_STATUS_"))
	if resp.Message != "" {
		fmt.Fprintf(w, "  Message: %s\n", resp.Message)
	}
}

func enumName(s, prefix string) string {
	return strings.ToLower(strings.TrimPrefix(s, prefix))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
