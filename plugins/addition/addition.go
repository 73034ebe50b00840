package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/nodeplugin/pkg/plugin"
	"github.com/example/nodeplugin/proto"
)

const (
	pluginName    = "addition"
	pluginVersion = "1.0.0"
	maxNumbers    = 5
)

// Branches of an addition node.
const (
	branchAtLeast = 0
	branchBelow   = 1
)

// AdditionPlugin adds up to five numbers and branches on whether the sum
// reaches a threshold.
type AdditionPlugin struct {
	plugin.DefaultPlugin

	// step paces the running total so progress stays visible.
	step time.Duration
}

func NewAdditionPlugin() *AdditionPlugin {
	return &AdditionPlugin{step: 300 * time.Millisecond}
}

func numberParam(i int, required bool) *proto.ParameterDef {
	desc := fmt.Sprintf("Number %d to add", i)
	if !required {
		desc += " (optional)"
	}
	return &proto.ParameterDef{
		Name:        fmt.Sprintf("num%d", i),
		DisplayName: fmt.Sprintf("Number %d", i),
		Type:        proto.ParameterType_PARAM_TYPE_FLOAT,
		Description: desc,
		Required:    required,
		UiType:      proto.UIType_UI_TYPE_NUMBER,
	}
}

func (p *AdditionPlugin) Metadata() *proto.GetMetadataResponse {
	inputs := make([]*proto.ParameterDef, 0, maxNumbers+1)
	for i := 1; i <= maxNumbers; i++ {
		inputs = append(inputs, numberParam(i, i <= 2))
	}
	inputs = append(inputs, &proto.ParameterDef{
		Name:         "threshold",
		DisplayName:  "Threshold",
		Type:         proto.ParameterType_PARAM_TYPE_FLOAT,
		Description:  "Sums at or above it take branch 0, the others branch 1",
		DefaultValue: proto.NewDoubleValue(0),
		UiType:       proto.UIType_UI_TYPE_NUMBER,
	})

	return &proto.GetMetadataResponse{
		Name:            pluginName,
		DisplayName:     "Addition",
		Description:     "A plugin that adds a series of numbers together",
		Version:         pluginVersion,
		Icon:            "Plus",
		Category:        proto.NodeCategory_CATEGORY_UTILITY,
		NodeType:        proto.NodeType_NODE_TYPE_BRANCH,
		InputParameters: inputs,
		OutputParameters: []*proto.ParameterDef{
			{Name: "sum", DisplayName: "Sum", Type: proto.ParameterType_PARAM_TYPE_FLOAT},
			{Name: "expression", DisplayName: "Expression", Type: proto.ParameterType_PARAM_TYPE_STRING},
		},
		Capabilities: &proto.Capabilities{
			SupportsStreaming: true,
			SupportsCancel:    true,
			SupportsRetry:     true,
			MaxConcurrent:     4,
			DefaultTimeoutMs:  10000,
		},
	}
}

func (p *AdditionPlugin) Run(ctx context.Context, exec *plugin.ExecutionContext, events plugin.EventSink) (*plugin.Result, error) {
	if err := events.Log(proto.LogLevel_LOG_LEVEL_INFO, "Collecting numbers..."); err != nil {
		return nil, err
	}

	// num1..num5 in order; the resolved parameters are already type checked.
	var numbers []float64
	for i := 1; i <= maxNumbers; i++ {
		v := exec.Param(fmt.Sprintf("num%d", i))
		if v.IsNull() {
			continue
		}
		numbers = append(numbers, number(v))
	}
	if len(numbers) == 0 {
		return nil, plugin.NewExecutionError("NO_NUMBERS", "no numbers provided (use num1, num2, num3, etc.)", nil)
	}

	total := int32(len(numbers))
	var sum float64
	for i, num := range numbers {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.step):
		}

		sum += num
		if i > 0 {
			msg := fmt.Sprintf("Running total: %.2f + %.2f = %.2f", sum-num, num, sum)
			if err := events.Log(proto.LogLevel_LOG_LEVEL_DEBUG, msg); err != nil {
				return nil, err
			}
		}
		if err := events.Progress(int32(i+1), total, "Calculating"); err != nil {
			return nil, err
		}
	}

	expression := make([]string, 0, len(numbers))
	for _, num := range numbers {
		expression = append(expression, fmt.Sprintf("%.2f", num))
	}
	expr := fmt.Sprintf("%s = %.2f", strings.Join(expression, " + "), sum)
	if err := events.Log(proto.LogLevel_LOG_LEVEL_INFO, "Final result: "+expr); err != nil {
		return nil, err
	}

	branch := int32(branchAtLeast)
	if sum < number(exec.Param("threshold")) {
		branch = branchBelow
	}
	return &plugin.Result{
		Output:      map[string]any{"sum": sum, "expression": expr},
		BranchIndex: branch,
	}, nil
}

// number reads a FLOAT parameter, which may arrive as an int.
func number(v *proto.Value) float64 {
	if _, ok := v.GetKind().(*proto.Value_IntValue); ok {
		return float64(v.GetIntValue())
	}
	return v.GetDoubleValue()
}
