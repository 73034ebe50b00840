package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/example/nodeplugin/pkg/plugin"
	"github.com/example/nodeplugin/proto"
)

// outputHandler implements plugin.OutputHandler for the main application
type outputHandler struct {
	w          io.Writer
	pluginName string
	mutex      sync.Mutex
}

func NewOutputHandler(w io.Writer, pluginName string) plugin.OutputHandler {
	return &outputHandler{w: w, pluginName: pluginName}
}

func (h *outputHandler) OnLog(level proto.LogLevel, message string) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	_, err := fmt.Fprintf(h.w, "[%s] %s %s\n", h.pluginName, strings.ToUpper(enumName(level.String(), "LOG_LEVEL_")), message)
	return err
}

func (h *outputHandler) OnProgress(p plugin.Progress) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	_, err := fmt.Fprintf(h.w, "[%s] Progress: %.1f%% (%s - Step %d/%d)\n",
		h.pluginName, p.Percentage, p.Message, p.Current, p.Total)
	return err
}

func (h *outputHandler) OnResult(result *plugin.RunResult) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if result.Succeeded() {
		_, err := fmt.Fprintf(h.w, "[%s] Completed in %dms\n", h.pluginName, result.DurationMs)
		return err
	}
	status := strings.ToUpper(enumName(result.Status.String(), "EXECUTION_STATUS_"))
	if result.ErrorCode != "" {
		_, err := fmt.Fprintf(h.w, "[%s] %s %s: %s\n", h.pluginName, status, result.ErrorCode, result.ErrorMessage)
		return err
	}
	_, err := fmt.Fprintf(h.w, "[%s] %s %s\n", h.pluginName, status, result.ErrorMessage)
	return err
}
