package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/example/nodeplugin/pkg/plugin"
)

// Output is where started plugins write stdout and stderr.
var Output io.Writer = os.Stderr

// StartPluginFromConfig starts a local plugin process on its configured port.
// The process is killed when ctx is done.
func StartPluginFromConfig(ctx context.Context, config plugin.PluginConfig, params map[string]string) (*exec.Cmd, error) {
	if config.Type == plugin.PluginTypeRemote {
		return nil, fmt.Errorf("plugin %s is remote and has no process", config.Kind)
	}

	name, args, err := config.GetStartCommand(config.Port, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get start command: %w", err)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = config.WorkingDir
	cmd.Stdout = Output
	cmd.Stderr = Output
	cmd.Env = os.Environ()
	for k, v := range config.Environment {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start plugin: %w", err)
	}

	return cmd, nil
}

// StopPlugin interrupts a running plugin process and kills it if it has not
// exited after grace.
func StopPlugin(cmd *exec.Cmd, grace time.Duration) error {
	if cmd == nil || cmd.Process == nil {
		return fmt.Errorf("plugin process not found")
	}

	done := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(done)
	}()

	if err := cmd.Process.Signal(os.Interrupt); err != nil && !errors.Is(err, os.ErrProcessDone) {
		if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("failed to kill plugin: %w", err)
		}
	}

	select {
	case <-done:
		return nil
	case <-time.After(grace):
	}

	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to kill plugin: %w", err)
	}
	<-done
	return nil
}
