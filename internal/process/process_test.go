package process

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/nodeplugin/pkg/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestStartPluginFromConfig(t *testing.T) {
	tmpDir := t.TempDir()
	sleeper := writeScript(t, tmpDir, "sleeper", "exec sleep 30")

	tests := []struct {
		name    string
		config  plugin.PluginConfig
		wantErr string
	}{
		{
			name: "missing binary",
			config: plugin.PluginConfig{
				Kind: "missing",
				Type: plugin.PluginTypeBinary,
				Path: filepath.Join(tmpDir, "non_existent_binary"),
				Port: 8080,
			},
			wantErr: "failed to start plugin",
		},
		{
			name: "remote plugin",
			config: plugin.PluginConfig{
				Kind:     "remote",
				Type:     plugin.PluginTypeRemote,
				Endpoint: "localhost:50051",
			},
			wantErr: "has no process",
		},
		{
			name: "command without template",
			config: plugin.PluginConfig{
				Kind: "cmd",
				Type: plugin.PluginTypeCommand,
				Path: sleeper,
				Port: 8082,
			},
			wantErr: "failed to get start command",
		},
		{
			name: "binary",
			config: plugin.PluginConfig{
				Kind: "sleeper",
				Type: plugin.PluginTypeBinary,
				Path: sleeper,
				Port: 8081,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := StartPluginFromConfig(context.Background(), tt.config, nil)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cmd.Process)
			assert.Equal(t, []string{sleeper, "--port", "8081"}, cmd.Args)
			assert.NoError(t, StopPlugin(cmd, time.Second))
		})
	}
}

func TestStartPluginFromConfig_Environment(t *testing.T) {
	tmpDir := t.TempDir()
	script := writeScript(t, tmpDir, "writer", `echo "$GREETING $1 $2" > out.txt`)

	cmd, err := StartPluginFromConfig(context.Background(), plugin.PluginConfig{
		Kind:        "writer",
		Type:        plugin.PluginTypeBinary,
		Path:        script,
		Port:        9000,
		WorkingDir:  tmpDir,
		Environment: map[string]string{"GREETING": "hello"},
	}, nil)
	require.NoError(t, err)

	out := filepath.Join(tmpDir, "out.txt")
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(out)
		return err == nil && len(data) > 0
	}, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, StopPlugin(cmd, time.Second))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "hello --port 9000", strings.TrimSpace(string(data)))
}

func TestStopPlugin(t *testing.T) {
	assert.Error(t, StopPlugin(nil, time.Second))

	tmpDir := t.TempDir()
	// ignores the interrupt, so only the kill ends it
	stubborn := writeScript(t, tmpDir, "stubborn", "trap '' INT\nwhile true; do sleep 1; done")

	cmd, err := StartPluginFromConfig(context.Background(), plugin.PluginConfig{
		Kind: "stubborn",
		Type: plugin.PluginTypeBinary,
		Path: stubborn,
		Port: 9001,
	}, nil)
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, StopPlugin(cmd, 200*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
	assert.NotNil(t, cmd.ProcessState)
}
