package manager

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/example/nodeplugin/pkg/plugin"
	"gopkg.in/yaml.v3"
)

// AppConfig represents the host configuration file
type AppConfig struct {
	Plugins []plugin.PluginConfig `yaml:"plugins"`
}

// LoadConfig loads the configuration from the specified file. Relative paths
// are resolved against the directory holding the file.
func LoadConfig(configPath string) (*AppConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	return ParseConfig(data, filepath.Dir(absPath))
}

// ParseConfig decodes and validates a configuration document.
func ParseConfig(data []byte, baseDir string) (*AppConfig, error) {
	var config AppConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	seen := make(map[string]bool, len(config.Plugins))
	for i := range config.Plugins {
		pluginConfig := &config.Plugins[i]
		if seen[pluginConfig.Kind] {
			return nil, fmt.Errorf("duplicate plugin kind %q", pluginConfig.Kind)
		}
		seen[pluginConfig.Kind] = true

		if pluginConfig.Type != plugin.PluginTypeRemote {
			if pluginConfig.Path != "" && !filepath.IsAbs(pluginConfig.Path) {
				pluginConfig.Path = filepath.Join(baseDir, pluginConfig.Path)
			}
			if pluginConfig.WorkingDir != "" && !filepath.IsAbs(pluginConfig.WorkingDir) {
				pluginConfig.WorkingDir = filepath.Join(baseDir, pluginConfig.WorkingDir)
			}
			if pluginConfig.WorkingDir == "" && pluginConfig.Path != "" {
				pluginConfig.WorkingDir = filepath.Dir(pluginConfig.Path)
			}
		}
		if pluginConfig.Name == "" {
			pluginConfig.Name = pluginConfig.Kind
		}
		if pluginConfig.Environment == nil {
			pluginConfig.Environment = make(map[string]string)
		}
		if pluginConfig.Defaults == nil {
			pluginConfig.Defaults = make(map[string]string)
		}

		if err := pluginConfig.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration for plugin %q: %w", pluginConfig.Kind, err)
		}
	}

	return &config, nil
}

// GetPluginConfig retrieves the configuration for a specific plugin kind
func (c *AppConfig) GetPluginConfig(kind string) (plugin.PluginConfig, error) {
	for _, p := range c.Plugins {
		if p.Kind == kind {
			return p, nil
		}
	}
	return plugin.PluginConfig{}, fmt.Errorf("plugin %q not found in configuration", kind)
}

// ListPlugins returns a list of all configured plugins with their descriptions
func (c *AppConfig) ListPlugins() []string {
	var result []string
	for _, p := range c.Plugins {
		line := fmt.Sprintf("%s: %s", p.Kind, p.Description)
		if !p.Enabled {
			line += " (disabled)"
		}
		result = append(result, line)
	}
	sort.Strings(result)
	return result
}

// SaveConfig saves the configuration to the specified file
func SaveConfig(config *AppConfig, configPath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
