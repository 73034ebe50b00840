package plugin

import (
	"fmt"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// PluginType represents how the host reaches a plugin
type PluginType string

const (
	// PluginTypeBinary represents a Go binary plugin
	PluginTypeBinary PluginType = "binary"
	// PluginTypeCommand represents a plugin started with a custom command
	PluginTypeCommand PluginType = "command"
	// PluginTypeRemote represents a plugin running on a remote server
	PluginTypeRemote PluginType = "remote"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// PluginConfig is one registry entry of the host configuration
type PluginConfig struct {
	Kind        string            `yaml:"kind" json:"kind" validate:"required"`
	Name        string            `yaml:"name,omitempty" json:"name,omitempty"`
	Type        PluginType        `yaml:"type" json:"type" default:"binary"`
	Path        string            `yaml:"path,omitempty" json:"path,omitempty"`
	Port        int               `yaml:"port,omitempty" json:"port,omitempty" validate:"gte=0,lte=65535"`
	Command     string            `yaml:"command,omitempty" json:"command,omitempty"`
	Endpoint    string            `yaml:"endpoint,omitempty" json:"endpoint,omitempty" validate:"omitempty,hostname_port"`
	Enabled     bool              `yaml:"enabled" json:"enabled" default:"true"`
	HealthCheck bool              `yaml:"health_check" json:"health_check" default:"true"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Version     string            `yaml:"version,omitempty" json:"version,omitempty"`
	Category    string            `yaml:"category,omitempty" json:"category,omitempty" validate:"omitempty,oneof=trigger action condition transform integration utility ai media"`
	Icon        string            `yaml:"icon,omitempty" json:"icon,omitempty"`
	Color       string            `yaml:"color,omitempty" json:"color,omitempty"`
	Defaults    map[string]string `yaml:"defaults,omitempty" json:"defaults,omitempty"`
	WorkingDir  string            `yaml:"workdir,omitempty" json:"workdir,omitempty"`
	Environment map[string]string `yaml:"env,omitempty" json:"env,omitempty"`

	ConnectTimeout time.Duration `yaml:"connect_timeout" json:"connect_timeout" default:"5s" validate:"gte=0"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout" validate:"gte=0"`
	MaxRetries     int           `yaml:"max_retries" json:"max_retries" default:"3" validate:"gte=0,lte=10"`
	CredentialType string        `yaml:"credential_type,omitempty" json:"credential_type,omitempty"`
}

// UnmarshalYAML applies the struct defaults first so that explicit values,
// including false and zero, win over them.
func (p *PluginConfig) UnmarshalYAML(node *yaml.Node) error {
	type raw PluginConfig
	r := raw{}
	if err := defaults.Set(&r); err != nil {
		return fmt.Errorf("failed to apply defaults: %w", err)
	}
	if err := node.Decode(&r); err != nil {
		return err
	}
	*p = PluginConfig(r)
	return nil
}

// Validate checks if the plugin configuration is valid
func (p *PluginConfig) Validate() error {
	if err := validate.Struct(p); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errMessages []string
			for _, fieldErr := range validationErrors {
				errMessages = append(errMessages, fmt.Sprintf(
					"field '%s' failed validation: %v (rule: %s)",
					fieldErr.Field(), fieldErr.Value(), fieldErr.Tag()))
			}
			return fmt.Errorf("config validation failed: %s", strings.Join(errMessages, "; "))
		}
		return fmt.Errorf("config validation failed: %w", err)
	}

	switch p.Type {
	case PluginTypeBinary, PluginTypeCommand:
		if p.Path == "" {
			return fmt.Errorf("path is required for %s type plugins", p.Type)
		}
		if p.Port <= 0 {
			return fmt.Errorf("invalid port for local plugin: %d", p.Port)
		}
	case PluginTypeRemote:
		if p.Endpoint == "" {
			return fmt.Errorf("endpoint is required for remote-type plugins")
		}
	default:
		return fmt.Errorf("unsupported plugin type: %s", p.Type)
	}

	if p.Type == PluginTypeCommand {
		if p.Command == "" {
			return fmt.Errorf("command is required for command-type plugins")
		}
		if !strings.Contains(p.Command, "{port}") {
			return fmt.Errorf("command must contain {port} placeholder")
		}
	}

	return nil
}

// Address returns where the host dials the plugin.
func (p *PluginConfig) Address() string {
	if p.Type == PluginTypeRemote {
		return p.Endpoint
	}
	return fmt.Sprintf("localhost:%d", p.Port)
}

// GetStartCommand returns the appropriate command to start the plugin
func (p *PluginConfig) GetStartCommand(port int, args map[string]string) (string, []string, error) {
	// Convert the map to a slice of --key=value strings
	var argSlice []string
	for k, v := range args {
		argSlice = append(argSlice, fmt.Sprintf("--%s=%s", k, v))
	}
	argString := strings.Join(argSlice, " ")

	switch p.Type {
	case PluginTypeBinary:
		finalArgs := append([]string{"--port", fmt.Sprintf("%d", port)}, argSlice...)
		return p.Path, finalArgs, nil

	case PluginTypeCommand:
		if p.Command == "" {
			return "", nil, fmt.Errorf("command template not specified for command-type plugin")
		}

		// Replace placeholders
		cmd := strings.ReplaceAll(p.Command, "{port}", fmt.Sprintf("%d", port))
		cmd = strings.ReplaceAll(cmd, "{path}", p.Path)
		cmd = strings.ReplaceAll(cmd, "{args}", argString)

		// Split into command and arguments
		parts := strings.Fields(cmd)
		if len(parts) == 0 {
			return "", nil, fmt.Errorf("empty command after template substitution")
		}
		return parts[0], parts[1:], nil

	default:
		return "", nil, fmt.Errorf("unsupported plugin type: %s", p.Type)
	}
}
