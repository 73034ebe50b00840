package plugin

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/example/nodeplugin/pkg/logger"
	"github.com/example/nodeplugin/proto"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	defaultRegisterRetries = 10
	defaultRegisterWait    = 3 * time.Second
)

// Registration is what a plugin announces to the host registry.
type Registration struct {
	Kind        string `json:"kind" binding:"required"`
	Name        string `json:"name"`
	Endpoint    string `json:"endpoint" binding:"required"`
	Enabled     bool   `json:"enabled"`
	HealthCheck bool   `json:"health_check"`
	Category    string `json:"category,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Color       string `json:"color,omitempty"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version,omitempty"`
}

// RegistrationFor describes a plugin serving md at endpoint.
func RegistrationFor(md *proto.GetMetadataResponse, kind, endpoint string) Registration {
	name := md.DisplayName
	if name == "" {
		name = md.Name
	}
	return Registration{
		Kind:        kind,
		Name:        name,
		Endpoint:    endpoint,
		Enabled:     true,
		HealthCheck: true,
		Category:    CategoryName(md.Category),
		Icon:        md.Icon,
		Description: md.Description,
		Version:     md.Version,
	}
}

// Config turns a registration into a remote registry entry.
func (r Registration) Config() (PluginConfig, error) {
	cfg := PluginConfig{}
	if err := defaults.Set(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to apply defaults: %w", err)
	}
	cfg.Kind = r.Kind
	cfg.Name = r.Name
	cfg.Type = PluginTypeRemote
	cfg.Endpoint = r.Endpoint
	cfg.Enabled = r.Enabled
	cfg.HealthCheck = r.HealthCheck
	cfg.Category = r.Category
	cfg.Icon = r.Icon
	cfg.Color = r.Color
	cfg.Description = r.Description
	cfg.Version = r.Version
	return cfg, cfg.Validate()
}

// CategoryName maps a node category to the host's category string.
func CategoryName(c proto.NodeCategory) string {
	if c == proto.NodeCategory_CATEGORY_UNSPECIFIED || !c.IsValid() {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(c.String(), "CATEGORY_"))
}

// Registrar announces a plugin to a host registry over HTTP.
type Registrar struct {
	client *resty.Client
	log    *zap.SugaredLogger
}

// NewRegistrar returns a registrar for the host at serverURL. Requests that
// fail to connect or get a 5xx answer are retried every wait, up to retries
// times; zero values select 10 retries every 3s.
func NewRegistrar(serverURL string, retries int, wait time.Duration) *Registrar {
	if retries <= 0 {
		retries = defaultRegisterRetries
	}
	if wait <= 0 {
		wait = defaultRegisterWait
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(serverURL, "/")).
		SetRetryCount(retries).
		SetRetryWaitTime(wait).
		SetRetryMaxWaitTime(wait).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || resp.StatusCode() >= http.StatusInternalServerError
		}).
		SetHeader("Content-Type", "application/json")

	return &Registrar{client: client, log: logger.NewLogger("register")}
}

// Register posts reg to the host registry.
func (r *Registrar) Register(ctx context.Context, reg Registration) error {
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(reg).
		Post("/api/plugins")
	if err != nil {
		return fmt.Errorf("failed to register plugin %s: %w", reg.Kind, err)
	}
	if resp.IsError() {
		return fmt.Errorf("failed to register plugin %s: host answered %s: %s",
			reg.Kind, resp.Status(), strings.TrimSpace(resp.String()))
	}

	r.log.Infow("plugin registered", "kind", reg.Kind, "endpoint", reg.Endpoint, "attempts", resp.Request.Attempt)
	return nil
}

// Deregister removes kind from the host registry. A missing entry is not an
// error.
func (r *Registrar) Deregister(ctx context.Context, kind string) error {
	resp, err := r.client.R().
		SetContext(ctx).
		SetPathParam("kind", kind).
		Delete("/api/plugins/{kind}")
	if err != nil {
		return fmt.Errorf("failed to deregister plugin %s: %w", kind, err)
	}
	if resp.IsError() && resp.StatusCode() != http.StatusNotFound {
		return fmt.Errorf("failed to deregister plugin %s: host answered %s", kind, resp.Status())
	}
	return nil
}
