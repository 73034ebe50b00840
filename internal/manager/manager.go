package manager

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"sync"
	"time"

	"github.com/example/nodeplugin/internal/process"
	"github.com/example/nodeplugin/pkg/grpc"
	"github.com/example/nodeplugin/pkg/logger"
	"github.com/example/nodeplugin/pkg/plugin"
	"github.com/example/nodeplugin/proto"
	"go.uber.org/zap"
)

// Status is the host's view of a registered plugin.
type Status string

const (
	StatusUnknown    Status = "unknown"
	StatusConnecting Status = "connecting"
	StatusHealthy    Status = "healthy"
	StatusUnhealthy  Status = "unhealthy"
)

const (
	defaultConnectTimeout = 5 * time.Second
	defaultStopGrace      = 5 * time.Second
	defaultMaxRestarts    = 3
	readyPollInterval     = 100 * time.Millisecond
	clientRetryWait       = time.Second
)

// PluginManager handles plugin lifecycle management
type PluginManager struct {
	config      *AppConfig
	plugins     map[string]*ManagedPlugin
	cache       *grpc.MetadataCache
	clientOpts  []grpc.ClientOption
	health      HealthCheck
	stopGrace   time.Duration
	maxRestarts int
	now         func() time.Time
	log         *zap.SugaredLogger
	mu          sync.RWMutex
	ctx         context.Context
	cancelFunc  context.CancelFunc
}

// ManagedPlugin represents a managed plugin instance
type ManagedPlugin struct {
	Kind            string
	Config          plugin.PluginConfig
	Client          *grpc.Client
	Cmd             *exec.Cmd
	Status          Status
	Metadata        *proto.GetMetadataResponse
	LastHealthCheck time.Time
	RestartCnt      int
	LastError       error
	Params          map[string]string

	stopMonitor context.CancelFunc
}

// PluginState is a snapshot of a managed plugin.
type PluginState struct {
	Kind            string            `json:"kind"`
	Name            string            `json:"name"`
	Type            plugin.PluginType `json:"type"`
	Address         string            `json:"address"`
	Status          Status            `json:"status"`
	Error           string            `json:"error,omitempty"`
	LastHealthCheck *time.Time        `json:"last_health_check,omitempty"`
	RestartCount    int               `json:"restart_count"`
	Category        string            `json:"category,omitempty"`
	Description     string            `json:"description,omitempty"`
	Version         string            `json:"version,omitempty"`
	Icon            string            `json:"icon,omitempty"`
	NodeType        string            `json:"node_type,omitempty"`

	Metadata *proto.GetMetadataResponse `json:"-"`
}

// Option configures a PluginManager.
type Option func(*PluginManager)

// WithClientOptions is applied to every plugin client the manager creates.
func WithClientOptions(opts ...grpc.ClientOption) Option {
	return func(pm *PluginManager) {
		pm.clientOpts = append(pm.clientOpts, opts...)
	}
}

// WithHealthCheck overrides the interval, retries and timeouts of the health
// monitor. Callbacks are ignored.
func WithHealthCheck(hc HealthCheck) Option {
	return func(pm *PluginManager) {
		pm.health = hc
	}
}

// WithStopGrace sets how long a local plugin may take to exit on interrupt.
func WithStopGrace(d time.Duration) Option {
	return func(pm *PluginManager) {
		pm.stopGrace = d
	}
}

// NewPluginManager creates a new plugin manager
func NewPluginManager(config *AppConfig, opts ...Option) *PluginManager {
	ctx, cancel := context.WithCancel(context.Background())
	pm := &PluginManager{
		config:  config,
		plugins: make(map[string]*ManagedPlugin),
		cache:   grpc.NewMetadataCache(0, 0),
		health: HealthCheck{
			Interval:   defaultHealthInterval,
			MaxRetries: 3,
			RetryDelay: 5 * time.Second,
		},
		stopGrace:   defaultStopGrace,
		maxRestarts: defaultMaxRestarts,
		now:         time.Now,
		log:         logger.NewLogger("manager"),
		ctx:         ctx,
		cancelFunc:  cancel,
	}
	for _, opt := range opts {
		opt(pm)
	}
	return pm
}

// StartAll starts every enabled plugin of the configuration. Failures are
// logged and returned together; the remaining plugins still start.
func (pm *PluginManager) StartAll() error {
	if pm.config == nil {
		return nil
	}
	var errs []error
	for _, cfg := range pm.config.Plugins {
		if !cfg.Enabled {
			continue
		}
		if err := pm.StartPlugin(cfg, nil); err != nil {
			pm.log.Errorw("failed to start plugin", "kind", cfg.Kind, "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// StartPlugin starts a plugin and manages its lifecycle. Local plugins are
// started as processes and must serve within the connect timeout; remote
// plugins are only dialed, and an unreachable one is kept as unhealthy.
func (pm *PluginManager) StartPlugin(config plugin.PluginConfig, params map[string]string) error {
	kind := config.Kind
	if !config.Enabled {
		return fmt.Errorf("plugin %s is disabled", kind)
	}

	pm.mu.Lock()
	if _, exists := pm.plugins[kind]; exists {
		pm.mu.Unlock()
		return fmt.Errorf("plugin %s is already running", kind)
	}
	managed := &ManagedPlugin{
		Kind:   kind,
		Config: config,
		Params: params,
		Status: StatusConnecting,
	}
	pm.plugins[kind] = managed
	pm.mu.Unlock()

	client, cmd, err := pm.connect(config, params)
	if err != nil {
		pm.mu.Lock()
		delete(pm.plugins, kind)
		pm.mu.Unlock()
		return err
	}

	pm.mu.Lock()
	managed.Client = client
	managed.Cmd = cmd
	if !config.HealthCheck {
		managed.Status = StatusUnknown
	}
	pm.mu.Unlock()

	if config.HealthCheck {
		ctx, cancel := context.WithTimeout(pm.ctx, connectTimeout(config))
		if _, err := pm.CheckHealth(ctx, kind); err != nil {
			pm.log.Warnw("plugin is not healthy", "kind", kind, "err", err)
		}
		cancel()
		pm.EnableHealthCheck(managed)
	}

	pm.log.Infow("plugin started", "kind", kind, "type", config.Type, "address", config.Address())
	return nil
}

// Register adds a plugin announced at runtime, replacing an entry of the same
// kind.
func (pm *PluginManager) Register(config plugin.PluginConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	if err := pm.StopPlugin(config.Kind); err == nil {
		pm.log.Infow("replacing registered plugin", "kind", config.Kind)
	}
	return pm.StartPlugin(config, nil)
}

func (pm *PluginManager) connect(config plugin.PluginConfig, params map[string]string) (*grpc.Client, *exec.Cmd, error) {
	var cmd *exec.Cmd
	if config.Type != plugin.PluginTypeRemote {
		var err error
		cmd, err = process.StartPluginFromConfig(pm.ctx, config, params)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to start plugin %s: %w", config.Kind, err)
		}
	}

	client, err := grpc.NewClientWithAddress(config.Address(), pm.clientOptions(config)...)
	if err != nil {
		if cmd != nil {
			_ = process.StopPlugin(cmd, pm.stopGrace)
		}
		return nil, nil, fmt.Errorf("failed to connect to plugin %s: %w", config.Kind, err)
	}

	if cmd != nil {
		if err := waitReady(pm.ctx, client, connectTimeout(config)); err != nil {
			client.Close()
			_ = process.StopPlugin(cmd, pm.stopGrace)
			return nil, nil, fmt.Errorf("plugin %s did not become ready: %w", config.Kind, err)
		}
	}
	return client, cmd, nil
}

func (pm *PluginManager) clientOptions(config plugin.PluginConfig) []grpc.ClientOption {
	opts := []grpc.ClientOption{
		grpc.WithMetadataCache(pm.cache),
		grpc.WithRetry(config.MaxRetries, clientRetryWait),
	}
	if config.RequestTimeout > 0 {
		opts = append(opts, grpc.WithRunTimeout(config.RequestTimeout))
	}
	return append(opts, pm.clientOpts...)
}

func connectTimeout(config plugin.PluginConfig) time.Duration {
	if config.ConnectTimeout > 0 {
		return config.ConnectTimeout
	}
	return defaultConnectTimeout
}

// waitReady polls the grpc health service until the plugin serves.
func waitReady(ctx context.Context, client *grpc.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		serving, err := client.Serving(ctx)
		if err == nil && serving {
			return nil
		}
		if err != nil {
			lastErr = err
		}
		select {
		case <-ctx.Done():
			if lastErr != nil {
				return fmt.Errorf("%w: %v", ctx.Err(), lastErr)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// CheckHealth probes a plugin once and records the outcome. The descriptor
// is fetched the first time the plugin is found healthy.
func (pm *PluginManager) CheckHealth(ctx context.Context, kind string) (*proto.HealthCheckResponse, error) {
	client, err := pm.GetClient(kind)
	if err != nil {
		return nil, err
	}

	resp, err := checkPlugin(ctx, client)
	pm.recordHealth(kind, err)
	if err != nil {
		return resp, err
	}

	pm.mu.RLock()
	managed, ok := pm.plugins[kind]
	needMetadata := ok && managed.Metadata == nil
	pm.mu.RUnlock()
	if needMetadata {
		md, err := client.GetMetadata(ctx)
		if err != nil {
			pm.log.Warnw("failed to fetch plugin metadata", "kind", kind, "err", err)
			return resp, nil
		}
		pm.mu.Lock()
		managed.Metadata = md
		pm.mu.Unlock()
	}
	return resp, nil
}

func (pm *PluginManager) recordHealth(kind string, err error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	managed, ok := pm.plugins[kind]
	if !ok {
		return
	}
	managed.LastHealthCheck = pm.now()
	managed.LastError = err
	if err != nil {
		managed.Status = StatusUnhealthy
		return
	}
	managed.Status = StatusHealthy
}

// EnableHealthCheck configures and starts the health monitor for a plugin.
// Unhealthy local plugins are restarted a limited number of times.
func (pm *PluginManager) EnableHealthCheck(plug *ManagedPlugin) {
	ctx, cancel := context.WithCancel(pm.ctx)
	pm.mu.Lock()
	plug.stopMonitor = cancel
	pm.mu.Unlock()

	kind := plug.Kind
	config := pm.health
	config.OnHealthy = func(*proto.HealthCheckResponse) {
		pm.recordHealth(kind, nil)
	}
	config.OnUnhealthy = func(err error) {
		pm.log.Warnw("plugin health check failed", "kind", kind, "err", err)
		pm.recordHealth(kind, err)
		pm.restartPlugin(kind)
	}

	go MonitorPluginHealth(ctx, func(ctx context.Context) (*proto.HealthCheckResponse, error) {
		client, err := pm.GetClient(kind)
		if err != nil {
			return nil, err
		}
		return checkPlugin(ctx, client)
	}, config)
}

// restartPlugin attempts to restart a failed local plugin
func (pm *PluginManager) restartPlugin(kind string) {
	pm.mu.Lock()
	plug, ok := pm.plugins[kind]
	if !ok || plug.Cmd == nil || plug.RestartCnt >= pm.maxRestarts {
		pm.mu.Unlock()
		return
	}
	plug.RestartCnt++
	attempt := plug.RestartCnt
	plug.Status = StatusConnecting
	oldClient, oldCmd := plug.Client, plug.Cmd
	config, params := plug.Config, plug.Params
	pm.mu.Unlock()

	pm.log.Infow("restarting plugin", "kind", kind, "attempt", attempt)
	oldClient.Close()
	if err := process.StopPlugin(oldCmd, pm.stopGrace); err != nil {
		pm.log.Warnw("failed to stop plugin process", "kind", kind, "err", err)
	}
	pm.cache.Invalidate(config.Address())

	client, cmd, err := pm.connect(config, params)

	pm.mu.Lock()
	current, ok := pm.plugins[kind]
	if !ok || current != plug {
		pm.mu.Unlock()
		if err == nil {
			client.Close()
			_ = process.StopPlugin(cmd, pm.stopGrace)
		}
		return
	}
	defer pm.mu.Unlock()
	if err != nil {
		plug.Status = StatusUnhealthy
		plug.LastError = fmt.Errorf("failed to restart plugin: %w", err)
		return
	}
	plug.Client = client
	plug.Cmd = cmd
	plug.Metadata = nil
}

// StopPlugin stops a running plugin
func (pm *PluginManager) StopPlugin(kind string) error {
	pm.mu.Lock()
	plug, exists := pm.plugins[kind]
	if !exists {
		pm.mu.Unlock()
		return fmt.Errorf("plugin %s is not running", kind)
	}
	delete(pm.plugins, kind)
	pm.mu.Unlock()

	pm.shutdown(plug)
	return nil
}

func (pm *PluginManager) shutdown(plug *ManagedPlugin) {
	if plug.stopMonitor != nil {
		plug.stopMonitor()
	}
	if plug.Client != nil {
		if err := plug.Client.Close(); err != nil {
			pm.log.Warnw("failed to close plugin client", "kind", plug.Kind, "err", err)
		}
	}
	// Only local plugins have a process
	if plug.Cmd != nil {
		if err := process.StopPlugin(plug.Cmd, pm.stopGrace); err != nil {
			pm.log.Warnw("failed to stop plugin process", "kind", plug.Kind, "err", err)
		}
	}
	pm.cache.Invalidate(plug.Config.Address())
}

// StopAll stops all running plugins
func (pm *PluginManager) StopAll() {
	pm.mu.Lock()
	plugins := make([]*ManagedPlugin, 0, len(pm.plugins))
	for kind, plug := range pm.plugins {
		plugins = append(plugins, plug)
		delete(pm.plugins, kind)
	}
	pm.mu.Unlock()

	for _, plug := range plugins {
		pm.shutdown(plug)
	}
	pm.cancelFunc()
}

// GetClient returns the client of a running plugin
func (pm *PluginManager) GetClient(kind string) (*grpc.Client, error) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	plug, exists := pm.plugins[kind]
	if !exists || plug.Client == nil {
		return nil, fmt.Errorf("plugin %s is not running", kind)
	}
	return plug.Client, nil
}

// Get returns a snapshot of one plugin.
func (pm *PluginManager) Get(kind string) (PluginState, bool) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	plug, exists := pm.plugins[kind]
	if !exists {
		return PluginState{}, false
	}
	return plug.state(), true
}

// List returns a snapshot of every plugin, ordered by kind.
func (pm *PluginManager) List() []PluginState {
	pm.mu.RLock()
	states := make([]PluginState, 0, len(pm.plugins))
	for _, plug := range pm.plugins {
		states = append(states, plug.state())
	}
	pm.mu.RUnlock()

	sort.Slice(states, func(i, j int) bool { return states[i].Kind < states[j].Kind })
	return states
}

func (p *ManagedPlugin) state() PluginState {
	s := PluginState{
		Kind:         p.Kind,
		Name:         p.Config.Name,
		Type:         p.Config.Type,
		Address:      p.Config.Address(),
		Status:       p.Status,
		RestartCount: p.RestartCnt,
		Category:     p.Config.Category,
		Description:  p.Config.Description,
		Version:      p.Config.Version,
		Icon:         p.Config.Icon,
		Metadata:     p.Metadata,
	}
	if p.LastError != nil {
		s.Error = p.LastError.Error()
	}
	if !p.LastHealthCheck.IsZero() {
		t := p.LastHealthCheck
		s.LastHealthCheck = &t
	}
	if md := p.Metadata; md != nil {
		if s.Category == "" {
			s.Category = plugin.CategoryName(md.Category)
		}
		if s.Description == "" {
			s.Description = md.Description
		}
		if s.Version == "" {
			s.Version = md.Version
		}
		if s.Icon == "" {
			s.Icon = md.Icon
		}
		if s.Name == "" {
			s.Name = md.DisplayName
		}
		s.NodeType = md.NodeType.String()
	}
	return s
}
