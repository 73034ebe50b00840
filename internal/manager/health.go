package manager

import (
	"context"
	"fmt"
	"time"

	"github.com/example/nodeplugin/pkg/grpc"
	"github.com/example/nodeplugin/proto"
)

const (
	defaultHealthInterval = 30 * time.Second
	defaultCheckTimeout   = 5 * time.Second
)

type HealthCheck struct {
	Interval     time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
	CheckTimeout time.Duration
	OnHealthy    func(*proto.HealthCheckResponse)
	OnUnhealthy  func(error)
}

// Probe performs one health check.
type Probe func(ctx context.Context) (*proto.HealthCheckResponse, error)

// ClientProbe probes a plugin through its HealthCheck RPC.
func ClientProbe(client *grpc.Client) Probe {
	return func(ctx context.Context) (*proto.HealthCheckResponse, error) {
		return checkPlugin(ctx, client)
	}
}

// checkPlugin succeeds only for a plugin reporting itself healthy.
func checkPlugin(ctx context.Context, client *grpc.Client) (*proto.HealthCheckResponse, error) {
	resp, err := client.HealthCheck(ctx)
	if err != nil {
		return nil, err
	}
	if resp.Status != proto.HealthStatus_HEALTH_STATUS_HEALTHY {
		return resp, fmt.Errorf("plugin reports %s: %s", resp.Status, resp.Message)
	}
	return resp, nil
}

// MonitorPluginHealth probes a plugin every interval until ctx is done. A
// check fails only after MaxRetries consecutive failed probes.
func MonitorPluginHealth(ctx context.Context, probe Probe, config HealthCheck) {
	if config.Interval <= 0 {
		config.Interval = defaultHealthInterval
	}
	if config.CheckTimeout <= 0 {
		config.CheckTimeout = defaultCheckTimeout
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 1
	}

	ticker := time.NewTicker(config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			resp, err := probeWithRetries(ctx, probe, config)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				if config.OnUnhealthy != nil {
					config.OnUnhealthy(err)
				}
				continue
			}
			if config.OnHealthy != nil {
				config.OnHealthy(resp)
			}
		}
	}
}

func probeWithRetries(ctx context.Context, probe Probe, config HealthCheck) (*proto.HealthCheckResponse, error) {
	var lastErr error
	for retry := 0; retry < config.MaxRetries; retry++ {
		if retry > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(config.RetryDelay):
			}
		}

		checkCtx, cancel := context.WithTimeout(ctx, config.CheckTimeout)
		resp, err := probe(checkCtx)
		cancel()
		if err == nil {
			return resp, nil
		}
		lastErr = fmt.Errorf("health check failed: %w", err)
	}
	return nil, lastErr
}
