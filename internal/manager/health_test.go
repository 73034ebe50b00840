package manager

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/nodeplugin/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorPluginHealth(t *testing.T) {
	var calls atomic.Int32
	var failing atomic.Bool
	probe := func(ctx context.Context) (*proto.HealthCheckResponse, error) {
		calls.Add(1)
		if failing.Load() {
			return nil, errors.New("connection refused")
		}
		return &proto.HealthCheckResponse{Status: proto.HealthStatus_HEALTH_STATUS_HEALTHY}, nil
	}

	healthy := make(chan *proto.HealthCheckResponse, 16)
	unhealthy := make(chan error, 16)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		MonitorPluginHealth(ctx, probe, HealthCheck{
			Interval:    10 * time.Millisecond,
			MaxRetries:  3,
			RetryDelay:  time.Millisecond,
			OnHealthy: func(resp *proto.HealthCheckResponse) {
				select {
				case healthy <- resp:
				default:
				}
			},
			OnUnhealthy: func(err error) {
				select {
				case unhealthy <- err:
				default:
				}
			},
		})
		close(done)
	}()

	select {
	case resp := <-healthy:
		assert.Equal(t, proto.HealthStatus_HEALTH_STATUS_HEALTHY, resp.Status)
	case <-time.After(5 * time.Second):
		t.Fatal("no healthy callback")
	}

	before := calls.Load()
	failing.Store(true)
	select {
	case err := <-unhealthy:
		assert.EqualError(t, err, "health check failed: connection refused")
		// every failed check spends all of its retries
		assert.GreaterOrEqual(t, calls.Load()-before, int32(3))
	case <-time.After(5 * time.Second):
		t.Fatal("no unhealthy callback")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("monitor did not stop")
	}
}

func TestMonitorPluginHealth_RetryRecovers(t *testing.T) {
	var calls atomic.Int32
	probe := func(ctx context.Context) (*proto.HealthCheckResponse, error) {
		// the first probe of every check fails
		if calls.Add(1)%2 == 1 {
			return nil, errors.New("flaky")
		}
		return &proto.HealthCheckResponse{Status: proto.HealthStatus_HEALTH_STATUS_HEALTHY}, nil
	}

	var unhealthy atomic.Int32
	healthy := make(chan struct{}, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go MonitorPluginHealth(ctx, probe, HealthCheck{
		Interval:    10 * time.Millisecond,
		MaxRetries:  2,
		OnHealthy: func(*proto.HealthCheckResponse) {
			select {
			case healthy <- struct{}{}:
			default:
			}
		},
		OnUnhealthy: func(error) { unhealthy.Add(1) },
	})

	for i := 0; i < 3; i++ {
		select {
		case <-healthy:
		case <-time.After(5 * time.Second):
			t.Fatal("no healthy callback")
		}
	}
	assert.Zero(t, unhealthy.Load())
}

func TestMonitorPluginHealth_CheckTimeout(t *testing.T) {
	probe := func(ctx context.Context) (*proto.HealthCheckResponse, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	unhealthy := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go MonitorPluginHealth(ctx, probe, HealthCheck{
		Interval:     10 * time.Millisecond,
		CheckTimeout: 20 * time.Millisecond,
		OnUnhealthy: func(err error) {
			select {
			case unhealthy <- err:
			default:
			}
		},
	})

	select {
	case err := <-unhealthy:
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(5 * time.Second):
		t.Fatal("no unhealthy callback")
	}
}
