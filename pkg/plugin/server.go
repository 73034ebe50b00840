package plugin

import (
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the fully qualified grpc service a plugin serves.
const ServiceName = "node_plugin.NodePluginService"

// Listen opens the TCP port a plugin serves on
func Listen(port int) (net.Listener, error) {
	if port <= 0 {
		return nil, fmt.Errorf("invalid port: %d", port)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", port, err)
	}
	return listener, nil
}

// NewGRPCServer creates the grpc server of a plugin. maxMessageSize bounds
// messages in both directions.
func NewGRPCServer(maxMessageSize int, opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{
		grpc.MaxRecvMsgSize(maxMessageSize),
		grpc.MaxSendMsgSize(maxMessageSize),
	}, opts...)
	return grpc.NewServer(opts...)
}

// StartHealthServer starts the gRPC health checking server
func StartHealthServer(server *grpc.Server) *health.Server {
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)
	return healthServer
}
