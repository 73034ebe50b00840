package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	NodePluginService_GetMetadata_FullMethodName    = "/node_plugin.NodePluginService/GetMetadata"
	NodePluginService_Init_FullMethodName           = "/node_plugin.NodePluginService/Init"
	NodePluginService_Run_FullMethodName            = "/node_plugin.NodePluginService/Run"
	NodePluginService_Stop_FullMethodName           = "/node_plugin.NodePluginService/Stop"
	NodePluginService_TestCredential_FullMethodName = "/node_plugin.NodePluginService/TestCredential"
	NodePluginService_HealthCheck_FullMethodName    = "/node_plugin.NodePluginService/HealthCheck"
)

// NodePluginServiceClient is the client API for NodePluginService.
type NodePluginServiceClient interface {
	GetMetadata(ctx context.Context, in *GetMetadataRequest, opts ...grpc.CallOption) (*GetMetadataResponse, error)
	Init(ctx context.Context, in *InitRequest, opts ...grpc.CallOption) (*InitResponse, error)
	Run(ctx context.Context, in *RunRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[RunResponse], error)
	Stop(ctx context.Context, in *StopRequest, opts ...grpc.CallOption) (*StopResponse, error)
	TestCredential(ctx context.Context, in *TestCredentialRequest, opts ...grpc.CallOption) (*TestCredentialResponse, error)
	HealthCheck(ctx context.Context, in *HealthCheckRequest, opts ...grpc.CallOption) (*HealthCheckResponse, error)
}

type nodePluginServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewNodePluginServiceClient(cc grpc.ClientConnInterface) NodePluginServiceClient {
	return &nodePluginServiceClient{cc}
}

func (c *nodePluginServiceClient) GetMetadata(ctx context.Context, in *GetMetadataRequest, opts ...grpc.CallOption) (*GetMetadataResponse, error) {
	out := new(GetMetadataResponse)
	if err := c.cc.Invoke(ctx, NodePluginService_GetMetadata_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nodePluginServiceClient) Init(ctx context.Context, in *InitRequest, opts ...grpc.CallOption) (*InitResponse, error) {
	out := new(InitResponse)
	if err := c.cc.Invoke(ctx, NodePluginService_Init_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nodePluginServiceClient) Run(ctx context.Context, in *RunRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[RunResponse], error) {
	stream, err := c.cc.NewStream(ctx, &NodePluginService_ServiceDesc.Streams[0], NodePluginService_Run_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[RunRequest, RunResponse]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *nodePluginServiceClient) Stop(ctx context.Context, in *StopRequest, opts ...grpc.CallOption) (*StopResponse, error) {
	out := new(StopResponse)
	if err := c.cc.Invoke(ctx, NodePluginService_Stop_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nodePluginServiceClient) TestCredential(ctx context.Context, in *TestCredentialRequest, opts ...grpc.CallOption) (*TestCredentialResponse, error) {
	out := new(TestCredentialResponse)
	if err := c.cc.Invoke(ctx, NodePluginService_TestCredential_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nodePluginServiceClient) HealthCheck(ctx context.Context, in *HealthCheckRequest, opts ...grpc.CallOption) (*HealthCheckResponse, error) {
	out := new(HealthCheckResponse)
	if err := c.cc.Invoke(ctx, NodePluginService_HealthCheck_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// NodePluginService_RunClient is the stream a host reads Run frames from.
type NodePluginService_RunClient = grpc.ServerStreamingClient[RunResponse]

// NodePluginServiceServer is the server API for NodePluginService.
// Implementations must embed UnimplementedNodePluginServiceServer.
type NodePluginServiceServer interface {
	GetMetadata(context.Context, *GetMetadataRequest) (*GetMetadataResponse, error)
	Init(context.Context, *InitRequest) (*InitResponse, error)
	Run(*RunRequest, grpc.ServerStreamingServer[RunResponse]) error
	Stop(context.Context, *StopRequest) (*StopResponse, error)
	TestCredential(context.Context, *TestCredentialRequest) (*TestCredentialResponse, error)
	HealthCheck(context.Context, *HealthCheckRequest) (*HealthCheckResponse, error)
	mustEmbedUnimplementedNodePluginServiceServer()
}

// NodePluginService_RunServer is the stream a plugin writes Run frames to.
type NodePluginService_RunServer = grpc.ServerStreamingServer[RunResponse]

type UnimplementedNodePluginServiceServer struct{}

func (UnimplementedNodePluginServiceServer) GetMetadata(context.Context, *GetMetadataRequest) (*GetMetadataResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetMetadata not implemented")
}
func (UnimplementedNodePluginServiceServer) Init(context.Context, *InitRequest) (*InitResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Init not implemented")
}
func (UnimplementedNodePluginServiceServer) Run(*RunRequest, grpc.ServerStreamingServer[RunResponse]) error {
	return status.Errorf(codes.Unimplemented, "method Run not implemented")
}
func (UnimplementedNodePluginServiceServer) Stop(context.Context, *StopRequest) (*StopResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Stop not implemented")
}
func (UnimplementedNodePluginServiceServer) TestCredential(context.Context, *TestCredentialRequest) (*TestCredentialResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method TestCredential not implemented")
}
func (UnimplementedNodePluginServiceServer) HealthCheck(context.Context, *HealthCheckRequest) (*HealthCheckResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method HealthCheck not implemented")
}
func (UnimplementedNodePluginServiceServer) mustEmbedUnimplementedNodePluginServiceServer() {}

func RegisterNodePluginServiceServer(s grpc.ServiceRegistrar, srv NodePluginServiceServer) {
	s.RegisterService(&NodePluginService_ServiceDesc, srv)
}

func _NodePluginService_GetMetadata_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetMetadataRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodePluginServiceServer).GetMetadata(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: NodePluginService_GetMetadata_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(NodePluginServiceServer).GetMetadata(ctx, req.(*GetMetadataRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _NodePluginService_Init_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(InitRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodePluginServiceServer).Init(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: NodePluginService_Init_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(NodePluginServiceServer).Init(ctx, req.(*InitRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _NodePluginService_Run_Handler(srv any, stream grpc.ServerStream) error {
	m := new(RunRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(NodePluginServiceServer).Run(m, &grpc.GenericServerStream[RunRequest, RunResponse]{ServerStream: stream})
}

func _NodePluginService_Stop_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(StopRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodePluginServiceServer).Stop(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: NodePluginService_Stop_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(NodePluginServiceServer).Stop(ctx, req.(*StopRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _NodePluginService_TestCredential_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(TestCredentialRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodePluginServiceServer).TestCredential(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: NodePluginService_TestCredential_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(NodePluginServiceServer).TestCredential(ctx, req.(*TestCredentialRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _NodePluginService_HealthCheck_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(HealthCheckRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodePluginServiceServer).HealthCheck(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: NodePluginService_HealthCheck_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(NodePluginServiceServer).HealthCheck(ctx, req.(*HealthCheckRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var NodePluginService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "node_plugin.NodePluginService",
	HandlerType: (*NodePluginServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetMetadata", Handler: _NodePluginService_GetMetadata_Handler},
		{MethodName: "Init", Handler: _NodePluginService_Init_Handler},
		{MethodName: "Stop", Handler: _NodePluginService_Stop_Handler},
		{MethodName: "TestCredential", Handler: _NodePluginService_TestCredential_Handler},
		{MethodName: "HealthCheck", Handler: _NodePluginService_HealthCheck_Handler},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Run",
			Handler:       _NodePluginService_Run_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "node_plugin.proto",
}
