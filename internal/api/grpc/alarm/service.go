package alarm

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "ironrise.v1.AlarmControl"

// Full method names.
const (
	ScheduleAlarmMethod = "/" + ServiceName + "/ScheduleAlarm"
	CancelAlarmMethod   = "/" + ServiceName + "/CancelAlarm"
	PlayAlarmMethod     = "/" + ServiceName + "/PlayAlarm"
	StopAlarmMethod     = "/" + ServiceName + "/StopAlarm"
	GetStatusMethod     = "/" + ServiceName + "/GetStatus"
)

// ControlServer is the server API for the AlarmControl service.
type ControlServer interface {
	ScheduleAlarm(ctx context.Context, isoTime *wrapperspb.StringValue) (*emptypb.Empty, error)
	CancelAlarm(ctx context.Context, req *emptypb.Empty) (*emptypb.Empty, error)
	PlayAlarm(ctx context.Context, path *wrapperspb.StringValue) (*emptypb.Empty, error)
	StopAlarm(ctx context.Context, req *emptypb.Empty) (*emptypb.Empty, error)
	GetStatus(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

// ServiceDesc describes the AlarmControl service for grpc.Server.
//
//nolint:gochecknoglobals // Service descriptors are package-level by gRPC convention.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ScheduleAlarm", Handler: scheduleAlarmHandler},
		{MethodName: "CancelAlarm", Handler: cancelAlarmHandler},
		{MethodName: "PlayAlarm", Handler: playAlarmHandler},
		{MethodName: "StopAlarm", Handler: stopAlarmHandler},
		{MethodName: "GetStatus", Handler: getStatusHandler},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterControlServer registers srv on the provided registrar.
func RegisterControlServer(registrar grpc.ServiceRegistrar, srv ControlServer) {
	registrar.RegisterService(&ServiceDesc, srv)
}

func scheduleAlarmHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(ControlServer).ScheduleAlarm(ctx, in) //nolint:forcetypeassert // Guaranteed by HandlerType.
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ScheduleAlarmMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ControlServer).ScheduleAlarm(ctx, req.(*wrapperspb.StringValue)) //nolint:forcetypeassert // Decoded above.
	}

	return interceptor(ctx, in, info, handler)
}

func cancelAlarmHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(ControlServer).CancelAlarm(ctx, in) //nolint:forcetypeassert // Guaranteed by HandlerType.
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CancelAlarmMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ControlServer).CancelAlarm(ctx, req.(*emptypb.Empty)) //nolint:forcetypeassert // Decoded above.
	}

	return interceptor(ctx, in, info, handler)
}

func playAlarmHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(ControlServer).PlayAlarm(ctx, in) //nolint:forcetypeassert // Guaranteed by HandlerType.
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PlayAlarmMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ControlServer).PlayAlarm(ctx, req.(*wrapperspb.StringValue)) //nolint:forcetypeassert // Decoded above.
	}

	return interceptor(ctx, in, info, handler)
}

func stopAlarmHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(ControlServer).StopAlarm(ctx, in) //nolint:forcetypeassert // Guaranteed by HandlerType.
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: StopAlarmMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ControlServer).StopAlarm(ctx, req.(*emptypb.Empty)) //nolint:forcetypeassert // Decoded above.
	}

	return interceptor(ctx, in, info, handler)
}

func getStatusHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(ControlServer).GetStatus(ctx, in) //nolint:forcetypeassert // Guaranteed by HandlerType.
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetStatusMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ControlServer).GetStatus(ctx, req.(*emptypb.Empty)) //nolint:forcetypeassert // Decoded above.
	}

	return interceptor(ctx, in, info, handler)
}

// ControlClient is the client stub for the AlarmControl service.
type ControlClient struct {
	cc grpc.ClientConnInterface
}

// NewControlClient creates a stub over the connection.
func NewControlClient(cc grpc.ClientConnInterface) *ControlClient {
	return &ControlClient{cc: cc}
}

// ScheduleAlarm calls AlarmControl.ScheduleAlarm.
func (c *ControlClient) ScheduleAlarm(ctx context.Context, isoTime string, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, ScheduleAlarmMethod, wrapperspb.String(isoTime), new(emptypb.Empty), opts...)
}

// CancelAlarm calls AlarmControl.CancelAlarm.
func (c *ControlClient) CancelAlarm(ctx context.Context, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, CancelAlarmMethod, new(emptypb.Empty), new(emptypb.Empty), opts...)
}

// PlayAlarm calls AlarmControl.PlayAlarm.
func (c *ControlClient) PlayAlarm(ctx context.Context, path string, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, PlayAlarmMethod, wrapperspb.String(path), new(emptypb.Empty), opts...)
}

// StopAlarm calls AlarmControl.StopAlarm.
func (c *ControlClient) StopAlarm(ctx context.Context, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, StopAlarmMethod, new(emptypb.Empty), new(emptypb.Empty), opts...)
}

// GetStatus calls AlarmControl.GetStatus.
func (c *ControlClient) GetStatus(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetStatusMethod, new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
