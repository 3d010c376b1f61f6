package hookrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/experiment"
	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/hooks"
)

// #region service-desc

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "promptexperiments.v1.Hooks"

const (
	methodPromptBuild = "/" + ServiceName + "/PromptBuild"
	methodSessionEnd  = "/" + ServiceName + "/SessionEnd"
	methodStartup     = "/" + ServiceName + "/Startup"
)

// HooksServer is the server API for the hook service. Payloads use protobuf
// well-known types so hosts in any language can call it without generated stubs.
type HooksServer interface {
	PromptBuild(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SessionEnd(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	Startup(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
}

// ServiceDesc describes the hook service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*HooksServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "PromptBuild", Handler: promptBuildHandler},
		{MethodName: "SessionEnd", Handler: sessionEndHandler},
		{MethodName: "Startup", Handler: startupHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "promptexperiments/v1/hooks.proto",
}

func promptBuildHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HooksServer).PromptBuild(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodPromptBuild}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(HooksServer).PromptBuild(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func sessionEndHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HooksServer).SessionEnd(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodSessionEnd}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(HooksServer).SessionEnd(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func startupHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HooksServer).Startup(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodStartup}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(HooksServer).Startup(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// #endregion

// #region service

// Service adapts a hooks.Bus to HooksServer.
type Service struct {
	bus *hooks.Bus
}

// NewService wraps bus.
func NewService(bus *hooks.Bus) *Service {
	return &Service{bus: bus}
}

// Register attaches the hook service to s only when bus has handlers. An idle
// plugin leaves the service unregistered, so callers get Unimplemented.
func Register(s grpc.ServiceRegistrar, bus *hooks.Bus) bool {
	if !bus.Registered() {
		return false
	}
	s.RegisterService(&ServiceDesc, NewService(bus))
	return true
}

func (s *Service) PromptBuild(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	sessionKey, err := stringField(in, fieldSessionKey)
	if err != nil {
		return nil, err
	}
	sessionID, err := stringField(in, fieldSessionID)
	if err != nil {
		return nil, err
	}
	agentID, err := stringField(in, fieldAgentID)
	if err != nil {
		return nil, err
	}

	ov := s.bus.Dispatch(hooks.PromptBuild{
		SessionKey: sessionKey,
		SessionID:  sessionID,
		AgentID:    agentID,
	})
	return encodeOverlay(ov), nil
}

func (s *Service) SessionEnd(_ context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
	sessionKey, err := stringField(in, fieldSessionKey)
	if err != nil {
		return nil, err
	}
	sessionID, err := stringField(in, fieldSessionID)
	if err != nil {
		return nil, err
	}
	s.bus.Dispatch(hooks.SessionEnd{SessionKey: sessionKey, SessionID: sessionID})
	return &emptypb.Empty{}, nil
}

func (s *Service) Startup(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	s.bus.Dispatch(hooks.Startup{})
	return &emptypb.Empty{}, nil
}

// #endregion

// #region recovery

// RecoveryInterceptor turns a handler panic into codes.Internal so one bad
// call cannot take the host connection down.
func RecoveryInterceptor(logger experiment.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Printf("prompt-experiments: panic in %s: %v", info.FullMethod, r)
				err = status.Errorf(codes.Internal, "internal error in %s", info.FullMethod)
			}
		}()
		return handler(ctx, req)
	}
}

// #endregion
