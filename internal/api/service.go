// Package api declares the operator gRPC service of FieldLog. Messages are
// google.protobuf.Struct values carrying the JSON form of the types in
// messages.go, so server and client share one descriptor without generated
// stubs.
package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "fieldlog.v1.SessionService"

// Method names.
const (
	MethodPing             = "Ping"
	MethodSync             = "Sync"
	MethodAdvanceMovement  = "AdvanceMovement"
	MethodRollbackMovement = "RollbackMovement"
	MethodLogMovement      = "LogMovement"
	MethodLogTapeEvent     = "LogTapeEvent"
	MethodEditTapeEvent    = "EditTapeEvent"
	MethodDeleteEvent      = "DeleteEvent"
	MethodSelectDeployment = "SelectDeployment"
	MethodSwitchMode       = "SwitchMode"
	MethodEditTape         = "EditTape"
	MethodFootageUpload    = "FootageUploadURL"
	MethodFootageConfirm   = "ConfirmFootageUpload"
	MethodFootageDownload  = "FootageDownloadURL"
)

// FullMethod returns the gRPC path of method, e.g.
// "/fieldlog.v1.SessionService/Sync".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// SessionServiceServer is implemented by the gRPC server. Every method
// takes and returns a Struct.
type SessionServiceServer interface {
	Ping(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Sync(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AdvanceMovement(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RollbackMovement(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LogMovement(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LogTapeEvent(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EditTapeEvent(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteEvent(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SelectDeployment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SwitchMode(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EditTape(context.Context, *structpb.Struct) (*structpb.Struct, error)
	FootageUploadURL(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ConfirmFootageUpload(context.Context, *structpb.Struct) (*structpb.Struct, error)
	FootageDownloadURL(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type method func(SessionServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

var methods = map[string]method{
	MethodPing:             SessionServiceServer.Ping,
	MethodSync:             SessionServiceServer.Sync,
	MethodAdvanceMovement:  SessionServiceServer.AdvanceMovement,
	MethodRollbackMovement: SessionServiceServer.RollbackMovement,
	MethodLogMovement:      SessionServiceServer.LogMovement,
	MethodLogTapeEvent:     SessionServiceServer.LogTapeEvent,
	MethodEditTapeEvent:    SessionServiceServer.EditTapeEvent,
	MethodDeleteEvent:      SessionServiceServer.DeleteEvent,
	MethodSelectDeployment: SessionServiceServer.SelectDeployment,
	MethodSwitchMode:       SessionServiceServer.SwitchMode,
	MethodEditTape:         SessionServiceServer.EditTape,
	MethodFootageUpload:    SessionServiceServer.FootageUploadURL,
	MethodFootageConfirm:   SessionServiceServer.ConfirmFootageUpload,
	MethodFootageDownload:  SessionServiceServer.FootageDownloadURL,
}

func handler(name string, call method) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SessionServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
		h := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SessionServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, h)
	}
}

// ServiceDesc describes SessionService for grpc.Server.RegisterService.
var ServiceDesc = func() grpc.ServiceDesc {
	desc := grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*SessionServiceServer)(nil),
		Streams:     []grpc.StreamDesc{},
		Metadata:    "fieldlog/v1/session.proto",
	}
	for _, name := range MethodNames() {
		desc.Methods = append(desc.Methods, grpc.MethodDesc{MethodName: name, Handler: handler(name, methods[name])})
	}
	return desc
}()

// MethodNames lists the methods in declaration order.
func MethodNames() []string {
	return []string{
		MethodPing, MethodSync,
		MethodAdvanceMovement, MethodRollbackMovement, MethodLogMovement,
		MethodLogTapeEvent, MethodEditTapeEvent, MethodDeleteEvent,
		MethodSelectDeployment, MethodSwitchMode, MethodEditTape,
		MethodFootageUpload, MethodFootageConfirm, MethodFootageDownload,
	}
}

// RegisterSessionServiceServer registers srv on s.
func RegisterSessionServiceServer(s grpc.ServiceRegistrar, srv SessionServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}
