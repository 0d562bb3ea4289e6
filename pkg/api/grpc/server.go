// Package grpcapi exposes the calculator over gRPC. Messages are protobuf
// well-known types, so clients need no generated code beyond the protobuf
// runtime.
package grpcapi

import (
	"context"
	"errors"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lemonberrylabs/calculator/pkg/accumulator"
	"github.com/lemonberrylabs/calculator/pkg/expr"
	"github.com/lemonberrylabs/calculator/pkg/store"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "calculator.v1.Calculator"

// Full method names.
const (
	CalculateMethod = "/" + ServiceName + "/Calculate"
	ToPostfixMethod = "/" + ServiceName + "/ToPostfix"
	PressMethod     = "/" + ServiceName + "/Press"
)

// CalculatorServer is the server API for the Calculator service.
type CalculatorServer interface {
	Calculate(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	ToPostfix(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	Press(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// Server implements the Calculator gRPC service.
type Server struct {
	store  *store.Store
	logger *slog.Logger
	grpc   *grpc.Server
	health *health.Server
}

// New creates a new gRPC server wrapping the given session store.
func New(s *store.Store, logger *slog.Logger) *Server {
	srv := &Server{
		store:  s,
		logger: logger,
		health: health.NewServer(),
	}

	gs := grpc.NewServer(grpc.UnaryInterceptor(srv.logUnary))
	RegisterCalculatorServer(gs, srv)
	healthpb.RegisterHealthServer(gs, srv.health)
	reflection.Register(gs)
	srv.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	srv.grpc = gs

	return srv
}

// Serve serves gRPC requests on lis. lis is closed when Serve returns. A
// server stopped before Serve is called returns immediately with nil.
func (s *Server) Serve(lis net.Listener) error {
	if err := s.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// GracefulStop marks the service as not serving and gracefully stops the
// gRPC server.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

func (s *Server) logUnary(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	resp, err := handler(ctx, req)
	s.logger.Debug("grpc request", "method", info.FullMethod, "code", status.Code(err))
	return resp, err
}

// --- Calculator Service ---

// Calculate evaluates an expression. Failures are reported in-band as
// "Error", matching every other surface.
func (s *Server) Calculate(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return wrapperspb.String(expr.Calculate(req.GetValue())), nil
}

// ToPostfix converts an expression to postfix order.
func (s *Server) ToPostfix(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	pf, err := expr.ToPostfix(req.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return wrapperspb.String(pf), nil
}

// Press feeds inputs to a session. The request is {"session": name,
// "inputs": [...]}; an empty session name creates a new session.
func (s *Server) Press(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	name := fields["session"].GetStringValue()
	if name == "" {
		name = s.store.CreateSession().Name
	}

	var inputs []string
	for _, v := range fields["inputs"].GetListValue().GetValues() {
		str, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, status.Error(codes.InvalidArgument, "inputs must be strings")
		}
		inputs = append(inputs, str.StringValue)
	}

	sess, err := s.store.Press(name, inputs)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, status.Error(codes.NotFound, err.Error())
		case errors.Is(err, accumulator.ErrUnknownCommand):
			return nil, status.Error(codes.InvalidArgument, err.Error())
		default:
			return nil, status.Error(codes.Internal, err.Error())
		}
	}

	return structpb.NewStruct(map[string]interface{}{
		"session": sess.Name,
		"entry":   sess.Display.Entry,
		"pending": sess.Display.Pending,
	})
}
