package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// RegisterCalculatorServer registers srv with the gRPC server.
func RegisterCalculatorServer(s grpc.ServiceRegistrar, srv CalculatorServer) {
	s.RegisterService(&calculatorServiceDesc, srv)
}

var calculatorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CalculatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Calculate", Handler: calculateHandler},
		{MethodName: "ToPostfix", Handler: toPostfixHandler},
		{MethodName: "Press", Handler: pressHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "calculator/v1/calculator.proto",
}

func calculateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CalculatorServer).Calculate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CalculateMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CalculatorServer).Calculate(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func toPostfixHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CalculatorServer).ToPostfix(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ToPostfixMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CalculatorServer).ToPostfix(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func pressHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CalculatorServer).Press(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PressMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CalculatorServer).Press(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Client is a thin client for the Calculator service.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an existing connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Calculate evaluates expression on the server.
func (c *Client) Calculate(ctx context.Context, expression string, opts ...grpc.CallOption) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, CalculateMethod, wrapperspb.String(expression), out, opts...); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}

// ToPostfix converts expression to postfix on the server.
func (c *Client) ToPostfix(ctx context.Context, expression string, opts ...grpc.CallOption) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, ToPostfixMethod, wrapperspb.String(expression), out, opts...); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}

// Press feeds inputs to a session and returns the resulting display fields
// (session, entry, pending). An empty session creates one.
func (c *Client) Press(ctx context.Context, session string, inputs []string, opts ...grpc.CallOption) (map[string]interface{}, error) {
	list := make([]interface{}, len(inputs))
	for i, in := range inputs {
		list[i] = in
	}
	req, err := structpb.NewStruct(map[string]interface{}{
		"session": session,
		"inputs":  list,
	})
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, PressMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}
