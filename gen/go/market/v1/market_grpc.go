package marketv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	MarketService_GetTickers_FullMethodName    = "/market.v1.MarketService/GetTickers"
	MarketService_GetTicker_FullMethodName     = "/market.v1.MarketService/GetTicker"
	MarketService_AddTicker_FullMethodName     = "/market.v1.MarketService/AddTicker"
	MarketService_RemoveTicker_FullMethodName  = "/market.v1.MarketService/RemoveTicker"
	MarketService_GetCandles_FullMethodName    = "/market.v1.MarketService/GetCandles"
	MarketService_StreamTickers_FullMethodName = "/market.v1.MarketService/StreamTickers"
	MarketService_StreamTrades_FullMethodName  = "/market.v1.MarketService/StreamTrades"
)

// MarketServiceClient is the client API for MarketService.
type MarketServiceClient interface {
	GetTickers(ctx context.Context, in *GetTickersRequest, opts ...grpc.CallOption) (*GetTickersResponse, error)
	GetTicker(ctx context.Context, in *GetTickerRequest, opts ...grpc.CallOption) (*GetTickerResponse, error)
	AddTicker(ctx context.Context, in *AddTickerRequest, opts ...grpc.CallOption) (*AddTickerResponse, error)
	RemoveTicker(ctx context.Context, in *RemoveTickerRequest, opts ...grpc.CallOption) (*RemoveTickerResponse, error)
	GetCandles(ctx context.Context, in *GetCandlesRequest, opts ...grpc.CallOption) (*GetCandlesResponse, error)
	StreamTickers(ctx context.Context, opts ...grpc.CallOption) (grpc.BidiStreamingClient[StreamTickersRequest, StreamTickersResponse], error)
	StreamTrades(ctx context.Context, in *StreamTradesRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[StreamTradesResponse], error)
}

type marketServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewMarketServiceClient returns a client whose calls are encoded with the
// JSON codec.
func NewMarketServiceClient(cc grpc.ClientConnInterface) MarketServiceClient {
	return &marketServiceClient{cc}
}

func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.StaticMethod(), grpc.CallContentSubtype(CodecName)}, opts...)
}

func (c *marketServiceClient) GetTickers(ctx context.Context, in *GetTickersRequest, opts ...grpc.CallOption) (*GetTickersResponse, error) {
	out := new(GetTickersResponse)
	if err := c.cc.Invoke(ctx, MarketService_GetTickers_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *marketServiceClient) GetTicker(ctx context.Context, in *GetTickerRequest, opts ...grpc.CallOption) (*GetTickerResponse, error) {
	out := new(GetTickerResponse)
	if err := c.cc.Invoke(ctx, MarketService_GetTicker_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *marketServiceClient) AddTicker(ctx context.Context, in *AddTickerRequest, opts ...grpc.CallOption) (*AddTickerResponse, error) {
	out := new(AddTickerResponse)
	if err := c.cc.Invoke(ctx, MarketService_AddTicker_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *marketServiceClient) RemoveTicker(ctx context.Context, in *RemoveTickerRequest, opts ...grpc.CallOption) (*RemoveTickerResponse, error) {
	out := new(RemoveTickerResponse)
	if err := c.cc.Invoke(ctx, MarketService_RemoveTicker_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *marketServiceClient) GetCandles(ctx context.Context, in *GetCandlesRequest, opts ...grpc.CallOption) (*GetCandlesResponse, error) {
	out := new(GetCandlesResponse)
	if err := c.cc.Invoke(ctx, MarketService_GetCandles_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *marketServiceClient) StreamTickers(ctx context.Context, opts ...grpc.CallOption) (grpc.BidiStreamingClient[StreamTickersRequest, StreamTickersResponse], error) {
	stream, err := c.cc.NewStream(ctx, &MarketService_ServiceDesc.Streams[0], MarketService_StreamTickers_FullMethodName, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	return &grpc.GenericClientStream[StreamTickersRequest, StreamTickersResponse]{ClientStream: stream}, nil
}

func (c *marketServiceClient) StreamTrades(ctx context.Context, in *StreamTradesRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[StreamTradesResponse], error) {
	stream, err := c.cc.NewStream(ctx, &MarketService_ServiceDesc.Streams[1], MarketService_StreamTrades_FullMethodName, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[StreamTradesRequest, StreamTradesResponse]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type MarketService_StreamTickersClient = grpc.BidiStreamingClient[StreamTickersRequest, StreamTickersResponse]
type MarketService_StreamTradesClient = grpc.ServerStreamingClient[StreamTradesResponse]

// MarketServiceServer is the server API for MarketService. Implementations
// must embed UnimplementedMarketServiceServer.
type MarketServiceServer interface {
	GetTickers(context.Context, *GetTickersRequest) (*GetTickersResponse, error)
	GetTicker(context.Context, *GetTickerRequest) (*GetTickerResponse, error)
	AddTicker(context.Context, *AddTickerRequest) (*AddTickerResponse, error)
	RemoveTicker(context.Context, *RemoveTickerRequest) (*RemoveTickerResponse, error)
	GetCandles(context.Context, *GetCandlesRequest) (*GetCandlesResponse, error)
	StreamTickers(grpc.BidiStreamingServer[StreamTickersRequest, StreamTickersResponse]) error
	StreamTrades(*StreamTradesRequest, grpc.ServerStreamingServer[StreamTradesResponse]) error
	mustEmbedUnimplementedMarketServiceServer()
}

type UnimplementedMarketServiceServer struct{}

func (UnimplementedMarketServiceServer) GetTickers(context.Context, *GetTickersRequest) (*GetTickersResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetTickers not implemented")
}
func (UnimplementedMarketServiceServer) GetTicker(context.Context, *GetTickerRequest) (*GetTickerResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetTicker not implemented")
}
func (UnimplementedMarketServiceServer) AddTicker(context.Context, *AddTickerRequest) (*AddTickerResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AddTicker not implemented")
}
func (UnimplementedMarketServiceServer) RemoveTicker(context.Context, *RemoveTickerRequest) (*RemoveTickerResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RemoveTicker not implemented")
}
func (UnimplementedMarketServiceServer) GetCandles(context.Context, *GetCandlesRequest) (*GetCandlesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetCandles not implemented")
}
func (UnimplementedMarketServiceServer) StreamTickers(grpc.BidiStreamingServer[StreamTickersRequest, StreamTickersResponse]) error {
	return status.Error(codes.Unimplemented, "method StreamTickers not implemented")
}
func (UnimplementedMarketServiceServer) StreamTrades(*StreamTradesRequest, grpc.ServerStreamingServer[StreamTradesResponse]) error {
	return status.Error(codes.Unimplemented, "method StreamTrades not implemented")
}
func (UnimplementedMarketServiceServer) mustEmbedUnimplementedMarketServiceServer() {}

type MarketService_StreamTickersServer = grpc.BidiStreamingServer[StreamTickersRequest, StreamTickersResponse]
type MarketService_StreamTradesServer = grpc.ServerStreamingServer[StreamTradesResponse]

func RegisterMarketServiceServer(s grpc.ServiceRegistrar, srv MarketServiceServer) {
	s.RegisterService(&MarketService_ServiceDesc, srv)
}

func unaryHandler[Req any, Res any](method string, call func(MarketServiceServer, context.Context, *Req) (*Res, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MarketServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(MarketServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func _MarketService_StreamTickers_Handler(srv any, stream grpc.ServerStream) error {
	return srv.(MarketServiceServer).StreamTickers(&grpc.GenericServerStream[StreamTickersRequest, StreamTickersResponse]{ServerStream: stream})
}

func _MarketService_StreamTrades_Handler(srv any, stream grpc.ServerStream) error {
	m := new(StreamTradesRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(MarketServiceServer).StreamTrades(m, &grpc.GenericServerStream[StreamTradesRequest, StreamTradesResponse]{ServerStream: stream})
}

var MarketService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "market.v1.MarketService",
	HandlerType: (*MarketServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetTickers",
			Handler:    unaryHandler(MarketService_GetTickers_FullMethodName, MarketServiceServer.GetTickers),
		},
		{
			MethodName: "GetTicker",
			Handler:    unaryHandler(MarketService_GetTicker_FullMethodName, MarketServiceServer.GetTicker),
		},
		{
			MethodName: "AddTicker",
			Handler:    unaryHandler(MarketService_AddTicker_FullMethodName, MarketServiceServer.AddTicker),
		},
		{
			MethodName: "RemoveTicker",
			Handler:    unaryHandler(MarketService_RemoveTicker_FullMethodName, MarketServiceServer.RemoveTicker),
		},
		{
			MethodName: "GetCandles",
			Handler:    unaryHandler(MarketService_GetCandles_FullMethodName, MarketServiceServer.GetCandles),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamTickers",
			Handler:       _MarketService_StreamTickers_Handler,
			ServerStreams: true,
			ClientStreams: true,
		},
		{
			StreamName:    "StreamTrades",
			Handler:       _MarketService_StreamTrades_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "market/v1/market.proto",
}
