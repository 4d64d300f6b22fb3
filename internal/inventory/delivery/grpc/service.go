package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully-qualified gRPC service name
const ServiceName = "inventory.v1.InventoryService"

// InventoryServiceServer is the server API for the inventory service
type InventoryServiceServer interface {
	CreateOrUpdateStock(ctx context.Context, req *CreateOrUpdateStockRequest) (*StockResponse, error)
	GetStock(ctx context.Context, req *GetStockRequest) (*StockResponse, error)
	ListStock(ctx context.Context, req *ListStockRequest) (*ListStockResponse, error)
	CheckStock(ctx context.Context, req *CheckStockRequest) (*CheckStockResponse, error)
	ReserveStock(ctx context.Context, req *ReserveStockRequest) (*ReserveStockResponse, error)
	ReleaseStock(ctx context.Context, req *ReleaseStockRequest) (*ReleaseStockResponse, error)
	GetReservation(ctx context.Context, req *GetReservationRequest) (*ReservationResponse, error)
}

// ServiceDesc describes the inventory service for grpc.Server.RegisterService.
// Messages travel with the JSON codec, so clients must call with
// grpc.CallContentSubtype("json").
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InventoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateOrUpdateStock", Handler: unaryHandler("CreateOrUpdateStock", InventoryServiceServer.CreateOrUpdateStock)},
		{MethodName: "GetStock", Handler: unaryHandler("GetStock", InventoryServiceServer.GetStock)},
		{MethodName: "ListStock", Handler: unaryHandler("ListStock", InventoryServiceServer.ListStock)},
		{MethodName: "CheckStock", Handler: unaryHandler("CheckStock", InventoryServiceServer.CheckStock)},
		{MethodName: "ReserveStock", Handler: unaryHandler("ReserveStock", InventoryServiceServer.ReserveStock)},
		{MethodName: "ReleaseStock", Handler: unaryHandler("ReleaseStock", InventoryServiceServer.ReleaseStock)},
		{MethodName: "GetReservation", Handler: unaryHandler("GetReservation", InventoryServiceServer.GetReservation)},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterInventoryServiceServer registers srv on s
func RegisterInventoryServiceServer(s grpc.ServiceRegistrar, srv InventoryServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryHandler[Req, Resp any](
	method string,
	call func(InventoryServiceServer, context.Context, *Req) (*Resp, error),
) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(InventoryServiceServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(method),
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(InventoryServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
