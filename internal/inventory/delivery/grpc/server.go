package grpc

import (
	"context"
	"errors"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/internal/inventory/usecase"
	"github.com/tair/stock-ledger/internal/inventory/usecase/command"
	"github.com/tair/stock-ledger/internal/inventory/usecase/query"
	"github.com/tair/stock-ledger/pkg/logger"
)

// InventoryGRPCServer implements the InventoryService gRPC server
type InventoryGRPCServer struct {
	commands *usecase.CommandHandlers
	queries  *usecase.QueryHandlers
}

// NewInventoryGRPCServer creates a new gRPC server
func NewInventoryGRPCServer(commands *usecase.CommandHandlers, queries *usecase.QueryHandlers) *InventoryGRPCServer {
	return &InventoryGRPCServer{
		commands: commands,
		queries:  queries,
	}
}

// NewServer builds a grpc.Server with tracing, logging and recovery, and
// registers the inventory, health and reflection services on it.
func NewServer(srv *InventoryGRPCServer, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	opts = append([]grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor,
			LoggingInterceptor,
		),
	}, opts...)

	grpcServer := grpc.NewServer(opts...)
	RegisterInventoryServiceServer(grpcServer, srv)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	reflection.Register(grpcServer)

	return grpcServer, healthServer
}

// CreateOrUpdateStock applies a stock-in or adjustment
func (s *InventoryGRPCServer) CreateOrUpdateStock(ctx context.Context, req *CreateOrUpdateStockRequest) (*StockResponse, error) {
	record, err := s.commands.CreateOrUpdateStock.Handle(ctx, command.CreateOrUpdateStockCommand{
		ProductID:     req.ProductID,
		Location:      req.Location,
		DeltaQuantity: req.DeltaQuantity,
	})
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	return &StockResponse{
		Success: true,
		Message: "Stock updated successfully",
		Stock:   record,
	}, nil
}

// GetStock retrieves a stock record by ID
func (s *InventoryGRPCServer) GetStock(ctx context.Context, req *GetStockRequest) (*StockResponse, error) {
	record, err := s.queries.GetStock.Handle(ctx, query.GetStockQuery{ID: req.ID})
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	return &StockResponse{
		Success: true,
		Stock:   record,
	}, nil
}

// ListStock returns a product's per-location stock
func (s *InventoryGRPCServer) ListStock(ctx context.Context, req *ListStockRequest) (*ListStockResponse, error) {
	result, err := s.queries.ListStock.Handle(ctx, query.ListStockQuery{ProductID: req.ProductID})
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	return &ListStockResponse{
		ProductID:         result.ProductID,
		Records:           result.Records,
		TotalQuantity:     result.TotalQuantity,
		ReservedQuantity:  result.ReservedQuantity,
		AvailableQuantity: result.AvailableQuantity,
	}, nil
}

// CheckStock reports advisory availability
func (s *InventoryGRPCServer) CheckStock(ctx context.Context, req *CheckStockRequest) (*CheckStockResponse, error) {
	result, err := s.queries.CheckStock.Handle(ctx, query.CheckStockQuery{
		ProductID:        req.ProductID,
		RequiredQuantity: req.RequiredQuantity,
	})
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	return &CheckStockResponse{
		ProductID:         result.ProductID,
		Available:         result.Available,
		AvailableQuantity: result.AvailableQuantity,
		RequiredQuantity:  result.RequiredQuantity,
	}, nil
}

// ReserveStock reserves stock for an order. Insufficient stock is a
// successful call with Success=false.
func (s *InventoryGRPCServer) ReserveStock(ctx context.Context, req *ReserveStockRequest) (*ReserveStockResponse, error) {
	result, err := s.commands.ReserveStock.Handle(ctx, command.ReserveStockCommand{
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		OrderID:    req.OrderID,
		TTLMinutes: req.TTLMinutes,
	})
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	resp := &ReserveStockResponse{
		Success:           result.Success,
		Message:           result.Message,
		ReservationID:     result.ReservationID,
		AvailableQuantity: result.AvailableQuantity,
		RequestedQuantity: result.RequestedQuantity,
	}
	if res := result.Reservation; res != nil {
		expiresAt := res.ExpiresAt
		resp.ExpiresAt = &expiresAt
		resp.Allocations = res.Allocations
	}
	return resp, nil
}

// ReleaseStock releases a reservation. Unknown and already released
// reservations answer Success=false.
func (s *InventoryGRPCServer) ReleaseStock(ctx context.Context, req *ReleaseStockRequest) (*ReleaseStockResponse, error) {
	result, err := s.commands.ReleaseStock.Handle(ctx, command.ReleaseStockCommand{ReservationID: req.ReservationID})
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	resp := &ReleaseStockResponse{
		Success:       result.Released,
		ReservationID: req.ReservationID,
		Message:       "Reservation released successfully",
	}
	if !result.Released {
		resp.Message = "Reservation not found or already released"
	}
	return resp, nil
}

// GetReservation retrieves a reservation with its allocations
func (s *InventoryGRPCServer) GetReservation(ctx context.Context, req *GetReservationRequest) (*ReservationResponse, error) {
	res, err := s.queries.GetReservation.Handle(ctx, query.GetReservationQuery{ID: req.ID})
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &ReservationResponse{Reservation: res}, nil
}

// toStatus maps domain error kinds onto gRPC status codes
func toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, domain.ErrInvariantViolation):
		logger.Error(ctx).Err(err).Msg("gRPC: ledger invariant violated")
		return status.Error(codes.Internal, err.Error())
	default:
		logger.Error(ctx).Err(err).Msg("gRPC: request failed")
		return status.Error(codes.Internal, "internal error")
	}
}
