package grpc

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/tair/stock-ledger/pkg/logger"
)

// InventoryServiceClient is a typed client for the inventory service
type InventoryServiceClient struct {
	cc   grpc.ClientConnInterface
	conn *grpc.ClientConn
}

// NewInventoryServiceClient wraps an existing connection
func NewInventoryServiceClient(cc grpc.ClientConnInterface) *InventoryServiceClient {
	return &InventoryServiceClient{cc: cc}
}

// Dial creates a client connection with trace propagation and the JSON codec
func Dial(address string, opts ...grpc.DialOption) (*InventoryServiceClient, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}, opts...)

	conn, err := grpc.NewClient(address, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to inventory service: %w", err)
	}

	logger.Logger.Info().
		Str("address", address).
		Msg("Inventory Service gRPC client created")

	return &InventoryServiceClient{cc: conn, conn: conn}, nil
}

// Close closes the gRPC connection
func (c *InventoryServiceClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *InventoryServiceClient) CreateOrUpdateStock(ctx context.Context, req *CreateOrUpdateStockRequest, opts ...grpc.CallOption) (*StockResponse, error) {
	return invoke[StockResponse](ctx, c.cc, "CreateOrUpdateStock", req, opts)
}

func (c *InventoryServiceClient) GetStock(ctx context.Context, req *GetStockRequest, opts ...grpc.CallOption) (*StockResponse, error) {
	return invoke[StockResponse](ctx, c.cc, "GetStock", req, opts)
}

func (c *InventoryServiceClient) ListStock(ctx context.Context, req *ListStockRequest, opts ...grpc.CallOption) (*ListStockResponse, error) {
	return invoke[ListStockResponse](ctx, c.cc, "ListStock", req, opts)
}

func (c *InventoryServiceClient) CheckStock(ctx context.Context, req *CheckStockRequest, opts ...grpc.CallOption) (*CheckStockResponse, error) {
	return invoke[CheckStockResponse](ctx, c.cc, "CheckStock", req, opts)
}

func (c *InventoryServiceClient) ReserveStock(ctx context.Context, req *ReserveStockRequest, opts ...grpc.CallOption) (*ReserveStockResponse, error) {
	return invoke[ReserveStockResponse](ctx, c.cc, "ReserveStock", req, opts)
}

func (c *InventoryServiceClient) ReleaseStock(ctx context.Context, req *ReleaseStockRequest, opts ...grpc.CallOption) (*ReleaseStockResponse, error) {
	return invoke[ReleaseStockResponse](ctx, c.cc, "ReleaseStock", req, opts)
}

func (c *InventoryServiceClient) GetReservation(ctx context.Context, req *GetReservationRequest, opts ...grpc.CallOption) (*ReservationResponse, error) {
	return invoke[ReservationResponse](ctx, c.cc, "GetReservation", req, opts)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, req interface{}, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
