package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/internal/inventory/ledger"
	"github.com/tair/stock-ledger/internal/inventory/metrics"
	"github.com/tair/stock-ledger/internal/inventory/repository"
	"github.com/tair/stock-ledger/internal/inventory/reservation"
	"github.com/tair/stock-ledger/internal/inventory/usecase"
	"github.com/tair/stock-ledger/internal/inventory/usecase/command"
	"github.com/tair/stock-ledger/internal/inventory/usecase/query"
	"github.com/tair/stock-ledger/pkg/database"
)

func newTestClient(t *testing.T) (*InventoryServiceClient, *grpc.ClientConn) {
	t.Helper()

	db, err := database.NewSQLiteConnection(database.MemoryDSN(uuid.NewString()))
	require.NoError(t, err)
	repo := repository.NewGormRepository(db)
	require.NoError(t, repo.AutoMigrate())

	m := metrics.New(prometheus.NewRegistry())
	l := ledger.New(repo)
	engine := reservation.NewEngine(repo, l, nil, nil, m, reservation.Config{})

	commands := usecase.NewCommandHandlers(
		command.NewCreateOrUpdateStockHandler(l, nil, nil, m),
		command.NewReserveStockHandler(engine, 30*time.Minute),
		command.NewReleaseStockHandler(engine),
		command.NewReleaseOrderHandler(engine),
	)
	queries := usecase.NewQueryHandlers(
		query.NewGetStockHandler(l),
		query.NewListStockHandler(l),
		query.NewCheckStockHandler(l, nil, m),
		query.NewGetReservationHandler(engine),
	)

	server, _ := NewServer(NewInventoryGRPCServer(commands, queries))
	lis := bufconn.Listen(1 << 20)
	go server.Serve(lis)
	t.Cleanup(server.Stop)

	client, err := Dial("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client, client.conn
}

func TestStockRoundTrip(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	created, err := client.CreateOrUpdateStock(ctx, &CreateOrUpdateStockRequest{ProductID: 1, Location: "WAREHOUSE_A", DeltaQuantity: 10})
	require.NoError(t, err)
	assert.True(t, created.Success)
	require.NotNil(t, created.Stock)
	assert.Equal(t, 10, created.Stock.Quantity)

	_, err = client.CreateOrUpdateStock(ctx, &CreateOrUpdateStockRequest{ProductID: 1, Location: "WAREHOUSE_B", DeltaQuantity: 20})
	require.NoError(t, err)

	got, err := client.GetStock(ctx, &GetStockRequest{ID: created.Stock.ID})
	require.NoError(t, err)
	assert.Equal(t, "WAREHOUSE_A", got.Stock.Location)

	list, err := client.ListStock(ctx, &ListStockRequest{ProductID: 1})
	require.NoError(t, err)
	assert.Len(t, list.Records, 2)
	assert.Equal(t, 30, list.TotalQuantity)

	check, err := client.CheckStock(ctx, &CheckStockRequest{ProductID: 1, RequiredQuantity: 30})
	require.NoError(t, err)
	assert.True(t, check.Available)
	assert.Equal(t, 30, check.AvailableQuantity)
}

func TestReserveAndReleaseOverGRPC(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	_, err := client.CreateOrUpdateStock(ctx, &CreateOrUpdateStockRequest{ProductID: 2, DeltaQuantity: 100})
	require.NoError(t, err)

	ttl := 5
	reserved, err := client.ReserveStock(ctx, &ReserveStockRequest{ProductID: 2, Quantity: 80, OrderID: "order-1", TTLMinutes: &ttl})
	require.NoError(t, err)
	require.True(t, reserved.Success)
	assert.NotEmpty(t, reserved.ReservationID)
	require.NotNil(t, reserved.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), *reserved.ExpiresAt, time.Minute)
	assert.Equal(t, 100, reserved.AvailableQuantity)

	declined, err := client.ReserveStock(ctx, &ReserveStockRequest{ProductID: 2, Quantity: 30, OrderID: "order-2"})
	require.NoError(t, err)
	assert.False(t, declined.Success)
	assert.Empty(t, declined.ReservationID)
	assert.Equal(t, 20, declined.AvailableQuantity)
	assert.Equal(t, 30, declined.RequestedQuantity)

	res, err := client.GetReservation(ctx, &GetReservationRequest{ID: reserved.ReservationID})
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationActive, res.Reservation.Status)

	released, err := client.ReleaseStock(ctx, &ReleaseStockRequest{ReservationID: reserved.ReservationID})
	require.NoError(t, err)
	assert.True(t, released.Success)

	again, err := client.ReleaseStock(ctx, &ReleaseStockRequest{ReservationID: reserved.ReservationID})
	require.NoError(t, err)
	assert.False(t, again.Success)

	check, err := client.CheckStock(ctx, &CheckStockRequest{ProductID: 2, RequiredQuantity: 100})
	require.NoError(t, err)
	assert.True(t, check.Available)
}

func TestErrorCodes(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	_, err := client.GetStock(ctx, &GetStockRequest{ID: 404})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.ReserveStock(ctx, &ReserveStockRequest{ProductID: 1, Quantity: 0, OrderID: "o"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.CreateOrUpdateStock(ctx, &CreateOrUpdateStockRequest{ProductID: 1, DeltaQuantity: -1})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.GetReservation(ctx, &GetReservationRequest{ID: uuid.NewString()})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestHealthService(t *testing.T) {
	_, conn := newTestClient(t)

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func TestToStatus(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name string
		err  error
		code codes.Code
	}{
		{"invalid", domain.InvalidArgument("bad"), codes.InvalidArgument},
		{"not found", domain.NotFound("gone"), codes.NotFound},
		{"conflict", domain.Conflict("raced"), codes.Aborted},
		{"invariant", domain.InvariantViolation("broken"), codes.Internal},
		{"deadline", context.DeadlineExceeded, codes.DeadlineExceeded},
		{"store", errors.New("connection reset"), codes.Internal},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, status.Code(toStatus(ctx, tc.err)))
		})
	}

	st, _ := status.FromError(toStatus(ctx, errors.New("dsn secret")))
	assert.Equal(t, "internal error", st.Message())
}

func TestRecoveryInterceptor(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: fullMethod("GetStock")}

	_, err := RecoveryInterceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		panic("boom")
	})

	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestJSONCodec(t *testing.T) {
	c := jsonCodec{}
	assert.Equal(t, "json", c.Name())

	b, err := c.Marshal(&CheckStockRequest{ProductID: 3, RequiredQuantity: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"product_id":3,"required_quantity":2}`, string(b))

	var out CheckStockRequest
	require.NoError(t, c.Unmarshal(b, &out))
	assert.Equal(t, uint(3), out.ProductID)
	assert.NoError(t, c.Unmarshal(nil, &out))
}
