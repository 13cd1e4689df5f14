package handler

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/rl1809/inventory-service/internal/adapter/handler/pb"
	"github.com/rl1809/inventory-service/internal/adapter/storage"
	"github.com/rl1809/inventory-service/internal/core/domain"
	"github.com/rl1809/inventory-service/internal/core/service"
	"github.com/rl1809/inventory-service/pkg/logger"
)

type grpcEnv struct {
	store  *storage.MemoryStore
	conn   *grpc.ClientConn
	client pb.InventoryServiceClient
}

func newGRPCEnv(t *testing.T) *grpcEnv {
	t.Helper()
	store := storage.NewMemoryStore()
	svc := service.NewInventoryService(newStubCatalog(), store)

	srv, _ := NewGRPCServer(NewGRPCHandler(svc, logger.Nop()), GRPCConfig{
		APIKey: testAPIKey,
		Logger: logger.Nop(),
	})
	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &grpcEnv{store: store, conn: conn, client: pb.NewInventoryServiceClient(conn)}
}

func authed() context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), apiKeyMetadata, testAPIKey)
}

func TestGRPC_RequiresAPIKey(t *testing.T) {
	env := newGRPCEnv(t)

	_, err := env.client.GetInventory(context.Background(), &pb.GetInventoryRequest{ProductId: 1})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestGRPC_HealthIsPublic(t *testing.T) {
	env := newGRPCEnv(t)

	resp, err := healthpb.NewHealthClient(env.conn).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: pb.InventoryService_ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestGRPC_SetQuantityThenPurchase(t *testing.T) {
	env := newGRPCEnv(t)
	ctx := authed()

	inv, err := env.client.SetQuantity(ctx, &pb.SetQuantityRequest{ProductId: 1, Quantity: 5})
	require.NoError(t, err)
	assert.EqualValues(t, 5, inv.GetQuantity())
	require.NotNil(t, inv.GetProduct())
	assert.Equal(t, "1500", inv.GetProduct().Price)

	result, err := env.client.Purchase(ctx, &pb.PurchaseRequest{ProductId: 1, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, "Laptop", result.ProductName)
	assert.EqualValues(t, 2, result.QuantityPurchased)
	assert.EqualValues(t, 3, result.GetRemainingStock())

	got, err := env.client.GetInventory(ctx, &pb.GetInventoryRequest{ProductId: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 3, got.GetQuantity())
	assert.Equal(t, inv.Id, got.Id)
}

func TestGRPC_FaultCodes(t *testing.T) {
	env := newGRPCEnv(t)
	ctx := authed()
	_, err := env.store.Save(context.Background(), domain.Inventory{ProductID: 1, Quantity: 1})
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
		code codes.Code
	}{
		{name: "invalid product id", code: codes.InvalidArgument, call: func() error {
			_, err := env.client.GetInventory(ctx, &pb.GetInventoryRequest{})
			return err
		}},
		{name: "negative quantity", code: codes.InvalidArgument, call: func() error {
			_, err := env.client.SetQuantity(ctx, &pb.SetQuantityRequest{ProductId: 1, Quantity: -1})
			return err
		}},
		{name: "unknown product", code: codes.NotFound, call: func() error {
			_, err := env.client.Purchase(ctx, &pb.PurchaseRequest{ProductId: 99, Quantity: 1})
			return err
		}},
		{name: "no inventory", code: codes.NotFound, call: func() error {
			_, err := env.client.Purchase(ctx, &pb.PurchaseRequest{ProductId: 2, Quantity: 1})
			return err
		}},
		{name: "insufficient stock", code: codes.FailedPrecondition, call: func() error {
			_, err := env.client.Purchase(ctx, &pb.PurchaseRequest{ProductId: 1, Quantity: 5})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, status.Code(tt.call()))
		})
	}
}

func TestCodeForFault(t *testing.T) {
	assert.Equal(t, codes.Aborted, codeForFault(domain.FaultConflict))
	assert.Equal(t, codes.Unavailable, codeForFault(domain.FaultUpstreamUnavailable))
	assert.Equal(t, codes.Internal, codeForFault(""))
}

func TestUnaryRecovererConvertsPanic(t *testing.T) {
	interceptor := UnaryRecoverer(logger.Nop())
	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/x/y"},
		func(ctx context.Context, req any) (any, error) {
			panic("boom")
		})
	assert.Equal(t, codes.Internal, status.Code(err))
}
