package handler

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/rl1809/inventory-service/internal/adapter/handler/pb"
	"github.com/rl1809/inventory-service/internal/core/domain"
	"github.com/rl1809/inventory-service/pkg/logger"
)

const (
	apiKeyMetadata     = "x-api-key"
	requestIDMetadata  = "x-request-id"
	healthMethodPrefix = "/grpc.health.v1.Health/"
)

type GRPCHandler struct {
	pb.UnimplementedInventoryServiceServer
	inventory Inventory
	logg      *logger.Logger
}

func NewGRPCHandler(inventory Inventory, logg *logger.Logger) *GRPCHandler {
	return &GRPCHandler{inventory: inventory, logg: logg}
}

func (h *GRPCHandler) GetInventory(ctx context.Context, req *pb.GetInventoryRequest) (*pb.InventoryResponse, error) {
	if req.GetProductId() <= 0 {
		return nil, status.Error(codes.InvalidArgument, "productId must be a positive integer")
	}

	inv, err := h.inventory.GetByProductID(ctx, req.GetProductId())
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return toInventoryResponse(inv), nil
}

func (h *GRPCHandler) SetQuantity(ctx context.Context, req *pb.SetQuantityRequest) (*pb.InventoryResponse, error) {
	if req.GetProductId() <= 0 {
		return nil, status.Error(codes.InvalidArgument, "productId must be a positive integer")
	}

	inv, err := h.inventory.UpdateQuantity(ctx, req.GetProductId(), int(req.GetQuantity()))
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return toInventoryResponse(inv), nil
}

func (h *GRPCHandler) Purchase(ctx context.Context, req *pb.PurchaseRequest) (*pb.PurchaseResponse, error) {
	if req.GetProductId() <= 0 {
		return nil, status.Error(codes.InvalidArgument, "productId must be a positive integer")
	}

	result, err := h.inventory.Purchase(ctx, req.GetProductId(), int(req.GetQuantity()))
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &pb.PurchaseResponse{
		ProductId:         result.ProductID,
		ProductName:       result.ProductName,
		QuantityPurchased: int32(result.QuantityPurchased),
		RemainingStock:    int32(result.RemainingStock),
	}, nil
}

func toInventoryResponse(inv *domain.Inventory) *pb.InventoryResponse {
	resp := &pb.InventoryResponse{
		Id:        inv.ID,
		ProductId: inv.ProductID,
		Quantity:  int32(inv.Quantity),
	}
	if p := inv.Product; p != nil {
		resp.Product = &pb.Product{
			Id:          p.ID,
			Name:        p.Name,
			Price:       p.Price.String(),
			Description: p.Description,
		}
	}
	return resp
}

// codeForFault maps a fault kind to the gRPC status code reported to callers.
func codeForFault(kind domain.FaultKind) codes.Code {
	switch kind {
	case domain.FaultInvalidRequest:
		return codes.InvalidArgument
	case domain.FaultNotFound:
		return codes.NotFound
	case domain.FaultInsufficientStock:
		return codes.FailedPrecondition
	case domain.FaultConflict:
		return codes.Aborted
	case domain.FaultUpstreamUnavailable:
		return codes.Unavailable
	}
	return codes.Internal
}

func (h *GRPCHandler) toStatus(ctx context.Context, err error) error {
	if fault := domain.AsFault(err); fault != nil {
		code := codeForFault(fault.Kind())
		if code == codes.Internal || code == codes.Unavailable {
			h.logg.Error(ctx, "grpc.error", err)
		}
		return status.Error(code, fault.Detail())
	}
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	h.logg.Error(ctx, "grpc.error", err)
	return status.Error(codes.Internal, "internal server error")
}

// UnaryAPIKey rejects calls whose x-api-key metadata does not match key.
// Health checks are always allowed.
func UnaryAPIKey(key string) grpc.UnaryServerInterceptor {
	expected := []byte(key)
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if strings.HasPrefix(info.FullMethod, healthMethodPrefix) {
			return next(ctx, req)
		}
		var provided string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get(apiKeyMetadata); len(vals) > 0 {
				provided = vals[0]
			}
		}
		if len(expected) == 0 || subtle.ConstantTimeCompare([]byte(provided), expected) != 1 {
			return nil, status.Error(codes.Unauthenticated, "API Key invalid or null")
		}
		return next(ctx, req)
	}
}

// UnaryLogging tags the context with a request id and logs completion.
func UnaryLogging(logg *logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		reqID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get(requestIDMetadata); len(vals) > 0 {
				reqID = vals[0]
			}
		}
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx = logg.WithRequestID(ctx, reqID)
		ctx = logg.WithField(ctx, "method", info.FullMethod)

		start := time.Now()
		resp, err := next(ctx, req)

		ctx = logg.WithFields(ctx, map[string]any{
			"code":        status.Code(err).String(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		logg.Info(ctx, "grpc.complete")
		return resp, err
	}
}

func UnaryRecoverer(logg *logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				ctx = logg.WithFields(ctx, map[string]any{"panic": rec})
				logg.Error(ctx, "panic.recovered", fmt.Errorf("panic: %v", rec))
				resp, err = nil, status.Error(codes.Internal, "internal server error")
			}
		}()
		return next(ctx, req)
	}
}

type GRPCConfig struct {
	APIKey string
	Logger *logger.Logger
}

// NewGRPCServer registers the inventory and health services on a new server.
func NewGRPCServer(h *GRPCHandler, cfg GRPCConfig, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	opts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			UnaryRecoverer(cfg.Logger),
			UnaryLogging(cfg.Logger),
			UnaryAPIKey(cfg.APIKey),
		),
	}, opts...)
	srv := grpc.NewServer(opts...)
	pb.RegisterInventoryServiceServer(srv, h)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus(pb.InventoryService_ServiceName, healthpb.HealthCheckResponse_SERVING)
	return srv, hs
}
