// Hand-maintained counterpart of protoc-gen-go-grpc output for
// inventory.v1.InventoryService. Messages travel over the JSON codec in codec.go.

package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	InventoryService_ServiceName                 = "inventory.v1.InventoryService"
	InventoryService_GetInventory_FullMethodName = "/inventory.v1.InventoryService/GetInventory"
	InventoryService_SetQuantity_FullMethodName  = "/inventory.v1.InventoryService/SetQuantity"
	InventoryService_Purchase_FullMethodName     = "/inventory.v1.InventoryService/Purchase"
)

type InventoryServiceClient interface {
	GetInventory(ctx context.Context, in *GetInventoryRequest, opts ...grpc.CallOption) (*InventoryResponse, error)
	SetQuantity(ctx context.Context, in *SetQuantityRequest, opts ...grpc.CallOption) (*InventoryResponse, error)
	Purchase(ctx context.Context, in *PurchaseRequest, opts ...grpc.CallOption) (*PurchaseResponse, error)
}

type inventoryServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewInventoryServiceClient returns a client that always speaks the JSON codec.
func NewInventoryServiceClient(cc grpc.ClientConnInterface) InventoryServiceClient {
	return &inventoryServiceClient{cc: cc}
}

func (c *inventoryServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *inventoryServiceClient) GetInventory(ctx context.Context, in *GetInventoryRequest, opts ...grpc.CallOption) (*InventoryResponse, error) {
	out := new(InventoryResponse)
	if err := c.invoke(ctx, InventoryService_GetInventory_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *inventoryServiceClient) SetQuantity(ctx context.Context, in *SetQuantityRequest, opts ...grpc.CallOption) (*InventoryResponse, error) {
	out := new(InventoryResponse)
	if err := c.invoke(ctx, InventoryService_SetQuantity_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *inventoryServiceClient) Purchase(ctx context.Context, in *PurchaseRequest, opts ...grpc.CallOption) (*PurchaseResponse, error) {
	out := new(PurchaseResponse)
	if err := c.invoke(ctx, InventoryService_Purchase_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

type InventoryServiceServer interface {
	GetInventory(context.Context, *GetInventoryRequest) (*InventoryResponse, error)
	SetQuantity(context.Context, *SetQuantityRequest) (*InventoryResponse, error)
	Purchase(context.Context, *PurchaseRequest) (*PurchaseResponse, error)
}

// UnimplementedInventoryServiceServer can be embedded for forward compatibility.
type UnimplementedInventoryServiceServer struct{}

func (UnimplementedInventoryServiceServer) GetInventory(context.Context, *GetInventoryRequest) (*InventoryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetInventory not implemented")
}

func (UnimplementedInventoryServiceServer) SetQuantity(context.Context, *SetQuantityRequest) (*InventoryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SetQuantity not implemented")
}

func (UnimplementedInventoryServiceServer) Purchase(context.Context, *PurchaseRequest) (*PurchaseResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Purchase not implemented")
}

func RegisterInventoryServiceServer(s grpc.ServiceRegistrar, srv InventoryServiceServer) {
	s.RegisterService(&InventoryService_ServiceDesc, srv)
}

func _InventoryService_GetInventory_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetInventoryRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InventoryServiceServer).GetInventory(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: InventoryService_GetInventory_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InventoryServiceServer).GetInventory(ctx, req.(*GetInventoryRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _InventoryService_SetQuantity_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SetQuantityRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InventoryServiceServer).SetQuantity(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: InventoryService_SetQuantity_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InventoryServiceServer).SetQuantity(ctx, req.(*SetQuantityRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _InventoryService_Purchase_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PurchaseRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InventoryServiceServer).Purchase(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: InventoryService_Purchase_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InventoryServiceServer).Purchase(ctx, req.(*PurchaseRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var InventoryService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: InventoryService_ServiceName,
	HandlerType: (*InventoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetInventory", Handler: _InventoryService_GetInventory_Handler},
		{MethodName: "SetQuantity", Handler: _InventoryService_SetQuantity_Handler},
		{MethodName: "Purchase", Handler: _InventoryService_Purchase_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "inventory/v1/inventory.proto",
}
