// Hand-maintained counterpart of protoc-gen-go-grpc output for
// inventory.v1.InventoryService. Messages travel over the JSON codec in codec.go.

package pb

type GetInventoryRequest struct {
	ProductId int64 `json:"productId"`
}

func (x *GetInventoryRequest) GetProductId() int64 {
	if x != nil {
		return x.ProductId
	}
	return 0
}

type SetQuantityRequest struct {
	ProductId int64 `json:"productId"`
	Quantity  int32 `json:"quantity"`
}

func (x *SetQuantityRequest) GetProductId() int64 {
	if x != nil {
		return x.ProductId
	}
	return 0
}

func (x *SetQuantityRequest) GetQuantity() int32 {
	if x != nil {
		return x.Quantity
	}
	return 0
}

type PurchaseRequest struct {
	ProductId int64 `json:"productId"`
	Quantity  int32 `json:"quantity"`
}

func (x *PurchaseRequest) GetProductId() int64 {
	if x != nil {
		return x.ProductId
	}
	return 0
}

func (x *PurchaseRequest) GetQuantity() int32 {
	if x != nil {
		return x.Quantity
	}
	return 0
}

type Product struct {
	Id          int64  `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

type InventoryResponse struct {
	Id        int64    `json:"id"`
	ProductId int64    `json:"productId"`
	Quantity  int32    `json:"quantity"`
	Product   *Product `json:"product,omitempty"`
}

func (x *InventoryResponse) GetQuantity() int32 {
	if x != nil {
		return x.Quantity
	}
	return 0
}

func (x *InventoryResponse) GetProduct() *Product {
	if x != nil {
		return x.Product
	}
	return nil
}

type PurchaseResponse struct {
	ProductId         int64  `json:"productId"`
	ProductName       string `json:"productName"`
	QuantityPurchased int32  `json:"quantityPurchased"`
	RemainingStock    int32  `json:"remainingStock"`
}

func (x *PurchaseResponse) GetRemainingStock() int32 {
	if x != nil {
		return x.RemainingStock
	}
	return 0
}
