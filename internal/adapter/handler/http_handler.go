package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rl1809/inventory-service/internal/core/domain"
	"github.com/rl1809/inventory-service/pkg/logger"
)

// Inventory is the orchestrator surface exposed over HTTP and gRPC.
type Inventory interface {
	GetByProductID(ctx context.Context, productID int64) (*domain.Inventory, error)
	UpdateQuantity(ctx context.Context, productID int64, quantity int) (*domain.Inventory, error)
	Purchase(ctx context.Context, productID int64, quantity int) (*domain.PurchaseResult, error)
}

type HTTPHandler struct {
	inventory Inventory
	logg      *logger.Logger
}

type InventoryHTTPRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  *int  `json:"quantity" validate:"required,max=2147483647"`
}

func NewHTTPHandler(inventory Inventory, logg *logger.Logger) *HTTPHandler {
	return &HTTPHandler{inventory: inventory, logg: logg}
}

func (h *HTTPHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil || productID <= 0 {
		writeFailure(w, http.StatusBadRequest, "Invalid request", "productId must be a positive integer")
		return
	}

	inv, err := h.inventory.GetByProductID(r.Context(), productID)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	id := inv.ID
	writeSuccess(w, resource{
		Type: "inventory",
		ID:   &id,
		Attributes: inventoryAttributes{
			Product:  toProductAttributes(inv.Product),
			Quantity: inv.Quantity,
		},
	})
}

func (h *HTTPHandler) UpdateInventory(w http.ResponseWriter, r *http.Request) {
	var req InventoryHTTPRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	inv, err := h.inventory.UpdateQuantity(r.Context(), req.ProductID, *req.Quantity)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	id := inv.ID
	writeSuccess(w, resource{
		Type: "inventory",
		ID:   &id,
		Attributes: savedInventoryAttributes{
			ID:        inv.ID,
			ProductID: inv.ProductID,
			Quantity:  inv.Quantity,
			Product:   toProductAttributes(inv.Product),
		},
	})
}

func (h *HTTPHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req InventoryHTTPRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	result, err := h.inventory.Purchase(r.Context(), req.ProductID, *req.Quantity)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	writeSuccess(w, resource{
		Type: "purchase",
		Attributes: purchaseAttributes{
			ProductID:         result.ProductID,
			ProductName:       result.ProductName,
			QuantityPurchased: result.QuantityPurchased,
			RemainingStock:    result.RemainingStock,
		},
	})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
