package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rl1809/inventory-service/internal/core/domain"
	"github.com/rl1809/inventory-service/pkg/logger"
)

type resource struct {
	Type       string `json:"type"`
	ID         *int64 `json:"id,omitempty"`
	Attributes any    `json:"attributes"`
}

type successEnvelope struct {
	Data resource `json:"data"`
}

type apiError struct {
	Status string `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

type errorEnvelope struct {
	Errors []apiError `json:"errors"`
}

type productAttributes struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Price       json.Number `json:"price"`
	Description string      `json:"description"`
}

type inventoryAttributes struct {
	Product  *productAttributes `json:"product"`
	Quantity int                `json:"quantity"`
}

type savedInventoryAttributes struct {
	ID        int64              `json:"id"`
	ProductID int64              `json:"productId"`
	Quantity  int                `json:"quantity"`
	Product   *productAttributes `json:"product"`
}

type purchaseAttributes struct {
	ProductID         int64  `json:"productId"`
	ProductName       string `json:"productName"`
	QuantityPurchased int    `json:"quantityPurchased"`
	RemainingStock    int    `json:"remainingStock"`
}

func toProductAttributes(p *domain.Product) *productAttributes {
	if p == nil {
		return nil
	}
	return &productAttributes{
		ID:          p.ID,
		Name:        p.Name,
		Price:       json.Number(p.Price.String()),
		Description: p.Description,
	}
}

// statusForFault maps a fault kind to the HTTP status reported to callers.
func statusForFault(kind domain.FaultKind) int {
	switch kind {
	case domain.FaultInvalidRequest, domain.FaultInsufficientStock:
		return http.StatusBadRequest
	case domain.FaultNotFound:
		return http.StatusNotFound
	case domain.FaultConflict:
		return http.StatusConflict
	case domain.FaultUpstreamUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func titleForFault(f *domain.Fault) string {
	switch f.Kind() {
	case domain.FaultInvalidRequest:
		return "Invalid request"
	case domain.FaultNotFound:
		if f.Resource() == domain.ResourceInventory {
			return "Inventory not found"
		}
		return "Product not found"
	case domain.FaultInsufficientStock:
		return "Insufficient stock"
	case domain.FaultConflict:
		return "Concurrent update"
	case domain.FaultUpstreamUnavailable:
		return "Product service unavailable"
	}
	return "Unexpected error"
}

func writeSuccess(w http.ResponseWriter, data resource) {
	writeJSON(w, http.StatusOK, successEnvelope{Data: data})
}

func writeFailure(w http.ResponseWriter, status int, title, detail string) {
	writeJSON(w, status, errorEnvelope{Errors: []apiError{{
		Status: strconv.Itoa(status),
		Title:  title,
		Detail: detail,
	}}})
}

// writeError reports err to the caller. Faults keep their detail; any other
// error is logged and hidden behind a generic 500.
func writeError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	fault := domain.AsFault(err)
	if fault == nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			fault = domain.WrapFault(domain.FaultUpstreamUnavailable, err, "request cancelled before completion")
		} else {
			logg.Error(ctx, "request.error", err)
			writeFailure(w, http.StatusInternalServerError, "Unexpected error", "internal server error")
			return
		}
	}

	status := statusForFault(fault.Kind())
	if status >= http.StatusInternalServerError {
		logg.Error(logg.WithField(ctx, "fault", string(fault.Kind())), "request.error", err)
	}
	writeFailure(w, status, titleForFault(fault), fault.Detail())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
