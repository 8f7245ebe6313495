package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/littlethreads/backend/api/responses"
	"github.com/littlethreads/backend/api/validators"
	"github.com/littlethreads/backend/internal/catalog"
	pkgerrors "github.com/littlethreads/backend/pkg/errors"
	"github.com/littlethreads/backend/pkg/logger"
)

type variantQuantityRequest struct {
	Size     string  `json:"size" validate:"required"`
	Color    *string `json:"color,omitempty"`
	Quantity int     `json:"quantity"`
}

// InventorySet overwrites one variant's counter. Negative quantities clamp to
// zero; unknown variants are created.
func InventorySet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := urlParamUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload variantQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.SetQuantity(r.Context(), productID, selectorFromPayload(payload.Size, payload.Color), payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func InventoryAdd(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := urlParamUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload variantQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.AddStock(r.Context(), productID, selectorFromPayload(payload.Size, payload.Color), payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// InventorySell is the standalone decrement path used by back-office tooling;
// storefront purchases decrement through checkout instead.
func InventorySell(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := urlParamUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload variantQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Sell(r.Context(), productID, selectorFromPayload(payload.Size, payload.Color), payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

type addColorRequest struct {
	Name      string                `json:"name" validate:"required"`
	HexCode   string                `json:"hex_code"`
	Inventory []sizeQuantityRequest `json:"inventory"`
}

func ColorAdd(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := urlParamUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload addColorRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.AddColor(r.Context(), productID, catalog.AddColorInput{
			Name:      strings.TrimSpace(payload.Name),
			HexCode:   strings.TrimSpace(payload.HexCode),
			Inventory: toSizeQuantityInputs(payload.Inventory),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

type bulkColorInventoryRequest struct {
	Inventory []sizeQuantityRequest `json:"inventory" validate:"required,min=1,dive"`
}

// ColorBulkSet replaces one declared color's full size inventory.
func ColorBulkSet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := urlParamUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		color := strings.TrimSpace(chi.URLParam(r, "colorName"))
		if color == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "color name is required"))
			return
		}
		var payload bulkColorInventoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.BulkSetColorInventory(r.Context(), productID, color, toSizeQuantityInputs(payload.Inventory))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func ColorRemove(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := urlParamUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		color := strings.TrimSpace(chi.URLParam(r, "colorName"))
		if color == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "color name is required"))
			return
		}
		product, err := svc.RemoveColor(r.Context(), productID, color)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
