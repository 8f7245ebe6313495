package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/littlethreads/backend/api/responses"
	"github.com/littlethreads/backend/api/validators"
	"github.com/littlethreads/backend/internal/catalog"
	"github.com/littlethreads/backend/pkg/enums"
	pkgerrors "github.com/littlethreads/backend/pkg/errors"
	"github.com/littlethreads/backend/pkg/logger"
	"github.com/littlethreads/backend/pkg/pagination"
)

type sizeQuantityRequest struct {
	Size     string `json:"size" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=0"`
}

type colorRequest struct {
	Name      string                `json:"name" validate:"required"`
	HexCode   string                `json:"hex_code"`
	Inventory []sizeQuantityRequest `json:"inventory"`
}

type createProductRequest struct {
	Title           string                `json:"title" validate:"required"`
	Description     *string               `json:"description,omitempty"`
	Price           decimal.Decimal       `json:"price"`
	DiscountPercent int                   `json:"discount_percent" validate:"min=0,max=100"`
	Gender          string                `json:"gender" validate:"required"`
	Category        *string               `json:"category,omitempty"`
	Brand           *string               `json:"brand,omitempty"`
	Image           *string               `json:"image,omitempty"`
	Sizes           []sizeQuantityRequest `json:"sizes,omitempty"`
	Colors          []colorRequest        `json:"colors,omitempty"`
}

func (r createProductRequest) toCreateInput() (catalog.CreateProductInput, error) {
	gender, err := enums.ParseGender(strings.TrimSpace(r.Gender))
	if err != nil {
		return catalog.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid gender")
	}

	colors := make([]catalog.ColorInput, 0, len(r.Colors))
	for _, color := range r.Colors {
		colors = append(colors, catalog.ColorInput{
			Name:      strings.TrimSpace(color.Name),
			HexCode:   strings.TrimSpace(color.HexCode),
			Inventory: toSizeQuantityInputs(color.Inventory),
		})
	}

	return catalog.CreateProductInput{
		Title:           strings.TrimSpace(r.Title),
		Description:     r.Description,
		Price:           r.Price,
		DiscountPercent: r.DiscountPercent,
		Gender:          gender,
		Category:        r.Category,
		Brand:           r.Brand,
		Image:           r.Image,
		Sizes:           toSizeQuantityInputs(r.Sizes),
		Colors:          colors,
	}, nil
}

func toSizeQuantityInputs(entries []sizeQuantityRequest) []catalog.SizeQuantityInput {
	out := make([]catalog.SizeQuantityInput, 0, len(entries))
	for _, entry := range entries {
		out = append(out, catalog.SizeQuantityInput{Size: strings.TrimSpace(entry.Size), Quantity: entry.Quantity})
	}
	return out
}

func ProductCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

type updateProductRequest struct {
	Title           *string          `json:"title,omitempty"`
	Description     *string          `json:"description,omitempty"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	DiscountPercent *int             `json:"discount_percent,omitempty" validate:"omitempty,min=0,max=100"`
	Gender          *string          `json:"gender,omitempty"`
	Category        *string          `json:"category,omitempty"`
	Brand           *string          `json:"brand,omitempty"`
	Image           *string          `json:"image,omitempty"`
}

func ProductUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := urlParamUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalog.UpdateProductInput{
			Title:           payload.Title,
			Description:     payload.Description,
			Price:           payload.Price,
			DiscountPercent: payload.DiscountPercent,
			Category:        payload.Category,
			Brand:           payload.Brand,
			Image:           payload.Image,
		}
		if payload.Gender != nil {
			gender, err := enums.ParseGender(strings.TrimSpace(*payload.Gender))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid gender"))
				return
			}
			input.Gender = &gender
		}

		product, err := svc.UpdateProduct(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func ProductDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := urlParamUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func ProductDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := urlParamUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func ProductList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 10, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := catalog.ListFilters{
			Gender:   validators.QueryString(r, "gender"),
			Category: validators.QueryString(r, "category"),
			Brand:    validators.QueryString(r, "brand"),
		}
		if filters.Gender != nil {
			if _, err := enums.ParseGender(*filters.Gender); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid gender filter"))
				return
			}
		}

		result, err := svc.ListProducts(r.Context(), pagination.Params{Page: page, Limit: limit}, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ProductsLatest(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.LatestProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}
