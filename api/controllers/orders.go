package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/littlethreads/backend/api/responses"
	"github.com/littlethreads/backend/api/validators"
	checkoutsvc "github.com/littlethreads/backend/internal/checkout"
	ordersvc "github.com/littlethreads/backend/internal/orders"
	"github.com/littlethreads/backend/pkg/enums"
	pkgerrors "github.com/littlethreads/backend/pkg/errors"
	"github.com/littlethreads/backend/pkg/logger"
	"github.com/littlethreads/backend/pkg/pagination"
)

type createOrderRequest struct {
	UserID      *string `json:"user_id,omitempty"`
	SessionID   *string `json:"session_id,omitempty"`
	GuestEmail  *string `json:"guest_email,omitempty" validate:"omitempty,email"`
	GuestName   *string `json:"guest_name,omitempty"`
	Address     *string `json:"address,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

// OrderCreate is the checkout endpoint: it converts the owner's cart into an
// order.
func OrderCreate(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := checkoutsvc.CreateOrderInput{
			SessionID:   payload.SessionID,
			GuestEmail:  payload.GuestEmail,
			GuestName:   payload.GuestName,
			Address:     payload.Address,
			PhoneNumber: payload.PhoneNumber,
		}
		if payload.UserID != nil {
			parsed, err := uuid.Parse(strings.TrimSpace(*payload.UserID))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user_id"))
				return
			}
			input.UserID = &parsed
		}

		order, err := svc.CreateOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func OrderDetail(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := urlParamUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func OrderList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		var status *enums.OrderStatus
		if raw := validators.QueryString(r, "status"); raw != nil {
			parsed, err := enums.ParseOrderStatus(*raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			status = &parsed
		}

		result, err := svc.ListOrders(r.Context(), pagination.Params{Page: page, Limit: limit}, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func OrdersByUser(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := urlParamUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orders, err := svc.ListOrdersByUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

type updateOrderRequest struct {
	Status      *string `json:"status,omitempty"`
	Address     *string `json:"address,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

// OrderUpdate decodes leniently: clients replaying a full order document only
// mutate status, address and phone number. Everything else is dropped.
func OrderUpdate(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := urlParamUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateOrderRequest
		if err := validators.DecodeJSONBodyLenient(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := ordersvc.UpdateOrderInput{
			Address:     payload.Address,
			PhoneNumber: payload.PhoneNumber,
		}
		if payload.Status != nil {
			status := enums.OrderStatus(strings.TrimSpace(*payload.Status))
			input.Status = &status
		}

		order, err := svc.UpdateOrder(r.Context(), orderID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func OrderDelete(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := urlParamUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteOrder(r.Context(), orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
