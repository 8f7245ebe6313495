package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	cartsvc "github.com/littlethreads/backend/internal/cart"
	"github.com/littlethreads/backend/internal/catalog"
	pkgerrors "github.com/littlethreads/backend/pkg/errors"
)

const sessionIDHeader = "X-Session-Id"

func urlParamUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return parsed, nil
}

// ownerFromRequest resolves the cart owner from the request. Authenticated
// shoppers send user_id, guests send session_id (query or X-Session-Id
// header). Exactly one must be present.
func ownerFromRequest(r *http.Request) (cartsvc.OwnerRef, error) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		sessionID = strings.TrimSpace(r.Header.Get(sessionIDHeader))
	}

	if userID != "" && sessionID != "" {
		return cartsvc.OwnerRef{}, pkgerrors.New(pkgerrors.CodeValidation, "provide either user_id or session_id, not both")
	}
	if userID != "" {
		parsed, err := uuid.Parse(userID)
		if err != nil {
			return cartsvc.OwnerRef{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user_id")
		}
		return cartsvc.AuthenticatedOwner(parsed), nil
	}
	if sessionID != "" {
		return cartsvc.GuestOwner(sessionID), nil
	}
	return cartsvc.OwnerRef{}, pkgerrors.New(pkgerrors.CodeValidation, "user_id or session_id is required")
}

func selectorFromPayload(size string, color *string) catalog.VariantSelector {
	if color != nil && strings.TrimSpace(*color) == "" {
		color = nil
	}
	return catalog.VariantSelector{Size: strings.TrimSpace(size), Color: color}
}
