package controllers

import (
	"net/http"
	"strings"

	"github.com/littlethreads/backend/api/responses"
	"github.com/littlethreads/backend/api/validators"
	usersvc "github.com/littlethreads/backend/internal/users"
	"github.com/littlethreads/backend/pkg/enums"
	pkgerrors "github.com/littlethreads/backend/pkg/errors"
	"github.com/littlethreads/backend/pkg/logger"
)

type createUserRequest struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	PasswordHash string `json:"password_hash" validate:"required"`
	Role         string `json:"role,omitempty"`
}

// UserCreate registers a user record with its empty cart. The password hash
// arrives pre-computed from the auth collaborator.
func UserCreate(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createUserRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := usersvc.CreateUserInput{
			Name:         payload.Name,
			Email:        payload.Email,
			PasswordHash: payload.PasswordHash,
		}
		if role := strings.TrimSpace(payload.Role); role != "" {
			parsed, err := enums.ParseUserRole(role)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
				return
			}
			input.Role = parsed
		}

		user, err := svc.CreateUserWithCart(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, user)
	}
}

func UserDetail(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := urlParamUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.GetUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}
