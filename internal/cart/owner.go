package cart

import (
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/littlethreads/backend/pkg/errors"
)

// OwnerRef identifies who a cart belongs to: a registered user or an anonymous
// session. Exactly one discriminator is set; there is no synthetic identity
// derived from the other.
type OwnerRef struct {
	userID    uuid.UUID
	sessionID string
}

// AuthenticatedOwner builds an owner reference for a registered user.
func AuthenticatedOwner(userID uuid.UUID) OwnerRef {
	return OwnerRef{userID: userID}
}

// GuestOwner builds an owner reference for a session-identified guest.
func GuestOwner(sessionID string) OwnerRef {
	return OwnerRef{sessionID: strings.TrimSpace(sessionID)}
}

// Authenticated reports whether the owner is a registered user.
func (o OwnerRef) Authenticated() bool {
	return o.userID != uuid.Nil
}

// UserID returns the user discriminator when present.
func (o OwnerRef) UserID() (uuid.UUID, bool) {
	return o.userID, o.userID != uuid.Nil
}

// SessionID returns the session discriminator when present.
func (o OwnerRef) SessionID() (string, bool) {
	return o.sessionID, o.sessionID != ""
}

// Validate ensures exactly one discriminator is set.
func (o OwnerRef) Validate() error {
	if o.userID == uuid.Nil && o.sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart owner requires a user id or a session id")
	}
	if o.userID != uuid.Nil && o.sessionID != "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart owner cannot carry both a user id and a session id")
	}
	return nil
}
