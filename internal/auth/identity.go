// Package auth resolves bearer credentials into identities and enforces
// session ownership.
package auth

import (
	"context"
	"fmt"

	"github.com/msvee3/Interview-prep/internal/apperr"
	"github.com/msvee3/Interview-prep/internal/models"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID  string       `json:"userId"`
	Role    string       `json:"role"`
	Profile *models.User `json:"profile,omitempty"`
}

func (id *Identity) IsAdmin() bool {
	return id != nil && id.Role == models.RoleAdmin
}

type contextKey string

const identityKey contextKey = "identity"

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity stored by Authenticate.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok && id != nil
}

// RequireOwnerOrAdmin fails with ErrForbidden unless id owns interview or
// is an administrator.
func RequireOwnerOrAdmin(interview *models.Interview, id *Identity) error {
	if id == nil {
		return apperr.ErrUnauthenticated
	}
	if interview.UserID == id.UserID || id.IsAdmin() {
		return nil
	}
	return fmt.Errorf("%w: not authorized to view this interview", apperr.ErrForbidden)
}

func RequireAdmin(id *Identity) error {
	if id == nil {
		return apperr.ErrUnauthenticated
	}
	if !id.IsAdmin() {
		return fmt.Errorf("%w: administrator role required", apperr.ErrForbidden)
	}
	return nil
}
