package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/msvee3/Interview-prep/internal/apperr"
	"github.com/msvee3/Interview-prep/internal/models"
)

// UserLookup finds a profile by subject id.
type UserLookup interface {
	GetUserByID(ctx context.Context, uid string) (*models.User, error)
}

// IdentityCache is an optional cache in front of UserLookup. Get returns
// nil, nil on a miss.
type IdentityCache interface {
	Get(ctx context.Context, uid string) (*Identity, error)
	Set(ctx context.Context, id *Identity) error
}

type Guard struct {
	verifier TokenVerifier
	users    UserLookup
	cache    IdentityCache
	logger   *zap.Logger
}

// NewGuard builds a Guard. cache may be nil.
func NewGuard(verifier TokenVerifier, users UserLookup, cache IdentityCache, logger *zap.Logger) *Guard {
	return &Guard{verifier: verifier, users: users, cache: cache, logger: logger}
}

// ResolveIdentity verifies token and loads the caller's profile. It fails
// with ErrUnauthenticated when the token is invalid or no profile exists.
func (g *Guard) ResolveIdentity(ctx context.Context, token string) (*Identity, error) {
	uid, err := g.verifier.Verify(token)
	if err != nil {
		return nil, err
	}

	if g.cache != nil {
		cached, err := g.cache.Get(ctx, uid)
		if err != nil {
			g.logger.Warn("Identity cache read failed", zap.String("user_id", uid), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	user, err := g.users.GetUserByID(ctx, uid)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("%w: user profile not found", apperr.ErrUnauthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("load user profile: %w", err)
	}

	role := user.Role
	if role == "" {
		role = models.RoleUser
	}
	id := &Identity{UserID: user.UID, Role: role, Profile: user}

	if g.cache != nil {
		if err := g.cache.Set(ctx, id); err != nil {
			g.logger.Warn("Identity cache write failed", zap.String("user_id", uid), zap.Error(err))
		}
	}
	return id, nil
}
