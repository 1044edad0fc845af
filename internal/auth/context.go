package auth

import (
	"context"
	"fmt"

	"github.com/rpattn/klinik/internal/domain"

	"github.com/google/uuid"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated user and the tenant they act in.
type Identity struct {
	UserID uuid.UUID
	Scope  domain.Scope
}

// Validate ensures every id is present.
func (i Identity) Validate() error {
	if i.UserID == uuid.Nil {
		return fmt.Errorf("user id is required")
	}
	if i.Scope.CompanyID == uuid.Nil {
		return fmt.Errorf("company id is required")
	}
	if i.Scope.PlantID == uuid.Nil {
		return fmt.Errorf("plant id is required")
	}
	return nil
}

// ContextWithIdentity returns a new context that carries the authenticated identity.
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext retrieves the authenticated identity from the context, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	identity, ok := ctx.Value(identityKey).(Identity)
	if !ok || identity.Validate() != nil {
		return Identity{}, false
	}
	return identity, true
}
