// Package sessionctx carries the authenticated owner of a request.
package sessionctx

import (
	"context"
	"strings"
)

type contextKey string

const ownerIDContextKey contextKey = "owner_user_id"

// DefaultOwner is used for every request when auth is disabled.
const DefaultOwner = "default"

func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerIDContextKey, ownerID)
}

func OwnerID(ctx context.Context) (string, bool) {
	ownerID, ok := ctx.Value(ownerIDContextKey).(string)
	if !ok || strings.TrimSpace(ownerID) == "" {
		return "", false
	}
	return ownerID, true
}

// OwnerOrDefault returns the request owner or DefaultOwner.
func OwnerOrDefault(ctx context.Context) string {
	if ownerID, ok := OwnerID(ctx); ok {
		return ownerID
	}
	return DefaultOwner
}
