// Package auth carries the authenticated session identity through the
// request context.
package auth

import (
	"context"

	"github.com/Opnex/Ai-Developer-Library/library/internal/model"
)

// XSessionToken identifies the active session. The service keeps a single
// session per storage scope, mirroring the one-browser-tab model.
const XSessionToken = "X-Session-Token"

type ctxKey struct{}

type identity struct {
	username string
	role     model.Role
}

func SetAuthContext(ctx context.Context, username string, role model.Role) context.Context {
	return context.WithValue(ctx, ctxKey{}, identity{username: username, role: role})
}

func Username(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(identity)
	return id.username
}

func Role(ctx context.Context) model.Role {
	id, _ := ctx.Value(ctxKey{}).(identity)
	return id.role
}

func IsLibrarian(ctx context.Context) bool {
	return Role(ctx) == model.RoleLibrarian
}
