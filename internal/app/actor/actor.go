// Package actor carries the signed-in staff account through a request.
package actor

import (
	"context"
	"errors"

	"coastalstay/internal/domain/user"
)

var (
	ErrUnauthenticated = errors.New("actor: sign in required")
	ErrForbidden       = errors.New("actor: role not allowed")
)

type ctxKey struct{}

func WithStaff(ctx context.Context, staff *user.Staff) context.Context {
	return context.WithValue(ctx, ctxKey{}, staff)
}

func FromContext(ctx context.Context) (*user.Staff, bool) {
	staff, ok := ctx.Value(ctxKey{}).(*user.Staff)
	return staff, ok && staff != nil
}

// Restricted is implemented by messages that only staff may send.
type Restricted interface {
	RequiredRole() user.Role
}

// RoleAuthorizer rejects Restricted messages unless the actor holds the role.
type RoleAuthorizer struct{}

func (RoleAuthorizer) Authorize(ctx context.Context, message any) error {
	restricted, ok := message.(Restricted)
	if !ok {
		return nil
	}
	staff, ok := FromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	if !staff.Can(restricted.RequiredRole()) {
		return ErrForbidden
	}
	return nil
}
