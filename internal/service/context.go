package service

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const (
	ctxUserIDKey ctxKey = "userID"
	ctxRoleKey   ctxKey = "role"
)

func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxUserIDKey, id)
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(ctxUserIDKey).(uuid.UUID)
	return v, ok
}

type Role string

const (
	RoleCustomer Role = "ROLE_CUSTOMER"
	RoleAdmin    Role = "ROLE_ADMIN"
)

func WithRole(ctx context.Context, r Role) context.Context {
	return context.WithValue(ctx, ctxRoleKey, r)
}

func RoleFromContext(ctx context.Context) (Role, bool) {
	v, ok := ctx.Value(ctxRoleKey).(Role)
	return v, ok
}

type caller struct {
	ID   uuid.UUID
	Role Role
}

func (c caller) IsOperator() bool { return c.Role == RoleAdmin }

// requireAuth treats a missing role as customer.
func requireAuth(ctx context.Context) (caller, error) {
	uid, ok := UserIDFromContext(ctx)
	if !ok || uid == uuid.Nil {
		return caller{}, ErrUnauthorized
	}
	role, ok := RoleFromContext(ctx)
	if !ok {
		role = RoleCustomer
	}
	return caller{ID: uid, Role: role}, nil
}

func requireOperator(ctx context.Context) (caller, error) {
	c, err := requireAuth(ctx)
	if err != nil {
		return caller{}, err
	}
	if !c.IsOperator() {
		return caller{}, ErrOperatorOnly
	}
	return c, nil
}
