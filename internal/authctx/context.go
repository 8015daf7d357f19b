// Package authctx holds the request-context keys and values shared by
// the auth middleware and the feature handlers that read them. It is a
// leaf package so feature packages can read auth context without
// importing internal/auth itself.
package authctx

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	contextAccount contextKey = "account"
	contextProfile contextKey = "profile"
)

type AccountContext struct {
	AccountID uuid.UUID
	IsAdmin   bool
}

func WithAccount(ctx context.Context, ac AccountContext) context.Context {
	return context.WithValue(ctx, contextAccount, ac)
}

func WithProfile(ctx context.Context, profileID uuid.UUID) context.Context {
	return context.WithValue(ctx, contextProfile, profileID)
}

func AccountFromContext(ctx context.Context) *AccountContext {
	if v, ok := ctx.Value(contextAccount).(AccountContext); ok {
		return &v
	}
	return nil
}

func ProfileFromContext(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(contextProfile).(uuid.UUID)
	return v, ok
}
