package internal

import (
	"context"
	"time"

	"github.com/amit1797/Eduadmin-sub000/internal/core/identity"
)

type ctxKey string

const (
	ContextUserKey   ctxKey = "user"
	ContextSchoolKey ctxKey = "schoolID"
)

func UserFromContext(ctx context.Context) (*identity.User, bool) {
	if ctx == nil {
		return nil, false
	}
	u, ok := ctx.Value(ContextUserKey).(*identity.User)
	return u, ok && u != nil
}

func ContextWithUser(ctx context.Context, u *identity.User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

func UserIDFromContext(ctx context.Context) string {
	if u, ok := UserFromContext(ctx); ok {
		return u.ID
	}
	return ""
}

// SchoolIDFromContext returns the tenant id resolved by the tenant guard.
func SchoolIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(ContextSchoolKey).(string); ok {
		return id
	}
	return ""
}

func ContextWithSchoolID(ctx context.Context, schoolID string) context.Context {
	return context.WithValue(ctx, ContextSchoolKey, schoolID)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
