package middleware

import (
	"context"

	pkgauth "github.com/angelmondragon/shopfront-backend/pkg/auth"
)

type contextKey string

const ctxCaller contextKey = "caller"

// WithCaller injects the authenticated caller into the context.
func WithCaller(ctx context.Context, caller pkgauth.Caller) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCaller, caller)
}

// CallerFromContext returns the caller seeded by Auth.
func CallerFromContext(ctx context.Context) (pkgauth.Caller, bool) {
	if ctx == nil {
		return pkgauth.Caller{}, false
	}
	caller, ok := ctx.Value(ctxCaller).(pkgauth.Caller)
	if !ok || caller.IsZero() {
		return pkgauth.Caller{}, false
	}
	return caller, true
}

func UserIDFromContext(ctx context.Context) string {
	caller, ok := CallerFromContext(ctx)
	if !ok {
		return ""
	}
	return caller.ID.String()
}
