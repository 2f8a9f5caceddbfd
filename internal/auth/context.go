package auth

import "context"

type ctxKey string

const ctxKeyUser ctxKey = "user"

// UserInfo is the request-scoped identity attached by the middleware.
type UserInfo struct {
	ID    int64
	Email string
	Role  string
}

func WithUser(ctx context.Context, u UserInfo) context.Context {
	return context.WithValue(ctx, ctxKeyUser, u)
}

func UserFromContext(ctx context.Context) (UserInfo, bool) {
	if v := ctx.Value(ctxKeyUser); v != nil {
		if u, ok := v.(UserInfo); ok {
			return u, true
		}
	}
	return UserInfo{}, false
}
