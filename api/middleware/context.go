package middleware

import "context"

type contextKey string

const ctxSessionID contextKey = "cart_session_id"

// SessionIDFromContext returns the cart session bound by the Session middleware.
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

// WithSessionID injects the cart session identifier into the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionID, sessionID)
}

const ctxSessionIssued contextKey = "cart_session_issued"

// SessionIssuedFromContext reports whether the Session middleware minted the
// id for this request, i.e. the client has no cart yet.
func SessionIssuedFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	issued, _ := ctx.Value(ctxSessionIssued).(bool)
	return issued
}

func withSessionIssued(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxSessionIssued, true)
}
