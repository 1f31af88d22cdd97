// Package requestcontext provides transport-independent accessors for
// request-scoped values consumed by services.
//
// Usage in services:
//
//	filerID := requestcontext.FilerID(ctx)
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	id "efile/pkg/domain"
)

type (
	filerIDKey     struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

var (
	ContextKeyFilerID     = filerIDKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// FilerID retrieves the acting filer from the context.
// Returns the zero value if not set.
func FilerID(ctx context.Context) id.FilerID {
	if filerID, ok := ctx.Value(ContextKeyFilerID).(id.FilerID); ok {
		return filerID
	}
	return id.FilerID{}
}

// WithFilerID injects the acting filer into the context.
func WithFilerID(ctx context.Context, filerID id.FilerID) context.Context {
	return context.WithValue(ctx, ContextKeyFilerID, filerID)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (CLI, workers).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a fixed time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
