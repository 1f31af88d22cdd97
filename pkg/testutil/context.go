// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"time"

	id "efile/pkg/domain"
	"efile/pkg/requestcontext"
)

// RequestContext returns a context pinned to now with a fixed request id, the
// way an inbound request would carry them.
func RequestContext(now time.Time) context.Context {
	return requestcontext.WithRequestID(requestcontext.WithTime(context.Background(), now), "req-test")
}

// Advance moves the pinned clock in ctx forward by d.
func Advance(ctx context.Context, d time.Duration) context.Context {
	return requestcontext.WithTime(ctx, requestcontext.Now(ctx).Add(d))
}

// AsFiler marks ctx as acting on behalf of filer.
func AsFiler(ctx context.Context, filer id.FilerID) context.Context {
	return requestcontext.WithFilerID(ctx, filer)
}

// DiscardLogger drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
