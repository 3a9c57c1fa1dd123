package core

import (
	"context"
	"log/slog"

	"github.com/JonMunkholm/supplierdb/internal/logging"
)

type contextKey string

const (
	ctxKeyIPAddress contextKey = "client_ip"
	ctxKeyUserAgent contextKey = "user_agent"
)

// ContextWithClient records the caller's address and user agent so service
// log entries can name who changed a dataset.
func ContextWithClient(ctx context.Context, ip, userAgent string) context.Context {
	ctx = context.WithValue(ctx, ctxKeyIPAddress, ip)
	return context.WithValue(ctx, ctxKeyUserAgent, userAgent)
}

// ClientFromContext returns the values stored by ContextWithClient.
func ClientFromContext(ctx context.Context) (ip, userAgent string) {
	ip, _ = ctx.Value(ctxKeyIPAddress).(string)
	userAgent, _ = ctx.Value(ctxKeyUserAgent).(string)
	return ip, userAgent
}

// opLogger is the request logger plus the client recorded in ctx.
func opLogger(ctx context.Context, args ...any) *slog.Logger {
	ip, ua := ClientFromContext(ctx)
	if ip != "" {
		args = append(args, "client_ip", ip)
	}
	if ua != "" {
		args = append(args, "user_agent", ua)
	}
	return logging.WithFields(ctx, args...)
}
