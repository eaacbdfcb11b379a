package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey int

const loggerKey contextKey = iota

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}

	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}

	return Default()
}

// WithField adds a single field to the logger in the context.
func WithField(ctx context.Context, key string, value any) context.Context {
	logCtx := addField(FromContext(ctx).With(), key, value)
	logger := logCtx.Logger()
	return WithLogger(ctx, &logger)
}

// WithFields adds structured fields to the logger in the context.
func WithFields(ctx context.Context, fields map[string]any) context.Context {
	logCtx := FromContext(ctx).With()
	for key, value := range fields {
		logCtx = addField(logCtx, key, value)
	}
	logger := logCtx.Logger()
	return WithLogger(ctx, &logger)
}

// WithEndpoint adds the data source endpoint ID to the logger.
func WithEndpoint(ctx context.Context, endpointID string) context.Context {
	return WithField(ctx, "endpoint", endpointID)
}

// WithDestination adds the compared destination label ("2" or "3").
func WithDestination(ctx context.Context, destination string) context.Context {
	return WithField(ctx, "destination", destination)
}

// WithOperation adds operation context to the logger.
func WithOperation(ctx context.Context, operation string) context.Context {
	return WithField(ctx, "operation", operation)
}

// HasLogger reports whether ctx carries its own logger.
func HasLogger(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	logger, ok := ctx.Value(loggerKey).(*zerolog.Logger)
	return ok && logger != nil
}
