// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// traceIDs labels every entry written through Ctx for one request.
type traceIDs struct {
	request     string
	correlation string
}

type traceKey struct{}

func traceFrom(ctx context.Context) traceIDs {
	ids, _ := ctx.Value(traceKey{}).(traceIDs)
	return ids
}

// ContextWithRequestID attaches the HTTP request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	ids := traceFrom(ctx)
	ids.request = id
	return context.WithValue(ctx, traceKey{}, ids)
}

// ContextWithCorrelationID attaches a correlation ID.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	ids := traceFrom(ctx)
	ids.correlation = id
	return context.WithValue(ctx, traceKey{}, ids)
}

// ContextWithNewCorrelationID attaches a fresh 8-character correlation ID.
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return ContextWithCorrelationID(ctx, uuid.NewString()[:8])
}

// RequestIDFromContext returns the request ID, or "".
func RequestIDFromContext(ctx context.Context) string {
	return traceFrom(ctx).request
}

// CorrelationIDFromContext returns the correlation ID, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	return traceFrom(ctx).correlation
}

// Ctx returns the global logger annotated with the IDs carried by ctx.
//
//	logging.Ctx(ctx).Info().Msg("Session started")
//	// {"level":"info","request_id":"...","correlation_id":"3f2a9c1e",...}
func Ctx(ctx context.Context) *zerolog.Logger {
	l := Logger()
	ids := traceFrom(ctx)
	if ids == (traceIDs{}) {
		return &l
	}

	c := l.With()
	if ids.request != "" {
		c = c.Str("request_id", ids.request)
	}
	if ids.correlation != "" {
		c = c.Str("correlation_id", ids.correlation)
	}
	l = c.Logger()
	return &l
}
