// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSlogToZerologLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		slogLevel slog.Level
		want      zerolog.Level
	}{
		{slog.LevelDebug - 4, zerolog.TraceLevel},
		{slog.LevelDebug, zerolog.DebugLevel},
		{slog.LevelInfo, zerolog.InfoLevel},
		{slog.LevelWarn, zerolog.WarnLevel},
		{slog.LevelError, zerolog.ErrorLevel},
		{slog.LevelError + 4, zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.slogLevel.String(), func(t *testing.T) {
			t.Parallel()
			if got := slogToZerologLevel(tt.slogLevel); got != tt.want {
				t.Errorf("slogToZerologLevel(%v) = %v, want %v", tt.slogLevel, got, tt.want)
			}
		})
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	t.Parallel()

	handler := &SlogHandler{logger: zerolog.New(nil).Level(zerolog.WarnLevel)}

	if handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info enabled at warn level")
	}
	if !handler.Enabled(context.Background(), slog.LevelError) {
		t.Error("error disabled at warn level")
	}
}

func TestSlogHandler_Handle(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handler := &SlogHandler{logger: zerolog.New(&buf).Level(zerolog.TraceLevel)}

	record := slog.NewRecord(time.Now(), slog.LevelWarn, "service restarted", 0)
	record.AddAttrs(
		slog.String("service", "http-server"),
		slog.Int("attempt", 3),
		slog.Bool("backoff", true),
		slog.Duration("wait", time.Second),
	)

	if err := handler.Handle(context.Background(), record); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		`"level":"warn"`,
		`"message":"service restarted"`,
		`"service":"http-server"`,
		`"attempt":3`,
		`"backoff":true`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %s: %s", want, output)
		}
	}
}

func TestSlogHandler_AttrsAndGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := &SlogHandler{logger: zerolog.New(&buf)}
	handler := base.WithAttrs([]slog.Attr{slog.String("pkg", "watermill")}).
		WithGroup("sub").
		WithAttrs([]slog.Attr{slog.String("backend", "nats")})

	slog.New(handler).Info("subscribed", "topic", "readings.ingested", slog.Group("cfg", slog.Int("buffer", 256)))

	output := buf.String()
	for _, want := range []string{
		`"pkg":"watermill"`,
		`"sub.backend":"nats"`,
		`"sub.topic":"readings.ingested"`,
		`"sub.cfg.buffer":256`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %s: %s", want, output)
		}
	}
	if strings.Contains(output, `"sub.pkg"`) {
		t.Errorf("attrs added before the group were qualified: %s", output)
	}

	if same := base.WithGroup(""); same != base {
		t.Error("WithGroup(\"\") should return the receiver")
	}
}

func TestNewSlogLogger_UsesGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger()
	SetLogger(NewTestLogger(&buf))
	defer SetLogger(prev)

	NewSlogLogger().Warn("supervisor backoff", "service", "event-recorder")

	if !strings.Contains(buf.String(), `"service":"event-recorder"`) {
		t.Errorf("output = %s", buf.String())
	}
}
