// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package services

import (
	"context"
	"fmt"
)

// StartStopper is a component with its own background goroutine.
//
// Satisfied by:
//   - *idempotency.Collector
//   - *events.Recorder
type StartStopper interface {
	Start(ctx context.Context) error
	Stop()
	IsRunning() bool
}

// BackgroundService adapts a StartStopper to suture.Service.
type BackgroundService struct {
	component StartStopper
	name      string
}

// NewBackgroundService wraps component under name.
func NewBackgroundService(name string, component StartStopper) *BackgroundService {
	return &BackgroundService{component: component, name: name}
}

// NewIdempotencyGCService wraps the idempotency value-log collector.
func NewIdempotencyGCService(collector StartStopper) *BackgroundService {
	return NewBackgroundService("idempotency-gc", collector)
}

// NewEventRecorderService wraps the domain event recorder.
func NewEventRecorderService(recorder StartStopper) *BackgroundService {
	return NewBackgroundService("event-recorder", recorder)
}

// Serve implements suture.Service. Stop blocks until the component's
// goroutines have exited.
func (s *BackgroundService) Serve(ctx context.Context) error {
	if err := s.component.Start(ctx); err != nil {
		return fmt.Errorf("%s start failed: %w", s.name, err)
	}

	<-ctx.Done()
	s.component.Stop()
	return ctx.Err()
}

// String implements fmt.Stringer.
func (s *BackgroundService) String() string {
	return s.name
}
