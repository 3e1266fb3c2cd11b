// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package main

import (
	"fmt"

	"github.com/tomtom215/kinetrace/internal/config"
	"github.com/tomtom215/kinetrace/internal/events"
	"github.com/tomtom215/kinetrace/internal/logging"
	"github.com/tomtom215/kinetrace/internal/supervisor"
	"github.com/tomtom215/kinetrace/internal/supervisor/services"
)

// eventComponents holds the event bus, or a no-op emitter when events are
// disabled.
type eventComponents struct {
	bus     *events.Bus
	emitter events.Emitter
}

// initEvents creates the event bus and registers the recorder with the
// messaging layer.
func initEvents(cfg config.EventsConfig, tree *supervisor.SupervisorTree) (*eventComponents, error) {
	if !cfg.Enabled {
		logging.Info().Msg("Domain events disabled (EVENTS_ENABLED=false)")
		return &eventComponents{emitter: events.Nop{}}, nil
	}

	bus, err := events.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize event bus: %w", err)
	}

	tree.AddMessagingService(services.NewEventRecorderService(events.NewRecorder(bus)))
	logging.Info().Str("backend", bus.Backend()).Msg("Event bus initialized, recorder added to supervisor tree")

	return &eventComponents{bus: bus, emitter: bus}, nil
}

func (c *eventComponents) close() {
	if c.bus == nil {
		return
	}
	if err := c.bus.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing event bus")
	}
}
