// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package main

import (
	"fmt"

	"github.com/tomtom215/kinetrace/internal/api"
	"github.com/tomtom215/kinetrace/internal/config"
	"github.com/tomtom215/kinetrace/internal/idempotency"
	"github.com/tomtom215/kinetrace/internal/logging"
	"github.com/tomtom215/kinetrace/internal/supervisor"
	"github.com/tomtom215/kinetrace/internal/supervisor/services"
)

type idempotencyComponents struct {
	store *idempotency.Store
}

// initIdempotency opens the idempotency store and registers its GC service
// with the data layer.
func initIdempotency(cfg config.IdempotencyConfig, tree *supervisor.SupervisorTree) (*idempotencyComponents, error) {
	if !cfg.Enabled {
		logging.Info().Msg("Idempotency-Key handling disabled (IDEMPOTENCY_ENABLED=false)")
		return &idempotencyComponents{}, nil
	}

	store, err := idempotency.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open idempotency store: %w", err)
	}

	tree.AddDataService(services.NewIdempotencyGCService(idempotency.NewCollector(store, cfg.GCInterval)))
	return &idempotencyComponents{store: store}, nil
}

// cache returns the store as an api.ResponseCache, or a nil interface when
// idempotency is disabled.
func (c *idempotencyComponents) cache() api.ResponseCache {
	if c.store == nil {
		return nil
	}
	return c.store
}

func (c *idempotencyComponents) close() {
	if c.store == nil {
		return
	}
	if err := c.store.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing idempotency store")
	}
}
