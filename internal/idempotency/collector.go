// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package idempotency

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/kinetrace/internal/logging"
	"github.com/tomtom215/kinetrace/internal/metrics"
)

const defaultGCInterval = 10 * time.Minute

// garbageCollector is satisfied by *Store.
type garbageCollector interface {
	RunGC() (bool, error)
}

// Collector runs value-log GC on an interval.
type Collector struct {
	store    garbageCollector
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	running bool
	lastRun time.Time
}

// NewCollector creates a collector for store.
func NewCollector(store *Store, interval time.Duration) *Collector {
	return newCollector(store, interval)
}

func newCollector(store garbageCollector, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = defaultGCInterval
	}
	return &Collector{store: store, interval: interval}
}

// Start begins the background GC loop.
func (c *Collector) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}
	var runCtx context.Context
	runCtx, c.cancel = context.WithCancel(ctx)
	c.running = true
	c.mu.Unlock()

	c.wg.Add(1)
	go c.run(runCtx)

	logging.Info().Dur("interval", c.interval).Msg("Idempotency GC started")
	return nil
}

// Stop stops the loop and waits for it to exit.
func (c *Collector) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.cancel()
	c.running = false
	c.mu.Unlock()

	c.wg.Wait()
	logging.Info().Msg("Idempotency GC stopped")
}

// IsRunning returns whether the loop is active.
func (c *Collector) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// LastRun returns when GC last completed.
func (c *Collector) LastRun() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRun
}

func (c *Collector) run(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.collect()
		}
	}
}

func (c *Collector) collect() {
	start := time.Now()
	rewritten, err := c.store.RunGC()

	result := "nothing"
	switch {
	case err != nil:
		result = "error"
		logging.Error().Err(err).Msg("Idempotency GC failed")
	case rewritten:
		result = "rewritten"
		logging.Debug().Dur("duration", time.Since(start)).Msg("Idempotency value log rewritten")
	}
	metrics.IdempotencyGCRuns.WithLabelValues(result).Inc()

	c.mu.Lock()
	c.lastRun = time.Now()
	c.mu.Unlock()
}
