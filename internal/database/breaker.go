// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package database

import (
	"errors"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/kinetrace/internal/config"
	"github.com/tomtom215/kinetrace/internal/logging"
	"github.com/tomtom215/kinetrace/internal/metrics"
	"github.com/tomtom215/kinetrace/internal/models"
)

const storeBreakerName = "duckdb-store"

// newStoreBreaker builds the circuit breaker that guards store calls.
// Conflicts and misses are answers from a healthy store and never trip it.
func newStoreBreaker(cfg config.StoreConfig) *gobreaker.CircuitBreaker[interface{}] {
	settings := gobreaker.Settings{
		Name:        storeBreakerName,
		MaxRequests: cfg.BreakerMaxRequests,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Store circuit breaker state changed")
			metrics.RecordBreakerTransition(name, from.String(), to.String(), breakerStateValue(to))
		},
		IsSuccessful: func(err error) bool {
			switch models.KindOf(err) {
			case "", models.KindConflict, models.KindNotFound:
				return true
			default:
				return false
			}
		},
	}

	metrics.CircuitBreakerState.WithLabelValues(storeBreakerName).Set(0)
	return gobreaker.NewCircuitBreaker[interface{}](settings)
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// guard runs fn through the breaker when one is configured. Errors from fn
// must already be classified so IsSuccessful can inspect their kind.
func (db *DB) guard(fn func() error) error {
	if db.breaker == nil {
		return fn()
	}

	_, err := db.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(storeBreakerName, "rejected").Inc()
		return classify("call", "store", err)
	case models.KindOf(err) == models.KindStore:
		metrics.CircuitBreakerRequests.WithLabelValues(storeBreakerName, "failure").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(storeBreakerName, "success").Inc()
	}
	return err
}
