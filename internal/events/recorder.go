// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/kinetrace/internal/logging"
	"github.com/tomtom215/kinetrace/internal/metrics"
)

// Subscriber is satisfied by *Bus.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

// Recorder consumes every domain event, logging and counting it.
type Recorder struct {
	sub    Subscriber
	topics []string

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	received atomic.Int64
}

// NewRecorder creates a recorder for all published topics.
func NewRecorder(sub Subscriber) *Recorder {
	return &Recorder{
		sub:    sub,
		topics: Topics(),
	}
}

// Start subscribes to every topic and consumes in the background until ctx
// is canceled or Stop is called.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return errors.New("event recorder already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	for _, topic := range r.topics {
		ch, err := r.sub.Subscribe(runCtx, topic)
		if err != nil {
			cancel()
			r.wg.Wait()
			return fmt.Errorf("subscribe to %s: %w", topic, err)
		}
		r.wg.Add(1)
		go r.consume(runCtx, topic, ch)
	}

	r.cancel = cancel
	r.running = true
	logging.Info().Strs("topics", r.topics).Msg("Event recorder started")
	return nil
}

// Stop cancels the subscriptions and waits for the consumers to exit.
func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}
	r.cancel()
	r.wg.Wait()
	r.running = false
	logging.Info().Int64("received", r.received.Load()).Msg("Event recorder stopped")
}

// IsRunning reports whether the recorder is consuming.
func (r *Recorder) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Received returns the number of events consumed since creation.
func (r *Recorder) Received() int64 {
	return r.received.Load()
}

func (r *Recorder) consume(ctx context.Context, topic string, ch <-chan *message.Message) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			r.record(topic, msg)
			msg.Ack()
		}
	}
}

func (r *Recorder) record(topic string, msg *message.Message) {
	event := logging.Debug().
		Str("topic", topic).
		Str("message_id", msg.UUID)
	if id := msg.Metadata.Get(MetadataCorrelationID); id != "" {
		event = event.Str("correlation_id", id)
	}
	if json.Valid(msg.Payload) {
		event = event.RawJSON("payload", msg.Payload)
	}
	event.Msg("Event received")

	metrics.RecordEventReceived(topic)
	r.received.Add(1)
}
