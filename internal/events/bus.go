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

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/kinetrace/internal/config"
	"github.com/tomtom215/kinetrace/internal/logging"
	"github.com/tomtom215/kinetrace/internal/metrics"
)

// Backend names reported by Bus.Backend.
const (
	BackendGoChannel = "gochannel"
	BackendNATS      = "nats"
)

// Metadata keys set on every published message.
const (
	MetadataCorrelationID = "correlation_id"
	MetadataTopic         = "topic"
)

// ErrClosed is returned by Publish and Subscribe after Close.
var ErrClosed = errors.New("event bus is closed")

// Bus publishes and subscribes to domain events over a Watermill backend.
type Bus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	backend    string

	mu     sync.RWMutex
	closed bool
}

// New creates a bus for cfg. An empty NATSURL selects the in-process
// gochannel backend.
func New(cfg config.EventsConfig) (*Bus, error) {
	logger := watermill.NewSlogLogger(logging.NewSlogLogger())

	if cfg.NATSURL == "" {
		ch := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: cfg.Buffer,
		}, logger)
		return &Bus{publisher: ch, subscriber: ch, backend: BackendGoChannel}, nil
	}

	pub, err := newNATSPublisher(cfg.NATSURL, logger)
	if err != nil {
		return nil, err
	}
	sub, err := newNATSSubscriber(cfg.NATSURL, logger)
	if err != nil {
		if closeErr := pub.Close(); closeErr != nil {
			logging.Warn().Err(closeErr).Msg("Failed to close NATS publisher")
		}
		return nil, err
	}
	return &Bus{publisher: pub, subscriber: sub, backend: BackendNATS}, nil
}

// Backend returns the name of the transport in use.
func (b *Bus) Backend() string {
	return b.backend
}

// Publish serializes payload and publishes it on topic.
func (b *Bus) Publish(ctx context.Context, topic string, payload interface{}) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("serialize %s event: %w", topic, err)
	}

	msg := message.NewMessage(uuid.NewString(), data)
	msg.Metadata.Set(MetadataTopic, topic)
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set(MetadataCorrelationID, id)
	}

	if err := b.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Emit publishes payload and records the outcome. Failures are logged and
// counted, never returned.
func (b *Bus) Emit(ctx context.Context, topic string, payload interface{}) {
	err := b.Publish(ctx, topic, payload)
	metrics.RecordEventPublish(topic, err)
	if err != nil {
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("topic", topic).
			Str("backend", b.backend).
			Msg("Failed to publish event")
	}
}

// Subscribe returns a channel of messages for topic. The channel is closed
// when ctx is canceled or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrClosed
	}
	return b.subscriber.Subscribe(ctx, topic)
}

// Close shuts down the publisher and subscriber. It is safe to call more
// than once.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	if err := b.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publisher: %w", err))
	}
	// gochannel serves both roles through one value.
	if b.backend != BackendGoChannel {
		if err := b.subscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscriber: %w", err))
		}
	}
	return errors.Join(errs...)
}
