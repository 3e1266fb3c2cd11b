// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/kinetrace/internal/config"
	"github.com/tomtom215/kinetrace/internal/logging"
	"github.com/tomtom215/kinetrace/internal/metrics"
	"github.com/tomtom215/kinetrace/internal/testinfra"
)

func newChannelBus(t *testing.T) *Bus {
	t.Helper()
	bus, err := New(config.EventsConfig{Enabled: true, Buffer: 16})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		if err := bus.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return bus
}

func receive(t *testing.T, ch <-chan *message.Message) *message.Message {
	t.Helper()
	select {
	case msg := <-ch:
		msg.Ack()
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestBus_GoChannelPublishSubscribe(t *testing.T) {
	bus := newChannelBus(t)
	if bus.Backend() != BackendGoChannel {
		t.Fatalf("Backend() = %q, want %q", bus.Backend(), BackendGoChannel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, TopicSessionStarted)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	pubCtx := logging.ContextWithCorrelationID(context.Background(), "corr1234")
	before := testutil.ToFloat64(metrics.EventsPublished.WithLabelValues(TopicSessionStarted))

	bus.Emit(pubCtx, TopicSessionStarted, SessionStarted{Name: "walk-01", StartTime: start})

	msg := receive(t, ch)
	var got SessionStarted
	if err := json.Unmarshal(msg.Payload, &got); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if got.Name != "walk-01" || !got.StartTime.Equal(start) {
		t.Errorf("payload = %+v", got)
	}
	if id := msg.Metadata.Get(MetadataCorrelationID); id != "corr1234" {
		t.Errorf("correlation_id = %q, want corr1234", id)
	}
	if topic := msg.Metadata.Get(MetadataTopic); topic != TopicSessionStarted {
		t.Errorf("topic metadata = %q", topic)
	}

	after := testutil.ToFloat64(metrics.EventsPublished.WithLabelValues(TopicSessionStarted))
	if after-before != 1 {
		t.Errorf("events published delta = %v, want 1", after-before)
	}
}

func TestBus_Closed(t *testing.T) {
	bus, err := New(config.EventsConfig{Enabled: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if err := bus.Publish(context.Background(), TopicSessionEnded, SessionEnded{Name: "x"}); !errors.Is(err, ErrClosed) {
		t.Errorf("Publish() error = %v, want ErrClosed", err)
	}
	if _, err := bus.Subscribe(context.Background(), TopicSessionEnded); !errors.Is(err, ErrClosed) {
		t.Errorf("Subscribe() error = %v, want ErrClosed", err)
	}

	before := testutil.ToFloat64(metrics.EventPublishErrors.WithLabelValues(TopicSessionEnded))
	bus.Emit(context.Background(), TopicSessionEnded, SessionEnded{Name: "x"})
	after := testutil.ToFloat64(metrics.EventPublishErrors.WithLabelValues(TopicSessionEnded))
	if after-before != 1 {
		t.Errorf("publish errors delta = %v, want 1", after-before)
	}
}

func TestBus_UnserializablePayload(t *testing.T) {
	bus := newChannelBus(t)
	err := bus.Publish(context.Background(), TopicReadingsIngested, make(chan int))
	if err == nil {
		t.Fatal("expected serialization error")
	}
}

func TestBus_NATS(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping embedded NATS test in short mode")
	}

	url := testinfra.StartNATS(t)
	bus, err := New(config.EventsConfig{Enabled: true, NATSURL: url})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		if err := bus.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	}()
	if bus.Backend() != BackendNATS {
		t.Fatalf("Backend() = %q, want %q", bus.Backend(), BackendNATS)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, TopicReadingsIngested)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	session := "walk-01"
	payload := ReadingsIngested{Device: "wrist-left", Session: &session, Stored: 3, Skipped: 1}

	// The subscription is registered on a separate connection, so publish
	// until the first message arrives.
	deadline := time.After(10 * time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		if err := bus.Publish(ctx, TopicReadingsIngested, payload); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
		select {
		case msg := <-ch:
			msg.Ack()
			var got ReadingsIngested
			if err := json.Unmarshal(msg.Payload, &got); err != nil {
				t.Fatalf("unmarshal payload: %v", err)
			}
			if got.Device != "wrist-left" || got.Stored != 3 || got.Skipped != 1 || got.Session == nil || *got.Session != session {
				t.Errorf("payload = %+v", got)
			}
			return
		case <-ticker.C:
		case <-deadline:
			t.Fatal("timed out waiting for NATS message")
		}
	}
}

func TestNop(t *testing.T) {
	t.Parallel()
	var e Emitter = Nop{}
	e.Emit(context.Background(), TopicSessionStarted, nil)
}
