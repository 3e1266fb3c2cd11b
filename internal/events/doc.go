// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

/*
Package events publishes domain events for session lifecycle changes and
ingested reading batches.

Events are JSON payloads carried in Watermill messages. Two backends are
supported:

  - gochannel: in-process pub/sub, used when no NATS URL is configured
  - NATS: core NATS subjects through watermill-nats, JetStream disabled

Topics:

  - session.started: a session was created (name, start_time)
  - session.ended: a session end time was recorded (name, end_time)
  - readings.ingested: a batch stored at least one reading

Publishing is fire-and-forget from the caller's point of view. Bus.Emit logs
and counts failures but never returns them, so an unavailable broker cannot
fail a request whose store write already succeeded.

The Recorder service subscribes to every topic and runs in the messaging
layer of the supervisor tree. It logs each event at debug level and counts it
in kinetrace_events_received_total.

Usage:

	bus, err := events.New(cfg.Events)
	if err != nil {
	    return err
	}
	defer bus.Close()

	bus.Emit(ctx, events.TopicSessionStarted, events.SessionStarted{
	    Name:      s.Name,
	    StartTime: s.StartTime,
	})
*/
package events
