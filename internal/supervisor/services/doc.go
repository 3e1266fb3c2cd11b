// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

/*
Package services adapts Kinetrace components to suture.Service.

Each wrapper translates a component's own lifecycle into suture's
context-aware Serve(ctx) error:

HTTPServerService:
  - wraps *http.Server
  - runs ListenAndServe in a goroutine and calls Shutdown with a bounded
    timeout when the context is canceled
  - http.ErrServerClosed is treated as a clean exit

BackgroundService:
  - wraps any Start(ctx)/Stop()/IsRunning() component
  - used for the idempotency GC collector (data layer) and the event
    recorder (messaging layer)
  - a failed Start is returned so suture restarts the service with backoff

Every wrapper implements fmt.Stringer, which suture uses to name the service
in its event log.
*/
package services
