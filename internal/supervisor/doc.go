// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

/*
Package supervisor runs Kinetrace's long-lived services under a suture v4
supervisor tree.

	root ("kinetrace")
	├── data-layer
	│   └── idempotency-gc     (if idempotency is enabled)
	├── messaging-layer
	│   └── event-recorder     (if events are enabled)
	└── api-layer
	    └── http-server

Each layer is its own supervisor with independent failure counting, so a
recorder that keeps failing to subscribe backs off without restarting the
HTTP server.

Supervisor events (service start, failure, backoff) are logged through
sutureslog into the zerolog-backed slog handler from internal/logging.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewIdempotencyGCService(collector))
	tree.AddMessagingService(services.NewEventRecorderService(recorder))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	err = tree.Serve(ctx)

See the services subpackage for the wrappers.
*/
package supervisor
