// Package httpserver wraps net/http's Server with graceful shutdown, signal
// handling, env-driven configuration, and probe handlers.
package httpserver
