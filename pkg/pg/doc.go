// Package pg wires the service to PostgreSQL: pool construction with startup
// retries, goose migrations over the same pool, pg error classification
// helpers, and a readiness-probe healthcheck.
package pg
