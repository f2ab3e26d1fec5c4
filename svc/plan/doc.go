// Package plan defines the subscription plan catalog.
//
// Plans are static for the lifetime of the process: they are loaded once at
// startup from a Source (Postgres in production, memory in tests) into a
// Catalog that serves lookups without further I/O. Prices are stored in the
// smallest currency unit to avoid floating point arithmetic on money.
package plan
