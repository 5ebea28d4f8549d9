// Package sqlite keeps rendered diagram images in a SQLite database so
// repeated builds skip the headless browser.
//
// The driver is modernc.org/sqlite, a pure Go port, so pelagia builds
// without CGO on every platform.
//
// # Schema
//
// Tables are created by the numbered files in migrations/. The highest
// applied number is tracked in schema_migrations and only newer files run.
//
// # Data Location
//
// The database is <cache dir>/diagrams.db. Images are keyed by diagram
// fingerprint plus geometry, so one cache directory can serve several
// corpora. "pelagia cache prune" drops entries that have not been used
// for a while.
//
// # Concurrency
//
// The store holds a single connection in WAL mode and is safe to call
// from the parallel render workers.
package sqlite
