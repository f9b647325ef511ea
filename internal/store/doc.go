// Package store persists run history: one row per completed harness run
// with its pass/fail totals and elapsed time. Per-check records stay
// ephemeral and are never written here.
//
// Storage is SQLite in WAL mode with a single writer connection. The
// schema is embedded and applied idempotently on Open.
package store
