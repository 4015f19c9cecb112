// Package store provides policy persistence backends: an in-memory store,
// a SQLite-backed store, and a read-only YAML file source with change
// watching. The engine and gateway consume policies only through the Store
// interface.
package store
