// Package inmemorystore provides a thread-safe, in-memory implementation
// of the taskstore.Store interface. It is what the local executor uses by
// default; nothing is persisted between sessions.
package inmemorystore
