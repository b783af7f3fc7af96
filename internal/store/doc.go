// Package store provides file-based persistence for pyworks detection state.
//
// It contains the concrete implementation of the domain cache interface,
// serialising data as JSON on disk. All methods are concurrency-safe via
// internal locking. Stored files live under the user's configured cache
// directory.
//
// The cached records are:
//   - Discovered environments per project root (envs.json)
//   - Import probe results per environment fingerprint (probes/)
package store
