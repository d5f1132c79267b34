// Package session provides session lifecycle management and persistence
// for the Royal Game of Ur server.
//
// The session package implements:
//   - Thread-safe session storage keyed by deterministic pair id
//   - Session creation with the pre-game roll-off
//   - Grace-period eviction of finished games
//   - Crash-recoverable persistence of the full session and challenge
//     state as a single snapshot document
//
// Core Types:
//
// Manager owns the map of active sessions. There is at most one session
// per unordered player pair; creating a second returns the existing one.
// Store is the persistence boundary and FileStore its JSON file
// implementation. A snapshot carries flat session records; on restore the
// manager reconstructs behavior-complete games from them, so a restarted
// server picks up every in-flight game exactly where it stopped.
//
// Persistence is deliberately fire-and-forget relative to gameplay: a
// failed snapshot write is logged and retried on the next cycle, and a
// crash between snapshots loses at most the mutations since the last one,
// which clients recover from by resending their roll or move.
package session
