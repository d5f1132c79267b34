// Package lobby provides the matchmaking ledger for the Royal Game of Ur
// server.
//
// The Ledger exclusively owns the map of outstanding challenges, keyed by
// the same deterministic pair id the session map uses. That shared keying
// makes the central matchmaking invariant a key-presence check: for any
// unordered pair of players, at most one challenge or one session exists
// at any time. A challenge against a pair that already challenged you
// counts as mutual interest and resolves straight to acceptance.
package lobby
