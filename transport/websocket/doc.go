// Package websocket provides the persistent bidirectional transport that
// players use to reach the lobby and their games.
//
// # Architecture
//
// The package follows the hub pattern:
//
//   - Hub: owns the set of connected clients, keyed by player identity.
//     Registration, unregistration, and lobby-wide broadcasts all flow
//     through the hub's event loop so the client map is only touched from
//     one goroutine.
//   - Client: one websocket connection. Each client runs a readPump that
//     decodes inbound frames and dispatches them to the game service, and
//     a writePump that drains the buffered send channel and keeps the
//     connection alive with pings.
//
// A Client doubles as the service.Handle for its player: the game service
// emits events to a player without knowing anything about websockets.
//
// # Wire Format
//
// Every frame in both directions is a JSON object with two fields:
//
//	{"event": "game-roll", "data": {"gameId": "3:7"}}
//
// Inbound frames with an unknown event name, or whose payload fails to
// decode, are dropped with a debug log entry. The connection stays open.
//
// # Identity
//
// At most one connection is kept per player. When the same identity
// connects again the previous connection is closed and replaced; the
// newcomer receives the full lobby and game state through the usual
// connect flow.
package websocket
