// Package api provides the HTTP surface of the server.
//
// It mounts three kinds of routes on a gorilla/mux router:
//
//   - REST endpoints under /api for reading lobby and game state and for
//     driving a game (roll, move) without a websocket, used by the MCP
//     tools and by operators poking at a running server.
//   - The /ws endpoint, which upgrades to the websocket transport.
//   - A static file server for the web client.
//
// The REST write endpoints take the acting player's id in the request
// body; they share the exact same game service code path as the
// websocket events, so rules are enforced identically on both surfaces.
package api
