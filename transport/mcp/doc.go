// Package mcp exposes the server to AI agents through the Model Context
// Protocol.
//
// It is a thin client: every tool call is proxied to the REST API rather
// than reaching into the game service directly, so the MCP surface can
// run in-process next to the HTTP server or as a separate stdio process
// pointed at a remote server, and both enforce identical rules.
//
// The tools cover reading lobby and game state (list_players,
// list_challenges, list_games, get_game) and playing a game on behalf of
// a player (roll, move). game_instructions returns the full rules text
// so an agent can learn the game without external documentation.
package mcp
