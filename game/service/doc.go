// Package service defines the game service layer for the Royal Game of Ur
// server.
//
// The package follows an interface-first design: shared types (Session,
// Challenge, PlayerInfo, GameView, the wire event names and payloads) and
// the collaborator interfaces (SessionManager, ChallengeLedger,
// PresenceDirectory) live here, while their implementations live in the
// sibling session, lobby and presence packages. GameService is the single
// entry point transports talk to; it routes lobby events to the
// matchmaking ledger and game events to the addressed session, and pushes
// outbound events through presence-resolved handles.
//
// Failure model:
//
// Requests that a well-behaved client never sends (rolling out of turn,
// moving on a finished game, unknown ids) are protocol violations: they
// are dropped, logged at debug level, and in the case of an invalid move
// answered with an authoritative game-activity resync to the offender.
// Matchmaking conflicts are answered with named events carrying a
// human-readable reason. Neither ever crashes the server.
package service
