// Package engine provides the core rules for the Royal Game of Ur.
//
// The engine package implements the game mechanics including:
//   - The 15-cell track with private and shared lanes
//   - Legal-move computation for a given side and roll
//   - The dice (sum of four fair coin flips, 0..4)
//   - The turn state machine: roll, move, capture, extra turns, victory
//   - Serializable state for persistence and reconstruction
//
// Core Types:
//
// Track is the board representation, a fixed array of occupancy bit sets.
// Side tracks one player's tokens. Game is the turn state machine for a
// single match; it owns the track, both sides, the turn counter and the
// message log. State is the flat, serializable form of a Game, and
// Reconstruct builds a fully behavioral Game back from it.
//
// Usage:
//
//	g := engine.NewGame(1, "alice", 2, "bob", engine.CoinDice{})
//	g.Start() // pre-game roll-off decides who goes first
//
//	if err := g.Roll(g.CurrentSide()); err != nil {
//		log.Fatal(err)
//	}
//	err := g.Move(g.CurrentSide(), 0, engine.LanePlayer)
//
// Game Rules:
//
// Each side races seven tokens from the waiting pool (virtual cell 0)
// to the exit (virtual cell 15). Cells 1..4 and 13..14 are private lanes,
// cells 5..12 are shared. Landing on an opponent in the shared lane
// captures their token; cell 8 is protected and can never be landed on
// while occupied. Cells 4, 8 and 14 grant an extra roll. A roll of zero
// forfeits the turn. The first side to bring all seven tokens home wins.
package engine
