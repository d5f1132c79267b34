package engine

// LegalMoves computes, for every origin cell 0..14, whether the given side
// may move a token from it with the given roll. It is pure: no state is
// touched. Callers never pass a roll of zero; the turn machine forfeits a
// zero roll before the validator is consulted.
//
// Rules, in order, per candidate origin i:
//  1. Origin 0 (the waiting pool) requires a waiting token.
//  2. Any other origin must hold a token of the moving side.
//  3. The destination may not overshoot the exit at 15.
//  4. The destination may not hold a token of the moving side.
//  5. The protected cell (8) may not be landed on while occupied by anyone.
func LegalMoves(track Track, side Side, roll int) [TrackCells]bool {
	var moves [TrackCells]bool

	bit := sideBit(side.Ordinal)
	for i := 0; i < TrackCells; i++ {
		if i == 0 && side.TokensWaiting == 0 {
			continue
		}
		if i != 0 && track[i]&bit != bit {
			continue
		}

		destination := i + roll
		if destination > TrackEnd {
			// Leaving the board requires the exact roll.
			continue
		}
		if destination < TrackEnd && track[destination]&bit == bit {
			continue
		}
		if destination == ProtectedCell && track[destination] != 0 {
			continue
		}

		moves[i] = true
	}

	return moves
}

// HasLegalMove reports whether the side can respond to the roll at all.
// A nonzero roll with no legal move auto-skips the turn.
func HasLegalMove(track Track, side Side, roll int) bool {
	for _, ok := range LegalMoves(track, side, roll) {
		if ok {
			return true
		}
	}
	return false
}
