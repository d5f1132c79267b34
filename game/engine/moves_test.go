package engine

import "testing"

func freshSide(ordinal int) Side {
	return Side{Ordinal: ordinal, TokensWaiting: TokensPerSide}
}

func TestLegalMovesFromPool(t *testing.T) {
	var track Track
	side := freshSide(1)

	moves := LegalMoves(track, side, 3)
	if !moves[0] {
		t.Error("Expected entering from the pool to be legal on an empty board")
	}

	// Without waiting tokens the pool origin is dead.
	side.TokensWaiting = 0
	moves = LegalMoves(track, side, 3)
	if moves[0] {
		t.Error("Expected pool origin to be illegal with no waiting tokens")
	}
}

func TestLegalMovesRequiresOwnToken(t *testing.T) {
	var track Track
	track[3] = sideBit(2) // enemy token only

	moves := LegalMoves(track, freshSide(1), 2)
	if moves[3] {
		t.Error("Expected origin occupied only by the enemy to be illegal")
	}

	track[3] |= sideBit(1)
	moves = LegalMoves(track, freshSide(1), 2)
	if !moves[3] {
		t.Error("Expected origin holding our token to be legal")
	}
}

func TestLegalMovesNoOvershoot(t *testing.T) {
	var track Track
	track[14] = sideBit(1)
	track[13] = sideBit(1)

	moves := LegalMoves(track, freshSide(1), 2)
	if moves[14] {
		t.Error("Expected overshoot past the exit to be illegal")
	}
	if !moves[13] {
		t.Error("Expected exact exit roll to be legal")
	}
}

func TestLegalMovesOwnTokenAtDestination(t *testing.T) {
	var track Track
	track[2] = sideBit(1)
	track[5] = sideBit(1)

	moves := LegalMoves(track, freshSide(1), 3)
	if moves[2] {
		t.Error("Expected moving onto your own token to be illegal")
	}
}

func TestLegalMovesEnemyAtSharedDestination(t *testing.T) {
	var track Track
	track[3] = sideBit(1)
	track[6] = sideBit(2)

	moves := LegalMoves(track, freshSide(1), 3)
	if !moves[3] {
		t.Error("Expected landing on an enemy token in the shared lane to be legal")
	}
}

func TestLegalMovesProtectedCell(t *testing.T) {
	var track Track
	track[5] = sideBit(1)

	for _, occupant := range []Cell{sideBit(1), sideBit(2)} {
		track[ProtectedCell] = occupant
		moves := LegalMoves(track, freshSide(1), 3)
		if moves[5] {
			t.Errorf("Expected landing on occupied protected cell to be illegal (occupant %d)", occupant)
		}
	}

	track[ProtectedCell] = 0
	moves := LegalMoves(track, freshSide(1), 3)
	if !moves[5] {
		t.Error("Expected landing on empty protected cell to be legal")
	}
}

func TestHasLegalMove(t *testing.T) {
	var track Track
	side := freshSide(1)
	side.TokensWaiting = 0
	track[13] = sideBit(1)
	track[14] = sideBit(1)

	if HasLegalMove(track, side, 3) {
		t.Error("Expected no legal move when every destination overshoots")
	}
	if !HasLegalMove(track, side, 1) {
		t.Error("Expected a legal move with a smaller roll")
	}
}
