package engine

import (
	"errors"
	"fmt"
)

var (
	ErrNotStarted    = errors.New("game has not started")
	ErrGameFinished  = errors.New("game is finished")
	ErrNotYourTurn   = errors.New("not this side's turn")
	ErrAlreadyRolled = errors.New("a roll is already pending")
	ErrNoRoll        = errors.New("no roll to play")
	ErrInvalidMove   = errors.New("invalid move")
)

// Game is the turn state machine for a single match. It owns the track,
// both sides, the turn counter and the message log. Game is not safe for
// concurrent use; the session layer serializes access per match.
type Game struct {
	turn        int
	track       Track
	phase       Phase
	sides       [2]Side
	currentRoll *int
	currentSide int // ordinal of the side to act, 0 before the roll-off
	log         []LogEntry
	dice        DiceRoller
}

// NewGame creates a game in the Created phase with both sides holding
// seven waiting tokens. Start must be called before any roll is accepted.
func NewGame(player1 PlayerID, name1 string, player2 PlayerID, name2 string, dice DiceRoller) *Game {
	return &Game{
		phase: PhaseCreated,
		sides: [2]Side{
			{Ordinal: 1, Player: player1, Name: name1, TokensWaiting: TokensPerSide},
			{Ordinal: 2, Player: player2, Name: name2, TokensWaiting: TokensPerSide},
		},
		dice: dice,
	}
}

// Start runs the pre-game roll-off: both sides roll until the values
// differ and the higher roll goes first. Roll-off log lines are attributed
// to turn 0; the counter moves to 1 as the game enters AwaitingRoll.
// Start is a no-op outside the Created phase.
func (g *Game) Start() {
	if g.phase != PhaseCreated {
		return
	}

	var roll1, roll2 int
	for roll1 == roll2 {
		roll1 = g.dice.Roll()
		roll2 = g.dice.Roll()
	}

	g.logf("%s rolled a %d", g.sides[0].Name, roll1)
	g.logf("%s rolled a %d", g.sides[1].Name, roll2)

	if roll1 > roll2 {
		g.currentSide = 1
	} else {
		g.currentSide = 2
	}
	g.logf("%s goes first!", g.side(g.currentSide).Name)

	g.turn = 1
	g.phase = PhaseAwaitingRoll
}

// Roll performs the dice roll for the side with the given ordinal. A roll
// of zero, or a nonzero roll with no legal response, forfeits the turn:
// the side switches and the counter advances without a client move.
func (g *Game) Roll(ordinal int) error {
	switch g.phase {
	case PhaseCreated:
		return ErrNotStarted
	case PhaseFinished:
		return ErrGameFinished
	case PhaseAwaitingMove:
		return ErrAlreadyRolled
	}
	if ordinal != g.currentSide {
		return ErrNotYourTurn
	}

	roll := g.dice.Roll()
	mover := g.side(ordinal)
	g.logf("%s rolled %d", mover.Name, roll)

	switch {
	case roll == 0:
		// A zero always forfeits, legal moves or not.
		g.logf("%s misses a turn!", mover.Name)
		g.switchSide()
		g.nextTurn()
	case !HasLegalMove(g.track, *mover, roll):
		g.logf("%s has no valid moves", mover.Name)
		g.switchSide()
		g.nextTurn()
	default:
		g.currentRoll = &roll
		g.phase = PhaseAwaitingMove
	}

	return nil
}

// Move plays the pending roll from the given origin cell. The origin is
// re-validated against LegalMoves regardless of what the client claimed;
// an illegal origin returns ErrInvalidMove and changes nothing.
func (g *Game) Move(ordinal, origin int, lane string) error {
	switch g.phase {
	case PhaseCreated:
		return ErrNotStarted
	case PhaseFinished:
		return ErrGameFinished
	case PhaseAwaitingRoll:
		return ErrNoRoll
	}
	if ordinal != g.currentSide {
		return ErrNotYourTurn
	}
	if lane != LanePlayer && lane != LaneMiddle {
		return ErrInvalidMove
	}
	if origin < 0 || origin >= TrackCells {
		return ErrInvalidMove
	}
	if g.currentRoll == nil {
		// A restored snapshot can claim awaiting-move without a roll.
		return ErrNoRoll
	}

	roll := *g.currentRoll
	mover := g.side(ordinal)
	enemy := g.enemy(ordinal)

	if !LegalMoves(g.track, *mover, roll)[origin] {
		return ErrInvalidMove
	}

	destination := origin + roll
	bit := sideBit(ordinal)

	if destination == TrackEnd {
		// The exit is virtual: the token leaves the board.
		mover.TokensDone++
		g.logf("%s has got a token to the end!", mover.Name)
	} else {
		g.track[destination] |= bit
	}

	// Clearing the origin is a no-op for the virtual waiting cell.
	g.track[origin] &^= bit

	if destination >= sharedLaneStart && destination <= sharedLaneEnd && g.track[destination].Has(enemy.Ordinal) {
		g.track[destination] &^= sideBit(enemy.Ordinal)
		enemy.TokensWaiting++
		g.logf("%s captured one of %s's tokens", mover.Name, enemy.Name)
	}

	if origin == 0 {
		mover.TokensWaiting--
	}

	if mover.TokensDone == TokensPerSide {
		g.logf("%s has won the game!", mover.Name)
		g.currentRoll = nil
		g.phase = PhaseFinished
		return nil
	}

	if destination == 4 || destination == ProtectedCell || destination == 14 {
		// An extra turn keeps the side and the turn counter where they are.
		g.logf("%s landed on a special square and gets another go", mover.Name)
		g.currentRoll = nil
	} else {
		g.switchSide()
		g.nextTurn()
	}
	g.phase = PhaseAwaitingRoll

	return nil
}

// Turn returns the current turn counter.
func (g *Game) Turn() int { return g.turn }

// Phase returns the state machine's current phase.
func (g *Game) Phase() Phase { return g.phase }

// CurrentSide returns the ordinal of the side expected to act, or 0
// before the roll-off.
func (g *Game) CurrentSide() int { return g.currentSide }

// CurrentRoll returns the pending roll, if any.
func (g *Game) CurrentRoll() (int, bool) {
	if g.currentRoll == nil {
		return 0, false
	}
	return *g.currentRoll, true
}

// Track returns a copy of the board.
func (g *Game) Track() Track { return g.track }

// Sides returns copies of both sides, ordered by ordinal.
func (g *Game) Sides() [2]Side { return g.sides }

// SideFor returns the ordinal of the side the player controls.
func (g *Game) SideFor(player PlayerID) (int, bool) {
	for _, s := range g.sides {
		if s.Player == player {
			return s.Ordinal, true
		}
	}
	return 0, false
}

// Log returns the message log. The returned slice must not be mutated.
func (g *Game) Log() []LogEntry { return g.log }

// CountOnTrack counts the side's tokens currently on the board. At all
// times TokensWaiting + TokensDone + CountOnTrack == TokensPerSide.
func (g *Game) CountOnTrack(ordinal int) int {
	count := 0
	for i := 1; i < TrackEnd; i++ {
		if g.track[i].Has(ordinal) {
			count++
		}
	}
	return count
}

// State copies the serializable fields out of the game.
func (g *Game) State() State {
	st := State{
		Turn:        g.turn,
		Track:       g.track,
		Phase:       g.phase,
		Sides:       g.sides,
		CurrentSide: g.currentSide,
		Log:         make([]LogEntry, len(g.log)),
	}
	copy(st.Log, g.log)
	if g.currentRoll != nil {
		roll := *g.currentRoll
		st.CurrentRoll = &roll
	}
	return st
}

// Reconstruct builds a fresh, behavior-complete game from serialized
// state. Only the schema fields are copied onto the new game, so the
// result validates and applies moves exactly like the original did.
func Reconstruct(st State, dice DiceRoller) *Game {
	g := &Game{
		turn:        st.Turn,
		track:       st.Track,
		phase:       st.Phase,
		sides:       st.Sides,
		currentSide: st.CurrentSide,
		log:         make([]LogEntry, len(st.Log)),
		dice:        dice,
	}
	copy(g.log, st.Log)
	if st.CurrentRoll != nil {
		roll := *st.CurrentRoll
		g.currentRoll = &roll
	} else if g.phase == PhaseAwaitingMove {
		// Phase and roll can disagree in a truncated or edited snapshot;
		// without a roll the side has to roll again.
		g.phase = PhaseAwaitingRoll
	}
	return g
}

func (g *Game) side(ordinal int) *Side {
	return &g.sides[ordinal-1]
}

func (g *Game) enemy(ordinal int) *Side {
	return &g.sides[2-ordinal]
}

func (g *Game) switchSide() {
	g.currentSide = g.enemy(g.currentSide).Ordinal
}

func (g *Game) nextTurn() {
	g.turn++
	g.currentRoll = nil
}

func (g *Game) logf(format string, args ...any) {
	g.log = append(g.log, LogEntry{Turn: g.turn, Text: fmt.Sprintf(format, args...)})
}
