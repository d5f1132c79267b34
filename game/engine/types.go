package engine

// PlayerID is the stable numeric identifier the identity provider assigns
// to a player. It outlives connections: the same player keeps the same id
// across reconnects and server restarts.
type PlayerID int64

// Board geometry. Cells 0 and 15 are virtual: 0 is the off-board waiting
// pool and 15 is the home exit. Neither is ever marked on the track.
const (
	TrackCells    = 15 // valid move origins are 0..14
	TrackEnd      = 15 // reaching this cell removes the token from play
	ProtectedCell = 8  // cannot be landed on while occupied by either side
	TokensPerSide = 7

	sharedLaneStart = 5
	sharedLaneEnd   = 12
)

// Lane names as they appear on the wire. A move request must name the lane
// the clicked cell belongs to; anything else is rejected outright.
const (
	LanePlayer = "player"
	LaneMiddle = "middle"
)

// Cell is the occupancy set for one track position. Bit 1 marks side 1,
// bit 2 marks side 2. Cells 1..4 and 13..14 are side-private, so both bits
// set there would mean two physically distinct cells; in the shared lane
// both bits set means both sides genuinely share the cell.
type Cell uint8

// Track maps cell index 0..15 to its occupancy set.
type Track [TrackEnd + 1]Cell

// sideBit returns the occupancy bit for a side ordinal (1 or 2).
func sideBit(ordinal int) Cell {
	return Cell(1) << (ordinal - 1)
}

// Has reports whether the side with the given ordinal occupies the cell.
func (c Cell) Has(ordinal int) bool {
	return c&sideBit(ordinal) != 0
}

// Side is one of the two players within a game.
type Side struct {
	Ordinal       int      `json:"ordinal"` // 1 or 2
	Player        PlayerID `json:"player"`
	Name          string   `json:"name"`
	TokensWaiting int      `json:"tokensWaiting"`
	TokensDone    int      `json:"tokensDone"`
}

// Phase is the turn state machine's current state.
type Phase int

const (
	PhaseCreated Phase = iota
	PhaseAwaitingRoll
	PhaseAwaitingMove
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseCreated:
		return "created"
	case PhaseAwaitingRoll:
		return "awaiting-roll"
	case PhaseAwaitingMove:
		return "awaiting-move"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// LogEntry is one immutable line of the game's message log.
type LogEntry struct {
	Turn int    `json:"turnCounter"`
	Text string `json:"text"`
}

// State is the flat, serializable form of a Game. It carries data only;
// Reconstruct turns it back into a behavior-complete Game.
type State struct {
	Turn        int        `json:"turnCounter"`
	Track       Track      `json:"track"`
	Phase       Phase      `json:"phase"`
	Sides       [2]Side    `json:"sides"`
	CurrentRoll *int       `json:"currentRoll"`
	CurrentSide int        `json:"currentSideOrdinal"` // ordinal, 0 before the roll-off
	Log         []LogEntry `json:"eventLog"`
}
