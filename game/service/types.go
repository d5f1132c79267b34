package service

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/royal-game-of-ur/game/engine"
)

// Client → server events.
const (
	EventChallengeCreate = "challenge-create"
	EventChallengeAccept = "lobby-challenge-accept"
	EventChallengeReject = "lobby-challenge-reject"
	EventGameSelect      = "game-select"
	EventGameRoll        = "game-roll"
	EventGameMove        = "game-move"
)

// Server → client events.
const (
	EventChallengeNew      = "lobby-challenge-new"
	EventChallengeExists   = "lobby-challenge-exists"
	EventChallengeRejected = "lobby-challenge-rejected"
	EventGameExists        = "lobby-game-exists"
	EventGamesAdd          = "lobby-games-add"
	EventGameSet           = "game-set"
	EventGameActivity      = "game-activity"
	EventGameRemove        = "game-remove"
	EventPlayersJoin       = "lobby-players-join"
	EventPlayersLeft       = "lobby-players-left"
	EventPlayers           = "lobby-players"
)

// PairID builds the deterministic id shared by the challenge and the
// session of an unordered identity pair. Both maps key on it, which makes
// the one-challenge-or-one-session invariant a plain key-presence check.
func PairID(a, b engine.PlayerID) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// PlayerInfo is the public identity of a player.
type PlayerInfo struct {
	ID   engine.PlayerID `json:"id"`
	Name string          `json:"name"`
}

// Challenge is a pending, unaccepted request to start a game.
type Challenge struct {
	ID   string     `json:"id"`
	From PlayerInfo `json:"from"`
	To   PlayerInfo `json:"to"`
}

// Session is an active game between two players. The embedded mutex
// serializes inbound events per session: one roll or move is handled to
// completion before the next is looked at.
type Session struct {
	ID             string
	Game           *engine.Game
	Players        [2]PlayerInfo // fixed at creation, safe to read without the lock
	CreatedAt      time.Time
	LastAccessedAt time.Time

	mu sync.Mutex
}

// Lock acquires the session's event mutex.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session's event mutex.
func (s *Session) Unlock() { s.mu.Unlock() }

// GameView is the full outbound snapshot of a session, pushed to clients
// on every observable change.
type GameView struct {
	ID          string            `json:"id"`
	Turn        int               `json:"turnCounter"`
	Phase       string            `json:"phase"`
	CurrentSide int               `json:"currentSideOrdinal"`
	CurrentRoll *int              `json:"currentRoll"`
	Track       engine.Track      `json:"track"`
	Sides       [2]engine.Side    `json:"sides"`
	Messages    []engine.LogEntry `json:"messages"`
}

// NewGameView snapshots a session. The caller must hold the session lock.
func NewGameView(s *Session) *GameView {
	st := s.Game.State()
	return &GameView{
		ID:          s.ID,
		Turn:        st.Turn,
		Phase:       st.Phase.String(),
		CurrentSide: st.CurrentSide,
		CurrentRoll: st.CurrentRoll,
		Track:       st.Track,
		Sides:       st.Sides,
		Messages:    st.Log,
	}
}

// TrackIndex decodes a track cell index that clients may send either as a
// number or as a quoted number.
type TrackIndex int

func (t *TrackIndex) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid track index %s: %w", data, err)
	}
	*t = TrackIndex(value)
	return nil
}

// Inbound payloads.
type ChallengePayload struct {
	To engine.PlayerID `json:"toIdentity"`
}

type ChallengeIDPayload struct {
	ChallengeID string `json:"challengeId"`
}

type GameIDPayload struct {
	GameID string `json:"gameId"`
}

type MovePayload struct {
	GameID string     `json:"gameId"`
	Track  TrackIndex `json:"track"`
	Lane   string     `json:"lane"`
}

// ReasonPayload carries a human-readable reason on named failure events.
type ReasonPayload struct {
	Reason string `json:"reason"`
}

// Outcome classifies the result of proposing a challenge.
type Outcome int

const (
	// OutcomeCreated: a new challenge was recorded.
	OutcomeCreated Outcome = iota
	// OutcomeAutoAccept: the target had already challenged the requester;
	// mutual interest resolves straight to acceptance.
	OutcomeAutoAccept
	// OutcomeAlreadyChallenged: a challenge for this pair is still pending.
	OutcomeAlreadyChallenged
	// OutcomeSessionExists: the pair already has an active game.
	OutcomeSessionExists
)

// Handle is an outbound event sink for one player. Connected players get
// a live connection handle; offline players get NullHandle so that
// emitting never needs a nil check at the call site.
type Handle interface {
	Emit(event string, payload any)
}

// NullHandle is the no-op sink for offline players, observable only
// through debug logging.
type NullHandle struct{}

func (NullHandle) Emit(event string, payload any) {
	log.Debug().Str("event", event).Msg("player offline, dropping event")
}
