package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/royal-game-of-ur/game/engine"
)

var (
	ErrGameNotFound      = errors.New("game not found")
	ErrGameAlreadyExists = errors.New("game already exists")
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrNotParticipant    = errors.New("player is not part of this game")

	// ErrIdentityNotFound signals a broken internal precondition: an
	// identity that must be known (a bound sender, a persisted side) is
	// not. It is a programmer-error marker, not a user-facing condition.
	ErrIdentityNotFound = errors.New("identity not found")
)

// GameService defines all lobby and game operations. Transports resolve
// the sender's identity and call straight into it.
type GameService interface {
	// Presence
	Connect(ctx context.Context, id engine.PlayerID, name string, h Handle)
	Disconnect(ctx context.Context, id engine.PlayerID)

	// Matchmaking
	Challenge(ctx context.Context, from, to engine.PlayerID) error
	AcceptChallenge(ctx context.Context, player engine.PlayerID, challengeID string) error
	RejectChallenge(ctx context.Context, player engine.PlayerID, challengeID string) error

	// Game operations
	SelectGame(ctx context.Context, player engine.PlayerID, gameID string) error
	Roll(ctx context.Context, player engine.PlayerID, gameID string) error
	Move(ctx context.Context, player engine.PlayerID, gameID string, origin int, lane string) error

	// Read operations, used by the REST API and the MCP tools
	OnlinePlayers(ctx context.Context) []PlayerInfo
	Games(ctx context.Context) []*GameView
	Game(ctx context.Context, gameID string) (*GameView, error)
	Challenges(ctx context.Context) []*Challenge
}

// SessionManager defines session lifecycle operations, implemented by the
// session package.
type SessionManager interface {
	Create(p1, p2 PlayerInfo) (*Session, error)
	Get(id string) (*Session, error)
	Has(id string) bool
	List() []*Session
	ScheduleEviction(id string, delay time.Duration, onEvicted func(*Session))
	Persist()
}

// ChallengeLedger defines matchmaking operations, implemented by the
// lobby package. The ledger owns the challenge map exclusively and
// centrally enforces the pair invariant; callers supply whether a session
// for the pair already exists, since sessions are owned elsewhere.
type ChallengeLedger interface {
	Propose(from, to PlayerInfo, sessionExists bool) (Outcome, *Challenge)
	Get(id string) (*Challenge, error)
	Remove(id string) error
	List() []*Challenge
}

// PresenceDirectory defines the identity-to-connection mapping,
// implemented by the presence package. Resolve never returns nil: offline
// or unknown identities yield NullHandle.
type PresenceDirectory interface {
	Bind(id engine.PlayerID, name string, h Handle)
	Unbind(id engine.PlayerID)
	Resolve(id engine.PlayerID) Handle
	Name(id engine.PlayerID) (string, bool)
	Online() []PlayerInfo
	Broadcast(event string, payload any)
}
