package session

import (
	"time"

	"github.com/wricardo/royal-game-of-ur/game/engine"
	"github.com/wricardo/royal-game-of-ur/game/service"
)

// Snapshot is the durable form of the whole server: every active session
// and every pending challenge, in one document.
type Snapshot struct {
	Sessions   map[string]SessionRecord     `json:"sessions"`
	Challenges map[string]service.Challenge `json:"challenges"`
}

// NewSnapshot creates an empty snapshot with initialized maps.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Sessions:   make(map[string]SessionRecord),
		Challenges: make(map[string]service.Challenge),
	}
}

// SessionRecord is the flat, serialized form of one session. The
// embedded state inlines exactly the fields needed to reconstruct a
// behavior-complete game, message log included.
type SessionRecord struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	engine.State
}

// Store persists and restores snapshots.
type Store interface {
	// Save writes the snapshot durably, replacing the previous one.
	Save(snap *Snapshot) error

	// Load reads the last saved snapshot. A store with no snapshot yet
	// returns an empty one, not an error.
	Load() (*Snapshot, error)
}

// ChallengeSource exposes the challenge map for snapshotting. The lobby
// ledger implements it; the manager never mutates challenges through it.
type ChallengeSource interface {
	Snapshot() map[string]service.Challenge
}
