package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/royal-game-of-ur/game/engine"
	"github.com/wricardo/royal-game-of-ur/game/service"
)

// Manager handles game session lifecycle. It exclusively owns the map of
// active sessions, keyed by the deterministic pair id, and drives the
// snapshot persistence cycle.
type Manager struct {
	sessions   map[string]*service.Session
	evictions  map[string]*time.Timer
	store      Store
	challenges ChallengeSource
	dice       engine.DiceRoller
	mu         sync.RWMutex
}

// NewManager creates a session manager. store may be nil (no persistence,
// used in tests); challenges provides the ledger's half of the snapshot.
func NewManager(store Store, challenges ChallengeSource, dice engine.DiceRoller) *Manager {
	return &Manager{
		sessions:   make(map[string]*service.Session),
		evictions:  make(map[string]*time.Timer),
		store:      store,
		challenges: challenges,
		dice:       dice,
	}
}

// Create starts a new session for the pair, running the pre-game roll-off
// so the returned game is ready to accept its first roll. If the pair
// already has an active session it is returned alongside
// ErrGameAlreadyExists instead of being duplicated.
func (m *Manager) Create(p1, p2 service.PlayerInfo) (*service.Session, error) {
	id := service.PairID(p1.ID, p2.ID)

	m.mu.Lock()
	if existing, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		return existing, service.ErrGameAlreadyExists
	}

	game := engine.NewGame(p1.ID, p1.Name, p2.ID, p2.Name, m.dice)
	game.Start()

	now := time.Now()
	sess := &service.Session{
		ID:             id,
		Game:           game,
		Players:        [2]service.PlayerInfo{p1, p2},
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[id] = sess
	m.mu.Unlock()

	m.Persist()
	return sess, nil
}

// Get retrieves a session by id.
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[id]
	if !ok {
		return nil, service.ErrGameNotFound
	}
	return sess, nil
}

// Has reports whether an active session exists for the id.
func (m *Manager) Has(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sessions[id]
	return ok
}

// List returns all active sessions.
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		result = append(result, sess)
	}
	return result
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ScheduleEviction removes the session after the delay, giving clients
// time to observe the terminal state first. onEvicted runs after the
// session has left the map. Scheduling twice is a no-op.
func (m *Manager) ScheduleEviction(id string, delay time.Duration, onEvicted func(*service.Session)) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	if _, pending := m.evictions[id]; pending {
		m.mu.Unlock()
		return
	}

	m.evictions[id] = time.AfterFunc(delay, func() {
		m.mu.Lock()
		delete(m.sessions, id)
		delete(m.evictions, id)
		m.mu.Unlock()

		log.Info().Str("game", id).Msg("evicted finished game")
		m.Persist()
		if onEvicted != nil {
			onEvicted(sess)
		}
	})
	m.mu.Unlock()
}

// Remove deletes a session immediately, cancelling any pending eviction.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	if timer, ok := m.evictions[id]; ok {
		timer.Stop()
		delete(m.evictions, id)
	}
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return service.ErrGameNotFound
	}
	m.Persist()
	return nil
}

// Persist writes the current snapshot. Failures are logged and left for
// the next cycle; persistence never blocks gameplay.
func (m *Manager) Persist() {
	if m.store == nil {
		return
	}

	if err := m.store.Save(m.snapshot()); err != nil {
		log.Warn().Err(err).Msg("snapshot write failed, will retry on next cycle")
	}
}

// snapshot assembles the durable document from the session map and the
// challenge ledger.
func (m *Manager) snapshot() *Snapshot {
	snap := NewSnapshot()

	for _, sess := range m.List() {
		sess.Lock()
		record := SessionRecord{
			ID:        sess.ID,
			CreatedAt: sess.CreatedAt,
			State:     sess.Game.State(),
		}
		sess.Unlock()
		snap.Sessions[record.ID] = record
	}

	if m.challenges != nil {
		snap.Challenges = m.challenges.Snapshot()
	}

	return snap
}

// Restore rebuilds live sessions from snapshot records. Each record's
// state is copied onto a freshly constructed game, so restored sessions
// validate and apply moves with full behavior.
func (m *Manager) Restore(records map[string]SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, record := range records {
		if _, exists := m.sessions[id]; exists {
			continue
		}

		game := engine.Reconstruct(record.State, m.dice)
		sides := game.Sides()
		sess := &service.Session{
			ID:   id,
			Game: game,
			Players: [2]service.PlayerInfo{
				{ID: sides[0].Player, Name: sides[0].Name},
				{ID: sides[1].Player, Name: sides[1].Name},
			},
			CreatedAt:      record.CreatedAt,
			LastAccessedAt: time.Now(),
		}
		m.sessions[id] = sess
	}

	if len(records) > 0 {
		log.Info().Int("count", len(records)).Msg("restored sessions from snapshot")
	}
	return nil
}

// LoadSnapshot reads the store and restores both halves of the document,
// handing the challenges back for the ledger to absorb.
func (m *Manager) LoadSnapshot() (map[string]service.Challenge, error) {
	if m.store == nil {
		return nil, nil
	}

	snap, err := m.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if err := m.Restore(snap.Sessions); err != nil {
		return nil, err
	}
	return snap.Challenges, nil
}
