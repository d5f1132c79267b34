package lobby

import (
	"sort"
	"sync"

	"github.com/wricardo/royal-game-of-ur/game/service"
)

// Ledger tracks outstanding challenges between player pairs.
type Ledger struct {
	challenges map[string]*service.Challenge
	mu         sync.RWMutex
}

// NewLedger creates an empty challenge ledger.
func NewLedger() *Ledger {
	return &Ledger{
		challenges: make(map[string]*service.Challenge),
	}
}

// Propose records a challenge from one player to another and classifies
// the outcome. sessionExists tells the ledger whether the pair already
// has an active game, which beats everything else. A pending challenge in
// the opposite direction is consumed and returned as OutcomeAutoAccept;
// one in the same direction is reported as OutcomeAlreadyChallenged.
func (l *Ledger) Propose(from, to service.PlayerInfo, sessionExists bool) (service.Outcome, *service.Challenge) {
	id := service.PairID(from.ID, to.ID)

	if sessionExists {
		return service.OutcomeSessionExists, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.challenges[id]; ok {
		if existing.To.ID == from.ID {
			delete(l.challenges, id)
			return service.OutcomeAutoAccept, existing
		}
		return service.OutcomeAlreadyChallenged, existing
	}

	ch := &service.Challenge{ID: id, From: from, To: to}
	l.challenges[id] = ch
	return service.OutcomeCreated, ch
}

// Get retrieves a pending challenge by id.
func (l *Ledger) Get(id string) (*service.Challenge, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ch, ok := l.challenges[id]
	if !ok {
		return nil, service.ErrChallengeNotFound
	}
	return ch, nil
}

// Remove deletes a pending challenge.
func (l *Ledger) Remove(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.challenges[id]; !ok {
		return service.ErrChallengeNotFound
	}
	delete(l.challenges, id)
	return nil
}

// List returns all pending challenges, ordered by id for stable output.
func (l *Ledger) List() []*service.Challenge {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*service.Challenge, 0, len(l.challenges))
	for _, ch := range l.challenges {
		result = append(result, ch)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Snapshot returns a value copy of the challenge map for persistence.
func (l *Ledger) Snapshot() map[string]service.Challenge {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snap := make(map[string]service.Challenge, len(l.challenges))
	for id, ch := range l.challenges {
		snap[id] = *ch
	}
	return snap
}

// Restore absorbs persisted challenges, skipping ids already present.
func (l *Ledger) Restore(challenges map[string]service.Challenge) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for id, ch := range challenges {
		if _, exists := l.challenges[id]; exists {
			continue
		}
		restored := ch
		l.challenges[id] = &restored
	}
}
