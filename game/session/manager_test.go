package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/royal-game-of-ur/game/engine"
	"github.com/wricardo/royal-game-of-ur/game/lobby"
	"github.com/wricardo/royal-game-of-ur/game/service"
)

var (
	alice = service.PlayerInfo{ID: 3, Name: "alice"}
	bob   = service.PlayerInfo{ID: 7, Name: "bob"}
)

// cycleDice replays a fixed roll sequence, wrapping around at the end.
type cycleDice struct {
	rolls []int
	next  int
}

func (d *cycleDice) Roll() int {
	r := d.rolls[d.next%len(d.rolls)]
	d.next++
	return r
}

func newTestManager() *Manager {
	return NewManager(nil, nil, &cycleDice{rolls: []int{2, 1}})
}

func TestCreateRunsRollOff(t *testing.T) {
	m := newTestManager()

	sess, err := m.Create(alice, bob)
	require.NoError(t, err)

	assert.Equal(t, service.PairID(alice.ID, bob.ID), sess.ID)
	assert.Equal(t, engine.PhaseAwaitingRoll, sess.Game.Phase())
	assert.Equal(t, 1, sess.Game.Turn())
	assert.Equal(t, [2]service.PlayerInfo{alice, bob}, sess.Players)
}

func TestCreateDuplicatePairReturnsExisting(t *testing.T) {
	m := newTestManager()

	first, err := m.Create(alice, bob)
	require.NoError(t, err)

	// Same pair in the opposite order maps to the same session
	second, err := m.Create(bob, alice)
	assert.ErrorIs(t, err, service.ErrGameAlreadyExists)
	assert.Same(t, first, second)
	assert.Equal(t, 1, m.Count())
}

func TestGetAndHas(t *testing.T) {
	m := newTestManager()
	sess, err := m.Create(alice, bob)
	require.NoError(t, err)

	got, err := m.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)
	assert.True(t, m.Has(sess.ID))

	_, err = m.Get("99:100")
	assert.ErrorIs(t, err, service.ErrGameNotFound)
	assert.False(t, m.Has("99:100"))
}

func TestRemove(t *testing.T) {
	m := newTestManager()
	sess, err := m.Create(alice, bob)
	require.NoError(t, err)

	require.NoError(t, m.Remove(sess.ID))
	assert.False(t, m.Has(sess.ID))
	assert.ErrorIs(t, m.Remove(sess.ID), service.ErrGameNotFound)
}

func TestScheduleEviction(t *testing.T) {
	m := newTestManager()
	sess, err := m.Create(alice, bob)
	require.NoError(t, err)

	evicted := make(chan *service.Session, 2)
	m.ScheduleEviction(sess.ID, 10*time.Millisecond, func(s *service.Session) {
		evicted <- s
	})
	// Scheduling again while pending must not double-fire
	m.ScheduleEviction(sess.ID, 10*time.Millisecond, func(s *service.Session) {
		evicted <- s
	})

	select {
	case got := <-evicted:
		assert.Same(t, sess, got)
	case <-time.After(time.Second):
		t.Fatal("eviction callback never fired")
	}

	assert.False(t, m.Has(sess.ID))

	select {
	case <-evicted:
		t.Fatal("eviction fired twice")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestScheduleEvictionUnknownGame(t *testing.T) {
	m := newTestManager()

	fired := false
	m.ScheduleEviction("99:100", time.Millisecond, func(*service.Session) { fired = true })

	time.Sleep(20 * time.Millisecond)
	assert.False(t, fired)
}

func TestRemoveCancelsPendingEviction(t *testing.T) {
	m := newTestManager()
	sess, err := m.Create(alice, bob)
	require.NoError(t, err)

	evicted := make(chan struct{}, 1)
	m.ScheduleEviction(sess.ID, 20*time.Millisecond, func(*service.Session) {
		evicted <- struct{}{}
	})
	require.NoError(t, m.Remove(sess.ID))

	select {
	case <-evicted:
		t.Fatal("eviction fired after Remove cancelled it")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestSnapshotRoundTripRestoresBehavior(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	ledger := lobby.NewLedger()
	ledger.Propose(
		service.PlayerInfo{ID: 11, Name: "carol"},
		service.PlayerInfo{ID: 13, Name: "dave"},
		false,
	)

	m1 := NewManager(store, ledger, &cycleDice{rolls: []int{2, 1}})
	sess, err := m1.Create(alice, bob)
	require.NoError(t, err)

	// Advance the game a little so the snapshot has real state
	sess.Lock()
	require.NoError(t, sess.Game.Roll(sess.Game.CurrentSide()))
	sess.Unlock()
	m1.Persist()

	// Boot a second manager off the same file
	m2 := NewManager(store, lobby.NewLedger(), &cycleDice{rolls: []int{2, 1}})
	challenges, err := m2.LoadSnapshot()
	require.NoError(t, err)

	require.Contains(t, challenges, service.PairID(11, 13))
	restored, err := m2.Get(sess.ID)
	require.NoError(t, err)

	sess.Lock()
	want := sess.Game.State()
	sess.Unlock()
	got := restored.Game.State()

	assert.Equal(t, want.Turn, got.Turn)
	assert.Equal(t, want.Phase, got.Phase)
	assert.Equal(t, want.Track, got.Track)
	assert.Equal(t, want.Sides, got.Sides)
	assert.Equal(t, [2]service.PlayerInfo{alice, bob}, restored.Players)

	// The restored game is behavior-complete, not a dead record
	if got.Phase == engine.PhaseAwaitingMove {
		_, has := restored.Game.CurrentRoll()
		assert.True(t, has)
	} else {
		assert.NoError(t, restored.Game.Roll(restored.Game.CurrentSide()))
	}
}

func TestRestoreSkipsLiveSessions(t *testing.T) {
	m := newTestManager()
	sess, err := m.Create(alice, bob)
	require.NoError(t, err)

	stale := SessionRecord{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt.Add(-time.Hour),
		State:     sess.Game.State(),
	}
	require.NoError(t, m.Restore(map[string]SessionRecord{sess.ID: stale}))

	got, err := m.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got, "restore must not replace a live session")
}

func TestLoadSnapshotWithoutStore(t *testing.T) {
	m := newTestManager()
	challenges, err := m.LoadSnapshot()
	assert.NoError(t, err)
	assert.Nil(t, challenges)
}
