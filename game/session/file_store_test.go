package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/royal-game-of-ur/game/engine"
	"github.com/wricardo/royal-game-of-ur/game/service"
)

func TestLoadMissingFileYieldsEmptySnapshot(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "snapshot.json"))
	require.NoError(t, err)

	snap, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, snap.Sessions)
	assert.Empty(t, snap.Challenges)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "snapshot.json"))
	require.NoError(t, err)

	snap := NewSnapshot()
	snap.Challenges["3:7"] = service.Challenge{
		ID:   "3:7",
		From: service.PlayerInfo{ID: 3, Name: "alice"},
		To:   service.PlayerInfo{ID: 7, Name: "bob"},
	}
	require.NoError(t, store.Save(snap))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Contains(t, loaded.Challenges, "3:7")
	assert.Equal(t, "alice", loaded.Challenges["3:7"].From.Name)
}

func TestSessionRecordSerializesFlat(t *testing.T) {
	// Game state fields sit at the top level of each session entry,
	// not nested under an intermediate key.
	rec := SessionRecord{
		ID:        "3:7",
		CreatedAt: time.Now(),
		State:     engine.State{Turn: 4, Phase: engine.PhaseAwaitingRoll, CurrentSide: 2},
	}
	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, key := range []string{"id", "turnCounter", "track", "phase", "sides", "currentRoll", "currentSideOrdinal", "eventLog"} {
		assert.Contains(t, fields, key)
	}
	assert.NotContains(t, fields, "state")

	var back SessionRecord
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, 4, back.Turn)
	assert.Equal(t, 2, back.CurrentSide)
}

func TestSaveCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "snapshot.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Save(NewSnapshot()))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Save(NewSnapshot()))
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestSaveNilSnapshot(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "snapshot.json"))
	require.NoError(t, err)
	assert.Error(t, store.Save(nil))
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	store, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = store.Load()
	assert.Error(t, err)
}
