package presence

import (
	"testing"

	"github.com/wricardo/royal-game-of-ur/game/service"
)

// recordingHandle captures emitted events for assertions.
type recordingHandle struct {
	events []string
}

func (h *recordingHandle) Emit(event string, payload any) {
	h.events = append(h.events, event)
}

func TestResolveOfflineReturnsNullHandle(t *testing.T) {
	d := NewDirectory()

	h := d.Resolve(42)
	if _, ok := h.(service.NullHandle); !ok {
		t.Fatalf("expected NullHandle for offline player, got %T", h)
	}

	// Emitting to it must be a no-op, not a panic
	h.Emit("game-set", nil)
}

func TestBindResolve(t *testing.T) {
	d := NewDirectory()
	h := &recordingHandle{}
	d.Bind(1, "alice", h)

	got := d.Resolve(1)
	got.Emit("game-set", nil)
	if len(h.events) != 1 {
		t.Errorf("bound handle did not receive event, got %v", h.events)
	}

	name, ok := d.Name(1)
	if !ok || name != "alice" {
		t.Errorf("Name(1) = %q, %v", name, ok)
	}
}

func TestRebindReplacesHandle(t *testing.T) {
	d := NewDirectory()
	old := &recordingHandle{}
	fresh := &recordingHandle{}

	d.Bind(1, "alice", old)
	d.Bind(1, "alice", fresh)

	d.Resolve(1).Emit("game-set", nil)
	if len(old.events) != 0 {
		t.Errorf("stale handle received events: %v", old.events)
	}
	if len(fresh.events) != 1 {
		t.Errorf("fresh handle missed event: %v", fresh.events)
	}
}

func TestUnbind(t *testing.T) {
	d := NewDirectory()
	d.Bind(1, "alice", &recordingHandle{})
	d.Unbind(1)

	if _, ok := d.Name(1); ok {
		t.Error("Name should miss after Unbind")
	}
	if _, ok := d.Resolve(1).(service.NullHandle); !ok {
		t.Error("Resolve should fall back to NullHandle after Unbind")
	}
}

func TestOnlineSorted(t *testing.T) {
	d := NewDirectory()
	d.Bind(9, "carol", &recordingHandle{})
	d.Bind(2, "alice", &recordingHandle{})
	d.Bind(5, "bob", &recordingHandle{})

	online := d.Online()
	if len(online) != 3 {
		t.Fatalf("expected 3 online, got %d", len(online))
	}
	for i, want := range []string{"alice", "bob", "carol"} {
		if online[i].Name != want {
			t.Errorf("online[%d] = %q, want %q", i, online[i].Name, want)
		}
	}
}

func TestBroadcastReachesEveryone(t *testing.T) {
	d := NewDirectory()
	a := &recordingHandle{}
	b := &recordingHandle{}
	d.Bind(1, "alice", a)
	d.Bind(2, "bob", b)

	d.Broadcast("lobby-players", nil)

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("broadcast missed a handle: alice=%v bob=%v", a.events, b.events)
	}
}
