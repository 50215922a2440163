package world

import (
	"encoding/json"
	"testing"

	"voxelhold.dev/internal/protocol"
	"voxelhold.dev/internal/sim/catalogs"
	"voxelhold.dev/internal/sim/tuning"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	cats, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	w, err := New(Config{ID: "test", Seed: 42, Tune: tuning.Defaults()}, cats, nil)
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	return w
}

// joinPlayer joins through the real handshake and discards the welcome
// frame so tests only see the traffic they cause.
func joinPlayer(t *testing.T, w *World, name string) *Player {
	t.Helper()
	resp := make(chan JoinResponse, 1)
	w.handleJoin(JoinRequest{Name: name, Out: make(chan []byte, 64), Resp: resp})
	jr := <-resp
	p := w.players[jr.Welcome.PlayerID]
	if p == nil {
		t.Fatalf("player %s missing after join", name)
	}
	drainOut(p)
	return p
}

func drainOut(p *Player) [][]byte {
	var frames [][]byte
	for {
		select {
		case b := <-p.out:
			frames = append(frames, b)
		default:
			return frames
		}
	}
}

// framesOfType decodes the queued frames carrying the given type tag and
// drops everything else.
func framesOfType(t *testing.T, p *Player, typ string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, b := range drainOut(p) {
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		if m["type"] == typ {
			out = append(out, m)
		}
	}
	return out
}

// lastReject returns the most recent queued reject, or nil.
func lastReject(t *testing.T, p *Player) *protocol.RejectMsg {
	t.Helper()
	var last *protocol.RejectMsg
	for _, b := range drainOut(p) {
		var base protocol.BaseMessage
		if err := json.Unmarshal(b, &base); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		if base.Type != protocol.TypeReject {
			continue
		}
		var r protocol.RejectMsg
		if err := json.Unmarshal(b, &r); err != nil {
			t.Fatalf("decode reject: %v", err)
		}
		last = &r
	}
	return last
}

func expectReject(t *testing.T, p *Player, reason string) {
	t.Helper()
	r := lastReject(t, p)
	if r == nil {
		t.Fatalf("expected reject %q, got none", reason)
	}
	if r.Reason != reason {
		t.Fatalf("reject reason = %q, want %q", r.Reason, reason)
	}
	if !protocol.IsKnownReason(r.Reason) {
		t.Fatalf("reject reason %q not in the known set", r.Reason)
	}
}

// giveItem bypasses the grant path for tests that need exact slot layouts.
func giveItem(w *World, p *Player, slot int, kind string, n int) *Item {
	it := w.newItem(kind, n)
	p.Inventory[slot] = it.UID
	return it
}

func clearInventory(w *World, p *Player) {
	for i, uid := range p.Inventory {
		if uid != "" {
			w.deleteItem(uid)
			p.Inventory[i] = ""
		}
	}
}
