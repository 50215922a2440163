package ws

import (
	"context"
	"encoding/json"
	"math"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"voxelhold.dev/internal/protocol"
	"voxelhold.dev/internal/sim/catalogs"
	"voxelhold.dev/internal/sim/tuning"
	"voxelhold.dev/internal/sim/world"
)

func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cats, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	w, err := world.New(world.Config{ID: "test", Seed: 7, Tune: tuning.Defaults()}, cats, nil)
	if err != nil {
		t.Fatalf("world: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	srv := httptest.NewServer(NewServer(w, 32, nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func joinConn(t *testing.T, conn *websocket.Conn) protocol.WelcomeMsg {
	t.Helper()
	err := conn.WriteJSON(protocol.JoinMsg{
		Type:            protocol.TypeJoin,
		ProtocolVersion: protocol.Version,
		Name:            "tester",
	})
	if err != nil {
		t.Fatalf("send join: %v", err)
	}

	var welcome protocol.WelcomeMsg
	readFrame(t, conn, protocol.TypeWelcome, &welcome)
	return welcome
}

// readFrame reads frames until one carries the wanted type tag,
// decoding it into out.
func readFrame(t *testing.T, conn *websocket.Conn, typ string, out any) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(deadline)
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read while waiting for %q: %v", typ, err)
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		if base.Type != typ {
			continue
		}
		if err := json.Unmarshal(msg, out); err != nil {
			t.Fatalf("decode %q frame: %v", typ, err)
		}
		return
	}
	t.Fatalf("no %q frame before deadline", typ)
}

func TestHandshake_WelcomeCarriesWorldParams(t *testing.T) {
	srv := startTestServer(t)
	conn := dial(t, srv)

	welcome := joinConn(t, conn)
	if welcome.PlayerID == "" {
		t.Fatalf("welcome without player id")
	}
	if welcome.WorldParams.Seed != 7 || welcome.WorldParams.BoundR <= 0 {
		t.Fatalf("world params = %+v", welcome.WorldParams)
	}
	if welcome.Catalogs.BlockPalette == "" || welcome.Catalogs.ItemDefs == "" {
		t.Fatalf("welcome missing catalog digests")
	}
}

func TestHandshake_VersionMismatchCloses(t *testing.T) {
	srv := startTestServer(t)
	conn := dial(t, srv)

	err := conn.WriteJSON(protocol.JoinMsg{
		Type:            protocol.TypeJoin,
		ProtocolVersion: "0.9",
		Name:            "old",
	})
	if err != nil {
		t.Fatalf("send join: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("connection survived a protocol version mismatch")
	}
}

func TestMalformedRequest_RejectedAtBoundary(t *testing.T) {
	srv := startTestServer(t)
	conn := dial(t, srv)
	joinConn(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"teleport"}`)); err != nil {
		t.Fatalf("send frame: %v", err)
	}

	var rej protocol.RejectMsg
	readFrame(t, conn, protocol.TypeReject, &rej)
	if rej.Reason != protocol.ReasonBadRequest {
		t.Fatalf("reject reason = %q, want %q", rej.Reason, protocol.ReasonBadRequest)
	}
}

func TestBlockBreak_RoundTrip(t *testing.T) {
	srv := startTestServer(t)
	conn := dial(t, srv)
	welcome := joinConn(t, conn)

	// The spawn flat guarantees a grass surface one block under the
	// player's feet.
	x := int(math.Floor(welcome.Pos[0]))
	y := int(math.Floor(welcome.Pos[1])) - 1
	err := conn.WriteJSON(protocol.BlockBreakReq{
		Type: protocol.TypeBlockBreak,
		Pos:  [3]int{x, y, 0},
	})
	if err != nil {
		t.Fatalf("send break: %v", err)
	}

	var up protocol.BlockUpdateMsg
	readFrame(t, conn, protocol.TypeBlockUpdate, &up)
	if up.X != x || up.Y != y || up.Z != 0 || up.ID != 0 {
		t.Fatalf("block_update = %+v", up)
	}
}
