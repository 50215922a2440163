package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"voxelhold.dev/internal/protocol"
	"voxelhold.dev/internal/sim/world"
)

type Server struct {
	world *world.World
	log   *log.Logger
	queue int

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, queue int, logger *log.Logger) *Server {
	if queue <= 0 {
		queue = 32
	}
	return &Server{
		world: w,
		log:   logger,
		queue: queue,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		playerID, out := s.handshake(conn)
		if playerID == "" {
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine: drains the world's outbound queue onto the
		// socket. The world never blocks on this connection.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop: every frame is decoded and validated here, so the
		// world loop only ever sees well-formed requests.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			req, err := protocol.DecodeRequest(msg)
			if err != nil {
				s.rejectFrame(out, msg)
				continue
			}
			s.world.Inbox() <- world.RequestEnvelope{PlayerID: playerID, Req: req}
		}

		s.world.Leave() <- playerID
	}
}

// rejectFrame answers a malformed frame without involving the world.
func (s *Server) rejectFrame(out chan []byte, msg []byte) {
	base, _ := protocol.DecodeBase(msg)
	b, err := json.Marshal(protocol.RejectMsg{
		Type:   protocol.TypeReject,
		Op:     base.Type,
		Reason: protocol.ReasonBadRequest,
	})
	if err != nil {
		return
	}
	select {
	case out <- b:
	default:
	}
}

func (s *Server) handshake(conn *websocket.Conn) (playerID string, out chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeJoin {
		closeWith(conn, "expected join")
		return "", nil
	}

	var join protocol.JoinMsg
	if err := json.Unmarshal(msg, &join); err != nil {
		return "", nil
	}
	if join.ProtocolVersion != protocol.Version {
		closeWith(conn, "bad protocol_version")
		return "", nil
	}

	out = make(chan []byte, s.queue)
	respCh := make(chan world.JoinResponse, 1)
	s.world.Join() <- world.JoinRequest{
		Name: join.Name,
		Out:  out,
		Resp: respCh,
	}
	resp := <-respCh

	// The welcome frame is already queued on out; the writer goroutine
	// delivers it first.
	return resp.Welcome.PlayerID, out
}

func closeWith(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}
