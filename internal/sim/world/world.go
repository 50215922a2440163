package world

import (
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"voxelhold.dev/internal/protocol"
	"voxelhold.dev/internal/sim/catalogs"
	"voxelhold.dev/internal/sim/world/terrain/gen"
	"voxelhold.dev/internal/sim/world/terrain/store"
)

// Saver persists the current edit set. Failures are logged and retried
// on the next autosave window; they never roll back in-memory state.
type Saver interface {
	Save(edits []store.Edit, digest string) error
}

// AuditSink records accepted block mutations.
type AuditSink interface {
	RecordBlockOp(AuditEntry)
}

type AuditEntry struct {
	At       time.Time `json:"at"`
	PlayerID string    `json:"player_id"`
	Op       string    `json:"op"`
	X        int       `json:"x"`
	Y        int       `json:"y"`
	Z        int       `json:"z"`
	Prev     uint16    `json:"prev"`
	Next     uint16    `json:"next"`
}

// World owns the store, the players and every item instance. All
// mutation runs on the single Run goroutine; compound operations
// (check-then-mutate) are therefore never interleaved.
type World struct {
	cfg  Config
	log  *log.Logger
	cats *catalogs.Catalogs

	store *store.Store

	players map[string]*Player
	items   map[string]*Item

	inbox chan RequestEnvelope
	join  chan JoinRequest
	leave chan string
	stop  chan struct{}

	audit AuditSink
	saver Saver

	nextPlayer      uint64
	playerCount     atomic.Int64
	lastSaveAttempt time.Time
}

type RequestEnvelope struct {
	PlayerID string
	Req      protocol.Request
}

type JoinRequest struct {
	Name string
	Out  chan []byte
	Resp chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
}

func New(cfg Config, cats *catalogs.Catalogs, logger *log.Logger) (*World, error) {
	cfg.applyDefaults()
	gc, err := genConfig(cfg, cats)
	if err != nil {
		return nil, err
	}
	g := gen.New(gc)

	w := &World{
		cfg:     cfg,
		log:     logger,
		cats:    cats,
		store:   store.New(g, cfg.Tune.WorldBoundR),
		players: map[string]*Player{},
		items:   map[string]*Item{},
		inbox:   make(chan RequestEnvelope, 256),
		join:    make(chan JoinRequest, 16),
		leave:   make(chan string, 16),
		stop:    make(chan struct{}),
	}
	return w, nil
}

func (w *World) ID() string          { return w.cfg.ID }
func (w *World) Store() *store.Store { return w.store }
func (w *World) SetAudit(a AuditSink) { w.audit = a }
func (w *World) SetSaver(s Saver)     { w.saver = s }

func (w *World) Inbox() chan<- RequestEnvelope { return w.inbox }
func (w *World) Join() chan<- JoinRequest      { return w.join }
func (w *World) Leave() chan<- string          { return w.leave }

func (w *World) logf(format string, args ...any) {
	if w.log != nil {
		w.log.Printf(format, args...)
	}
}

// sendTo marshals and enqueues without blocking the loop; a full client
// queue drops the frame.
func (w *World) sendTo(p *Player, v any) {
	if p.out == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		w.logf("marshal %T: %v", v, err)
		return
	}
	select {
	case p.out <- b:
	default:
		w.logf("player %s: outbound queue full, dropping %T", p.ID, v)
	}
}

func (w *World) broadcast(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		w.logf("marshal %T: %v", v, err)
		return
	}
	for _, p := range w.players {
		if p.out == nil {
			continue
		}
		select {
		case p.out <- b:
		default:
			w.logf("player %s: outbound queue full, dropping broadcast", p.ID)
		}
	}
}

func (w *World) reject(p *Player, op, reason string, pos *[3]int) {
	w.sendTo(p, protocol.RejectMsg{
		Type:   protocol.TypeReject,
		Op:     op,
		Reason: reason,
		Pos:    pos,
	})
}
