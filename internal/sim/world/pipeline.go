package world

import (
	"math"
	"time"

	"voxelhold.dev/internal/protocol"
	"voxelhold.dev/internal/sim/catalogs"
	"voxelhold.dev/internal/sim/world/logic/mathx"
)

const (
	opBreak = "break"
	opPlace = "place"
)

// blockOp carries one break/place intent through the validation chain.
// Checks may fill the resolved fields for later checks and for apply.
type blockOp struct {
	op   string
	pos  Vec3i
	item string // place only: requested item kind
	now  time.Time

	itemDef catalogs.ItemDef // filled by checkPlaceableKind
}

// blockCheck returns a rejection reason, or "" to continue. The chains
// below are the single ordered validation path for every block op; new
// operations reuse the same steps rather than duplicating them.
type blockCheck func(w *World, p *Player, op *blockOp) string

var breakChecks = []blockCheck{
	checkCooldown,
	checkBounds,
	checkReach,
	checkBreakTarget,
}

var placeChecks = []blockCheck{
	checkCooldown,
	checkBounds,
	checkReach,
	checkPlaceableKind,
	checkTargetEmpty,
	checkHotbarStock,
}

func (w *World) runChecks(chain []blockCheck, p *Player, op *blockOp) string {
	for _, c := range chain {
		if reason := c(w, p, op); reason != "" {
			return reason
		}
	}
	return ""
}

func checkCooldown(w *World, p *Player, op *blockOp) string {
	cooldown := time.Duration(w.cfg.Tune.BlockOpCooldownMs) * time.Millisecond
	if !p.lastBlockOp.IsZero() && op.now.Sub(p.lastBlockOp) < cooldown {
		return protocol.ReasonRateLimited
	}
	return ""
}

func checkBounds(w *World, p *Player, op *blockOp) string {
	if !w.store.InBounds(op.pos.X, op.pos.Z) {
		return protocol.ReasonBadCoordinate
	}
	return ""
}

// checkReach measures from the server's record of the player's eye to
// the voxel center, so a spoofed request coordinate cannot out-range a
// clamped position.
func checkReach(w *World, p *Player, op *blockOp) string {
	ex := p.Pos[0]
	ey := p.Pos[1] + w.cfg.Tune.EyeHeight
	ez := p.Pos[2]
	dx := float64(op.pos.X) + 0.5 - ex
	dy := float64(op.pos.Y) + 0.5 - ey
	dz := float64(op.pos.Z) + 0.5 - ez
	if math.Sqrt(dx*dx+dy*dy+dz*dz) > w.cfg.Tune.Reach {
		return protocol.ReasonOutOfReach
	}
	return ""
}

func checkBreakTarget(w *World, p *Player, op *blockOp) string {
	cur := w.store.Get(op.pos.X, op.pos.Y, op.pos.Z)
	if cur == w.store.Gen().AirID() {
		return protocol.ReasonNothingToBreak
	}
	name := w.blockName(cur)
	if def, ok := w.cats.Blocks.Defs[name]; !ok || !def.Breakable {
		return protocol.ReasonProtected
	}
	return ""
}

func checkPlaceableKind(w *World, p *Player, op *blockOp) string {
	def, ok := w.itemDef(op.item)
	if !ok || def.Kind != catalogs.KindBlock {
		return protocol.ReasonNotPlaceable
	}
	op.itemDef = def
	return ""
}

func checkTargetEmpty(w *World, p *Player, op *blockOp) string {
	if w.store.Get(op.pos.X, op.pos.Y, op.pos.Z) != w.store.Gen().AirID() {
		return protocol.ReasonOccupied
	}
	return ""
}

func checkHotbarStock(w *World, p *Player, op *blockOp) string {
	it := w.items[p.Inventory[p.HotbarIndex]]
	if it == nil || it.Kind != op.item || it.Quantity < 1 {
		return protocol.ReasonNoResource
	}
	return ""
}

func (w *World) handleBlockBreak(p *Player, r protocol.BlockBreakReq, now time.Time) {
	op := &blockOp{op: opBreak, pos: v3FromArray(r.Pos), now: now}
	if reason := w.runChecks(breakChecks, p, op); reason != "" {
		pos := op.pos.ToArray()
		w.reject(p, opBreak, reason, &pos)
		return
	}

	prev, next := w.store.ApplyBreak(op.pos.X, op.pos.Y, op.pos.Z)
	p.lastBlockOp = now
	w.wearTool(p)

	if drop := w.cats.Blocks.Defs[w.blockName(prev)].DropsItem; drop != "" {
		if left := w.grantItem(p, drop, 1); left > 0 {
			w.logf("player %s: inventory full, %d %s discarded", p.ID, left, drop)
		}
	}

	w.recordBlockOp(p, op, prev, next)
	w.broadcastBlockUpdate(op.pos, next)
}

func (w *World) handleBlockPlace(p *Player, r protocol.BlockPlaceReq, now time.Time) {
	op := &blockOp{op: opPlace, pos: v3FromArray(r.Pos), item: r.Item, now: now}
	if reason := w.runChecks(placeChecks, p, op); reason != "" {
		pos := op.pos.ToArray()
		w.reject(p, opPlace, reason, &pos)
		return
	}

	id := w.cats.Blocks.Index[op.itemDef.PlaceAs]
	prev, next := w.store.ApplyPlace(op.pos.X, op.pos.Y, op.pos.Z, id)
	p.lastBlockOp = now
	w.consumeHotbar(p)

	w.recordBlockOp(p, op, prev, next)
	w.broadcastBlockUpdate(op.pos, next)
}

func (w *World) recordBlockOp(p *Player, op *blockOp, prev, next uint16) {
	if w.audit == nil {
		return
	}
	w.audit.RecordBlockOp(AuditEntry{
		At:       op.now,
		PlayerID: p.ID,
		Op:       op.op,
		X:        op.pos.X,
		Y:        op.pos.Y,
		Z:        op.pos.Z,
		Prev:     prev,
		Next:     next,
	})
}

func (w *World) broadcastBlockUpdate(pos Vec3i, id uint16) {
	w.broadcast(protocol.BlockUpdateMsg{
		Type: protocol.TypeBlockUpdate,
		X:    pos.X,
		Y:    pos.Y,
		Z:    pos.Z,
		ID:   id,
	})
}

func (w *World) blockName(id uint16) string {
	if int(id) >= len(w.cats.Blocks.Palette) {
		return ""
	}
	return w.cats.Blocks.Palette[id]
}

// handleMove trusts the reported position but clamps it into the world
// bound and pitch range. Reach validation later uses this server-side
// record, not the request coordinate.
func (w *World) handleMove(p *Player, r protocol.MoveReq) {
	b := float64(w.store.BoundR())
	if b > 0 {
		p.Pos[0] = mathx.ClampF(r.Pos[0], -b, b)
		p.Pos[2] = mathx.ClampF(r.Pos[2], -b, b)
	} else {
		p.Pos[0] = r.Pos[0]
		p.Pos[2] = r.Pos[2]
	}
	p.Pos[1] = r.Pos[1]
	p.Yaw = r.Yaw
	p.Pitch = mathx.ClampF(r.Pitch, w.cfg.Tune.PitchMin, w.cfg.Tune.PitchMax)
}

// handleRequest dispatches one validated request. Called only from the
// Run goroutine.
func (w *World) handleRequest(p *Player, req protocol.Request, now time.Time) {
	switch r := req.(type) {
	case protocol.MoveReq:
		w.handleMove(p, r)
	case protocol.BlockBreakReq:
		w.handleBlockBreak(p, r, now)
	case protocol.BlockPlaceReq:
		w.handleBlockPlace(p, r, now)
	case protocol.SwingReq:
		p.Swinging = true
		p.swingStart = now
	case protocol.SprintReq:
		if r.On && p.Stamina <= 0 {
			return
		}
		p.Sprinting = r.On
	case protocol.HotbarReq:
		if r.Index < 0 || r.Index >= HotbarSlots {
			w.reject(p, protocol.TypeHotbar, protocol.ReasonBadSlot, nil)
			return
		}
		p.HotbarIndex = r.Index
	case protocol.SlotMoveReq:
		w.handleSlotMove(p, r)
	case protocol.SlotSplitReq:
		w.handleSlotSplit(p, r)
	case protocol.PatchReq:
		// An unbounded radius would stall the loop for every player;
		// the scan cost is the client's to request but ours to pay.
		if r.Radius > w.cfg.Tune.PatchMaxRadius {
			w.reject(p, protocol.TypePatchReq, protocol.ReasonBadRequest, nil)
			return
		}
		w.sendTo(p, w.buildPatch(r.Center, r.Radius, r.Mode))
	}
}
