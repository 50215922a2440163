package world

import (
	"fmt"
	"time"

	"voxelhold.dev/internal/protocol"
)

const (
	InventorySlots = 36
	HotbarSlots    = 9
	CraftSlots     = 9
	EquipSlots     = 4
)

// Equip slot order: index in Player.Equip. Each slot accepts only items
// whose def names the matching equip_slot.
var equipSlotNames = [EquipSlots]string{"tool", "head", "chest", "legs"}

// Player is per-connection authoritative state. Slots store item uids,
// never instances, so moves are O(1) reference updates.
type Player struct {
	ID   string
	Name string

	Pos   [3]float64 // feet
	Yaw   float64
	Pitch float64

	Health     int
	Stamina    float64
	Sprinting  bool
	Swinging   bool
	swingStart time.Time

	HotbarIndex int
	Inventory   [InventorySlots]string
	Equip       [EquipSlots]string
	Craft       [CraftSlots]string

	lastBlockOp time.Time
	lastStats   protocol.StatsMsg

	out chan []byte
}

// slot resolves a wire slot reference to the backing cell.
func (p *Player) slot(ref protocol.SlotRef) (*string, bool) {
	switch ref.Area {
	case protocol.AreaInventory:
		if ref.Index < 0 || ref.Index >= InventorySlots {
			return nil, false
		}
		return &p.Inventory[ref.Index], true
	case protocol.AreaEquip:
		if ref.Index < 0 || ref.Index >= EquipSlots {
			return nil, false
		}
		return &p.Equip[ref.Index], true
	case protocol.AreaCraft:
		if ref.Index < 0 || ref.Index >= CraftSlots {
			return nil, false
		}
		return &p.Craft[ref.Index], true
	default:
		return nil, false
	}
}

// Starter kit granted on join.
var starterItems = []struct {
	kind string
	n    int
}{
	{"WOOD_PICKAXE", 1},
	{"DIRT", 16},
}

func (w *World) handleJoin(req JoinRequest) {
	w.nextPlayer++
	id := fmt.Sprintf("P%d", w.nextPlayer)
	name := req.Name
	if name == "" {
		name = id
	}

	p := &Player{
		ID:      id,
		Name:    name,
		Health:  20,
		Stamina: w.cfg.Tune.StaminaMax,
		out:     req.Out,
	}
	p.Pos = w.spawnPos()
	w.players[id] = p
	w.playerCount.Store(int64(len(w.players)))

	for _, s := range starterItems {
		if _, ok := w.cats.Items.Defs[s.kind]; !ok {
			continue
		}
		w.grantItem(p, s.kind, s.n)
	}

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		PlayerID:        id,
		Pos:             p.Pos,
		WorldParams: protocol.WorldParams{
			Seed:   w.cfg.Seed,
			BoundR: w.store.BoundR(),
			Reach:  w.cfg.Tune.Reach,
			TickMs: w.cfg.Tune.TickMs,
			FloorY: w.store.Gen().FloorY(),
		},
		Catalogs: protocol.CatalogDigests{
			BlockPalette: w.cats.Blocks.PaletteDigest,
			ItemDefs:     w.cats.Items.DefsDigest,
		},
	}
	if req.Resp != nil {
		req.Resp <- JoinResponse{Welcome: welcome}
	}
	w.sendTo(p, welcome)
	w.logf("player %s (%s) joined at %v", id, name, p.Pos)
}

func (w *World) handleLeave(id string) {
	if p, ok := w.players[id]; ok {
		w.dropPlayerItems(p)
		delete(w.players, id)
		w.playerCount.Store(int64(len(w.players)))
		w.logf("player %s left", id)
	}
}

// dropPlayerItems deletes the instances referenced by the leaving
// player's slots, keeping the uid->instance registry free of orphans.
func (w *World) dropPlayerItems(p *Player) {
	clear := func(cells []string) {
		for _, uid := range cells {
			if uid != "" {
				delete(w.items, uid)
			}
		}
	}
	clear(p.Inventory[:])
	clear(p.Equip[:])
	clear(p.Craft[:])
}

// spawnPos places feet on top of the spawn-flat surface, fanned out a
// little per join so players do not stack.
func (w *World) spawnPos() [3]float64 {
	n := int(w.nextPlayer) % 8
	return [3]float64{
		0.5 + float64(n*2),
		float64(w.cfg.Tune.SpawnSurfaceY + 1),
		0.5,
	}
}
