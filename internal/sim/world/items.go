package world

import (
	"github.com/google/uuid"

	"voxelhold.dev/internal/sim/catalogs"
)

// Item is a concrete instance. Exactly one slot references a live
// instance by uid; deleting the slot entry and the instance together is
// the only way an instance dies.
type Item struct {
	UID           string
	Kind          string
	Quantity      int
	Durability    int
	MaxDurability int
	Meta          map[string]string
}

func (w *World) itemDef(kind string) (catalogs.ItemDef, bool) {
	def, ok := w.cats.Items.Defs[kind]
	return def, ok
}

func (w *World) newItem(kind string, n int) *Item {
	def := w.cats.Items.Defs[kind]
	it := &Item{
		UID:           uuid.NewString(),
		Kind:          kind,
		Quantity:      n,
		Durability:    def.Durability,
		MaxDurability: def.Durability,
	}
	w.items[it.UID] = it
	return it
}

func (w *World) deleteItem(uid string) {
	delete(w.items, uid)
}

// grantItem stores n units of kind into the inventory: existing
// compatible stacks fill first, then new stacks in the first empty
// slots. Returns however many units found no room.
func (w *World) grantItem(p *Player, kind string, n int) (leftover int) {
	def, ok := w.itemDef(kind)
	if !ok || n <= 0 {
		return n
	}

	if def.MaxStack > 1 {
		for i := range p.Inventory {
			if n == 0 {
				break
			}
			uid := p.Inventory[i]
			if uid == "" {
				continue
			}
			it := w.items[uid]
			if it == nil || it.Kind != kind || it.Quantity >= def.MaxStack {
				continue
			}
			take := def.MaxStack - it.Quantity
			if take > n {
				take = n
			}
			it.Quantity += take
			n -= take
		}
	}

	for i := range p.Inventory {
		if n == 0 {
			break
		}
		if p.Inventory[i] != "" {
			continue
		}
		take := n
		if take > def.MaxStack {
			take = def.MaxStack
		}
		it := w.newItem(kind, take)
		p.Inventory[i] = it.UID
		n -= take
	}
	return n
}

// consumeHotbar removes one unit from the active hotbar slot. When the
// stack hits zero the slot and the instance are deleted together.
func (w *World) consumeHotbar(p *Player) {
	uid := p.Inventory[p.HotbarIndex]
	it := w.items[uid]
	if it == nil {
		return
	}
	it.Quantity--
	if it.Quantity <= 0 {
		p.Inventory[p.HotbarIndex] = ""
		w.deleteItem(uid)
	}
}

// wearTool ages the equipped tool by one use; a worn-out tool is deleted
// with its slot.
func (w *World) wearTool(p *Player) {
	uid := p.Equip[0]
	it := w.items[uid]
	if it == nil || it.MaxDurability == 0 {
		return
	}
	it.Durability--
	if it.Durability <= 0 {
		p.Equip[0] = ""
		w.deleteItem(uid)
	}
}
