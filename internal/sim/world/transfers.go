package world

import "voxelhold.dev/internal/protocol"

// cellAccepts gates equip destinations: a tool slot takes only
// tool-kind items, armor slots only armor for the matching body part.
// Non-equip areas accept anything.
func (w *World) cellAccepts(ref protocol.SlotRef, it *Item) bool {
	if ref.Area != protocol.AreaEquip {
		return true
	}
	def, ok := w.itemDef(it.Kind)
	if !ok {
		return false
	}
	return def.EquipSlot == equipSlotNames[ref.Index]
}

// handleSlotMove covers the four transfer outcomes: move into empty,
// reverse move from empty, same-kind merge, swap. An equip capability
// failure leaves both slots unchanged.
func (w *World) handleSlotMove(p *Player, r protocol.SlotMoveReq) {
	src, ok := p.slot(r.From)
	if !ok {
		w.reject(p, protocol.TypeSlotMove, protocol.ReasonBadSlot, nil)
		return
	}
	dst, ok := p.slot(r.To)
	if !ok {
		w.reject(p, protocol.TypeSlotMove, protocol.ReasonBadSlot, nil)
		return
	}
	if src == dst {
		return
	}

	switch {
	case *src == "" && *dst == "":
		return
	case *src == "":
		// Reverse move: pull the destination item back into the source.
		it := w.items[*dst]
		if it == nil || !w.cellAccepts(r.From, it) {
			w.reject(p, protocol.TypeSlotMove, protocol.ReasonIncompatible, nil)
			return
		}
		*src = *dst
		*dst = ""
	case *dst == "":
		it := w.items[*src]
		if it == nil || !w.cellAccepts(r.To, it) {
			w.reject(p, protocol.TypeSlotMove, protocol.ReasonIncompatible, nil)
			return
		}
		*dst = *src
		*src = ""
	default:
		w.moveIntoOccupied(p, r, src, dst)
	}
}

func (w *World) moveIntoOccupied(p *Player, r protocol.SlotMoveReq, src, dst *string) {
	a := w.items[*src]
	b := w.items[*dst]
	if a == nil || b == nil {
		w.reject(p, protocol.TypeSlotMove, protocol.ReasonBadSlot, nil)
		return
	}

	if a.Kind == b.Kind {
		if def, ok := w.itemDef(a.Kind); ok && def.MaxStack > 1 {
			// Partial merges leave the remainder in the source.
			space := def.MaxStack - b.Quantity
			if space <= 0 {
				return
			}
			take := a.Quantity
			if take > space {
				take = space
			}
			b.Quantity += take
			a.Quantity -= take
			if a.Quantity == 0 {
				w.deleteItem(*src)
				*src = ""
			}
			return
		}
	}

	// Swap: both cells must accept the incoming item.
	if !w.cellAccepts(r.To, a) || !w.cellAccepts(r.From, b) {
		w.reject(p, protocol.TypeSlotMove, protocol.ReasonIncompatible, nil)
		return
	}
	*src, *dst = *dst, *src
}

// handleSlotSplit takes floor(q/2) from the source stack into a new
// instance in the first empty inventory slot.
func (w *World) handleSlotSplit(p *Player, r protocol.SlotSplitReq) {
	src, ok := p.slot(r.From)
	if !ok || *src == "" {
		w.reject(p, protocol.TypeSlotSplit, protocol.ReasonBadSlot, nil)
		return
	}
	it := w.items[*src]
	if it == nil || it.Quantity < 2 {
		w.reject(p, protocol.TypeSlotSplit, protocol.ReasonBadSlot, nil)
		return
	}

	free := -1
	for i := range p.Inventory {
		if p.Inventory[i] == "" && &p.Inventory[i] != src {
			free = i
			break
		}
	}
	if free < 0 {
		w.reject(p, protocol.TypeSlotSplit, protocol.ReasonInventoryFull, nil)
		return
	}

	take := it.Quantity / 2
	it.Quantity -= take
	p.Inventory[free] = w.newItem(it.Kind, take).UID
}
