package world

import (
	"testing"

	"voxelhold.dev/internal/protocol"
)

func inv(i int) protocol.SlotRef   { return protocol.SlotRef{Area: protocol.AreaInventory, Index: i} }
func equip(i int) protocol.SlotRef { return protocol.SlotRef{Area: protocol.AreaEquip, Index: i} }

func TestSlotMove_IntoEmpty(t *testing.T) {
	w := newTestWorld(t)
	p := joinPlayer(t, w, "packer")
	clearInventory(w, p)
	it := giveItem(w, p, 0, "DIRT", 5)

	w.handleSlotMove(p, protocol.SlotMoveReq{From: inv(0), To: inv(7)})
	if p.Inventory[0] != "" || p.Inventory[7] != it.UID {
		t.Fatalf("move into empty failed: %q %q", p.Inventory[0], p.Inventory[7])
	}
}

func TestSlotMove_ReverseFromEmpty(t *testing.T) {
	w := newTestWorld(t)
	p := joinPlayer(t, w, "packer")
	clearInventory(w, p)
	it := giveItem(w, p, 7, "DIRT", 5)

	// Source empty, destination occupied: the item comes back.
	w.handleSlotMove(p, protocol.SlotMoveReq{From: inv(0), To: inv(7)})
	if p.Inventory[0] != it.UID || p.Inventory[7] != "" {
		t.Fatalf("reverse move failed: %q %q", p.Inventory[0], p.Inventory[7])
	}
}

func TestSlotMove_MergeLeavesRemainderInSource(t *testing.T) {
	w := newTestWorld(t)
	p := joinPlayer(t, w, "packer")
	clearInventory(w, p)
	src := giveItem(w, p, 0, "DIRT", 40)
	dst := giveItem(w, p, 1, "DIRT", 60)

	w.handleSlotMove(p, protocol.SlotMoveReq{From: inv(0), To: inv(1)})
	if dst.Quantity != 64 {
		t.Fatalf("dst quantity = %d, want 64", dst.Quantity)
	}
	if src.Quantity != 36 || p.Inventory[0] != src.UID {
		t.Fatalf("remainder not left in source: qty=%d slot=%q", src.Quantity, p.Inventory[0])
	}
}

func TestSlotMove_FullMergeDeletesSource(t *testing.T) {
	w := newTestWorld(t)
	p := joinPlayer(t, w, "packer")
	clearInventory(w, p)
	src := giveItem(w, p, 0, "DIRT", 4)
	dst := giveItem(w, p, 1, "DIRT", 10)

	w.handleSlotMove(p, protocol.SlotMoveReq{From: inv(0), To: inv(1)})
	if dst.Quantity != 14 {
		t.Fatalf("dst quantity = %d, want 14", dst.Quantity)
	}
	if p.Inventory[0] != "" {
		t.Fatalf("emptied source slot still set: %q", p.Inventory[0])
	}
	if _, ok := w.items[src.UID]; ok {
		t.Fatalf("merged-away instance still registered")
	}
}

func TestSlotMove_MergeIntoFullStackIsNoop(t *testing.T) {
	w := newTestWorld(t)
	p := joinPlayer(t, w, "packer")
	clearInventory(w, p)
	src := giveItem(w, p, 0, "DIRT", 10)
	dst := giveItem(w, p, 1, "DIRT", 64)

	w.handleSlotMove(p, protocol.SlotMoveReq{From: inv(0), To: inv(1)})
	if src.Quantity != 10 || dst.Quantity != 64 {
		t.Fatalf("full-stack merge changed quantities: %d %d", src.Quantity, dst.Quantity)
	}
	if r := lastReject(t, p); r != nil {
		t.Fatalf("unexpected reject %q", r.Reason)
	}
}

func TestSlotMove_SwapDifferentKinds(t *testing.T) {
	w := newTestWorld(t)
	p := joinPlayer(t, w, "packer")
	clearInventory(w, p)
	a := giveItem(w, p, 0, "WOOD_PICKAXE", 1)
	b := giveItem(w, p, 1, "DIRT", 30)

	w.handleSlotMove(p, protocol.SlotMoveReq{From: inv(0), To: inv(1)})
	if p.Inventory[0] != b.UID || p.Inventory[1] != a.UID {
		t.Fatalf("swap failed: %q %q", p.Inventory[0], p.Inventory[1])
	}
}

func TestSlotMove_EquipTool(t *testing.T) {
	w := newTestWorld(t)
	p := joinPlayer(t, w, "packer")
	clearInventory(w, p)
	pick := giveItem(w, p, 0, "WOOD_PICKAXE", 1)

	w.handleSlotMove(p, protocol.SlotMoveReq{From: inv(0), To: equip(0)})
	if p.Equip[0] != pick.UID || p.Inventory[0] != "" {
		t.Fatalf("equip move failed: %q %q", p.Equip[0], p.Inventory[0])
	}
}

func TestSlotMove_BlockIntoToolSlotRejected(t *testing.T) {
	w := newTestWorld(t)
	p := joinPlayer(t, w, "packer")
	clearInventory(w, p)
	dirt := giveItem(w, p, 0, "DIRT", 30)

	w.handleSlotMove(p, protocol.SlotMoveReq{From: inv(0), To: equip(0)})
	expectReject(t, p, protocol.ReasonIncompatible)
	if p.Inventory[0] != dirt.UID || p.Equip[0] != "" {
		t.Fatalf("failed move mutated slots: %q %q", p.Inventory[0], p.Equip[0])
	}
}

func TestSlotMove_ArmorIntoWrongSlotRejected(t *testing.T) {
	w := newTestWorld(t)
	p := joinPlayer(t, w, "packer")
	clearInventory(w, p)
	giveItem(w, p, 0, "LEATHER_CAP", 1)

	// Head armor into the legs slot.
	w.handleSlotMove(p, protocol.SlotMoveReq{From: inv(0), To: equip(3)})
	expectReject(t, p, protocol.ReasonIncompatible)

	w.handleSlotMove(p, protocol.SlotMoveReq{From: inv(0), To: equip(1)})
	if p.Equip[1] == "" {
		t.Fatalf("cap did not equip into the head slot")
	}
}

func TestSlotMove_SwapIntoEquipChecksBothDirections(t *testing.T) {
	w := newTestWorld(t)
	p := joinPlayer(t, w, "packer")
	clearInventory(w, p)
	pick := giveItem(w, p, 0, "WOOD_PICKAXE", 1)
	dirt := giveItem(w, p, 1, "DIRT", 8)
	p.Equip[0] = pick.UID
	p.Inventory[0] = ""

	// Dirt cannot displace the equipped tool.
	w.handleSlotMove(p, protocol.SlotMoveReq{From: inv(1), To: equip(0)})
	expectReject(t, p, protocol.ReasonIncompatible)
	if p.Equip[0] != pick.UID || p.Inventory[1] != dirt.UID {
		t.Fatalf("rejected swap mutated slots")
	}
}

func TestSlotMove_BadRefRejected(t *testing.T) {
	w := newTestWorld(t)
	p := joinPlayer(t, w, "packer")

	w.handleSlotMove(p, protocol.SlotMoveReq{From: inv(-1), To: inv(0)})
	expectReject(t, p, protocol.ReasonBadSlot)
	w.handleSlotMove(p, protocol.SlotMoveReq{From: inv(0), To: inv(InventorySlots)})
	expectReject(t, p, protocol.ReasonBadSlot)
}

func TestSlotSplit_RoundsDown(t *testing.T) {
	w := newTestWorld(t)
	p := joinPlayer(t, w, "packer")
	clearInventory(w, p)
	src := giveItem(w, p, 0, "DIRT", 5)

	w.handleSlotSplit(p, protocol.SlotSplitReq{From: inv(0)})
	if src.Quantity != 3 {
		t.Fatalf("source quantity = %d, want 3", src.Quantity)
	}
	split := w.items[p.Inventory[1]]
	if split == nil || split.Kind != "DIRT" || split.Quantity != 2 {
		t.Fatalf("split stack = %+v", split)
	}
	if split.UID == src.UID {
		t.Fatalf("split reused the source instance")
	}
}

func TestSlotSplit_SingleUnitRejected(t *testing.T) {
	w := newTestWorld(t)
	p := joinPlayer(t, w, "packer")
	clearInventory(w, p)
	giveItem(w, p, 0, "DIRT", 1)

	w.handleSlotSplit(p, protocol.SlotSplitReq{From: inv(0)})
	expectReject(t, p, protocol.ReasonBadSlot)
}

func TestSlotSplit_FullInventoryRejected(t *testing.T) {
	w := newTestWorld(t)
	p := joinPlayer(t, w, "packer")
	clearInventory(w, p)
	for i := 0; i < InventorySlots; i++ {
		giveItem(w, p, i, "DIRT", 4)
	}

	w.handleSlotSplit(p, protocol.SlotSplitReq{From: inv(0)})
	expectReject(t, p, protocol.ReasonInventoryFull)
	if q := w.items[p.Inventory[0]].Quantity; q != 4 {
		t.Fatalf("failed split changed source quantity to %d", q)
	}
}
