package protocol

import (
	"encoding/json"
	"fmt"
	"math"
)

const Version = "1.0"

// Message type tags. Client requests form a closed set: anything not
// listed here is rejected at the boundary before reaching the pipeline.
const (
	// client -> server
	TypeJoin       = "join"
	TypeMove       = "move"
	TypeBlockBreak = "block_break"
	TypeBlockPlace = "block_place"
	TypeSwing      = "swing"
	TypeSprint     = "sprint"
	TypeHotbar     = "hotbar"
	TypeSlotMove   = "slot_move"
	TypeSlotSplit  = "slot_split"
	TypePatchReq   = "patch_req"

	// server -> client
	TypeWelcome     = "welcome"
	TypeBlockUpdate = "block_update"
	TypeReject      = "reject"
	TypePatch       = "patch"
	TypeStats       = "stats"
)

// Patch encodings.
const (
	PatchModeEdits = "edits"
	PatchModeFull  = "full"
)

// Slot areas addressable by transfer requests.
const (
	AreaInventory = "inventory"
	AreaEquip     = "equip"
	AreaCraft     = "craft"
)

// BaseMessage routes unknown JSON messages by type.
type BaseMessage struct {
	Type string `json:"type"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}

// Request is the closed set of client intents. Each concrete type is
// decoded and validated once at the boundary; the pipeline never sees a
// free-form payload.
type Request interface {
	RequestType() string
}

func (MoveReq) RequestType() string       { return TypeMove }
func (BlockBreakReq) RequestType() string { return TypeBlockBreak }
func (BlockPlaceReq) RequestType() string { return TypeBlockPlace }
func (SwingReq) RequestType() string      { return TypeSwing }
func (SprintReq) RequestType() string     { return TypeSprint }
func (HotbarReq) RequestType() string     { return TypeHotbar }
func (SlotMoveReq) RequestType() string   { return TypeSlotMove }
func (SlotSplitReq) RequestType() string  { return TypeSlotSplit }
func (PatchReq) RequestType() string      { return TypePatchReq }

// DecodeRequest turns a raw frame into exactly one validated request.
func DecodeRequest(b []byte) (Request, error) {
	base, err := DecodeBase(b)
	if err != nil {
		return nil, fmt.Errorf("decode base: %w", err)
	}
	switch base.Type {
	case TypeMove:
		var r MoveReq
		if err := json.Unmarshal(b, &r); err != nil {
			return nil, err
		}
		if !finite(r.Pos[0]) || !finite(r.Pos[1]) || !finite(r.Pos[2]) || !finite(r.Yaw) || !finite(r.Pitch) {
			return nil, fmt.Errorf("move: non-finite field")
		}
		return r, nil
	case TypeBlockBreak:
		var r BlockBreakReq
		err := json.Unmarshal(b, &r)
		return r, err
	case TypeBlockPlace:
		var r BlockPlaceReq
		if err := json.Unmarshal(b, &r); err != nil {
			return nil, err
		}
		if r.Item == "" {
			return nil, fmt.Errorf("block_place: empty item")
		}
		return r, nil
	case TypeSwing:
		var r SwingReq
		err := json.Unmarshal(b, &r)
		return r, err
	case TypeSprint:
		var r SprintReq
		err := json.Unmarshal(b, &r)
		return r, err
	case TypeHotbar:
		var r HotbarReq
		err := json.Unmarshal(b, &r)
		return r, err
	case TypeSlotMove:
		var r SlotMoveReq
		if err := json.Unmarshal(b, &r); err != nil {
			return nil, err
		}
		if !validArea(r.From.Area) || !validArea(r.To.Area) {
			return nil, fmt.Errorf("slot_move: unknown area")
		}
		return r, nil
	case TypeSlotSplit:
		var r SlotSplitReq
		if err := json.Unmarshal(b, &r); err != nil {
			return nil, err
		}
		if !validArea(r.From.Area) {
			return nil, fmt.Errorf("slot_split: unknown area")
		}
		return r, nil
	case TypePatchReq:
		var r PatchReq
		if err := json.Unmarshal(b, &r); err != nil {
			return nil, err
		}
		if r.Radius <= 0 {
			return nil, fmt.Errorf("patch_req: non-positive radius")
		}
		if r.Mode != PatchModeEdits && r.Mode != PatchModeFull {
			return nil, fmt.Errorf("patch_req: unknown mode %q", r.Mode)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown request type %q", base.Type)
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validArea(a string) bool {
	return a == AreaInventory || a == AreaEquip || a == AreaCraft
}
