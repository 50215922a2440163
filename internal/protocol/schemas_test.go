package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"voxelhold.dev/internal/protocol"
)

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	s, err := jsonschema.Compile(filepath.Join("..", "..", "schemas", name))
	if err != nil {
		t.Fatalf("compile %s: %v", name, err)
	}
	return s
}

// roundTrip marshals a wire struct and re-parses it the way a schema
// validator sees it.
func roundTrip(t *testing.T, v any) any {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func TestSchemas_AcceptWireStructs(t *testing.T) {
	joinSchema := compileSchema(t, "join.schema.json")
	welcomeSchema := compileSchema(t, "welcome.schema.json")
	requestSchema := compileSchema(t, "request.schema.json")
	serverSchema := compileSchema(t, "server.schema.json")

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(roundTrip(t, v)); err != nil {
			t.Fatalf("validate %T: %v", v, err)
		}
	}

	validate(joinSchema, protocol.JoinMsg{
		Type:            protocol.TypeJoin,
		ProtocolVersion: protocol.Version,
		Name:            "bot1",
	})

	validate(welcomeSchema, protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		PlayerID:        "P1",
		Pos:             [3]float64{0.5, 6, 0.5},
		WorldParams: protocol.WorldParams{
			Seed:   1337,
			BoundR: 512,
			Reach:  5,
			TickMs: 50,
			FloorY: -10,
		},
		Catalogs: protocol.CatalogDigests{
			BlockPalette: "deadbeef",
			ItemDefs:     "deadbeef",
		},
	})

	requests := []any{
		protocol.MoveReq{Type: protocol.TypeMove, Pos: [3]float64{1, 6, 1}, Yaw: 90, Pitch: -10},
		protocol.BlockBreakReq{Type: protocol.TypeBlockBreak, Pos: [3]int{0, 5, 0}},
		protocol.BlockPlaceReq{Type: protocol.TypeBlockPlace, Pos: [3]int{0, 6, 0}, Item: "DIRT"},
		protocol.SwingReq{Type: protocol.TypeSwing},
		protocol.SprintReq{Type: protocol.TypeSprint, On: true},
		protocol.HotbarReq{Type: protocol.TypeHotbar, Index: 3},
		protocol.SlotMoveReq{
			Type: protocol.TypeSlotMove,
			From: protocol.SlotRef{Area: protocol.AreaInventory, Index: 0},
			To:   protocol.SlotRef{Area: protocol.AreaEquip, Index: 0},
		},
		protocol.SlotSplitReq{
			Type: protocol.TypeSlotSplit,
			From: protocol.SlotRef{Area: protocol.AreaInventory, Index: 2},
		},
		protocol.PatchReq{Type: protocol.TypePatchReq, Center: [3]int{0, 5, 0}, Radius: 8, Mode: protocol.PatchModeEdits},
	}
	for _, r := range requests {
		validate(requestSchema, r)
	}

	pos := [3]int{0, 5, 0}
	pushes := []any{
		protocol.BlockUpdateMsg{Type: protocol.TypeBlockUpdate, X: 0, Y: 5, Z: 0, ID: 3},
		protocol.RejectMsg{Type: protocol.TypeReject, Op: "break", Reason: protocol.ReasonOutOfReach, Pos: &pos},
		protocol.PatchMsg{Type: protocol.TypePatch, Cx: 0, Cy: 5, Cz: 0, R: 4, Mode: protocol.PatchModeFull, Data: []int{0, 5, 0, 3}, Count: 1},
		protocol.StatsMsg{Type: protocol.TypeStats, Health: 20, Stamina: 87.5, Sprinting: true},
	}
	for _, p := range pushes {
		validate(serverSchema, p)
	}
}

func TestSchemas_RejectUnknownRequest(t *testing.T) {
	requestSchema := compileSchema(t, "request.schema.json")

	var v any
	_ = json.Unmarshal([]byte(`{"type":"teleport","pos":[0,0,0]}`), &v)
	if err := requestSchema.Validate(v); err == nil {
		t.Fatalf("unknown request type passed the schema")
	}
}
