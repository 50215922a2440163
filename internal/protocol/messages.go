package protocol

// join (client -> server), sent once as the first frame.
type JoinMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Name            string `json:"name"`
}

// welcome (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	PlayerID        string         `json:"player_id"`
	Pos             [3]float64     `json:"pos"`
	WorldParams     WorldParams    `json:"world_params"`
	Catalogs        CatalogDigests `json:"catalogs"`
}

type WorldParams struct {
	Seed   int64   `json:"seed"`
	BoundR int     `json:"bound_r"`
	Reach  float64 `json:"reach"`
	TickMs int     `json:"tick_ms"`
	FloorY int     `json:"floor_y"`
}

type CatalogDigests struct {
	BlockPalette string `json:"block_palette"`
	ItemDefs     string `json:"item_defs"`
}

type MoveReq struct {
	Type  string     `json:"type"`
	Pos   [3]float64 `json:"pos"`
	Yaw   float64    `json:"yaw"`
	Pitch float64    `json:"pitch"`
}

type BlockBreakReq struct {
	Type string `json:"type"`
	Pos  [3]int `json:"pos"`
}

type BlockPlaceReq struct {
	Type string `json:"type"`
	Pos  [3]int `json:"pos"`
	Item string `json:"item"`
}

type SwingReq struct {
	Type string `json:"type"`
}

type SprintReq struct {
	Type string `json:"type"`
	On   bool   `json:"on"`
}

type HotbarReq struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
}

type SlotRef struct {
	Area  string `json:"area"`
	Index int    `json:"index"`
}

type SlotMoveReq struct {
	Type string  `json:"type"`
	From SlotRef `json:"from"`
	To   SlotRef `json:"to"`
}

type SlotSplitReq struct {
	Type string  `json:"type"`
	From SlotRef `json:"from"`
}

type PatchReq struct {
	Type   string `json:"type"`
	Center [3]int `json:"center"`
	Radius int    `json:"radius"`
	Mode   string `json:"mode"`
}

// block_update (server -> all clients)
type BlockUpdateMsg struct {
	Type string `json:"type"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Z    int    `json:"z"`
	ID   uint16 `json:"id"`
}

// reject (server -> originating client only)
type RejectMsg struct {
	Type   string  `json:"type"`
	Op     string  `json:"op"`
	Reason string  `json:"reason"`
	Pos    *[3]int `json:"pos,omitempty"`
	Detail string  `json:"detail,omitempty"`
}

// patch (server -> client). Data is flat, 4 ints per edit: x,y,z,id.
type PatchMsg struct {
	Type      string `json:"type"`
	Cx        int    `json:"cx"`
	Cy        int    `json:"cy"`
	Cz        int    `json:"cz"`
	R         int    `json:"r"`
	Mode      string `json:"mode"`
	Data      []int  `json:"data"`
	Count     int    `json:"count"`
	Truncated bool   `json:"truncated,omitempty"`
}

// stats (server -> client), emitted from the fixed-step tick on change.
type StatsMsg struct {
	Type      string  `json:"type"`
	Health    int     `json:"health"`
	Stamina   float64 `json:"stamina"`
	Sprinting bool    `json:"sprinting"`
	Swinging  bool    `json:"swinging"`
}
