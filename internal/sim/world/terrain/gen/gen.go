package gen

import "voxelhold.dev/internal/sim/world/logic/mathx"

// Ore rarity tiers. OreTiers in Config is indexed by these.
const (
	TierCommon = iota
	TierUncommon
	TierRare
	TierEpic
	TierCount
)

// Config carries the seed, the structural constants and the palette ids
// the generator emits. Ids are resolved from the block catalog once at
// world construction; a missing id is a startup error, never patched at
// generation time.
type Config struct {
	Seed int64

	FloorY          int // strictly below: bedrock
	SpawnFlatRadius int
	SpawnSurfaceY   int
	SurfaceBand     int // layered-surface depth before stone takes over

	Air     uint16
	Bedrock uint16
	Stone   uint16
	Dirt    uint16
	Grass   uint16
	Sand    uint16
	Mud     uint16
	Clay    uint16
	Snow    uint16
	Log     uint16
	Leaves  uint16
	Cactus  uint16

	OreTiers [TierCount][]uint16
}

func (c *Config) applyDefaults() {
	if c.FloorY == 0 {
		c.FloorY = -10
	}
	if c.SpawnFlatRadius == 0 {
		c.SpawnFlatRadius = 32
	}
	if c.SpawnSurfaceY == 0 {
		c.SpawnSurfaceY = 5
	}
	if c.SurfaceBand <= 0 {
		c.SurfaceBand = 4
	}
}

// Generator is pure and stateless after construction: BlockAt never
// allocates beyond locals and is safe for unrestricted concurrent reads.
type Generator struct {
	cfg Config
}

func New(cfg Config) *Generator {
	cfg.applyDefaults()
	return &Generator{cfg: cfg}
}

func (g *Generator) Seed() int64   { return g.cfg.Seed }
func (g *Generator) FloorY() int   { return g.cfg.FloorY }
func (g *Generator) AirID() uint16 { return g.cfg.Air }

const (
	seedVegPresence = 71
	seedVegShape    = 73
	seedOreRoll     = 83
	seedOreTier     = 89
	seedOrePick     = 97
)

// BlockAt returns the natural block for a coordinate.
func (g *Generator) BlockAt(x, y, z int) uint16 {
	if y < g.cfg.FloorY {
		return g.cfg.Bedrock
	}
	c := g.ClimateAt(x, z)
	if y > c.SurfaceY {
		return g.aboveSurface(x, y, z, c)
	}
	depth := c.SurfaceY - y
	if depth < g.cfg.SurfaceBand {
		return g.surfaceLayer(depth, c.Biome)
	}
	return g.stoneOrOre(x, y, z, depth, c.Biome)
}

func (g *Generator) surfaceLayer(depth int, biome string) uint16 {
	switch biome {
	case BiomeDesert:
		return g.cfg.Sand
	case BiomeSwamp:
		switch depth {
		case 0:
			return g.cfg.Mud
		case 1:
			return g.cfg.Clay
		default:
			return g.cfg.Dirt
		}
	case BiomeTundra:
		if depth == 0 {
			return g.cfg.Snow
		}
		return g.cfg.Dirt
	case BiomeMountain:
		return g.cfg.Stone
	default: // plains, forest
		if depth == 0 {
			return g.cfg.Grass
		}
		return g.cfg.Dirt
	}
}

// stoneOrOre rolls the two-stage ore substitution: first whether this
// voxel is ore at all (deeper and mountain-biased), then the rarity tier
// (rarer tiers proportionally likelier deeper), then the concrete id.
// The numeric shape of these curves is opaque tuning data.
func (g *Generator) stoneOrOre(x, y, z, depth int, biome string) uint16 {
	p := 0.02 + 0.0015*float64(mathx.ClampInt(depth, 0, 80))
	switch biome {
	case BiomeMountain:
		p *= 1.4
	case BiomeSwamp:
		p *= 0.7
	}
	if mathx.Unit3(g.cfg.Seed+seedOreRoll, x, y, z) >= p {
		return g.cfg.Stone
	}
	tier := OreTier(depth, mathx.Unit3(g.cfg.Seed+seedOreTier, x, y, z))
	table := g.cfg.OreTiers[tier]
	if len(table) == 0 {
		return g.cfg.Stone
	}
	return table[mathx.Hash3(g.cfg.Seed+seedOrePick, x, y, z)%uint64(len(table))]
}

// OreTier maps a depth-below-surface and a unit roll to a rarity tier.
// Tier cut points widen with depth so epic/rare ores concentrate deep.
func OreTier(depth int, roll float64) int {
	d := float64(mathx.ClampInt(depth, 0, 64))
	epic := 0.01 + d*0.0015
	rare := 0.05 + d*0.0025
	switch {
	case roll < epic:
		return TierEpic
	case roll < epic+rare:
		return TierRare
	case roll < epic+rare+0.25:
		return TierUncommon
	default:
		return TierCommon
	}
}
