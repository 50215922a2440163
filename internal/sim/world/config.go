package world

import (
	"fmt"

	"voxelhold.dev/internal/sim/catalogs"
	"voxelhold.dev/internal/sim/tuning"
	"voxelhold.dev/internal/sim/world/terrain/gen"
)

type Config struct {
	ID   string
	Seed int64
	Tune tuning.Tuning
}

func (c *Config) applyDefaults() {
	if c.ID == "" {
		c.ID = "world_1"
	}
	if c.Tune.TickMs <= 0 {
		c.Tune = tuning.Defaults()
	}
}

// genConfig resolves the generator's palette ids from the block catalog.
// A block the generator needs but the palette lacks is a startup error.
func genConfig(cfg Config, cats *catalogs.Catalogs) (gen.Config, error) {
	gc := gen.Config{
		Seed:            cfg.Seed,
		FloorY:          cfg.Tune.FloorY,
		SpawnFlatRadius: cfg.Tune.SpawnFlatRadius,
		SpawnSurfaceY:   cfg.Tune.SpawnSurfaceY,
		OreTiers:        cats.OreTiers(),
	}

	var missing []string
	resolve := func(name string, dst *uint16) {
		id, ok := cats.Blocks.Index[name]
		if !ok {
			missing = append(missing, name)
			return
		}
		*dst = id
	}
	resolve("AIR", &gc.Air)
	resolve("BEDROCK", &gc.Bedrock)
	resolve("STONE", &gc.Stone)
	resolve("DIRT", &gc.Dirt)
	resolve("GRASS", &gc.Grass)
	resolve("SAND", &gc.Sand)
	resolve("MUD", &gc.Mud)
	resolve("CLAY", &gc.Clay)
	resolve("SNOW", &gc.Snow)
	resolve("LOG", &gc.Log)
	resolve("LEAVES", &gc.Leaves)
	resolve("CACTUS", &gc.Cactus)
	if len(missing) > 0 {
		return gc, fmt.Errorf("block palette missing generator blocks: %v", missing)
	}
	if gc.Air != 0 {
		return gc, fmt.Errorf("AIR must be palette id 0, got %d", gc.Air)
	}
	return gc, nil
}
