package gen

import "math"

// Biome ids. The selection chain in ClassifyBiome is shared wire contract:
// any process that must agree on unedited terrain runs this exact ordering.
const (
	BiomePlains   = "PLAINS"
	BiomeForest   = "FOREST"
	BiomeDesert   = "DESERT"
	BiomeTundra   = "TUNDRA"
	BiomeSwamp    = "SWAMP"
	BiomeMountain = "MOUNTAIN"
)

// Climate is derived, never stored: a pure function of (x,z).
type Climate struct {
	Biome        string
	SurfaceY     int
	Temperature  float64
	Humidity     float64
	MountainMask float64
	SwampMask    float64
}

// Per-field seed offsets. Each field samples an independent noise space.
const (
	seedTemp     = 11
	seedHumidity = 23
	seedMountain = 37
	seedSwamp    = 41
	seedHeight   = 53
)

// ClassifyBiome applies the fixed priority chain: mountain wins first,
// then hot+dry, cold, humid+swampy, humid, else plains.
func ClassifyBiome(temp, humidity, mountainMask, swampMask float64) string {
	switch {
	case mountainMask > 0.68:
		return BiomeMountain
	case temp > 0.62 && humidity < 0.38:
		return BiomeDesert
	case temp < 0.28:
		return BiomeTundra
	case humidity > 0.62 && swampMask > 0.55:
		return BiomeSwamp
	case humidity > 0.55:
		return BiomeForest
	default:
		return BiomePlains
	}
}

func biomeHeightAmp(biome string) float64 {
	switch biome {
	case BiomeMountain:
		return 20
	case BiomeForest:
		return 4
	case BiomeDesert:
		return 3
	case BiomeTundra:
		return 3
	case BiomeSwamp:
		return 1
	default:
		return 2
	}
}

// ClimateAt computes the full climate sample for a column. Inside the
// spawn-flat radius the biome and height are pinned so fresh joins always
// land on level plains.
func (g *Generator) ClimateAt(x, z int) Climate {
	fx := float64(x)
	fz := float64(z)

	c := Climate{
		Temperature:  Fractal(g.cfg.Seed+seedTemp, fx*0.008, fz*0.008, 4),
		Humidity:     Fractal(g.cfg.Seed+seedHumidity, fx*0.008, fz*0.008, 4),
		MountainMask: Fractal(g.cfg.Seed+seedMountain, fx*0.004, fz*0.004, 4),
		SwampMask:    Fractal(g.cfg.Seed+seedSwamp, fx*0.02, fz*0.02, 3),
	}

	if g.WithinSpawnFlat(x, z) {
		c.Biome = BiomePlains
		c.SurfaceY = g.cfg.SpawnSurfaceY
		return c
	}

	c.Biome = ClassifyBiome(c.Temperature, c.Humidity, c.MountainMask, c.SwampMask)

	// Smooth base wave keeps terrain from being flat even where the
	// biome amplitude is tiny (swamp).
	base := 4.0*math.Sin(fx*0.015) + 4.0*math.Cos(fz*0.013)
	hn := Fractal(g.cfg.Seed+seedHeight, fx*0.02, fz*0.02, 4)
	amp := biomeHeightAmp(c.Biome)
	h := float64(g.cfg.SpawnSurfaceY) + base + amp*(hn*2-1)

	c.SurfaceY = int(math.Round(h))
	if c.SurfaceY <= g.cfg.FloorY {
		c.SurfaceY = g.cfg.FloorY + 1
	}
	return c
}

func (g *Generator) WithinSpawnFlat(x, z int) bool {
	r := g.cfg.SpawnFlatRadius
	if r <= 0 {
		return false
	}
	dx := int64(x)
	dz := int64(z)
	return dx*dx+dz*dz <= int64(r)*int64(r)
}
