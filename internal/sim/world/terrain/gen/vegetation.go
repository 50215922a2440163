package gen

import "voxelhold.dev/internal/sim/world/logic/mathx"

// maxCanopyRadius bounds the neighbor-column scan in aboveSurface.
const maxCanopyRadius = 2

type plant struct {
	baseY  int // surface of the owning column
	trunk  int
	canopy int
	cactus bool
}

// plantAt decides per column whether a tree or cactus grows there.
// Presence is a Bernoulli trial on one column hash; shape comes from an
// independent second hash so presence and shape stay decorrelated.
func (g *Generator) plantAt(x, z int) (plant, bool) {
	if g.WithinSpawnFlat(x, z) {
		return plant{}, false
	}
	c := g.ClimateAt(x, z)

	var threshold float64
	cactus := false
	switch c.Biome {
	case BiomeForest:
		threshold = 0.06
	case BiomePlains:
		threshold = 0.008
	case BiomeSwamp:
		threshold = 0.02
	case BiomeDesert:
		threshold = 0.01
		cactus = true
	default:
		return plant{}, false
	}
	if mathx.Unit2(g.cfg.Seed+seedVegPresence, x, z) >= threshold {
		return plant{}, false
	}

	h := mathx.Hash2(g.cfg.Seed+seedVegShape, x, z)
	if cactus {
		return plant{baseY: c.SurfaceY, trunk: 1 + int(h%3), cactus: true}, true
	}
	return plant{
		baseY:  c.SurfaceY,
		trunk:  4 + int(h%3),
		canopy: 1 + int((h>>8)%2),
	}, true
}

// aboveSurface resolves air-space voxels: trunk or cactus in the owning
// column, leaves where a nearby column's canopy reaches over.
func (g *Generator) aboveSurface(x, y, z int, c Climate) uint16 {
	if p, ok := g.plantAt(x, z); ok && y <= p.baseY+p.trunk {
		if p.cactus {
			return g.cfg.Cactus
		}
		return g.cfg.Log
	}
	for dz := -maxCanopyRadius; dz <= maxCanopyRadius; dz++ {
		for dx := -maxCanopyRadius; dx <= maxCanopyRadius; dx++ {
			p, ok := g.plantAt(x+dx, z+dz)
			if !ok || p.cactus {
				continue
			}
			if dx*dx+dz*dz > p.canopy*p.canopy {
				continue
			}
			cy := p.baseY + p.trunk + 1
			if mathx.AbsInt(y-cy) <= 1 {
				return g.cfg.Leaves
			}
		}
	}
	return g.cfg.Air
}
