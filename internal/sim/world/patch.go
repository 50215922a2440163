package world

import (
	"voxelhold.dev/internal/protocol"
	"voxelhold.dev/internal/sim/world/logic/mathx"
)

// buildPatch encodes world state around a center for one consumer.
// Edits-only payload size tracks player-caused change; full-scan walks
// the whole volume and is kept only as an explicit fallback.
func (w *World) buildPatch(center [3]int, radius int, mode string) protocol.PatchMsg {
	msg := protocol.PatchMsg{
		Type: protocol.TypePatch,
		Cx:   center[0],
		Cy:   center[1],
		Cz:   center[2],
		R:    radius,
		Mode: mode,
	}
	max := w.cfg.Tune.PatchCap

	if mode == protocol.PatchModeEdits {
		edits, truncated := w.store.EditsInRegion(
			center[0]-radius, center[1]-radius, center[2]-radius,
			center[0]+radius, center[1]+radius, center[2]+radius,
			max,
		)
		msg.Data = make([]int, 0, len(edits)*4)
		for _, e := range edits {
			msg.Data = append(msg.Data, e.X, e.Y, e.Z, int(e.ID))
		}
		msg.Count = len(edits)
		msg.Truncated = truncated
		return msg
	}

	// Full scan, with the vertical window clamped so far sky and void
	// are not walked, and the horizontal box intersected with the world
	// bound so out-of-bounds air columns are never visited.
	air := w.store.Gen().AirID()
	yLo := mathx.ClampInt(center[1]-radius, w.cfg.Tune.ScanMinY, w.cfg.Tune.ScanMaxY)
	yHi := mathx.ClampInt(center[1]+radius, w.cfg.Tune.ScanMinY, w.cfg.Tune.ScanMaxY)
	xLo, xHi := center[0]-radius, center[0]+radius
	zLo, zHi := center[2]-radius, center[2]+radius
	if boundR := w.store.BoundR(); boundR > 0 {
		xLo = mathx.ClampInt(xLo, -boundR, boundR)
		xHi = mathx.ClampInt(xHi, -boundR, boundR)
		zLo = mathx.ClampInt(zLo, -boundR, boundR)
		zHi = mathx.ClampInt(zHi, -boundR, boundR)
	}
	msg.Data = make([]int, 0, 256)
scan:
	for y := yLo; y <= yHi; y++ {
		for z := zLo; z <= zHi; z++ {
			for x := xLo; x <= xHi; x++ {
				id := w.store.Get(x, y, z)
				if id == air {
					continue
				}
				if msg.Count >= max {
					msg.Truncated = true
					break scan
				}
				msg.Data = append(msg.Data, x, y, z, int(id))
				msg.Count++
			}
		}
	}
	return msg
}
