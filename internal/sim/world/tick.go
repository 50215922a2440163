package world

import (
	"time"

	"voxelhold.dev/internal/protocol"
)

// tickStats advances the fixed-step stat simulation. The swing flag
// clears by wall-clock age of the swing action, not tick count, so
// behavior is independent of tick jitter.
func (w *World) tickStats(now time.Time) {
	dt := float64(w.cfg.Tune.TickMs) / 1000.0
	swingDur := time.Duration(w.cfg.Tune.SwingMs) * time.Millisecond

	for _, p := range w.players {
		if p.Sprinting {
			p.Stamina -= w.cfg.Tune.SprintDrainPerS * dt
			if p.Stamina <= 0 {
				p.Stamina = 0
				p.Sprinting = false
			}
		} else if p.Stamina < w.cfg.Tune.StaminaMax {
			p.Stamina += w.cfg.Tune.StaminaRegenPerS * dt
			if p.Stamina > w.cfg.Tune.StaminaMax {
				p.Stamina = w.cfg.Tune.StaminaMax
			}
		}

		if p.Swinging && now.Sub(p.swingStart) >= swingDur {
			p.Swinging = false
		}

		st := protocol.StatsMsg{
			Type:      protocol.TypeStats,
			Health:    p.Health,
			Stamina:   p.Stamina,
			Sprinting: p.Sprinting,
			Swinging:  p.Swinging,
		}
		if st != p.lastStats {
			p.lastStats = st
			w.sendTo(p, st)
		}
	}
}

// maybeAutosave persists the edit set at most once per throttle window.
// A failed save leaves the dirty flag set; the next window retries.
func (w *World) maybeAutosave(now time.Time) {
	if w.saver == nil || !w.store.Dirty() {
		return
	}
	interval := time.Duration(w.cfg.Tune.AutosaveMinIntervalS) * time.Second
	if !w.lastSaveAttempt.IsZero() && now.Sub(w.lastSaveAttempt) < interval {
		return
	}
	w.lastSaveAttempt = now
	if err := w.saver.Save(w.store.Edits(), w.store.Digest()); err != nil {
		w.logf("autosave: %v", err)
		return
	}
	w.store.MarkSaved(now)
}
