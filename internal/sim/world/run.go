package world

import (
	"context"
	"time"
)

// Run owns all world state until it returns. Requests are applied
// synchronously in arrival order; the stat tick and autosave fire on the
// fixed period. Everything interleaves cooperatively on this goroutine,
// so no compound operation ever races another.
func (w *World) Run(ctx context.Context) error {
	interval := time.Duration(w.cfg.Tune.TickMs) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.finalSave()
			return ctx.Err()
		case <-w.stop:
			w.finalSave()
			return nil
		case req := <-w.join:
			w.handleJoin(req)
		case id := <-w.leave:
			w.handleLeave(id)
		case env := <-w.inbox:
			if p := w.players[env.PlayerID]; p != nil {
				w.handleRequest(p, env.Req, time.Now())
			}
		case <-ticker.C:
			now := time.Now()
			w.tickStats(now)
			w.maybeAutosave(now)
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// finalSave flushes unsaved edits on shutdown, ignoring the throttle.
func (w *World) finalSave() {
	if w.saver == nil || !w.store.Dirty() {
		return
	}
	if err := w.saver.Save(w.store.Edits(), w.store.Digest()); err != nil {
		w.logf("final save: %v", err)
		return
	}
	w.store.MarkSaved(time.Now())
}
