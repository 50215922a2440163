package world

// Metrics is a point-in-time operational snapshot, readable from any
// goroutine. Only atomics and channel lengths back it; it never touches
// loop-owned state.
type Metrics struct {
	Players    int64 `json:"players"`
	InboxDepth int   `json:"inbox_depth"`
	JoinDepth  int   `json:"join_depth"`
	LeaveDepth int   `json:"leave_depth"`
}

func (w *World) Metrics() Metrics {
	return Metrics{
		Players:    w.playerCount.Load(),
		InboxDepth: len(w.inbox),
		JoinDepth:  len(w.join),
		LeaveDepth: len(w.leave),
	}
}
