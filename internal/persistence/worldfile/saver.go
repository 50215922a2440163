package worldfile

import (
	"time"

	"voxelhold.dev/internal/sim/world/terrain/store"
)

// SaveRecorder is notified after every successful file write. The save
// index database implements this.
type SaveRecorder interface {
	RecordSave(worldID string, editCount int, digest string, savedAt time.Time) error
}

// Saver writes the world file on demand. It satisfies the world loop's
// saver contract; a failed write reports the error and leaves the
// previous file in place.
type Saver struct {
	path    string
	worldID string
	seed    int64
	boundR  int
	rec     SaveRecorder
}

func NewSaver(path, worldID string, seed int64, boundR int) *Saver {
	return &Saver{path: path, worldID: worldID, seed: seed, boundR: boundR}
}

func (s *Saver) SetRecorder(r SaveRecorder) { s.rec = r }

func (s *Saver) Save(edits []store.Edit, digest string) error {
	now := time.Now().UTC()
	f := FileV1{
		Header:  Header{Version: CurrentVersion, WorldID: s.worldID},
		Seed:    s.seed,
		BoundR:  s.boundR,
		SavedAt: now,
		Digest:  digest,
		Edits:   edits,
	}
	if err := Write(s.path, f); err != nil {
		return err
	}
	if s.rec != nil {
		return s.rec.RecordSave(s.worldID, len(edits), digest, now)
	}
	return nil
}
