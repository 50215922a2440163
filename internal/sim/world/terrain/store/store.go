package store

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sort"
	"time"

	"voxelhold.dev/internal/sim/world/terrain/gen"
)

// Edit is one stored delta: a coordinate whose block differs from the
// generator's natural output.
type Edit struct {
	X  int    `json:"x"`
	Y  int    `json:"y"`
	Z  int    `json:"z"`
	ID uint16 `json:"id"`
}

type key struct{ x, y, z int }

// Store keeps only deltas from natural terrain, so memory tracks player
// activity rather than world volume. Invariant: for every entry,
// edits[k] != gen.BlockAt(k); reverting writes remove the entry.
type Store struct {
	gen    *gen.Generator
	boundR int // horizontal soft bound; 0 disables the clamp

	edits     map[key]uint16
	dirty     bool
	lastSaved time.Time
}

func New(g *gen.Generator, boundR int) *Store {
	return &Store{
		gen:    g,
		boundR: boundR,
		edits:  map[key]uint16{},
	}
}

func (s *Store) Gen() *gen.Generator { return s.gen }
func (s *Store) BoundR() int         { return s.boundR }

// InBounds clamps the horizontal axes only; the vertical axis is left to
// generator rules (bedrock floor).
func (s *Store) InBounds(x, z int) bool {
	if s.boundR <= 0 {
		return true
	}
	return x >= -s.boundR && x <= s.boundR && z >= -s.boundR && z <= s.boundR
}

func (s *Store) Get(x, y, z int) uint16 {
	if !s.InBounds(x, z) {
		return s.gen.AirID()
	}
	if id, ok := s.edits[key{x, y, z}]; ok {
		return id
	}
	return s.gen.BlockAt(x, y, z)
}

// Set records the delta between id and nature. Writing the natural value
// removes any edit; writing the already-stored value is a no-op. The
// dirty flag toggles only on an actual change, so idempotent retries
// never trigger redundant autosaves.
func (s *Store) Set(x, y, z int, id uint16) {
	if !s.InBounds(x, z) {
		return
	}
	k := key{x, y, z}
	if id == s.gen.BlockAt(x, y, z) {
		if _, ok := s.edits[k]; ok {
			delete(s.edits, k)
			s.dirty = true
		}
		return
	}
	if cur, ok := s.edits[k]; ok && cur == id {
		return
	}
	s.edits[k] = id
	s.dirty = true
}

// ApplyBreak clears a coordinate and reports what was there, so the
// caller can decide on inventory consequences.
func (s *Store) ApplyBreak(x, y, z int) (prev, next uint16) {
	prev = s.Get(x, y, z)
	s.Set(x, y, z, s.gen.AirID())
	return prev, s.gen.AirID()
}

func (s *Store) ApplyPlace(x, y, z int, id uint16) (prev, next uint16) {
	prev = s.Get(x, y, z)
	s.Set(x, y, z, id)
	return prev, id
}

func (s *Store) EditCount() int { return len(s.edits) }

// Edits returns every delta in deterministic (x,y,z) order.
func (s *Store) Edits() []Edit {
	out := make([]Edit, 0, len(s.edits))
	for k, id := range s.edits {
		out = append(out, Edit{X: k.x, Y: k.y, Z: k.z, ID: id})
	}
	sortEdits(out)
	return out
}

// EditsInRegion filters by inclusive bounding box, up to max entries
// (max <= 0 means unbounded). truncated reports a hit cap.
func (s *Store) EditsInRegion(minX, minY, minZ, maxX, maxY, maxZ, max int) (edits []Edit, truncated bool) {
	for k, id := range s.edits {
		if k.x < minX || k.x > maxX || k.y < minY || k.y > maxY || k.z < minZ || k.z > maxZ {
			continue
		}
		edits = append(edits, Edit{X: k.x, Y: k.y, Z: k.z, ID: id})
	}
	sortEdits(edits)
	if max > 0 && len(edits) > max {
		edits = edits[:max]
		truncated = true
	}
	return edits, truncated
}

func (s *Store) Dirty() bool { return s.dirty }

func (s *Store) MarkSaved(t time.Time) {
	s.dirty = false
	s.lastSaved = t
}

func (s *Store) LastSaved() time.Time { return s.lastSaved }

// Load applies persisted edits, re-validating every record against the
// generator and dropping any that match nature. A record equal to the
// natural block is an invariant violation from a stale or corrupt save;
// it is repaired by omission rather than failing the load.
func (s *Store) Load(edits []Edit, replace bool) (dropped int) {
	if replace {
		s.edits = make(map[key]uint16, len(edits))
	}
	for _, e := range edits {
		if !s.InBounds(e.X, e.Z) {
			dropped++
			continue
		}
		if e.ID == s.gen.BlockAt(e.X, e.Y, e.Z) {
			dropped++
			continue
		}
		s.edits[key{e.X, e.Y, e.Z}] = e.ID
	}
	return dropped
}

// Digest hashes the sorted edit set; used by the save index and tests.
func (s *Store) Digest() string {
	h := sha256.New()
	var buf [14]byte
	for _, e := range s.Edits() {
		binary.LittleEndian.PutUint32(buf[0:4], uint32(int32(e.X)))
		binary.LittleEndian.PutUint32(buf[4:8], uint32(int32(e.Y)))
		binary.LittleEndian.PutUint32(buf[8:12], uint32(int32(e.Z)))
		binary.LittleEndian.PutUint16(buf[12:14], e.ID)
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

func sortEdits(edits []Edit) {
	sort.Slice(edits, func(i, j int) bool {
		a, b := edits[i], edits[j]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})
}
