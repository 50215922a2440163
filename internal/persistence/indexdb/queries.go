package indexdb

import (
	"database/sql"
	"time"
)

type SaveInfo struct {
	WorldID   string
	SavedAt   time.Time
	EditCount int
	Digest    string
}

// LastSave returns the most recent save row for worldID, or ok=false
// when the world has never been saved.
func (s *SQLiteIndex) LastSave(worldID string) (SaveInfo, bool, error) {
	var (
		info SaveInfo
		at   string
	)
	err := s.db.QueryRow(
		`SELECT world_id, saved_at, edit_count, digest FROM saves WHERE world_id = ? ORDER BY id DESC LIMIT 1`,
		worldID,
	).Scan(&info.WorldID, &at, &info.EditCount, &info.Digest)
	if err == sql.ErrNoRows {
		return info, false, nil
	}
	if err != nil {
		return info, false, err
	}
	info.SavedAt, _ = time.Parse(time.RFC3339Nano, at)
	return info, true, nil
}

func (s *SQLiteIndex) SaveCount(worldID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM saves WHERE world_id = ?`, worldID).Scan(&n)
	return n, err
}

// BlockOpCounts returns per-operation totals for one player, or for
// everyone when playerID is empty.
func (s *SQLiteIndex) BlockOpCounts(playerID string) (map[string]int, error) {
	q := `SELECT op, COUNT(*) FROM block_ops GROUP BY op`
	args := []any{}
	if playerID != "" {
		q = `SELECT op, COUNT(*) FROM block_ops WHERE player_id = ? GROUP BY op`
		args = append(args, playerID)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			op string
			n  int
		)
		if err := rows.Scan(&op, &n); err != nil {
			return nil, err
		}
		out[op] = n
	}
	return out, rows.Err()
}
