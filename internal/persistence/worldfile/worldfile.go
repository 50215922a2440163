package worldfile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"voxelhold.dev/internal/sim/world/terrain/store"
)

// CurrentVersion is the only format this build reads and writes. A file
// from a newer build is refused rather than partially decoded.
const CurrentVersion = 1

type Header struct {
	Version int    `json:"version"`
	WorldID string `json:"world_id"`
}

// FileV1 is the complete durable state of a world: its identity, its
// generator seed and the sparse set of player edits. Natural terrain is
// never stored; it regenerates from the seed.
type FileV1 struct {
	Header Header `json:"header"`

	Seed    int64     `json:"seed"`
	BoundR  int       `json:"bound_r"`
	SavedAt time.Time `json:"saved_at"`
	Digest  string    `json:"digest"`

	Edits []store.Edit `json:"edits"`
}

// Write persists the file through a temp path and an atomic replace, so
// a crash mid-save leaves the previous file intact.
func Write(path string, f FileV1) error {
	f.Header.Version = CurrentVersion
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := writeTo(tmp, f); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := replaceFile(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func writeTo(path string, f FileV1) error {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	enc, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(enc, 256*1024)
	hb, _ := json.Marshal(f.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	if err := json.NewEncoder(bw).Encode(&f); err != nil {
		return fmt.Errorf("encode world file: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return out.Sync()
}

// replaceFile renames tmp over path, falling back to copy+delete for
// filesystems where rename across mounts fails.
func replaceFile(tmp, path string) error {
	if err := os.Rename(tmp, path); err == nil {
		return nil
	}
	src, err := os.Open(tmp)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	return os.Remove(tmp)
}

// Read loads and version-checks a world file.
func Read(path string) (FileV1, error) {
	var f FileV1
	in, err := os.Open(path)
	if err != nil {
		return f, err
	}
	defer in.Close()

	dec, err := zstd.NewReader(in)
	if err != nil {
		return f, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)
	hb, err := br.ReadBytes('\n')
	if err != nil {
		return f, fmt.Errorf("read world file header: %w", err)
	}
	var h Header
	if err := json.Unmarshal(hb, &h); err != nil {
		return f, fmt.Errorf("parse world file header: %w", err)
	}
	if h.Version != CurrentVersion {
		return f, fmt.Errorf("world file version %d not supported (want %d)", h.Version, CurrentVersion)
	}

	if err := json.NewDecoder(br).Decode(&f); err != nil {
		return f, fmt.Errorf("decode world file: %w", err)
	}
	return f, nil
}

// Exists reports whether a world file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
