package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_RealConfig(t *testing.T) {
	tune, err := Load("../../../configs/tuning.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tune.TickMs <= 0 || tune.WorldBoundR <= 0 || tune.Reach <= 0 {
		t.Fatalf("implausible tuning: %+v", tune)
	}
	if tune.PatchCap <= 0 || tune.PatchMaxRadius <= 0 {
		t.Fatalf("patch limits unset: cap=%d max_radius=%d", tune.PatchCap, tune.PatchMaxRadius)
	}
	if tune.ScanMinY >= tune.ScanMaxY {
		t.Fatalf("scan window inverted: [%d,%d]", tune.ScanMinY, tune.ScanMaxY)
	}
	if tune.PitchMin >= tune.PitchMax {
		t.Fatalf("pitch range inverted")
	}
}

func TestLoad_OverridesOnTopOfDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("tick_ms: 100\nreach: 3.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tune, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tune.TickMs != 100 || tune.Reach != 3.5 {
		t.Fatalf("overrides not applied: %+v", tune)
	}
	if tune.WorldBoundR != Defaults().WorldBoundR {
		t.Fatalf("unset field lost its default")
	}
}

func TestLoad_MissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !os.IsNotExist(err) {
		t.Fatalf("err = %v, want not-exist", err)
	}
}
