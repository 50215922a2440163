package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickMs      int `yaml:"tick_ms"`
	WorldBoundR int `yaml:"world_bound_r"`

	FloorY          int `yaml:"floor_y"`
	SpawnFlatRadius int `yaml:"spawn_flat_radius"`
	SpawnSurfaceY   int `yaml:"spawn_surface_y"`

	Reach             float64 `yaml:"reach"`
	EyeHeight         float64 `yaml:"eye_height"`
	BlockOpCooldownMs int     `yaml:"block_op_cooldown_ms"`
	SwingMs           int     `yaml:"swing_ms"`
	PitchMin          float64 `yaml:"pitch_min"`
	PitchMax          float64 `yaml:"pitch_max"`

	StaminaMax       float64 `yaml:"stamina_max"`
	SprintDrainPerS  float64 `yaml:"sprint_drain_per_s"`
	StaminaRegenPerS float64 `yaml:"stamina_regen_per_s"`

	PatchCap       int `yaml:"patch_cap"`
	PatchMaxRadius int `yaml:"patch_max_radius"`
	ScanMinY       int `yaml:"scan_min_y"`
	ScanMaxY       int `yaml:"scan_max_y"`

	AutosaveMinIntervalS int `yaml:"autosave_min_interval_s"`

	MaxQueue int `yaml:"max_queue"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:      "1.0",
		TickMs:               50,
		WorldBoundR:          512,
		FloorY:               -10,
		SpawnFlatRadius:      32,
		SpawnSurfaceY:        5,
		Reach:                5.0,
		EyeHeight:            1.62,
		BlockOpCooldownMs:    150,
		SwingMs:              300,
		PitchMin:             -90,
		PitchMax:             90,
		StaminaMax:           100,
		SprintDrainPerS:      20,
		StaminaRegenPerS:     10,
		PatchCap:             1024,
		PatchMaxRadius:       64,
		ScanMinY:             -16,
		ScanMaxY:             48,
		AutosaveMinIntervalS: 30,
		MaxQueue:             32,
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}
