package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

type Catalogs struct {
	Blocks BlockCatalog
	Items  ItemCatalog
}

// BlockCatalog maps palette ids to definitions. The palette order is a
// shared contract: every consumer that must agree on block meaning uses
// the same index assignment, pinned by PaletteDigest.
type BlockCatalog struct {
	Palette       []string
	Index         map[string]uint16
	Defs          map[string]BlockDef
	PaletteDigest string
	DefsDigest    string
}

type BlockDef struct {
	ID        string `json:"id"`
	Solid     bool   `json:"solid"`
	Breakable bool   `json:"breakable"`
	DropsItem string `json:"drops_item,omitempty"`
	OreTier   string `json:"ore_tier,omitempty"` // "", "common", "uncommon", "rare", "epic"
}

type ItemCatalog struct {
	Defs       map[string]ItemDef
	DefsDigest string
}

type ItemDef struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"` // "BLOCK","TOOL","MATERIAL","ARMOR"
	PlaceAs    string `json:"place_as,omitempty"`
	MaxStack   int    `json:"max_stack"`
	EquipSlot  string `json:"equip_slot,omitempty"` // "tool","head","chest","legs"
	Durability int    `json:"durability,omitempty"`
}

// Item kinds.
const (
	KindBlock    = "BLOCK"
	KindTool     = "TOOL"
	KindMaterial = "MATERIAL"
	KindArmor    = "ARMOR"
)

var validEquipSlots = map[string]struct{}{
	"tool": {}, "head": {}, "chest": {}, "legs": {},
}

var validOreTiers = map[string]struct{}{
	"common": {}, "uncommon": {}, "rare": {}, "epic": {},
}

// Load reads blocks.json and items.json from configDir and cross-checks
// every reference. A dangling drops_item or place_as is a configuration
// error surfaced at startup, never substituted at runtime.
func Load(configDir string) (*Catalogs, error) {
	var c Catalogs
	if err := loadBlocks(filepath.Join(configDir, "blocks.json"), &c.Blocks); err != nil {
		return nil, err
	}
	if err := loadItems(filepath.Join(configDir, "items.json"), &c.Items); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalogs) validate() error {
	for id, d := range c.Blocks.Defs {
		if d.DropsItem != "" {
			if _, ok := c.Items.Defs[d.DropsItem]; !ok {
				return fmt.Errorf("block %s: drops_item %q not in items.json", id, d.DropsItem)
			}
		}
		if d.OreTier != "" {
			if _, ok := validOreTiers[d.OreTier]; !ok {
				return fmt.Errorf("block %s: unknown ore_tier %q", id, d.OreTier)
			}
		}
	}
	for id, d := range c.Items.Defs {
		switch d.Kind {
		case KindBlock:
			if d.PlaceAs == "" {
				return fmt.Errorf("item %s: BLOCK kind requires place_as", id)
			}
		case KindTool, KindMaterial, KindArmor:
		default:
			return fmt.Errorf("item %s: unknown kind %q", id, d.Kind)
		}
		if d.PlaceAs != "" {
			if _, ok := c.Blocks.Index[d.PlaceAs]; !ok {
				return fmt.Errorf("item %s: place_as %q not in block palette", id, d.PlaceAs)
			}
		}
		if d.MaxStack < 1 {
			return fmt.Errorf("item %s: max_stack must be >= 1", id)
		}
		if d.EquipSlot != "" {
			if _, ok := validEquipSlots[d.EquipSlot]; !ok {
				return fmt.Errorf("item %s: unknown equip_slot %q", id, d.EquipSlot)
			}
		}
	}
	return nil
}

// OreTiers builds the four rarity tables from the palette, once.
// Within a tier, ids keep palette order so the table is deterministic.
func (c *Catalogs) OreTiers() (tiers [4][]uint16) {
	tierIdx := map[string]int{"common": 0, "uncommon": 1, "rare": 2, "epic": 3}
	for i, name := range c.Blocks.Palette {
		d := c.Blocks.Defs[name]
		if d.OreTier == "" {
			continue
		}
		t := tierIdx[d.OreTier]
		tiers[t] = append(tiers[t], uint16(i))
	}
	return tiers
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadBlocks(path string, out *BlockCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.DefsDigest = sha256Hex(raw)

	var defs []BlockDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("blocks.json: %w", err)
	}
	out.Defs = map[string]BlockDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("blocks.json: empty id")
		}
		if _, dup := out.Defs[d.ID]; dup {
			return fmt.Errorf("blocks.json: duplicate id %s", d.ID)
		}
		out.Defs[d.ID] = d
	}

	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// AIR is id 0 by contract.
	if _, ok := out.Defs["AIR"]; !ok {
		return fmt.Errorf("blocks.json: missing AIR")
	}
	ids = append([]string{"AIR"}, filterOut(ids, "AIR")...)

	out.Palette = ids
	out.Index = make(map[string]uint16, len(ids))
	for i, id := range ids {
		out.Index[id] = uint16(i)
	}
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	return nil
}

func loadItems(path string, out *ItemCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.DefsDigest = sha256Hex(raw)

	var defs []ItemDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("items.json: %w", err)
	}
	out.Defs = map[string]ItemDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("items.json: empty id")
		}
		if _, dup := out.Defs[d.ID]; dup {
			return fmt.Errorf("items.json: duplicate id %s", d.ID)
		}
		out.Defs[d.ID] = d
	}
	return nil
}

func filterOut(ids []string, drop string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
