package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"voxelhold.dev/internal/persistence/worldfile"
	"voxelhold.dev/internal/sim/catalogs"
	"voxelhold.dev/internal/sim/tuning"
	"voxelhold.dev/internal/sim/world"
)

func main() {
	app := &cli.App{
		Name:  "worldtool",
		Usage: "inspect and maintain voxelhold world files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "configs",
				Value: "./configs",
				Usage: "config directory (blocks.json, items.json, tuning.yaml)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "info",
				Usage:     "print a world file's header and edit summary",
				ArgsUsage: "<world.vhw>",
				Action:    cmdInfo,
			},
			{
				Name:      "verify",
				Usage:     "replay the edit set against the generator and report stale records",
				ArgsUsage: "<world.vhw>",
				Action:    cmdVerify,
			},
			{
				Name:      "compact",
				Usage:     "drop edit records that match the generator and rewrite the file",
				ArgsUsage: "<world.vhw>",
				Action:    cmdCompact,
			},
			{
				Name:      "block",
				Usage:     "resolve the block at a coordinate (generator plus optional world file)",
				ArgsUsage: "[world.vhw]",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "seed", Usage: "seed for a fresh world (ignored when a file is given)"},
					&cli.IntFlag{Name: "x", Required: true},
					&cli.IntFlag{Name: "y", Required: true},
					&cli.IntFlag{Name: "z", Required: true},
				},
				Action: cmdBlock,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func requireFileArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("need exactly one world file argument")
	}
	return c.Args().Get(0), nil
}

func cmdInfo(c *cli.Context) error {
	path, err := requireFileArg(c)
	if err != nil {
		return err
	}
	f, err := worldfile.Read(path)
	if err != nil {
		return err
	}
	fmt.Printf("world:    %s\n", f.Header.WorldID)
	fmt.Printf("version:  %d\n", f.Header.Version)
	fmt.Printf("seed:     %d\n", f.Seed)
	fmt.Printf("bound_r:  %d\n", f.BoundR)
	fmt.Printf("saved_at: %s\n", f.SavedAt.Format(time.RFC3339))
	fmt.Printf("edits:    %d\n", len(f.Edits))
	fmt.Printf("digest:   %s\n", f.Digest)
	return nil
}

// loadWorldFromFile rebuilds the full runtime store: generator from the
// file's seed, then the edit set replayed over it.
func loadWorldFromFile(c *cli.Context, f worldfile.FileV1) (*world.World, int, error) {
	cats, err := catalogs.Load(c.String("configs"))
	if err != nil {
		return nil, 0, err
	}
	tune := tuning.Defaults()
	if f.BoundR > 0 {
		tune.WorldBoundR = f.BoundR
	}
	w, err := world.New(world.Config{ID: f.Header.WorldID, Seed: f.Seed, Tune: tune}, cats, nil)
	if err != nil {
		return nil, 0, err
	}
	dropped := w.Store().Load(f.Edits, true)
	return w, dropped, nil
}

func cmdVerify(c *cli.Context) error {
	path, err := requireFileArg(c)
	if err != nil {
		return err
	}
	f, err := worldfile.Read(path)
	if err != nil {
		return err
	}
	w, dropped, err := loadWorldFromFile(c, f)
	if err != nil {
		return err
	}

	live := w.Store().Digest()
	fmt.Printf("records:  %d\n", len(f.Edits))
	fmt.Printf("stale:    %d\n", dropped)
	fmt.Printf("live:     %d\n", w.Store().EditCount())
	if f.Digest == "" {
		fmt.Printf("digest:   (none recorded)\n")
	} else if f.Digest == live {
		fmt.Printf("digest:   ok\n")
	} else {
		fmt.Printf("digest:   MISMATCH file=%s live=%s\n", f.Digest, live)
	}
	if dropped > 0 {
		return cli.Exit("stale records present; run compact", 1)
	}
	return nil
}

func cmdCompact(c *cli.Context) error {
	path, err := requireFileArg(c)
	if err != nil {
		return err
	}
	f, err := worldfile.Read(path)
	if err != nil {
		return err
	}
	w, dropped, err := loadWorldFromFile(c, f)
	if err != nil {
		return err
	}
	if dropped == 0 {
		fmt.Printf("already compact (%d edits)\n", len(f.Edits))
		return nil
	}

	f.Edits = w.Store().Edits()
	f.Digest = w.Store().Digest()
	f.SavedAt = time.Now().UTC()
	if err := worldfile.Write(path, f); err != nil {
		return err
	}
	fmt.Printf("dropped %d stale records, %d edits remain\n", dropped, len(f.Edits))
	return nil
}

func cmdBlock(c *cli.Context) error {
	cats, err := catalogs.Load(c.String("configs"))
	if err != nil {
		return err
	}

	var w *world.World
	if c.NArg() == 1 {
		f, err := worldfile.Read(c.Args().Get(0))
		if err != nil {
			return err
		}
		w, _, err = loadWorldFromFile(c, f)
		if err != nil {
			return err
		}
	} else {
		w, err = world.New(world.Config{ID: "probe", Seed: c.Int64("seed"), Tune: tuning.Defaults()}, cats, nil)
		if err != nil {
			return err
		}
	}

	x, y, z := c.Int("x"), c.Int("y"), c.Int("z")
	id := w.Store().Get(x, y, z)
	name := "?"
	if int(id) < len(cats.Blocks.Palette) {
		name = cats.Blocks.Palette[id]
	}
	fmt.Printf("(%d,%d,%d) = %s (id %d)\n", x, y, z, name, id)
	return nil
}
