package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wegman-software/osmexport-go/internal/logger"
	"github.com/wegman-software/osmexport-go/internal/proj"
	"github.com/wegman-software/osmexport-go/internal/snapshot"
	"github.com/wegman-software/osmexport-go/internal/tiles"
)

var tilesCmd = &cobra.Command{
	Use:   "tiles <snapshot.json> [more snapshots...]",
	Short: "List the z/x/y tiles covering snapshots at the image zoom",
	Long: `Tiles computes the projected terrain bounds of each snapshot and lists the
web mercator tiles covering them at --image-zoom. The list goes to
--tile-list when set, otherwise to stdout. No document is exported.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runTiles,
}

func init() {
	rootCmd.AddCommand(tilesCmd)
}

func runTiles(cmd *cobra.Command, args []string) {
	log := logger.Get()
	if err := cfg.Validate(); err != nil {
		exitWithError("invalid configuration", err)
	}

	p := proj.NewProjector(cfg.North)
	manifest := tiles.NewManifest(cfg.ImageZoom)
	for _, path := range args {
		snap, err := snapshot.Load(path)
		if err != nil {
			exitWithError("failed to load snapshot", err)
		}
		t := snap.Terrain
		manifest.AddBound(p.Bound(t.Min.X, t.Min.Z, t.Max.X, t.Max.Z))
	}

	if cfg.TileList != "" {
		if err := manifest.WriteFile(cfg.TileList, log); err != nil {
			exitWithError("tile list failed", err)
		}
		return
	}
	for _, t := range manifest.Tiles() {
		fmt.Fprintln(os.Stdout, t.String())
	}
	log.Debug("Listed tiles", zap.Int("tiles", manifest.Len()), zap.Int("zoom", cfg.ImageZoom))
}
