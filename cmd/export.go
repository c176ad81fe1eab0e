package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wegman-software/osmexport-go/internal/config"
	"github.com/wegman-software/osmexport-go/internal/document"
	"github.com/wegman-software/osmexport-go/internal/export"
	"github.com/wegman-software/osmexport-go/internal/logger"
	"github.com/wegman-software/osmexport-go/internal/snapshot"
	"github.com/wegman-software/osmexport-go/internal/tiles"
)

var exportCmd = &cobra.Command{
	Use:   "export <snapshot.json> [more snapshots...]",
	Short: "Export one or more snapshots as OSM documents",
	Long: `Export converts each snapshot file into an OSM document in the output directory.

Exports run in the fixed order highways, areas, buildings, transit, trees,
water and contours. With several snapshots, up to --workers exports run in
parallel, each in its own session, and each output is named after its
snapshot file.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) {
	log := logger.Get()
	if err := cfg.Validate(); err != nil {
		exitWithError("invalid configuration", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	stop := startMetrics(ctx, log)
	defer stop()

	start := time.Now()
	log.Info("Starting export",
		zap.Int("snapshots", len(args)),
		zap.String("output_dir", cfg.OutputDir),
		zap.String("format", string(cfg.Format)),
		zap.String("north", cfg.North.String()),
		zap.Int("workers", cfg.Workers),
	)

	var manifest *tiles.Manifest
	if cfg.TileList != "" {
		manifest = tiles.NewManifest(cfg.ImageZoom)
	}

	results, err := exportAll(ctx, cfg, args, manifest, log)
	if err != nil {
		exitWithError("export failed", err)
	}

	if manifest != nil {
		if err := manifest.WriteFile(cfg.TileList, log); err != nil {
			exitWithError("tile list failed", err)
		}
	}

	var nodes, ways, relations int
	for _, r := range results {
		nodes += r.Nodes
		ways += r.Ways
		relations += r.Relations
	}
	log.Info("All exports complete",
		zap.Int("documents", len(results)),
		zap.Int("nodes", nodes),
		zap.Int("ways", ways),
		zap.Int("relations", relations),
		elapsedSince(start),
	)
}

// exportAll runs one session per snapshot, at most base.Workers at a time.
// The context is only checked between snapshots.
func exportAll(ctx context.Context, base *config.Config, paths []string, manifest *tiles.Manifest, log *zap.Logger) ([]export.Stats, error) {
	names, err := outputNames(base.FileName, base.Format, paths)
	if err != nil {
		return nil, err
	}

	results := make([]export.Stats, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, base.Workers))
	progress := export.NewProgress(len(paths), time.Now())

	for i, path := range paths {
		i, path := i, path
		c := *base
		c.FileName = names[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			stats, err := exportOne(&c, path, manifest, log)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = stats
			logProgress(log, progress, stats)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func exportOne(c *config.Config, path string, manifest *tiles.Manifest, log *zap.Logger) (export.Stats, error) {
	snap, err := snapshot.Load(path)
	if err != nil {
		return export.Stats{}, err
	}

	session, err := export.NewSession(c, log.With(zap.String("snapshot", filepath.Base(path))), time.Now())
	if err != nil {
		return export.Stats{}, err
	}
	defer session.Close()

	stats, err := session.Run(snap)
	if err != nil {
		return stats, err
	}
	if manifest != nil {
		if b, ok := session.Document().Bound(); ok {
			manifest.AddBound(b)
		}
	}
	return stats, nil
}

func logProgress(log *zap.Logger, progress *export.Progress, stats export.Stats) {
	var size int64
	if fi, err := os.Stat(stats.Output); err == nil {
		size = fi.Size()
	}
	r := progress.Done(stats, size, time.Now())
	log.Info(fmt.Sprintf("Progress: %d/%d documents (%.0f%%)", r.Done, r.Total, r.Percentage),
		zap.String("rate", export.FormatThroughput(r.Throughput)),
		zap.String("written", export.FormatBytes(r.Bytes)),
		zap.String("eta", export.FormatETA(r.ETA)),
	)
}

// outputNames picks the file name of each export: name for a single
// snapshot, otherwise the snapshot's base name. Two snapshots that would
// write the same output file are rejected.
func outputNames(name string, format document.Format, paths []string) ([]string, error) {
	names := make([]string, len(paths))
	if len(paths) == 1 {
		names[0] = name
		return names, nil
	}
	seen := make(map[string]string, len(paths))
	for i, path := range paths {
		names[i] = snapshotName(path)
		file := config.NormalizeFileName(names[i], format)
		if prev, ok := seen[file]; ok {
			return nil, fmt.Errorf("%s and %s both export to %s", prev, path, file)
		}
		seen[file] = path
	}
	return names, nil
}

// snapshotName strips the directory and extension from a snapshot path
func snapshotName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
