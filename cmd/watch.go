package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wegman-software/osmexport-go/internal/logger"
	"github.com/wegman-software/osmexport-go/internal/tiles"
	"github.com/wegman-software/osmexport-go/internal/trigger"
)

var (
	triggerFile  string
	pollInterval time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <snapshot.json>",
	Short: "Export a snapshot each time a trigger file appears",
	Long: `Watch polls for the trigger file. When it appears the trigger is raised;
the next tick consumes the trigger, deletes the file and exports the
snapshot once. Several trigger files between two ticks yield one export.
Stop with SIGINT or SIGTERM.`,
	Args: cobra.ExactArgs(1),
	Run:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&triggerFile, "trigger-file", "", "File whose appearance requests an export (default: <snapshot>.export)")
	watchCmd.Flags().DurationVar(&pollInterval, "poll", 2*time.Second, "Polling interval for the trigger file")
}

func runWatch(cmd *cobra.Command, args []string) {
	log := logger.Get()
	if err := cfg.Validate(); err != nil {
		exitWithError("invalid configuration", err)
	}
	if pollInterval <= 0 {
		exitWithError("poll interval must be positive", nil)
	}

	path := args[0]
	if triggerFile == "" {
		triggerFile = path + ".export"
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	stop := startMetrics(ctx, log)
	defer stop()

	log.Info("Watching for export requests",
		zap.String("snapshot", path),
		zap.String("trigger_file", triggerFile),
		zap.Duration("poll", pollInterval),
	)

	var req trigger.Trigger
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Watch stopped")
			return
		case <-ticker.C:
		}

		if _, err := os.Stat(triggerFile); err == nil {
			req.Raise()
		}
		if !req.Consume() {
			continue
		}
		if err := os.Remove(triggerFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("Could not remove trigger file", zap.Error(err))
		}

		start := time.Now()
		var manifest *tiles.Manifest
		if cfg.TileList != "" {
			manifest = tiles.NewManifest(cfg.ImageZoom)
		}
		if _, err := exportOne(cfg, path, manifest, log); err != nil {
			log.Error("Export failed", zap.Error(err))
			continue
		}
		if manifest != nil {
			if err := manifest.WriteFile(cfg.TileList, log); err != nil {
				log.Error("Tile list failed", zap.Error(err))
			}
		}
		log.Info("Triggered export done", elapsedSince(start))
	}
}
