package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/wegman-software/osmexport-go/internal/config"
	"github.com/wegman-software/osmexport-go/internal/document"
	"github.com/wegman-software/osmexport-go/internal/logger"
	"github.com/wegman-software/osmexport-go/internal/metrics"
	"github.com/wegman-software/osmexport-go/internal/proj"
)

var (
	cfg        = config.DefaultConfig()
	configFile string
	northStr   string
	formatStr  string
)

var rootCmd = &cobra.Command{
	Use:   "osmexport",
	Short: "Export city simulation snapshots as OpenStreetMap documents",
	Long: `osmexport converts a snapshot of a simulated city into an OSM document.

Features:
  - Road classification with link road inference
  - Water bodies traced into multipolygons
  - Contour lines from the terrain height field
  - Buildings, districts, lots, transit stops and routes
  - OSM XML, OSM JSON and GeoParquet-style output
  - YAML style filters and Lua tag scripts`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfigFile(cmd); err != nil {
			return err
		}
		if cmd.Flags().Changed("north") {
			d, err := proj.ParseDirection(northStr)
			if err != nil {
				return err
			}
			cfg.North = d
		}
		if cmd.Flags().Changed("format") {
			f, err := document.ParseFormat(formatStr)
			if err != nil {
				return err
			}
			cfg.Format = f
		}

		logger.Init(cfg.Verbose, cfg.LogFile)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "YAML configuration file; flags given explicitly take precedence")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Enable verbose output")
	flags.StringVarP(&cfg.OutputDir, "output-dir", "o", cfg.OutputDir, "Directory for exported documents")
	flags.IntVarP(&cfg.Workers, "workers", "j", cfg.Workers, "Number of snapshots exported in parallel")

	// Logging and metrics flags
	flags.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Path to log file for persistent logging (JSON format)")
	flags.DurationVar(&cfg.MetricsInterval, "metrics-interval", cfg.MetricsInterval, "Interval for system metrics logging, 0 to disable (e.g., 10s, 1m)")

	// Export settings shared by export, watch and tiles
	flags.StringVarP(&cfg.FileName, "file-name", "f", cfg.FileName, "Output file name; the extension is fixed up for the format")
	flags.StringVar(&formatStr, "format", string(cfg.Format), "Output format (xml, json, parquet, pbf)")
	flags.StringVar(&northStr, "north", cfg.North.String(), "Direction the world's +z axis points to (north, east, south, west)")
	flags.BoolVar(&cfg.Motorways, "motorways", cfg.Motorways, "Classify fast one-way roads as motorways")
	flags.BoolVar(&cfg.Contours, "contours", cfg.Contours, "Export contour lines")
	flags.BoolVar(&cfg.Trees, "trees", cfg.Trees, "Export trees")
	flags.IntVar(&cfg.ImageZoom, "image-zoom", cfg.ImageZoom, "Tile zoom level for the tile list")
	flags.StringVar(&cfg.TileList, "tile-list", cfg.TileList, "Write the z/x/y tiles covering each export to this file")
	flags.StringVarP(&cfg.StyleFile, "style", "S", cfg.StyleFile, "Style YAML file for tag filtering")
	flags.StringVar(&cfg.ScriptFile, "script", cfg.ScriptFile, "Lua script rewriting feature tags")

	// Non-standard transit rendering helpers
	flags.BoolVar(&cfg.Transit.Enabled, "nonstandard-transit", cfg.Transit.Enabled, "Emit helper nodes and ways for custom transit rendering")
	flags.BoolVar(&cfg.Transit.Taxi, "nonstandard-taxi", cfg.Transit.Taxi, "Helpers for taxi")
	flags.BoolVar(&cfg.Transit.Bus, "nonstandard-bus", cfg.Transit.Bus, "Helpers for bus")
	flags.BoolVar(&cfg.Transit.Tram, "nonstandard-tram", cfg.Transit.Tram, "Helpers for tram")
	flags.BoolVar(&cfg.Transit.Train, "nonstandard-train", cfg.Transit.Train, "Helpers for train")
	flags.BoolVar(&cfg.Transit.Subway, "nonstandard-subway", cfg.Transit.Subway, "Helpers for subway")
	flags.BoolVar(&cfg.Transit.Ship, "nonstandard-ship", cfg.Transit.Ship, "Helpers for ship")
	flags.BoolVar(&cfg.Transit.Airplane, "nonstandard-airplane", cfg.Transit.Airplane, "Helpers for airplane")
}

// loadConfigFile overlays the YAML config, then re-applies every flag the
// user set so the command line wins
func loadConfigFile(cmd *cobra.Command) error {
	if configFile == "" {
		return nil
	}
	set := make(map[string]string)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		set[f.Name] = f.Value.String()
	})

	if err := cfg.LoadFile(configFile); err != nil {
		return err
	}

	for name, value := range set {
		if err := cmd.Flags().Set(name, value); err != nil {
			return fmt.Errorf("re-applying --%s: %w", name, err)
		}
	}
	return nil
}

// startMetrics runs the resource collector until the returned stop is called
func startMetrics(ctx context.Context, log *zap.Logger) (stop func()) {
	if cfg.MetricsInterval <= 0 {
		return func() {}
	}
	ctx, cancel := context.WithCancel(ctx)
	collector := metrics.NewCollector(cfg.MetricsInterval, log)
	go collector.Start(ctx)
	log.Info("System metrics collection started", zap.Duration("interval", cfg.MetricsInterval))
	return cancel
}

func exitWithError(msg string, err error) {
	log := logger.Get()
	if err != nil {
		log.Error(msg, zap.Error(err))
	} else {
		log.Error(msg)
	}
	logger.Sync()
	os.Exit(1)
}

func elapsedSince(start time.Time) zap.Field {
	return logger.Elapsed("elapsed", time.Since(start))
}
