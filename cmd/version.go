package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/wegman-software/osmexport-go/internal/document"
	"github.com/wegman-software/osmexport-go/internal/snapshot"
)

// Version is set at build time with -ldflags "-X ...cmd.Version=..."
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		v := Version
		if info, ok := debug.ReadBuildInfo(); ok && v == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (snapshot format v%d, formats: %v)\n",
			document.Generator, v, snapshot.SupportedVersion, document.Formats())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
