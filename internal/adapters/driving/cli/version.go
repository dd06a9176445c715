package cli

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long: `Prints the corpus version, the Go release it was built with and the
source revision when the binary carries one.`,
	Args: cobra.NoArgs,
	Run:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, _ []string) {
	cmd.Printf("corpus version %s\n", version)

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	cmd.Printf("  go:       %s\n", info.GoVersion)
	if rev := buildSetting(info, "vcs.revision"); rev != "" {
		if buildSetting(info, "vcs.modified") == "true" {
			rev += " (modified)"
		}
		cmd.Printf("  revision: %s\n", rev)
	}
}

func buildSetting(info *debug.BuildInfo, key string) string {
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}
