package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tmpl-lang/tmplc/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "tmplc",
	Short: "Control-flow lowering and linking for compiled template units",
	Long: `tmplc processes typed compiled units: it lowers structured control
flow (try/except, raise, match, comprehensions) into continuation
functions with explicit error channels, recomputes which functions can
raise, and links separately compiled units into one program.

Subcommands:
  lower   Lower units into continuation-passing form
  throw   Report per-function throwability
  link    Merge compiled units into one program unit`,
	Version: version.Short(),
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	// Accept underscores in flag names for consistency with config keys
	rootCmd.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	// Add main subcommands
	rootCmd.AddCommand(NewLowerCmd())
	rootCmd.AddCommand(NewThrowCmd())
	rootCmd.AddCommand(NewLinkCmd())
	rootCmd.AddCommand(NewVersionCmd())
	rootCmd.AddCommand(NewInitCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
