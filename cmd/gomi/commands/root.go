// Package commands holds the spf13/cobra command tree for the gomi
// binary, grounded on teranos-QNTX/cmd/qntx's root+subcommand layout
// (a package-level root command, one file per subcommand, wired
// together from main.go's init).
package commands

import "github.com/spf13/cobra"

// RootCmd is the gomi binary's entrypoint command.
var RootCmd = &cobra.Command{
	Use:   "gomi",
	Short: "Market-data bin analytics provider",
	Long: `gomi computes bin analytics (percentage change, move counts,
volume averages) for item requests against a historical tick store and
serves them over a request/response wire session.

Available commands:
  serve    - Run the provider
  version  - Show build information`,
}

func init() {
	RootCmd.AddCommand(ServeCmd)
	RootCmd.AddCommand(VersionCmd)
}
