// Command gomi runs the bin-analytics provider: a worker pool computing
// percentage-change and move-count analytics against a historical tick
// store, served over a request/response wire session and introspectable
// through an admin telemetry endpoint.
package main

import (
	"fmt"
	"os"

	"github.com/steve-o/gomi/cmd/gomi/commands"
)

func main() {
	if err := commands.RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
