// Command ntfp runs the NTFP (non-timber forest product) valuation
// pipeline: forest mask, reprojection, corridor buffering, and
// per-country masking and valuation.
package main

import (
	"os"

	"github.com/Observarun/geo-ntfp/log"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run keeps the exit code out of main so the logger is flushed before
// the process exits; os.Exit would skip a deferred Sync in main.
func run(args []string) int {
	defer log.Sync()
	cmd := newRootCmd()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}
