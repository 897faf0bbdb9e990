// Command modelscout collects AI model listings from multiple
// upstream sources, merges them into a canonical catalog, and
// persists the result.
package main

import "github.com/modelscout/modelscout/cmd/modelscout/cmd"

// Build information set via ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
