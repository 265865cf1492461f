// Command ticheck evaluates a single indicator against the configured threat
// intel providers and prints the aggregated verdict.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(newService).Execute(); err != nil {
		os.Exit(1)
	}
}
