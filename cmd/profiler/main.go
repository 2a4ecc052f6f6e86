// Command profiler compares beam profiler exports with commissioned
// reference profiles and keeps a history of the results.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "profiler:", err)
		}
		os.Exit(1)
	}
}
