// Command insightlens runs the e-commerce analytics pipeline: synthetic
// data generation, analysis, and a read-only report server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
