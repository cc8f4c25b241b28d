// Command floorplan packs symmetry-constrained analog-layout modules
// using an ASF-B*/HB*-tree representation and simulated annealing.
//
// Usage:
//
//	floorplan <input_file> <output_file> [area_ratio]
package main

import (
	"os"

	"github.com/piwi3910/floorplan/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
