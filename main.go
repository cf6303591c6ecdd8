// Package main prints a short usage summary for arcsim.
// The emulator itself lives in ./cmd/arcsim.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"
)

var flags = [][2]string{
	{"-config <file>", "run configuration JSON"},
	{"-rom <file>", "ROM image, instead of the positional argument"},
	{"-max <n>", "stop after n instructions"},
	{"-q", "no instruction trace"},
	{"-cache", "count ARM3 cache hits and misses"},
	{"-v", "print instruction count and cache statistics at halt"},
}

func main() {
	fmt.Println("arcsim: Acorn Archimedes ARM2 emulator")
	fmt.Println()
	fmt.Println("  go run ./cmd/arcsim [options] <rom.img>")
	fmt.Println()

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, f := range flags {
		fmt.Fprintf(tw, "  %s\t%s\n", f[0], f[1])
	}
	_ = tw.Flush()
}
