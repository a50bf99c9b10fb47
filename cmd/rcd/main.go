// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 19th 2026
// Project: Permutation-based Whitening for Root Cause Discovery
// Class: 02-613 at Caregie Mellon University

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

// rcd ranks the variables of an interventional sample by how likely each one
// is the root cause of its deviation from the observational data.
// Run "rcd score --help" or "rcd simulate --help" for usage.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
