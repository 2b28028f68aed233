package main

import (
	"fmt"
	"os"

	"github.com/abhishekuniyalibyte/clover-calculator/cmd/cli/cmd"
	"github.com/abhishekuniyalibyte/clover-calculator/internal/logging"
)

func main() {
	defer logging.Sync()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
