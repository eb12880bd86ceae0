package main

import (
	"os"

	"github.com/weblave/weblave/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
