package main

import (
	"os"

	"github.com/m3dev4/essenz/internal/tools/seed"
)

func main() {
	if err := seed.Execute(); err != nil {
		os.Exit(1)
	}
}
