package main

import (
	"context"
	"fmt"
	"os"

	"github.com/m3dev4/essenz/internal/di"
)

func main() {
	ctx := context.Background()

	application, cleanup, err := di.InitializeApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := application.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "server failed: %v\n", err)
		os.Exit(1)
	}
}
