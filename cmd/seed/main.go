package main

import (
	"fmt"
	"os"

	"github.com/ecomstore/backend/internal/infrastructure/config"
)

func main() {
	if err := newRootCommand(config.Load).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
