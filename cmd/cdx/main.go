// Command cdx is the critterdex CLI: it drives the mission and progression
// engine against a local SQLite profile.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const version = "1.0.0"

func main() {
	// A missing .env is fine; the environment alone can configure cdx.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "cdx: %v\n", err)
		os.Exit(1)
	}
}
