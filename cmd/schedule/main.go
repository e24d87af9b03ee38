package main

import (
	"os"

	"github.com/joho/godotenv"

	"no-lights-schedule/cmd/schedule/cli"
)

func main() {
	// Load .env if present.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
