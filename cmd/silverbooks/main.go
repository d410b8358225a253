package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/silverbooks-dev/silverbooks/internal/commands"
)

func main() {
	// Optional .env carrying the database DSN.
	_ = godotenv.Load()

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
