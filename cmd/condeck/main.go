package main

import (
	"os"

	"condeck/internal/cli"

	"github.com/joho/godotenv"
)

func main() {
	// Optional .env in the working directory; absence is not an error.
	_ = godotenv.Load()

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
