package main

import (
	"os"

	"github.com/joho/godotenv"

	"go-user-admin/internal/cli"
)

func main() {
	_ = godotenv.Load()
	os.Exit(cli.Execute())
}
