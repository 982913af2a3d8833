package main

import (
	"os"

	"github.com/carebridge/sdk-go/internal/commands"
)

func main() {
	os.Exit(commands.Execute())
}
