package main

import (
	"os"

	"github.com/avolkau/librarium/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
