package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/avolkau/librarium/internal/config"
	"github.com/avolkau/librarium/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	// Local overrides for development; missing file is fine
	_ = godotenv.Load()

	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("librarium %s (%s)\n", Version, Commit)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Librarium - library management service")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  librarium [serve]    Start the HTTP server (default)")
	fmt.Println("  librarium version    Print version information")
	fmt.Println("  librarium help       Show this help")
	fmt.Println()
	fmt.Println("Administrative tasks (creating accounts, seeding the catalog)")
	fmt.Println("are handled by the libctl companion tool.")
}
