package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/librarydesk/internal/cli"
	"github.com/mrlokans/librarydesk/internal/config"
	"github.com/mrlokans/librarydesk/internal/entrypoint"
	"github.com/mrlokans/librarydesk/internal/logger"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type subcommand interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "seed":
		cfg := config.NewConfig()
		logger.Init(cfg.Log.Level, cfg.Log.Format)
		run(cli.NewSeedCommand(cfg), args)

	case "ask":
		cfg := config.NewConfig()
		logger.Init(cfg.Log.Level, cfg.Log.Format)
		run(cli.NewAskCommand(cfg), args)

	case "hash-password":
		run(cli.NewHashPasswordCommand(), args)

	case "version":
		fmt.Printf("librarydesk %s (%s)\n", Version, Commit)

	case "-h", "--help", "help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func run(cmd subcommand, args []string) {
	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve          Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  seed           Load books from a JSON file into the catalog\n")
	fmt.Fprintf(os.Stderr, "  ask            Ask the library assistant a question from the terminal\n")
	fmt.Fprintf(os.Stderr, "  hash-password  Print a bcrypt hash for AUTH_PASSWORD_HASH\n")
	fmt.Fprintf(os.Stderr, "  version        Print version information\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
