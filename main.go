package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/mrlokans/kotobi/internal/cli"
	"github.com/mrlokans/kotobi/internal/config"
	"github.com/mrlokans/kotobi/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type command struct {
	summary string
	create  func() cli.Command
}

var commands = map[string]command{
	"add":      {"Add a book", func() cli.Command { return cli.NewAddCommand() }},
	"list":     {"List books, most recently updated first", func() cli.Command { return cli.NewListCommand() }},
	"progress": {"Record reading progress for a book", func() cli.Command { return cli.NewProgressCommand() }},
	"edit":     {"Change the details of a book", func() cli.Command { return cli.NewEditCommand() }},
	"delete":   {"Delete a book", func() cli.Command { return cli.NewDeleteCommand() }},
	"stats":    {"Print reading statistics", func() cli.Command { return cli.NewStatsCommand() }},
	"export":   {"Export all books to a backup document", func() cli.Command { return cli.NewExportCommand() }},
	"import":   {"Replace all books from a backup document", func() cli.Command { return cli.NewImportCommand() }},
	"reset":    {"Remove all books", func() cli.Command { return cli.NewResetCommand() }},
}

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	name := os.Args[1]
	args := os.Args[2:]

	switch name {
	case "-h", "--help", "help":
		printUsage()
		return
	case "version":
		fmt.Printf("kotobi %s (%s)\n", Version, Commit)
		return
	}

	entry, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	cmd := entry.create()
	if err := cmd.ParseFlags(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  %-10s %s\n", "serve", "Start the HTTP server (default if no command given)")
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-10s %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(os.Stderr, "  %-10s %s\n", "version", "Print the version")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
