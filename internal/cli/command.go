// Package cli implements the command-line front end of the reading tracker.
// Every command follows the same shape: ParseFlags reads its own flag set,
// Run opens the store, performs one operation and prints a summary.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mrlokans/kotobi/internal/config"
	"github.com/mrlokans/kotobi/internal/services"
)

// Command is a single CLI subcommand.
type Command interface {
	ParseFlags(args []string) error
	Run() error
}

// errNotConfirmed is returned by destructive commands run without -yes.
var errNotConfirmed = errors.New("this replaces or removes every book; repeat with -yes to confirm")

// storeFlags are shared by every command that opens the database.
type storeFlags struct {
	DatabasePath string
	out          io.Writer
}

func (f *storeFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.DatabasePath, "db", "", "Path to the database file (default: $DATABASE_PATH or "+config.DefaultDatabasePath+")")
}

func (f *storeFlags) stdout() io.Writer {
	if f.out == nil {
		return os.Stdout
	}
	return f.out
}

func (f *storeFlags) printf(format string, args ...any) {
	fmt.Fprintf(f.stdout(), format, args...)
}

// open loads the environment configuration, applies -db and opens the tracker.
func (f *storeFlags) open() (*services.Tracker, error) {
	cfg := config.NewConfig()
	if f.DatabasePath != "" {
		absDBPath, err := filepath.Abs(f.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for database: %w", err)
		}
		cfg.SetDatabasePath(absDBPath)
	}
	return services.Open(cfg)
}

// interruptContext is cancelled on SIGINT or SIGTERM so long-running exports
// and imports stop cleanly.
func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func usage(fs *flag.FlagSet, synopsis, description string) func() {
	return func() {
		fmt.Fprintf(os.Stderr, "Usage: %s %s\n\n", os.Args[0], synopsis)
		fmt.Fprintf(os.Stderr, "%s\n\n", description)
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}
}
