package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
)

// StatsCommand prints collection statistics.
type StatsCommand struct {
	storeFlags
}

func NewStatsCommand() *StatsCommand {
	return &StatsCommand{}
}

func (cmd *StatsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	cmd.register(fs)
	fs.Usage = usage(fs, "stats [options]", "Print reading statistics.")
	return fs.Parse(args)
}

func (cmd *StatsCommand) Run() error {
	tracker, err := cmd.open()
	if err != nil {
		return err
	}
	defer tracker.Close()

	stats, err := tracker.GetStatistics()
	if err != nil {
		return err
	}

	cmd.printf("Books:             %d\n", stats.TotalBooks)
	cmd.printf("Completed:         %d\n", stats.CompletedBooks)
	cmd.printf("Currently reading: %d\n", stats.CurrentlyReading)
	cmd.printf("Pages read:        %d/%d\n", stats.TotalPagesRead, stats.TotalPagesGoal)
	return nil
}

// ExportCommand writes a backup document to the export directory, or to
// stdout with -stdout.
type ExportCommand struct {
	storeFlags
	Stdout bool
}

func NewExportCommand() *ExportCommand {
	return &ExportCommand{}
}

func (cmd *ExportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	cmd.register(fs)
	fs.BoolVar(&cmd.Stdout, "stdout", false, "Print the document instead of writing a backup file")
	fs.Usage = usage(fs, "export [options]", "Export every book, with embedded covers, to a portable JSON document.\nThe file is written to $EXPORT_DIR (default ./exports).")
	return fs.Parse(args)
}

func (cmd *ExportCommand) Run() error {
	tracker, err := cmd.open()
	if err != nil {
		return err
	}
	defer tracker.Close()

	ctx, cancel := interruptContext()
	defer cancel()

	if cmd.Stdout {
		result, err := tracker.ExportDocument(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.stdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result.Document)
	}

	result, err := tracker.Export(ctx)
	if err != nil {
		return err
	}

	cmd.printf("Exported %d books (%d covers embedded) to %s\n", result.BooksExported, result.CoversEmbedded, result.Path)
	for _, warning := range result.Warnings {
		cmd.printf("  [WARN] %s\n", warning)
	}
	return nil
}

// ImportCommand replaces every book with the contents of a backup document.
type ImportCommand struct {
	storeFlags
	File string
	Yes  bool
}

func NewImportCommand() *ImportCommand {
	return &ImportCommand{}
}

func (cmd *ImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	cmd.register(fs)
	fs.StringVar(&cmd.File, "file", "", "Path to a backup document (required)")
	fs.BoolVar(&cmd.Yes, "yes", false, "Confirm that all existing books are replaced")
	fs.Usage = usage(fs, "import -file <path> -yes [options]", "Replace all books with those of a backup document.\nNothing changes if the document is invalid.")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.File == "" {
		return fmt.Errorf("required flag -file not provided")
	}
	return nil
}

func (cmd *ImportCommand) Run() error {
	if !cmd.Yes {
		return errNotConfirmed
	}
	if _, err := os.Stat(cmd.File); os.IsNotExist(err) {
		return fmt.Errorf("backup file not found: %s", cmd.File)
	}

	tracker, err := cmd.open()
	if err != nil {
		return err
	}
	defer tracker.Close()

	ctx, cancel := interruptContext()
	defer cancel()

	result, err := tracker.ImportFile(ctx, cmd.File)
	if err != nil {
		return err
	}

	cmd.printf("Imported %d books (%d covers restored) from version %s document\n",
		result.BooksImported, result.CoversRestored, result.Version)
	for _, warning := range result.Warnings {
		cmd.printf("  [WARN] %s\n", warning)
	}
	return nil
}

// ResetCommand removes every book.
type ResetCommand struct {
	storeFlags
	Yes bool
}

func NewResetCommand() *ResetCommand {
	return &ResetCommand{}
}

func (cmd *ResetCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	cmd.register(fs)
	fs.BoolVar(&cmd.Yes, "yes", false, "Confirm that all books are removed")
	fs.Usage = usage(fs, "reset -yes [options]", "Remove every book. Stored cover files are kept.")
	return fs.Parse(args)
}

func (cmd *ResetCommand) Run() error {
	if !cmd.Yes {
		return errNotConfirmed
	}

	tracker, err := cmd.open()
	if err != nil {
		return err
	}
	defer tracker.Close()

	if err := tracker.ResetAll(); err != nil {
		return err
	}
	cmd.printf("All books removed\n")
	return nil
}
