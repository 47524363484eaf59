package cli

import (
	"encoding/json"
	"flag"
	"fmt"

	"github.com/mrlokans/kotobi/internal/entities"
)

// AddCommand creates a book.
type AddCommand struct {
	storeFlags
	Title      string
	Cover      string
	TotalPages int
	PagesRead  int
	Status     string
	Rating     int
	StoreCover bool
}

func NewAddCommand() *AddCommand {
	return &AddCommand{}
}

func (cmd *AddCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	cmd.register(fs)
	fs.StringVar(&cmd.Title, "title", "", "Book title (required)")
	fs.StringVar(&cmd.Cover, "cover", "", "Cover reference: a path or URL (required)")
	fs.IntVar(&cmd.TotalPages, "pages", 0, "Total number of pages (required)")
	fs.IntVar(&cmd.PagesRead, "read", 0, "Pages read so far")
	fs.StringVar(&cmd.Status, "status", "", "to-read, reading or completed (derived from -read when empty)")
	fs.IntVar(&cmd.Rating, "rating", 0, "Rating from 0 to 5")
	fs.BoolVar(&cmd.StoreCover, "store-cover", false, "Copy or download the cover into the managed cover directory")
	fs.Usage = usage(fs, "add -title <title> -cover <ref> -pages <n> [options]", "Add a book to the reading list.")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Title == "" {
		return fmt.Errorf("required flag -title not provided")
	}
	if cmd.Cover == "" {
		return fmt.Errorf("required flag -cover not provided")
	}
	return nil
}

func (cmd *AddCommand) Run() error {
	tracker, err := cmd.open()
	if err != nil {
		return err
	}
	defer tracker.Close()

	status := entities.Status(cmd.Status)
	if status == "" {
		status = entities.StatusForProgress(cmd.PagesRead, cmd.TotalPages)
	}

	cover := cmd.Cover
	if cmd.StoreCover {
		ctx, cancel := interruptContext()
		defer cancel()
		if cover, err = tracker.StoreCover(ctx, cmd.Cover); err != nil {
			return err
		}
	}

	id, err := tracker.AddBook(entities.Draft{
		Title:      cmd.Title,
		Cover:      cover,
		TotalPages: cmd.TotalPages,
		PagesRead:  cmd.PagesRead,
		Status:     status,
		Rating:     cmd.Rating,
	})
	if err != nil {
		return err
	}

	cmd.printf("Added book #%d %q (%s)\n", id, cmd.Title, status)
	return nil
}

// ListCommand prints every book, most recently updated first.
type ListCommand struct {
	storeFlags
	JSON bool
}

func NewListCommand() *ListCommand {
	return &ListCommand{}
}

func (cmd *ListCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	cmd.register(fs)
	fs.BoolVar(&cmd.JSON, "json", false, "Print books as JSON")
	fs.Usage = usage(fs, "list [options]", "List all books, most recently updated first.")
	return fs.Parse(args)
}

func (cmd *ListCommand) Run() error {
	tracker, err := cmd.open()
	if err != nil {
		return err
	}
	defer tracker.Close()

	books, err := tracker.GetBooks()
	if err != nil {
		return err
	}

	if cmd.JSON {
		enc := json.NewEncoder(cmd.stdout())
		enc.SetIndent("", "  ")
		return enc.Encode(books)
	}

	if len(books) == 0 {
		cmd.printf("No books yet\n")
		return nil
	}
	for _, book := range books {
		cmd.printf("%4d  %-10s %4d/%-4d  %s  %q\n",
			book.ID, book.Status, book.PagesRead, book.TotalPages, stars(book.Rating), book.Title)
	}
	return nil
}

func stars(rating int) string {
	s := ""
	for i := 1; i <= 5; i++ {
		if i <= rating {
			s += "*"
		} else {
			s += "."
		}
	}
	return s
}

// ProgressCommand records reading progress for a book.
type ProgressCommand struct {
	storeFlags
	ID        uint
	PagesRead int
	Status    string
}

func NewProgressCommand() *ProgressCommand {
	return &ProgressCommand{}
}

func (cmd *ProgressCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("progress", flag.ContinueOnError)
	cmd.register(fs)
	fs.UintVar(&cmd.ID, "id", 0, "Book id (required)")
	fs.IntVar(&cmd.PagesRead, "read", -1, "Pages read (required)")
	fs.StringVar(&cmd.Status, "status", "", "New status (derived from -read when empty)")
	fs.Usage = usage(fs, "progress -id <id> -read <pages> [options]", "Update how far a book has been read.")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.ID == 0 {
		return fmt.Errorf("required flag -id not provided")
	}
	if cmd.PagesRead < 0 {
		return fmt.Errorf("required flag -read not provided")
	}
	return nil
}

func (cmd *ProgressCommand) Run() error {
	tracker, err := cmd.open()
	if err != nil {
		return err
	}
	defer tracker.Close()

	if cmd.Status == "" {
		err = tracker.RecordProgress(cmd.ID, cmd.PagesRead)
	} else {
		err = tracker.UpdateProgress(cmd.ID, cmd.PagesRead, entities.Status(cmd.Status))
	}
	if err != nil {
		return err
	}

	book, err := tracker.GetBook(cmd.ID)
	if err != nil {
		return err
	}
	cmd.printf("Book #%d %q: %d/%d pages (%s)\n", book.ID, book.Title, book.PagesRead, book.TotalPages, book.Status)
	return nil
}

// EditCommand overwrites the details of a book. Flags that are not given
// keep the book's current value. Without -status the status is re-derived
// from progress, and a page count below the pages already read restarts
// progress at 0.
type EditCommand struct {
	storeFlags
	ID         uint
	StoreCover bool

	details entities.Details
	set     map[string]bool
}

func NewEditCommand() *EditCommand {
	return &EditCommand{}
}

func (cmd *EditCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	cmd.register(fs)
	fs.UintVar(&cmd.ID, "id", 0, "Book id (required)")
	fs.StringVar(&cmd.details.Title, "title", "", "New title")
	fs.IntVar(&cmd.details.TotalPages, "pages", 0, "New total page count")
	fs.StringVar((*string)(&cmd.details.Status), "status", "", "New status")
	fs.StringVar(&cmd.details.Cover, "cover", "", "New cover reference")
	fs.IntVar(&cmd.details.Rating, "rating", 0, "New rating from 0 to 5")
	fs.BoolVar(&cmd.StoreCover, "store-cover", false, "Copy or download the new cover into the managed cover directory")
	fs.Usage = usage(fs, "edit -id <id> [options]", "Change the title, page count, status, cover or rating of a book.")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.ID == 0 {
		return fmt.Errorf("required flag -id not provided")
	}

	cmd.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { cmd.set[f.Name] = true })
	return nil
}

func (cmd *EditCommand) Run() error {
	tracker, err := cmd.open()
	if err != nil {
		return err
	}
	defer tracker.Close()

	book, err := tracker.GetBook(cmd.ID)
	if err != nil {
		return err
	}

	details := entities.Details{
		Title:      book.Title,
		TotalPages: book.TotalPages,
		Status:     book.Status,
		Cover:      book.Cover,
		Rating:     book.Rating,
	}
	if cmd.set["title"] {
		details.Title = cmd.details.Title
	}
	if cmd.set["pages"] {
		details.TotalPages = cmd.details.TotalPages
	}
	if cmd.set["rating"] {
		details.Rating = cmd.details.Rating
	}
	if cmd.set["cover"] {
		details.Cover = cmd.details.Cover
		if cmd.StoreCover {
			ctx, cancel := interruptContext()
			defer cancel()
			if details.Cover, err = tracker.StoreCover(ctx, cmd.details.Cover); err != nil {
				return err
			}
		}
	}

	if cmd.set["status"] {
		details.Status = cmd.details.Status
		err = tracker.UpdateDetails(cmd.ID, details)
	} else {
		err = tracker.EditBook(cmd.ID, details)
	}
	if err != nil {
		return err
	}
	cmd.printf("Updated book #%d %q\n", cmd.ID, details.Title)
	return nil
}

// DeleteCommand removes a single book.
type DeleteCommand struct {
	storeFlags
	ID uint
}

func NewDeleteCommand() *DeleteCommand {
	return &DeleteCommand{}
}

func (cmd *DeleteCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	cmd.register(fs)
	fs.UintVar(&cmd.ID, "id", 0, "Book id (required)")
	fs.Usage = usage(fs, "delete -id <id> [options]", "Delete a book.")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.ID == 0 {
		return fmt.Errorf("required flag -id not provided")
	}
	return nil
}

func (cmd *DeleteCommand) Run() error {
	tracker, err := cmd.open()
	if err != nil {
		return err
	}
	defer tracker.Close()

	if err := tracker.DeleteBook(cmd.ID); err != nil {
		return err
	}
	cmd.printf("Deleted book #%d\n", cmd.ID)
	return nil
}
