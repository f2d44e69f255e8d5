package command

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/database"
	"github.com/MrJamesThe3rd/tally/internal/journal"
	"github.com/MrJamesThe3rd/tally/internal/journal/store"
)

// Register the subcommands.
func Register(c *subcommands.Commander) {
	c.Register(&migrateCmd{}, "ledger")
	c.Register(&importCmd{}, "ledger")
	c.Register(&accountsCmd{}, "reports")
	c.Register(&entriesCmd{}, "reports")
	c.Register(&rulesCmd{}, "reports")
}

// App is passed to every subcommand as its first Execute argument.
type App struct {
	Config *config.Config
	Out    io.Writer
	// Raw prints reports as plain markdown instead of rendering them.
	Raw bool
}

func NewApp(cfg *config.Config) *App {
	return &App{Config: cfg, Out: os.Stdout}
}

func appFrom(args []any) *App {
	return args[0].(*App)
}

// openJournal opens the ledger database without touching its schema.
func (a *App) openJournal(ctx context.Context) (*journal.Service, *sql.DB, error) {
	db, err := database.Open(a.Config.DB.Path)
	if err != nil {
		return nil, nil, err
	}

	v, err := database.Version(ctx, db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	if v == 0 {
		db.Close()
		return nil, nil, fmt.Errorf("database %s has no schema, run migrate first", a.Config.DB.Path)
	}

	return journal.NewService(store.New(db)), db, nil
}

func (a *App) loadSettings() (*config.Settings, error) {
	return config.LoadSettings(a.Config.Import.SettingsFile)
}

func (a *App) printMarkdown(md string) {
	if a.Raw {
		fmt.Fprint(a.Out, md)
		return
	}

	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Fprint(a.Out, md)
		return
	}

	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(a.Out, md)
		return
	}

	fmt.Fprint(a.Out, out)
}

func rawFlag(f *flag.FlagSet, raw *bool) {
	f.BoolVar(raw, "raw", false, "print plain markdown")
}

func fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error "+format+"\n", args...)
	return subcommands.ExitFailure
}
