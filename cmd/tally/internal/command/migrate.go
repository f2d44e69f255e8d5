package command

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/MrJamesThe3rd/tally/internal/database"
	"github.com/MrJamesThe3rd/tally/internal/journal"
	"github.com/MrJamesThe3rd/tally/internal/journal/store"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "create or upgrade the ledger database" }
func (*migrateCmd) Usage() string {
	return `tally migrate

  Applies pending schema migrations to TALLY_DB_PATH and seeds the chart of
  accounts from the settings file.
`
}

func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (*migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...any) subcommands.ExitStatus {
	app := appFrom(args)

	db, err := database.Open(app.Config.DB.Path)
	if err != nil {
		return fail("opening database: %v", err)
	}
	defer db.Close()

	n, err := database.Migrate(ctx, db)
	if err != nil {
		return fail("migrating: %v", err)
	}

	settings, err := app.loadSettings()
	if err != nil {
		return fail("loading settings: %v", err)
	}

	chart, err := ledger.BuildChart(settings.Currency, settings.ChartLeaves())
	if err != nil {
		return fail("building chart: %v", err)
	}

	created, err := journal.NewService(store.New(db)).SeedChart(ctx, chart)
	if err != nil {
		return fail("seeding chart: %v", err)
	}

	fmt.Fprintf(app.Out, "Applied %d migration(s), schema at version %d, %d account(s) created.\n",
		n, database.Latest(), created)

	return subcommands.ExitSuccess
}
