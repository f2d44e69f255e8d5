package command

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/MrJamesThe3rd/tally/internal/events"
	"github.com/MrJamesThe3rd/tally/internal/events/kafka"
	"github.com/MrJamesThe3rd/tally/internal/pipeline"
)

type importCmd struct {
	inbox     string
	archive   string
	noMigrate bool
	raw       bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "journal every statement in the inbox" }
func (*importCmd) Usage() string {
	return `tally import [-inbox <dir>] [-archive <dir>] [-no-migrate]

  Parses the statements under the inbox, posts new transactions to the
  ledger and moves the processed files to the archive.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inbox, "inbox", "", "inbox directory (default TALLY_INBOX_DIR)")
	f.StringVar(&c.archive, "archive", "", "archive directory (default TALLY_ARCHIVE_DIR)")
	f.BoolVar(&c.noMigrate, "no-migrate", false, "fail instead of migrating an outdated schema")
	rawFlag(f, &c.raw)
}

func (c *importCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...any) subcommands.ExitStatus {
	app := appFrom(args)
	app.Raw = app.Raw || c.raw

	settings, err := app.loadSettings()
	if err != nil {
		return fail("loading settings: %v", err)
	}

	var publisher events.Publisher = events.Nop{}

	if brokers := app.Config.Kafka.Brokers; len(brokers) > 0 {
		p := kafka.NewPublisher(brokers, app.Config.Kafka.Topic)
		defer p.Close()

		publisher = p
	}

	opts := pipeline.OptionsFrom(app.Config)
	if c.inbox != "" {
		opts.InboxDir = c.inbox
	}

	if c.archive != "" {
		opts.ArchiveDir = c.archive
	}

	if c.noMigrate {
		opts.Migrate = false
	}

	res, err := pipeline.FromSettings(settings, app.Config.Import.PdfToTextPath, publisher).ImportInbox(ctx, opts)
	if err != nil {
		return fail("importing: %v", err)
	}

	app.printMarkdown(ImportMarkdown(res))

	return subcommands.ExitSuccess
}
