package command

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/MrJamesThe3rd/tally/internal/journal"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

type entriesCmd struct {
	account string
	from    string
	to      string
	limit   int
	raw     bool
}

func (*entriesCmd) Name() string     { return "entries" }
func (*entriesCmd) Synopsis() string { return "list journal entries, newest first" }
func (*entriesCmd) Usage() string {
	return `tally entries [-a <account>] [-from <date>] [-to <date>] [-n <limit>]

  Lists journal entries with their postings. An account filter includes its
  sub-accounts, so -a Expenses lists every expense.
`
}

func (c *entriesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "account id, e.g. Assets:Current:Monzo")
	f.StringVar(&c.from, "from", "", "first day, YYYY-MM-DD")
	f.StringVar(&c.to, "to", "", "last day, YYYY-MM-DD")
	f.IntVar(&c.limit, "n", 50, "maximum number of entries, 0 for all")
	rawFlag(f, &c.raw)
}

func (c *entriesCmd) filter() (journal.ListFilter, error) {
	filter := journal.ListFilter{Limit: c.limit}

	if c.account != "" {
		id, err := ledger.ParseAccountID(c.account)
		if err != nil {
			return filter, err
		}

		filter.AccountID = &id
	}

	for _, d := range []struct {
		value string
		dst   **time.Time
	}{{c.from, &filter.StartDate}, {c.to, &filter.EndDate}} {
		if d.value == "" {
			continue
		}

		t, err := time.Parse(time.DateOnly, d.value)
		if err != nil {
			return filter, fmt.Errorf("invalid date %q (YYYY-MM-DD)", d.value)
		}

		*d.dst = &t
	}

	return filter, nil
}

func (c *entriesCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...any) subcommands.ExitStatus {
	app := appFrom(args)
	app.Raw = app.Raw || c.raw

	filter, err := c.filter()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		return subcommands.ExitUsageError
	}

	journals, db, err := app.openJournal(ctx)
	if err != nil {
		return fail("opening ledger: %v", err)
	}
	defer db.Close()

	entries, err := journals.ListEntries(ctx, filter)
	if err != nil {
		return fail("listing entries: %v", err)
	}

	app.printMarkdown(EntriesMarkdown(entries))

	return subcommands.ExitSuccess
}
