package command

import (
	"context"
	"flag"

	"github.com/google/subcommands"
)

type accountsCmd struct {
	check bool
	empty bool
	raw   bool
}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "display account balances" }
func (*accountsCmd) Usage() string {
	return `tally accounts [-check] [-empty]

  Displays every account with its balance, placeholders rolled up from their
  sub-accounts. With -check, also lists unbalanced journal entries and exits
  non-zero when there are any.
`
}

func (c *accountsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.check, "check", false, "verify every journal entry balances")
	f.BoolVar(&c.empty, "empty", false, "include accounts without postings")
	rawFlag(f, &c.raw)
}

func (c *accountsCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...any) subcommands.ExitStatus {
	app := appFrom(args)
	app.Raw = app.Raw || c.raw

	journals, db, err := app.openJournal(ctx)
	if err != nil {
		return fail("opening ledger: %v", err)
	}
	defer db.Close()

	balances, err := journals.Balances(ctx)
	if err != nil {
		return fail("loading balances: %v", err)
	}

	if !c.check {
		app.printMarkdown(BalancesMarkdown(balances, c.empty, nil))
		return subcommands.ExitSuccess
	}

	unbalanced, err := journals.Unbalanced(ctx)
	if err != nil {
		return fail("checking entries: %v", err)
	}

	app.printMarkdown(BalancesMarkdown(balances, c.empty, unbalanced))

	if len(unbalanced) > 0 {
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
