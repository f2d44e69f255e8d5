package command

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/MrJamesThe3rd/tally/internal/sanitize"
)

type rulesCmd struct {
	raw bool
}

func (*rulesCmd) Name() string     { return "rules" }
func (*rulesCmd) Synopsis() string { return "check the description rules file" }
func (*rulesCmd) Usage() string {
	return `tally rules

  Compiles the rules file named in the settings and reports patterns that
  can never match. Exits non-zero when there are any.
`
}

func (c *rulesCmd) SetFlags(f *flag.FlagSet) {
	rawFlag(f, &c.raw)
}

func (c *rulesCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...any) subcommands.ExitStatus {
	app := appFrom(args)
	app.Raw = app.Raw || c.raw

	settings, err := app.loadSettings()
	if err != nil {
		return fail("loading settings: %v", err)
	}

	path := settings.RulesPath()
	svc := sanitize.NewService(path)

	rules, err := svc.RuleSet(ctx)
	if err != nil {
		return fail("loading rules: %v", err)
	}

	diags, err := svc.Diagnostics(ctx)
	if err != nil {
		return fail("loading rules: %v", err)
	}

	app.printMarkdown(RulesMarkdown(path, rules.Len(), diags))

	if len(diags) > 0 {
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
