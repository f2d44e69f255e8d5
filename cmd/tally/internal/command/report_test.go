package command_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/tally/cmd/tally/internal/command"
	"github.com/MrJamesThe3rd/tally/internal/journal"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/pipeline"
	"github.com/MrJamesThe3rd/tally/internal/sanitize"
)

func TestImportMarkdown(t *testing.T) {
	res := &pipeline.Result{
		ProcessedFiles:          []string{"inbox/monzo/a.csv"},
		ArchivedFiles:           []string{"archive/2026-10-18/a.csv"},
		SkippedFiles:            []pipeline.SkippedFile{{Path: "inbox/notes.txt", Reason: "unsupported file type"}},
		TotalTransactions:       3,
		JournalEntriesAttempted: 3,
		JournalEntriesCreated:   2,
		EntryErrors:             []string{"abc: constraint failed"},
		UnmappedDescriptions:    []string{"CARD PAYMENT TO XYZ"},
	}

	out := command.ImportMarkdown(res)

	assert.Contains(t, out, "# Import")
	assert.Contains(t, out, "2 of 3")
	assert.Contains(t, out, "inbox/notes.txt")
	assert.Contains(t, out, "unsupported file type")
	assert.Contains(t, out, "abc: constraint failed")
	assert.Contains(t, out, "CARD PAYMENT TO XYZ")
	assert.NotContains(t, out, "Nothing to import")
}

func TestImportMarkdown_Empty(t *testing.T) {
	out := command.ImportMarkdown(&pipeline.Result{})

	assert.Contains(t, out, "Nothing to import.")
	assert.NotContains(t, out, "Skipped files")
	assert.NotContains(t, out, "Entry errors")
}

func TestBalancesMarkdown(t *testing.T) {
	reported := int64(260000)
	balances := []journal.Balance{
		{AccountID: "Assets", Currency: "GBP", IsPlaceholder: true, BalanceMinor: 250000, Postings: 1},
		{AccountID: "Assets:Current:Monzo", Currency: "GBP", BalanceMinor: 250000, Postings: 1, ReportedMinor: &reported},
		{AccountID: "Expenses:Travel", Currency: "GBP"},
	}

	type args struct {
		empty      bool
		unbalanced []uuid.UUID
	}

	type testCase struct {
		name     string
		args     args
		contains []string
		excludes []string
	}

	bad := uuid.MustParse("7f1d3c2e-0000-4000-8000-000000000001")

	tests := []testCase{
		{
			name:     "HidesEmptyAccounts",
			args:     args{},
			contains: []string{"**Assets**", "Assets:Current:Monzo", "£2,500.00", "£2,600.00"},
			excludes: []string{"Expenses:Travel", "Integrity"},
		},
		{
			name:     "ShowsEmptyAccounts",
			args:     args{empty: true},
			contains: []string{"Expenses:Travel"},
		},
		{
			name:     "CheckPasses",
			args:     args{unbalanced: []uuid.UUID{}},
			contains: []string{"Integrity", "Every journal entry balances."},
		},
		{
			name:     "CheckFails",
			args:     args{unbalanced: []uuid.UUID{bad}},
			contains: []string{"1 unbalanced entries", bad.String()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := command.BalancesMarkdown(balances, tt.args.empty, tt.args.unbalanced)

			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}

			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestBalancesMarkdown_NoPostings(t *testing.T) {
	out := command.BalancesMarkdown([]journal.Balance{{AccountID: "Assets", Currency: "GBP"}}, false, nil)

	assert.Contains(t, out, "No postings yet.")
}

func TestEntriesMarkdown(t *testing.T) {
	entries := []*ledger.JournalEntry{
		{
			ID:          uuid.New(),
			PostedAt:    time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
			IsTransfer:  true,
			Description: "Savings pot",
			Postings: []*ledger.Posting{
				{AccountID: "Assets:Current:Monzo", AmountMinor: -5000, Currency: "GBP"},
				{AccountID: "Assets:Savings:Marcus", AmountMinor: 5000, Currency: "GBP"},
			},
		},
	}

	out := command.EntriesMarkdown(entries)

	assert.Contains(t, out, "2026-03-02")
	assert.Contains(t, out, "Savings pot (transfer)")
	assert.Contains(t, out, "Assets:Savings:Marcus")
	assert.Contains(t, out, "-£50.00")
	assert.Contains(t, out, "£50.00")

	assert.Contains(t, command.EntriesMarkdown(nil), "No entries.")
}

func TestRulesMarkdown(t *testing.T) {
	diags := []sanitize.Diagnostic{{Rule: 2, Target: "Tesco", Pattern: "(", Message: "missing closing )"}}

	out := command.RulesMarkdown("rules.toml", 3, diags)

	assert.Contains(t, out, "rules.toml: 3 rule(s) compiled.")
	assert.Contains(t, out, "Problems")
	assert.Contains(t, out, "missing closing )")

	assert.NotContains(t, command.RulesMarkdown("rules.toml", 3, nil), "Problems")
	assert.Contains(t, command.RulesMarkdown("", 0, nil), "No rules file configured")
}
