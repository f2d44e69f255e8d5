package command

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	md "github.com/nao1215/markdown"

	"github.com/MrJamesThe3rd/tally/internal/journal"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/pipeline"
	"github.com/MrJamesThe3rd/tally/internal/sanitize"
)

// ImportMarkdown renders the outcome of an inbox run.
func ImportMarkdown(res *pipeline.Result) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Import")

	if len(res.ProcessedFiles) == 0 {
		doc.PlainText("Nothing to import.")
	}

	doc.Table(md.TableSet{
		Header: []string{"", "Count"},
		Rows: [][]string{
			{"Files processed", strconv.Itoa(len(res.ProcessedFiles))},
			{"Files archived", strconv.Itoa(len(res.ArchivedFiles))},
			{"Files skipped", strconv.Itoa(len(res.SkippedFiles))},
			{"Transactions", strconv.Itoa(res.TotalTransactions)},
			{"Duplicates", strconv.Itoa(res.DuplicateTransactions)},
			{"Entries created", fmt.Sprintf("%d of %d", res.JournalEntriesCreated, res.JournalEntriesAttempted)},
			{"Transfer pairs", strconv.Itoa(res.TransferPairsCreated)},
		},
	})

	if len(res.SkippedFiles) > 0 {
		doc.H2("Skipped files")

		rows := make([][]string, 0, len(res.SkippedFiles))
		for _, s := range res.SkippedFiles {
			rows = append(rows, []string{s.Path, s.Reason})
		}

		doc.Table(md.TableSet{Header: []string{"File", "Reason"}, Rows: rows})
	}

	if len(res.EntryErrors) > 0 {
		doc.H2("Entry errors")
		doc.BulletList(res.EntryErrors...)
	}

	if len(res.UnmappedDescriptions) > 0 {
		doc.H2("Descriptions without a rule")
		doc.BulletList(res.UnmappedDescriptions...)
	}

	return doc.String()
}

// BalancesMarkdown renders the chart with balances. Accounts without postings
// are left out unless empty is set. A non-nil unbalanced adds an integrity
// section.
func BalancesMarkdown(balances []journal.Balance, empty bool, unbalanced []uuid.UUID) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Balances")

	var rows [][]string

	for _, b := range balances {
		if !empty && b.Postings == 0 {
			continue
		}

		name := b.AccountID.String()
		if b.IsPlaceholder {
			name = md.Bold(name)
		}

		reported := ""
		if b.ReportedMinor != nil {
			reported = ledger.FormatMinor(*b.ReportedMinor, b.Currency)
		}

		rows = append(rows, []string{
			name,
			ledger.FormatMinor(b.BalanceMinor, b.Currency),
			reported,
			strconv.Itoa(b.Postings),
		})
	}

	if len(rows) == 0 {
		doc.PlainText("No postings yet.")
	} else {
		doc.Table(md.TableSet{
			Header: []string{"Account", "Balance", "Reported", "Postings"},
			Rows:   rows,
		})
	}

	if unbalanced != nil {
		doc.H2("Integrity")

		if len(unbalanced) == 0 {
			doc.PlainText("Every journal entry balances.")
		} else {
			ids := make([]string, 0, len(unbalanced))
			for _, id := range unbalanced {
				ids = append(ids, id.String())
			}

			doc.PlainText(fmt.Sprintf("%d unbalanced entries:", len(ids)))
			doc.BulletList(ids...)
		}
	}

	return doc.String()
}

// EntriesMarkdown renders one row per posting, grouped under its entry.
func EntriesMarkdown(entries []*ledger.JournalEntry) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Journal")

	if len(entries) == 0 {
		doc.PlainText("No entries.")
		return doc.String()
	}

	var rows [][]string

	for _, e := range entries {
		desc := e.Description
		if e.IsTransfer {
			desc += " (transfer)"
		}

		for i, p := range e.Postings {
			date := ""
			if i == 0 {
				date = e.PostedDate()
			} else {
				desc = ""
			}

			rows = append(rows, []string{
				date,
				desc,
				p.AccountID.String(),
				ledger.FormatMinor(p.AmountMinor, p.Currency),
			})
		}
	}

	doc.Table(md.TableSet{
		Header: []string{"Date", "Description", "Account", "Amount"},
		Rows:   rows,
	})

	return doc.String()
}

// RulesMarkdown renders the rule diagnostics for the rules file at path.
func RulesMarkdown(path string, count int, diags []sanitize.Diagnostic) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Rules")

	if path == "" {
		doc.PlainText("No rules file configured, descriptions are kept as they are.")
		return doc.String()
	}

	doc.PlainText(fmt.Sprintf("%s: %d rule(s) compiled.", path, count))

	if len(diags) == 0 {
		return doc.String()
	}

	rows := make([][]string, 0, len(diags))
	for _, d := range diags {
		rows = append(rows, []string{strconv.Itoa(d.Rule), d.Target, d.Pattern, d.Message})
	}

	doc.H2("Problems")
	doc.Table(md.TableSet{Header: []string{"Rule", "Target", "Pattern", "Problem"}, Rows: rows})

	return doc.String()
}
