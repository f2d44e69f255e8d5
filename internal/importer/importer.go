package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

// Provider names the institution whose export format a parser understands.
type Provider string

const (
	ProviderMonzo    Provider = "monzo"
	ProviderCGD      Provider = "cgd"
	ProviderVanguard Provider = "vanguard"
)

var (
	ErrWrongProviderForAccount = errors.New("account is not configured for this provider")
	ErrMissingBankPreset       = errors.New("missing bank preset")
	ErrUnknownProvider         = errors.New("unknown provider")
	ErrUnknownAccount          = errors.New("account not configured")
	ErrInvalidStatement        = errors.New("invalid statement")
)

// MissingColumnsError reports the configured columns a CSV header lacks.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "missing columns: " + strings.Join(e.Columns, ", ")
}

// File is a statement found in the inbox, already matched to its account.
type File struct {
	Path      string
	Provider  Provider
	AccountID ledger.AccountID
}

// Source is everything a parser needs to read one file.
type Source struct {
	Path     string
	Provider Provider
	Account  config.Account
	Preset   *config.BankPreset // nil when the provider has no preset configured
}

// Parser turns one statement file into row outcomes.
type Parser interface {
	Provider() Provider
	Parse(ctx context.Context, src Source) (*Result, error)
}

// CheckAccount fails with ErrWrongProviderForAccount unless src's account is
// configured for provider p.
func CheckAccount(src Source, p Provider) error {
	if Provider(src.Account.Provider) != p {
		return fmt.Errorf("%w: %s is configured for %q, not %q",
			ErrWrongProviderForAccount, src.Account.ID, src.Account.Provider, p)
	}

	return nil
}

// RowOutcome is either a parsed transaction or the reason a row was skipped.
type RowOutcome struct {
	Line   int
	Txn    *transaction.Parsed
	Reason string
}

func RowParsed(line int, txn *transaction.Parsed) RowOutcome {
	return RowOutcome{Line: line, Txn: txn}
}

func RowSkipped(line int, reason string) RowOutcome {
	return RowOutcome{Line: line, Reason: reason}
}

func (o RowOutcome) Skipped() bool { return o.Txn == nil }

// Result collects the row outcomes of one file.
type Result struct {
	Rows []RowOutcome
}

func (r *Result) Add(o RowOutcome) { r.Rows = append(r.Rows, o) }

// Transactions returns the parsed rows in file order.
func (r *Result) Transactions() []*transaction.Parsed {
	var out []*transaction.Parsed

	for _, o := range r.Rows {
		if !o.Skipped() {
			out = append(out, o.Txn)
		}
	}

	return out
}

// SkippedRows returns the rows that were dropped, with reasons.
func (r *Result) SkippedRows() []RowOutcome {
	var out []RowOutcome

	for _, o := range r.Rows {
		if o.Skipped() {
			out = append(out, o)
		}
	}

	return out
}

// FileOutcome is either the transactions of a file or the reason the whole file was skipped.
type FileOutcome struct {
	File         File
	Transactions []*transaction.Parsed
	SkippedRows  []RowOutcome
	SkipReason   string
}

func (o FileOutcome) Skipped() bool { return o.SkipReason != "" }
