package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/logger"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
	"github.com/MrJamesThe3rd/tally/internal/transfer"
)

var ErrNotFound = errors.New("journal entry not found")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=journal
type Repository interface {
	SeedAccounts(ctx context.Context, accounts []*ledger.ChartAccount) (int, error)
	ListAccounts(ctx context.Context) ([]*ledger.ChartAccount, error)
	Balances(ctx context.Context) ([]Balance, error)

	GetEntry(ctx context.Context, id uuid.UUID) (*ledger.JournalEntry, error)
	ListEntries(ctx context.Context, filter ListFilter) ([]*ledger.JournalEntry, error)
	UnbalancedEntries(ctx context.Context) ([]uuid.UUID, error)

	BeginImport(ctx context.Context) (ImportTx, error)
}

// ImportTx is one import run's outer transaction.
type ImportTx interface {
	// ExistingProviderKeys returns which of keys are already posted.
	ExistingProviderKeys(ctx context.Context, keys []ProviderKey) ([]ProviderKey, error)
	// InsertEntry writes an entry and its postings atomically, isolated from
	// the rest of the batch: a failure leaves no partial rows behind and the
	// transaction usable.
	InsertEntry(ctx context.Context, entry *ledger.JournalEntry) error
	Commit() error
	Rollback() error
}

// ProviderKey is the deduplication key of a posting.
type ProviderKey struct {
	ProviderTxnID string
	AccountID     ledger.AccountID
}

// Balance is the running total of one chart account.
type Balance struct {
	AccountID     ledger.AccountID
	Name          string
	Type          ledger.AccountType
	Currency      string
	IsPlaceholder bool
	Active        bool
	BalanceMinor  int64
	Postings      int
	// ReportedMinor is the most recent balance the provider stated, if any.
	ReportedMinor *int64
}

type ListFilter struct {
	AccountID *ledger.AccountID // includes sub-accounts
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
}

// EntryError is a single entry that could not be written.
type EntryError struct {
	EntryID uuid.UUID
	Message string
}

func (e EntryError) String() string {
	return e.EntryID.String() + ": " + e.Message
}

type PostResult struct {
	TotalTransactions     int
	UniqueTransactions    int
	DuplicateTransactions int
	EntriesAttempted      int
	EntriesCreated        int
	TransferPairsCreated  int
	EntryErrors           []EntryError
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// SeedChart makes sure every account in chart exists. It returns how many
// were newly created.
func (s *Service) SeedChart(ctx context.Context, chart *ledger.Chart) (int, error) {
	return s.repo.SeedAccounts(ctx, chart.Accounts())
}

func (s *Service) Accounts(ctx context.Context) ([]*ledger.ChartAccount, error) {
	return s.repo.ListAccounts(ctx)
}

// Balances returns every account's balance with placeholder accounts rolled
// up from their descendants.
func (s *Service) Balances(ctx context.Context) ([]Balance, error) {
	balances, err := s.repo.Balances(ctx)
	if err != nil {
		return nil, err
	}

	return Rollup(balances), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ledger.JournalEntry, error) {
	return s.repo.GetEntry(ctx, id)
}

func (s *Service) ListEntries(ctx context.Context, filter ListFilter) ([]*ledger.JournalEntry, error) {
	return s.repo.ListEntries(ctx, filter)
}

func (s *Service) Unbalanced(ctx context.Context) ([]uuid.UUID, error) {
	return s.repo.UnbalancedEntries(ctx)
}

// Post journals a detected batch inside one transaction. Transactions whose
// provider id is already posted, or repeated within the batch, are counted as
// duplicates and skipped. Transactions without a provider id are always new.
//
// A failing entry is recorded in EntryErrors and the rest of the batch still
// commits; only a failure of the outer transaction is returned as an error.
func (s *Service) Post(ctx context.Context, batch *transfer.Result) (*PostResult, error) {
	log := logger.FromContext(ctx)
	res := &PostResult{TotalTransactions: 2*len(batch.Pairs) + len(batch.NonTransfers)}

	if res.TotalTransactions == 0 {
		return res, nil
	}

	itx, err := s.repo.BeginImport(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	existing, err := itx.ExistingProviderKeys(ctx, providerKeys(batch))
	if err != nil {
		return nil, fmt.Errorf("find existing postings: %w", err)
	}

	d := newDeduper(existing)
	now := s.now().UTC()

	type pending struct {
		entry *ledger.JournalEntry
		pair  bool
	}

	var entries []pending

	for _, p := range batch.Pairs {
		fromNew, toNew := d.fresh(p.From), d.fresh(p.To)

		// A leg whose partner was posted by an earlier run stands alone
		// against Equity:Transfers.
		switch {
		case fromNew && toNew:
			entries = append(entries, pending{pairEntry(p, now), true})
		case fromNew:
			entries = append(entries, pending{singleEntry(p.From, ledger.AccountTransfers, now), false})
		case toNew:
			entries = append(entries, pending{singleEntry(p.To, ledger.AccountTransfers, now), false})
		}
	}

	for _, t := range batch.NonTransfers {
		if d.fresh(t) {
			entries = append(entries, pending{singleEntry(t, CounterAccount(t), now), false})
		}
	}

	res.DuplicateTransactions = d.duplicates
	res.UniqueTransactions = res.TotalTransactions - d.duplicates

	for _, pe := range entries {
		e := pe.entry
		res.EntriesAttempted++

		err := e.Validate()
		if err == nil {
			err = itx.InsertEntry(ctx, e)
		}

		if err != nil {
			log.Warn().Str("entry", e.ID.String()).Err(err).Msg("entry not written")
			res.EntryErrors = append(res.EntryErrors, EntryError{EntryID: e.ID, Message: err.Error()})

			continue
		}

		res.EntriesCreated++

		if pe.pair {
			res.TransferPairsCreated++
		}
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	log.Info().
		Int("total", res.TotalTransactions).
		Int("duplicates", res.DuplicateTransactions).
		Int("created", res.EntriesCreated).
		Int("errors", len(res.EntryErrors)).
		Msg("journal posted")

	return res, nil
}

func providerKeys(batch *transfer.Result) []ProviderKey {
	var keys []ProviderKey

	add := func(t *transaction.Canonical) {
		if k, ok := keyOf(t); ok {
			keys = append(keys, k)
		}
	}

	for _, p := range batch.Pairs {
		add(p.From)
		add(p.To)
	}

	for _, t := range batch.NonTransfers {
		add(t)
	}

	return keys
}

func keyOf(t *transaction.Canonical) (ProviderKey, bool) {
	if t.ProviderTxnID == nil || *t.ProviderTxnID == "" {
		return ProviderKey{}, false
	}

	return ProviderKey{ProviderTxnID: *t.ProviderTxnID, AccountID: t.ChartAccountID}, true
}

type deduper struct {
	seen       map[ProviderKey]bool
	duplicates int
}

func newDeduper(existing []ProviderKey) *deduper {
	d := &deduper{seen: make(map[ProviderKey]bool, len(existing))}
	for _, k := range existing {
		d.seen[k] = true
	}

	return d
}

// fresh reports whether t should be journaled, remembering its key.
func (d *deduper) fresh(t *transaction.Canonical) bool {
	k, ok := keyOf(t)
	if !ok {
		return true
	}

	if d.seen[k] {
		d.duplicates++
		return false
	}

	d.seen[k] = true

	return true
}
