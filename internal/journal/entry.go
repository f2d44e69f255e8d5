package journal

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
	"github.com/MrJamesThe3rd/tally/internal/transfer"
)

// pairEntry journals both legs of a transfer as one entry, dated at the
// earlier leg and described by the outgoing one.
func pairEntry(p transfer.Pair, now time.Time) *ledger.JournalEntry {
	e := header(p.From, now)
	e.PostedAt = p.PostedAt()
	e.IsTransfer = true
	e.Postings = []*ledger.Posting{
		legPosting(e.ID, p.From, now),
		legPosting(e.ID, p.To, now),
	}

	return e
}

// singleEntry journals t against counter.
func singleEntry(t *transaction.Canonical, counter ledger.AccountID, now time.Time) *ledger.JournalEntry {
	e := header(t, now)
	e.IsTransfer = counter == ledger.AccountTransfers

	memo := ""
	if t.Category != nil {
		memo = *t.Category
	}

	e.Postings = []*ledger.Posting{
		legPosting(e.ID, t, now),
		{
			ID:             uuid.New(),
			JournalEntryID: e.ID,
			AccountID:      counter,
			AmountMinor:    -t.AmountMinor,
			Currency:       t.Currency,
			Memo:           memo,
			CreatedAt:      now,
		},
	}

	return e
}

func header(t *transaction.Canonical, now time.Time) *ledger.JournalEntry {
	return &ledger.JournalEntry{
		ID:               uuid.New(),
		PostedAt:         t.PostedAt,
		Description:      t.Description(),
		RawDescription:   t.RawDescription,
		CleanDescription: t.CleanDescription,
		Counterparty:     t.Counterparty,
		SourceFile:       t.SourceFile,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// legPosting is the asset-side posting carrying the provider's own data.
func legPosting(entryID uuid.UUID, t *transaction.Canonical, now time.Time) *ledger.Posting {
	return &ledger.Posting{
		ID:                   uuid.New(),
		JournalEntryID:       entryID,
		AccountID:            t.ChartAccountID,
		AmountMinor:          t.AmountMinor,
		Currency:             t.Currency,
		Memo:                 t.RawDescription,
		ProviderTxnID:        t.ProviderTxnID,
		ProviderBalanceMinor: t.BalanceMinor,
		CreatedAt:            now,
	}
}
