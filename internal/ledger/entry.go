package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrUnbalancedEntry = errors.New("unbalanced journal entry")

// JournalEntry is the header of one economic event in the ledger.
type JournalEntry struct {
	ID               uuid.UUID
	PostedAt         time.Time
	IsTransfer       bool
	Description      string
	RawDescription   string
	CleanDescription string
	Counterparty     *string
	SourceFile       string
	Postings         []*Posting
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Posting is one leg of a journal entry. AmountMinor is signed.
type Posting struct {
	ID                   uuid.UUID
	JournalEntryID       uuid.UUID
	AccountID            AccountID
	AmountMinor          int64
	Currency             string
	Memo                 string
	ProviderTxnID        *string
	ProviderBalanceMinor *int64
	CreatedAt            time.Time
}

// Validate checks the double-entry invariant: at least two postings summing to zero.
func (e *JournalEntry) Validate() error {
	if len(e.Postings) < 2 {
		return fmt.Errorf("%w: entry %s has %d postings", ErrUnbalancedEntry, e.ID, len(e.Postings))
	}

	var sum int64
	for _, p := range e.Postings {
		sum += p.AmountMinor
	}

	if sum != 0 {
		return fmt.Errorf("%w: entry %s sums to %d", ErrUnbalancedEntry, e.ID, sum)
	}

	return nil
}

// PostedDate is the calendar day of the entry, used for range queries.
func (e *JournalEntry) PostedDate() string {
	return e.PostedAt.Format(time.DateOnly)
}
