package transaction

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

// CategoryTransfer marks a movement between the owner's own accounts.
const CategoryTransfer = "transfer"

// Parsed is one statement row after normalization. It lives only for the
// duration of an import run.
type Parsed struct {
	ChartAccountID   ledger.AccountID
	PostedAt         time.Time
	AmountMinor      int64 // negative = outflow
	Currency         string
	RawDescription   string
	Counterparty     *string
	ProviderCategory *string
	ProviderTxnID    *string
	BalanceMinor     *int64
	SourceFile       string
}

// Canonical is a Parsed transaction with a local id and sanitized description.
type Canonical struct {
	Parsed

	ID               uuid.UUID
	CleanDescription string
	Category         *string
}

// IsTransferCategory reports whether the sanitized category marks a transfer.
func (c *Canonical) IsTransferCategory() bool {
	return c.Category != nil && strings.EqualFold(*c.Category, CategoryTransfer)
}

// Description prefers the clean description over the raw one.
func (c *Canonical) Description() string {
	if c.CleanDescription != "" {
		return c.CleanDescription
	}

	return c.RawDescription
}

// Abs returns the absolute amount in minor units.
func (p *Parsed) Abs() int64 {
	if p.AmountMinor < 0 {
		return -p.AmountMinor
	}

	return p.AmountMinor
}
