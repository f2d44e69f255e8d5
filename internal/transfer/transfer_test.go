package transfer_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/canonical"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/sanitize"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
	"github.com/MrJamesThe3rd/tally/internal/transfer"
)

const (
	monzo   = ledger.AccountID("Assets:Personal:Monzo")
	savings = ledger.AccountID("Assets:Personal:Savings")
	cgd     = ledger.AccountID("Assets:Personal:CGD")
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 12, 0, 0, 0, time.UTC)
}

func txn(account ledger.AccountID, amount int64, at time.Time, category string) *transaction.Canonical {
	c := &transaction.Canonical{
		Parsed: transaction.Parsed{ChartAccountID: account, AmountMinor: amount, PostedAt: at},
		ID:     uuid.New(),
	}

	if category != "" {
		c.Category = &category
	}

	return c
}

func TestDetect(t *testing.T) {
	type testCase struct {
		name        string
		txs         []*transaction.Canonical
		wantPairs   int
		wantNon     int
		wantMethods []transfer.Method
	}

	tests := []testCase{
		{
			name:        "OppositeAmountsAcrossAccounts",
			txs:         []*transaction.Canonical{txn(monzo, -50000, day(1), ""), txn(savings, 50000, day(3), "")},
			wantPairs:   1,
			wantMethods: []transfer.Method{transfer.MethodWindow},
		},
		{
			name:    "SameAccountNeverPairs",
			txs:     []*transaction.Canonical{txn(monzo, -50000, day(1), ""), txn(monzo, 50000, day(1), "")},
			wantNon: 2,
		},
		{
			name:    "BelowThreshold",
			txs:     []*transaction.Canonical{txn(monzo, -99, day(1), "transfer"), txn(savings, 99, day(1), "transfer")},
			wantNon: 2,
		},
		{
			name:      "ExactlyThreshold",
			txs:       []*transaction.Canonical{txn(monzo, -100, day(1), ""), txn(savings, 100, day(1), "")},
			wantPairs: 1,
		},
		{
			name:    "OutsideWindow",
			txs:     []*transaction.Canonical{txn(monzo, -50000, day(1), ""), txn(savings, 50000, day(7), "")},
			wantNon: 2,
		},
		{
			name:      "WindowIsCalendarDays",
			txs:       []*transaction.Canonical{txn(monzo, -50000, day(1).Add(-11*time.Hour), ""), txn(savings, 50000, day(6).Add(11*time.Hour), "")},
			wantPairs: 1,
		},
		{
			name:        "CategoryOverridesWindow",
			txs:         []*transaction.Canonical{txn(monzo, -2000, day(1), "transfer"), txn(savings, 2000, day(20), "")},
			wantPairs:   1,
			wantMethods: []transfer.Method{transfer.MethodCategory},
		},
		{
			name:      "CategoryCaseInsensitive",
			txs:       []*transaction.Canonical{txn(monzo, -2000, day(1), "groceries"), txn(savings, 2000, day(20), "Transfer")},
			wantPairs: 1,
		},
		{
			name:    "NoCategoryOutsideWindow",
			txs:     []*transaction.Canonical{txn(monzo, -2000, day(1), "groceries"), txn(savings, 2000, day(20), "")},
			wantNon: 2,
		},
		{
			name:    "SameSignNeverPairs",
			txs:     []*transaction.Canonical{txn(monzo, 5000, day(1), ""), txn(savings, 5000, day(1), "")},
			wantNon: 2,
		},
		{
			name: "EachLegUsedOnce",
			txs: []*transaction.Canonical{
				txn(monzo, -1000, day(1), ""),
				txn(savings, 1000, day(1), ""),
				txn(cgd, 1000, day(2), ""),
			},
			wantPairs: 1,
			wantNon:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := transfer.Detect(tt.txs)

			assert.Len(t, got.Pairs, tt.wantPairs)
			assert.Len(t, got.NonTransfers, tt.wantNon)

			for i, p := range got.Pairs {
				assert.Negative(t, p.From.AmountMinor)
				assert.Positive(t, p.To.AmountMinor)
				assert.NotEqual(t, p.From.ChartAccountID, p.To.ChartAccountID)

				if i < len(tt.wantMethods) {
					assert.Equal(t, tt.wantMethods[i], p.Method)
				}
			}
		})
	}
}

func TestDetect_FirstFitInDateOrder(t *testing.T) {
	out := txn(monzo, -1000, day(3), "")
	early := txn(savings, 1000, day(1), "")
	late := txn(cgd, 1000, day(3), "")

	got := transfer.Detect([]*transaction.Canonical{late, out, early})
	require.Len(t, got.Pairs, 1)

	assert.Same(t, out, got.Pairs[0].From)
	assert.Same(t, early, got.Pairs[0].To, "the earliest unmatched candidate wins")
	assert.Equal(t, day(1), got.Pairs[0].PostedAt())
	assert.Equal(t, []*transaction.Canonical{late}, got.NonTransfers)
}

func TestDetect_NonTransfersSorted(t *testing.T) {
	a := txn(monzo, -500, day(5), "")
	b := txn(monzo, -700, day(2), "")

	got := transfer.Detect([]*transaction.Canonical{a, b})
	assert.Equal(t, []*transaction.Canonical{b, a}, got.NonTransfers)
}

func TestNewDetector_Window(t *testing.T) {
	d := transfer.NewDetector(10)
	got := d.Detect([]*transaction.Canonical{txn(monzo, -50000, day(1), ""), txn(savings, 50000, day(9), "")})
	assert.Len(t, got.Pairs, 1)

	assert.Equal(t, transfer.DefaultWindowDays, transfer.NewDetector(0).WindowDays)
}

func TestDetect_ProviderTransferLabelKeepsWindow(t *testing.T) {
	rules, diags := sanitize.Compile(nil, true)
	require.Empty(t, diags)

	label := "transfer"
	parsed := []*transaction.Parsed{
		{ChartAccountID: monzo, AmountMinor: -50000, PostedAt: day(1), RawDescription: "Alex", ProviderCategory: &label},
		{ChartAccountID: cgd, AmountMinor: 50000, PostedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), RawDescription: "Bonus"},
	}

	canon := canonical.Canonicalize(context.Background(), parsed, rules)

	got := transfer.Detect(canon.Transactions)
	assert.Empty(t, got.Pairs)
	assert.Len(t, got.NonTransfers, 2)
}
