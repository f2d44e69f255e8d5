package vanguard_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/importer/vanguard"
)

func source(t *testing.T, name, content string) importer.Source {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return importer.Source{
		Path:     path,
		Provider: importer.ProviderVanguard,
		Account:  config.Account{ID: "Assets:Investments:Vanguard", Provider: "vanguard", Currency: "GBP"},
	}
}

func TestIsCashMovement(t *testing.T) {
	type testCase struct {
		narrative string
		want      bool
	}

	tests := []testCase{
		{narrative: "Deposit via Bank Transfer", want: true},
		{narrative: "Withdrawal to bank account", want: true},
		{narrative: "Regular Deposit", want: true},
		{narrative: "Transfer In", want: true},
		{narrative: "Bought 3 LifeStrategy 80% Equity Fund", want: false},
		{narrative: "Sold 1 FTSE Global All Cap", want: false},
		{narrative: "Cash Account Interest", want: false},
		{narrative: "Account Fee", want: false},
		{narrative: "Transfer of interest", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.narrative, func(t *testing.T) {
			assert.Equal(t, tt.want, vanguard.IsCashMovement(tt.narrative))
		})
	}
}

func TestParser_CashStatement(t *testing.T) {
	src := source(t, "cash.csv", `Date,Details,Amount,Balance
02/01/2024,Deposit via Bank Transfer,500.00,500.00
03/01/2024,Bought 3 LifeStrategy 80% Equity Fund,-499.20,0.80
15/01/2024,Cash Account Interest,0.10,0.90
20/01/2024,Withdrawal to bank account,"-£1,000.00",0.90
`)

	p := vanguard.NewParser(nil)

	res, err := p.Parse(context.Background(), src)
	require.NoError(t, err)

	txs := res.Transactions()
	require.Len(t, txs, 2)
	assert.Len(t, res.SkippedRows(), 2)

	assert.Equal(t, int64(50000), txs[0].AmountMinor)
	assert.Equal(t, "transfer", *txs[0].ProviderCategory)
	assert.Equal(t, int64(50000), *txs[0].BalanceMinor)
	assert.True(t, strings.HasPrefix(*txs[0].ProviderTxnID, "vg-"))
	assert.Len(t, *txs[0].ProviderTxnID, len("vg-")+16)

	assert.Equal(t, int64(-100000), txs[1].AmountMinor)
	assert.Equal(t, "GBP", txs[1].Currency)

	again, err := p.Parse(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, *txs[0].ProviderTxnID, *again.Transactions()[0].ProviderTxnID)
}

func TestParser_MissingColumns(t *testing.T) {
	src := source(t, "cash.csv", "Date,Amount\n02/01/2024,1.00\n")

	_, err := vanguard.NewParser(nil).Parse(context.Background(), src)

	var missing *importer.MissingColumnsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"Details"}, missing.Columns)
}

type fakeExtractor struct {
	text string
	err  error
}

func (f fakeExtractor) Extract(context.Context, string) (string, error) { return f.text, f.err }

func TestParser_Valuation(t *testing.T) {
	src := source(t, "valuation.pdf", "%PDF")

	text := `
        Vanguard Investor                         Quarterly Statement
        Valuation date: 31 March 2024

        Stocks & Shares ISA
        Total portfolio value                     £12,345.67
`

	res, err := vanguard.NewParser(fakeExtractor{text: text}).Parse(context.Background(), src)
	require.NoError(t, err)

	txs := res.Transactions()
	require.Len(t, txs, 1)

	tx := txs[0]
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), tx.PostedAt)
	assert.Equal(t, int64(0), tx.AmountMinor)
	assert.Equal(t, int64(1234567), *tx.BalanceMinor)
	assert.Equal(t, vanguard.CategoryValuation, *tx.ProviderCategory)
	assert.Equal(t, "vg-valuation-2024-03-31", *tx.ProviderTxnID)
}

func TestParseValuation(t *testing.T) {
	type testCase struct {
		name      string
		text      string
		wantDate  time.Time
		wantTotal int64
		wantErr   bool
	}

	tests := []testCase{
		{
			name:      "NumericDate",
			text:      "Statement date 05/04/2024\nTotal value: 980.10",
			wantDate:  time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC),
			wantTotal: 98010,
		},
		{
			name:      "ShortMonth",
			text:      "As at 1 Jan 2025   Total account value £1,000",
			wantDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			wantTotal: 100000,
		},
		{
			name:    "NoDate",
			text:    "Total value 1.00",
			wantErr: true,
		},
		{
			name:    "NoTotal",
			text:    "Valuation date: 31 March 2024",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, total, err := vanguard.ParseValuation(tt.text)
			if tt.wantErr {
				assert.ErrorIs(t, err, importer.ErrInvalidStatement)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantDate, date)
			assert.Equal(t, tt.wantTotal, total)
		})
	}
}

func TestParser_ValuationExtractorFails(t *testing.T) {
	src := source(t, "valuation.pdf", "%PDF")

	_, err := vanguard.NewParser(fakeExtractor{err: errors.New("exit status 1")}).Parse(context.Background(), src)
	assert.ErrorIs(t, err, importer.ErrInvalidStatement)
}
