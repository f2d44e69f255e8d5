package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

func TestParseAccountID(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		want    ledger.AccountID
		wantErr bool
	}

	tests := []testCase{
		{name: "Leaf", input: "Assets:Personal:Monzo", want: "Assets:Personal:Monzo"},
		{name: "Root", input: "Expenses", want: "Expenses"},
		{name: "Trimmed", input: "  Income:Salary ", want: "Income:Salary"},
		{name: "Empty", input: "", wantErr: true},
		{name: "UnknownRoot", input: "Wallet:Cash", wantErr: true},
		{name: "EmptySegment", input: "Assets::Monzo", wantErr: true},
		{name: "PaddedSegment", input: "Assets: Monzo", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ledger.ParseAccountID(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ledger.ErrInvalidAccountID)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAccountID_Path(t *testing.T) {
	id := ledger.MustAccountID("Assets:Personal:Monzo")

	parent, ok := id.Parent()
	require.True(t, ok)
	assert.Equal(t, ledger.AccountID("Assets:Personal"), parent)
	assert.Equal(t, "Monzo", id.Name())
	assert.Equal(t, ledger.TypeAsset, id.Type())
	assert.Equal(t, []ledger.AccountID{"Assets", "Assets:Personal"}, id.Ancestors())

	_, ok = ledger.AccountID("Assets").Parent()
	assert.False(t, ok)
}

func TestBuildChart(t *testing.T) {
	chart, err := ledger.BuildChart("GBP", []*ledger.ChartAccount{
		ledger.Leaf(ledger.MustAccountID("Assets:Personal:Monzo"), "Monzo", "GBP", true),
		ledger.Leaf(ledger.MustAccountID("Liabilities:Cards:Amex"), "Amex", "GBP", false),
	})
	require.NoError(t, err)

	for _, a := range chart.Accounts() {
		if p, ok := a.ID.Parent(); ok {
			_, found := chart.Get(p)
			assert.True(t, found, "parent of %s", a.ID)
		}
	}

	personal, ok := chart.Get("Assets:Personal")
	require.True(t, ok)
	assert.True(t, personal.IsPlaceholder)

	monzo, ok := chart.Get("Assets:Personal:Monzo")
	require.True(t, ok)
	assert.False(t, monzo.IsPlaceholder)
	assert.Equal(t, ledger.TypeAsset, monzo.Type)

	amex, _ := chart.Get("Liabilities:Cards:Amex")
	assert.False(t, amex.Active)

	_, ok = chart.Get(ledger.AccountTransfers)
	assert.True(t, ok)

	_, err = chart.Resolve("Assets:Personal:Nope")
	assert.ErrorIs(t, err, ledger.ErrUnknownAccount)
}

func TestNewChart_MissingParent(t *testing.T) {
	_, err := ledger.NewChart([]*ledger.ChartAccount{
		ledger.Leaf(ledger.MustAccountID("Assets:Personal:Monzo"), "", "GBP", true),
	})
	assert.Error(t, err)
}
