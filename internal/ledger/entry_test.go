package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

func TestJournalEntry_Validate(t *testing.T) {
	type testCase struct {
		name    string
		amounts []int64
		wantErr bool
	}

	tests := []testCase{
		{name: "Balanced", amounts: []int64{-2550, 2550}},
		{name: "ThreeLegs", amounts: []int64{-1000, 400, 600}},
		{name: "Unbalanced", amounts: []int64{-1000, 999}, wantErr: true},
		{name: "SingleLeg", amounts: []int64{0}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &ledger.JournalEntry{}
			for _, a := range tt.amounts {
				e.Postings = append(e.Postings, &ledger.Posting{AmountMinor: a})
			}

			err := e.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ledger.ErrUnbalancedEntry)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestFormatMinor(t *testing.T) {
	assert.Equal(t, "-£25.50", ledger.FormatMinor(-2550, "GBP"))
	assert.Equal(t, "€1,234.56", ledger.FormatMinor(123456, "eur"))
	assert.Equal(t, "12.34 XYZ", ledger.FormatMinor(1234, "XYZ"))
}
