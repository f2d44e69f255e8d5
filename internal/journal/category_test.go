package journal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/tally/internal/journal"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

func TestCounterAccount(t *testing.T) {
	type args struct {
		desc     string
		amount   int64
		category string
		provider string
	}

	type testCase struct {
		name string
		args args
		want ledger.AccountID
	}

	tests := []testCase{
		{name: "PotKeyword", args: args{desc: "Savings Pot", amount: -1000}, want: ledger.AccountTransfers},
		{name: "RoundUp", args: args{desc: "Round up", amount: -37}, want: ledger.AccountTransfers},
		{name: "TransferCategory", args: args{desc: "Someone", amount: 100, category: "transfer"}, want: ledger.AccountTransfers},
		{name: "Valuation", args: args{desc: "Portfolio valuation", category: "valuation"}, want: ledger.AccountValuations},
		{name: "ValuationByDescription", args: args{desc: "Portfolio valuation 2024-03-31", provider: "valuation"}, want: ledger.AccountValuations},
		{name: "ProviderTransferIgnored", args: args{desc: "Alex", amount: -50000, provider: "transfer"}, want: ledger.AccountUncategorized},
		{name: "CategoryTable", args: args{desc: "Corner shop", amount: -500, category: "Groceries"}, want: "Expenses:Groceries"},
		{name: "RefundInflow", args: args{desc: "Corner shop", amount: 500, category: "groceries"}, want: ledger.AccountRefunds},
		{name: "IncomeCategoryInflow", args: args{desc: "ACME LTD", amount: 250000, category: "salary"}, want: ledger.AccountSalary},
		{name: "MerchantPattern", args: args{desc: "NETFLIX.COM", amount: -1099}, want: "Expenses:Subscriptions"},
		{name: "MerchantSalary", args: args{desc: "ACME PAYROLL MAR", amount: 250000}, want: ledger.AccountSalary},
		{name: "UnknownCategoryFallsThrough", args: args{desc: "TESCO EXPRESS", amount: -300, category: "general"}, want: "Expenses:Groceries"},
		{name: "Default", args: args{desc: "Mystery", amount: -300}, want: ledger.AccountUncategorized},
		{name: "DefaultInflow", args: args{desc: "Mystery", amount: 300}, want: ledger.AccountUncategorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := canon(monzo, tt.args.amount, "", tt.args.desc, 1)
			if tt.args.category != "" {
				c.Category = &tt.args.category
			}

			if tt.args.provider != "" {
				c.ProviderCategory = &tt.args.provider
			}

			assert.Equal(t, tt.want, journal.CounterAccount(c))
		})
	}
}
