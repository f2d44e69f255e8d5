package ledger

// Well-known accounts the journal posts to outside of user-configured asset accounts.
var (
	AccountTransfers       = MustAccountID("Equity:Transfers")
	AccountValuations      = MustAccountID("Equity:Valuations")
	AccountOpeningBalances = MustAccountID("Equity:Opening Balances")
	AccountUncategorized   = MustAccountID("Expenses:Uncategorized")
	AccountRefunds         = MustAccountID("Income:Refunds")
	AccountSalary          = MustAccountID("Income:Salary")
	AccountInterest        = MustAccountID("Income:Interest")
)

var staticLeaves = []string{
	"Equity:Transfers",
	"Equity:Valuations",
	"Equity:Opening Balances",
	"Income:Salary",
	"Income:Interest",
	"Income:Refunds",
	"Income:Other",
	"Expenses:Uncategorized",
	"Expenses:Groceries",
	"Expenses:Eating Out",
	"Expenses:Transport",
	"Expenses:Bills",
	"Expenses:Shopping",
	"Expenses:Entertainment",
	"Expenses:Travel",
	"Expenses:Health",
	"Expenses:Subscriptions",
	"Expenses:Housing",
	"Expenses:Cash",
	"Expenses:Fees",
	"Expenses:Gifts",
	"Expenses:Personal Care",
	"Expenses:Charity",
}

// StaticAccounts returns the fixed part of the chart: the five roots and the
// income, expense and equity leaves every ledger gets.
func StaticAccounts(currency string) []*ChartAccount {
	out := make([]*ChartAccount, 0, len(rootTypes)+len(staticLeaves))

	for root := range rootTypes {
		out = append(out, placeholder(AccountID(root), currency))
	}

	for _, s := range staticLeaves {
		out = append(out, Leaf(MustAccountID(s), "", currency, true))
	}

	return out
}
