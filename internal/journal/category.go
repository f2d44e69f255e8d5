package journal

import (
	"regexp"
	"strings"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

var transferKeywords = regexp.MustCompile(`(?i)\b(pots?|round[- ]?ups?|savings|vault)\b`)

// categoryAccounts maps sanitized categories to counter accounts.
var categoryAccounts = map[string]ledger.AccountID{
	"groceries":     "Expenses:Groceries",
	"eating out":    "Expenses:Eating Out",
	"eating_out":    "Expenses:Eating Out",
	"restaurants":   "Expenses:Eating Out",
	"transport":     "Expenses:Transport",
	"bills":         "Expenses:Bills",
	"utilities":     "Expenses:Bills",
	"shopping":      "Expenses:Shopping",
	"entertainment": "Expenses:Entertainment",
	"travel":        "Expenses:Travel",
	"holidays":      "Expenses:Travel",
	"health":        "Expenses:Health",
	"subscriptions": "Expenses:Subscriptions",
	"housing":       "Expenses:Housing",
	"rent":          "Expenses:Housing",
	"cash":          "Expenses:Cash",
	"fees":          "Expenses:Fees",
	"charges":       "Expenses:Fees",
	"gifts":         "Expenses:Gifts",
	"personal care": "Expenses:Personal Care",
	"charity":       "Expenses:Charity",
	"salary":        ledger.AccountSalary,
	"income":        ledger.AccountSalary,
	"interest":      ledger.AccountInterest,
	"refund":        ledger.AccountRefunds,
	"refunds":       ledger.AccountRefunds,
	"valuation":     ledger.AccountValuations,
	"transfer":      ledger.AccountTransfers,
}

type merchantPattern struct {
	re      *regexp.Regexp
	account ledger.AccountID
}

// merchantPatterns route well-known merchants when no category is available.
var merchantPatterns = []merchantPattern{
	{regexp.MustCompile(`(?i)^portfolio valuation\b`), ledger.AccountValuations},
	{regexp.MustCompile(`(?i)\b(salary|payroll|sal[aá]rio|vencimento)\b`), ledger.AccountSalary},
	{regexp.MustCompile(`(?i)\b(interest|juros)\b`), ledger.AccountInterest},
	{regexp.MustCompile(`(?i)\b(tesco|sainsbury'?s?|lidl|aldi|waitrose|asda|morrisons|co-?op|pingo doce|continente|mercadona)\b`), "Expenses:Groceries"},
	{regexp.MustCompile(`(?i)\b(deliveroo|just eat|uber \*?eats|mcdonald'?s|pret|starbucks|nando'?s|costa)\b`), "Expenses:Eating Out"},
	{regexp.MustCompile(`(?i)\b(uber|tfl|trainline|bolt|national rail|cp|galp|bp|shell)\b`), "Expenses:Transport"},
	{regexp.MustCompile(`(?i)\b(netflix|spotify|disney\+?|apple\.com/bill|youtube premium|patreon)\b`), "Expenses:Subscriptions"},
	{regexp.MustCompile(`(?i)\b(amazon|amzn|ebay|ikea|argos)\b`), "Expenses:Shopping"},
	{regexp.MustCompile(`(?i)\b(british gas|octopus energy|thames water|edp|vodafone|council tax|ee limited)\b`), "Expenses:Bills"},
	{regexp.MustCompile(`(?i)\b(rent|renda)\b`), "Expenses:Housing"},
	{regexp.MustCompile(`(?i)\b(atm|cash withdrawal|levantamento)\b`), "Expenses:Cash"},
	{regexp.MustCompile(`(?i)\b(boots|superdrug|pharmacy|farm[aá]cia)\b`), "Expenses:Health"},
}

// CounterAccount picks the account a non-transfer posts against.
//
// Resolution order: transfer keywords in the description, then the exact
// category table, then merchant patterns, then Expenses:Uncategorized. An
// inflow carrying an expense category is a refund and goes to Income:Refunds.
func CounterAccount(t *transaction.Canonical) ledger.AccountID {
	if t.IsTransferCategory() ||
		transferKeywords.MatchString(t.CleanDescription) ||
		transferKeywords.MatchString(t.RawDescription) {
		return ledger.AccountTransfers
	}

	if t.Category != nil {
		if acc, ok := categoryAccounts[strings.ToLower(strings.TrimSpace(*t.Category))]; ok {
			if t.AmountMinor > 0 && acc.Type() == ledger.TypeExpense {
				return ledger.AccountRefunds
			}

			return acc
		}
	}

	for _, m := range merchantPatterns {
		if m.re.MatchString(t.CleanDescription) || m.re.MatchString(t.RawDescription) {
			return m.account
		}
	}

	return ledger.AccountUncategorized
}
