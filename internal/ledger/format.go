package ledger

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMinor renders a minor-unit amount with its currency symbol, e.g. "-£25.50".
// Currency codes go-money does not know are printed as "12.34 XYZ".
func FormatMinor(amount int64, currency string) string {
	code := strings.ToUpper(currency)
	if money.GetCurrency(code) == nil {
		return decimal.New(amount, -2).StringFixed(2) + " " + code
	}

	return money.New(amount, code).Display()
}
