package cgd

import "github.com/MrJamesThe3rd/tally/internal/config"

const balanceColumn = "Saldo contabilístico após movimento"

// layout is one CGD export format. Card statements split debits and credits
// into MoneyOut/MoneyIn; account statements carry one signed Amount column.
type layout struct {
	name string
	cols config.Columns
}

func (l layout) split() bool { return l.cols.Amount == "" }

func (l layout) required() []string {
	if l.split() {
		return []string{l.cols.Date, l.cols.Description, l.cols.MoneyOut, l.cols.MoneyIn}
	}

	return []string{l.cols.Date, l.cols.Description, l.cols.Amount}
}

// layouts are tried in order, the most specific first.
var layouts = []layout{
	{name: "cartão", cols: config.Columns{
		Date:        "Data",
		Description: "Descrição",
		MoneyOut:    "Débito",
		MoneyIn:     "Crédito",
	}},
	{name: "extrato", cols: config.Columns{
		Date:        "Data mov.",
		Description: "Descrição",
		Amount:      "Movimento",
		Balance:     balanceColumn,
	}},
	{name: "conta", cols: config.Columns{
		Date:        "Data mov.",
		Description: "Descrição",
		Amount:      "Montante",
		Balance:     balanceColumn,
	}},
}
