package monzo

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/normalize"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

// DefaultColumns is the header layout of a Monzo CSV export.
var DefaultColumns = config.Columns{
	ID:           "Transaction ID",
	Date:         "Date",
	Time:         "Time",
	Amount:       "Amount",
	Currency:     "Currency",
	Counterparty: "Name",
	Description:  "Description",
	Category:     "Category",
	Balance:      "Balance",
}

// Parser reads Monzo CSV exports.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Provider() importer.Provider { return importer.ProviderMonzo }

func (p *Parser) Parse(_ context.Context, src importer.Source) (*importer.Result, error) {
	if err := importer.CheckAccount(src, importer.ProviderMonzo); err != nil {
		return nil, err
	}

	rows, err := importer.ReadCSVFile(src.Path, ',')
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty file", importer.ErrInvalidStatement)
	}

	cols := importer.ResolveColumns(DefaultColumns, src.Preset)
	header := importer.NewHeader(rows[0])

	if err := header.Require(cols.Date, cols.Description, cols.Amount, cols.ID); err != nil {
		return nil, err
	}

	m := mapping{
		id:           header.Index(cols.ID),
		date:         header.Index(cols.Date),
		time:         header.Index(cols.Time),
		amount:       header.Index(cols.Amount),
		currency:     header.Index(cols.Currency),
		counterparty: header.Index(cols.Counterparty),
		description:  header.Index(cols.Description),
		category:     header.Index(cols.Category),
		balance:      header.Index(cols.Balance),
	}

	res := &importer.Result{}

	for i, row := range rows[1:] {
		res.Add(m.parseRow(src, i+2, row))
	}

	return res, nil
}

type mapping struct {
	id, date, time, amount, currency, counterparty, description, category, balance int
}

func (m mapping) parseRow(src importer.Source, line int, row []string) importer.RowOutcome {
	date := importer.Cell(row, m.date)
	if date == "" {
		return importer.RowSkipped(line, "missing date")
	}

	postedAt, err := normalize.ParseLocalDateTime(date, importer.Cell(row, m.time))
	if err != nil {
		return importer.RowSkipped(line, err.Error())
	}

	amount, err := normalize.ParseAmountMinor(importer.Cell(row, m.amount))
	if err != nil {
		return importer.RowSkipped(line, err.Error())
	}

	counterparty := importer.OptionalCell(row, m.counterparty)

	desc := importer.Cell(row, m.description)
	if desc == "" && counterparty != nil {
		desc = *counterparty
	}

	if desc == "" {
		return importer.RowSkipped(line, "missing description")
	}

	txn := &transaction.Parsed{
		ChartAccountID:   src.Account.ID,
		PostedAt:         postedAt,
		AmountMinor:      amount,
		Currency:         importer.Currency(importer.Cell(row, m.currency), src),
		RawDescription:   desc,
		Counterparty:     counterparty,
		ProviderCategory: category(importer.Cell(row, m.category)),
		ProviderTxnID:    importer.OptionalCell(row, m.id),
		SourceFile:       src.Path,
	}

	if s := importer.Cell(row, m.balance); s != "" {
		if bal, err := normalize.ParseAmountMinor(s); err == nil {
			txn.BalanceMinor = &bal
		}
	}

	return importer.RowParsed(line, txn)
}

// category maps Monzo's category names onto the shared vocabulary. Monzo
// files pot movements under "transfers".
func category(s string) *string {
	if s == "" {
		return nil
	}

	s = strings.ToLower(s)
	if s == "transfers" {
		s = transaction.CategoryTransfer
	}

	return &s
}
