// Package generic parses CSV exports described entirely by a bank preset.
package generic

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/normalize"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Provider is empty: the generic parser serves any provider with a preset.
func (p *Parser) Provider() importer.Provider { return "" }

func (p *Parser) Parse(_ context.Context, src importer.Source) (*importer.Result, error) {
	if src.Preset == nil {
		return nil, fmt.Errorf("%w: %s", importer.ErrMissingBankPreset, src.Provider)
	}

	if err := importer.CheckAccount(src, src.Provider); err != nil {
		return nil, err
	}

	comma := ','
	if src.Preset.Delimiter != "" {
		comma, _ = utf8.DecodeRuneInString(src.Preset.Delimiter)
	}

	rows, err := importer.ReadCSVFile(src.Path, comma)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty file", importer.ErrInvalidStatement)
	}

	cols := src.Preset.Columns
	header := importer.NewHeader(rows[0])

	if err := requireColumns(header, cols); err != nil {
		return nil, err
	}

	r := reader{
		src:          src,
		decimalComma: src.Preset.DecimalComma,
		id:           header.Index(cols.ID),
		date:         header.Index(cols.Date),
		time:         header.Index(cols.Time),
		dateTime:     header.Index(cols.DateTime),
		description:  header.Index(cols.Description),
		amount:       header.Index(cols.Amount),
		moneyIn:      header.Index(cols.MoneyIn),
		moneyOut:     header.Index(cols.MoneyOut),
		counterparty: header.Index(cols.Counterparty),
		category:     header.Index(cols.Category),
		balance:      header.Index(cols.Balance),
		currency:     header.Index(cols.Currency),
	}

	res := &importer.Result{}

	for i, row := range rows[1:] {
		res.Add(r.parseRow(i+2, row))
	}

	return res, nil
}

type reader struct {
	src          importer.Source
	decimalComma bool

	id, date, time, dateTime, description, amount, moneyIn, moneyOut int
	counterparty, category, balance, currency                         int
}

func (r reader) parseRow(line int, row []string) importer.RowOutcome {
	postedAt, err := r.postedAt(row)
	if err != nil {
		return importer.RowSkipped(line, err.Error())
	}

	amount, ok, err := r.amountOf(row)
	if err != nil {
		return importer.RowSkipped(line, err.Error())
	}

	if !ok {
		return importer.RowSkipped(line, "missing amount")
	}

	desc := importer.Cell(row, r.description)
	if desc == "" {
		return importer.RowSkipped(line, "missing description")
	}

	txn := &transaction.Parsed{
		ChartAccountID: r.src.Account.ID,
		PostedAt:       postedAt,
		AmountMinor:    amount,
		Currency:       importer.Currency(importer.Cell(row, r.currency), r.src),
		RawDescription: desc,
		Counterparty:   importer.OptionalCell(row, r.counterparty),
		ProviderTxnID:  importer.OptionalCell(row, r.id),
		SourceFile:     r.src.Path,
	}

	if c := importer.Cell(row, r.category); c != "" {
		txn.ProviderCategory = new(strings.ToLower(c))
	}

	if s := importer.Cell(row, r.balance); s != "" {
		if bal, err := r.parseAmount(s); err == nil {
			txn.BalanceMinor = &bal
		}
	}

	return importer.RowParsed(line, txn)
}

func (r reader) postedAt(row []string) (time.Time, error) {
	date := importer.Cell(row, r.date)

	if r.dateTime >= 0 {
		return normalize.ParseCombinedDateTime(importer.Cell(row, r.dateTime), date)
	}

	return normalize.ParseLocalDateTime(date, importer.Cell(row, r.time))
}

// amountOf reads a signed amount column or, failing that, a money-in/money-out
// pair. ok is false when every amount cell is empty.
func (r reader) amountOf(row []string) (int64, bool, error) {
	if s := importer.Cell(row, r.amount); s != "" {
		v, err := r.parseAmount(s)
		return v, err == nil, err
	}

	if s := importer.Cell(row, r.moneyOut); s != "" {
		v, err := r.parseAmount(s)
		if v > 0 {
			v = -v
		}

		return v, err == nil, err
	}

	if s := importer.Cell(row, r.moneyIn); s != "" {
		v, err := r.parseAmount(s)
		if v < 0 {
			v = -v
		}

		return v, err == nil, err
	}

	return 0, false, nil
}

func (r reader) parseAmount(s string) (int64, error) {
	if r.decimalComma {
		return normalize.ParseEuropeanAmountMinor(s)
	}

	return normalize.ParseAmountMinor(s)
}

// requireColumns checks the preset maps the mandatory fields and that the
// header carries them. Unmapped fields are reported by their logical name.
func requireColumns(header importer.Header, cols config.Columns) error {
	var missing []string

	check := func(name, label string) {
		switch {
		case name == "":
			missing = append(missing, label)
		case header.Index(name) < 0:
			missing = append(missing, name)
		}
	}

	check(cols.Description, "description")

	if cols.DateTime != "" {
		check(cols.DateTime, "datetime")
	} else {
		check(cols.Date, "date")
	}

	switch {
	case cols.Amount != "":
		check(cols.Amount, "amount")
	case cols.MoneyIn != "" || cols.MoneyOut != "":
		check(cols.MoneyIn, "money_in")
		check(cols.MoneyOut, "money_out")
	default:
		missing = append(missing, "amount")
	}

	if len(missing) > 0 {
		return &importer.MissingColumnsError{Columns: missing}
	}

	return nil
}
