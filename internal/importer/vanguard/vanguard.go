package vanguard

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/normalize"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

// DefaultColumns is the header layout of a Vanguard cash statement export.
var DefaultColumns = config.Columns{
	Date:        "Date",
	Description: "Details",
	Amount:      "Amount",
	Balance:     "Balance",
}

var (
	stripCurrency = strings.NewReplacer("£", "", "€", "", "$", "").Replace

	cashMovement = regexp.MustCompile(`(?i)\b(deposit|withdraw|withdrawal|transfer)`)
	tradeOrYield = regexp.MustCompile(`(?i)\b(bought|buy|sold|sell|interest)\b`)
)

// Parser reads Vanguard cash statements (CSV) and valuation statements (PDF).
type Parser struct {
	extractor TextExtractor
}

func NewParser(extractor TextExtractor) *Parser {
	return &Parser{extractor: extractor}
}

func (p *Parser) Provider() importer.Provider { return importer.ProviderVanguard }

func (p *Parser) Parse(ctx context.Context, src importer.Source) (*importer.Result, error) {
	if err := importer.CheckAccount(src, importer.ProviderVanguard); err != nil {
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(src.Path), ".pdf") {
		return p.parseValuation(ctx, src)
	}

	return parseCash(src)
}

// parseCash keeps only the cash movements of a statement: deposits,
// withdrawals and transfers. Trades and interest stay inside the portfolio and
// are tracked through valuations instead.
func parseCash(src importer.Source) (*importer.Result, error) {
	rows, err := importer.ReadCSVFile(src.Path, ',')
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty file", importer.ErrInvalidStatement)
	}

	cols := importer.ResolveColumns(DefaultColumns, src.Preset)
	header := importer.NewHeader(rows[0])

	if err := header.Require(cols.Date, cols.Description, cols.Amount); err != nil {
		return nil, err
	}

	dateIdx := header.Index(cols.Date)
	descIdx := header.Index(cols.Description)
	amountIdx := header.Index(cols.Amount)
	balanceIdx := header.Index(cols.Balance)

	res := &importer.Result{}

	for i, row := range rows[1:] {
		line := i + 2

		narrative := importer.Cell(row, descIdx)
		if !IsCashMovement(narrative) {
			res.Add(importer.RowSkipped(line, "not a cash movement"))
			continue
		}

		date := importer.Cell(row, dateIdx)

		postedAt, err := normalize.ParseLocalDateTime(date, "")
		if err != nil {
			res.Add(importer.RowSkipped(line, err.Error()))
			continue
		}

		rawAmount := importer.Cell(row, amountIdx)

		amount, err := normalize.ParseAmountMinor(stripCurrency(rawAmount))
		if err != nil {
			res.Add(importer.RowSkipped(line, err.Error()))
			continue
		}

		txn := &transaction.Parsed{
			ChartAccountID:   src.Account.ID,
			PostedAt:         postedAt,
			AmountMinor:      amount,
			Currency:         importer.Currency("", src),
			RawDescription:   narrative,
			ProviderCategory: new(transaction.CategoryTransfer),
			ProviderTxnID:    new(importer.SyntheticID("vg-", normalize.FormatISO(postedAt), narrative, rawAmount)),
			SourceFile:       src.Path,
		}

		if s := importer.Cell(row, balanceIdx); s != "" {
			if bal, err := normalize.ParseAmountMinor(stripCurrency(s)); err == nil {
				txn.BalanceMinor = &bal
			}
		}

		res.Add(importer.RowParsed(line, txn))
	}

	return res, nil
}

// IsCashMovement reports whether a statement narrative describes money moving
// in or out of the account rather than a trade or yield.
func IsCashMovement(narrative string) bool {
	return cashMovement.MatchString(narrative) && !tradeOrYield.MatchString(narrative)
}
