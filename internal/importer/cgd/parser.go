package cgd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/normalize"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

// CGD only issues euro accounts.
const currency = "EUR"

// Parser reads CGD bank CSV exports and produces signed transactions. The
// export format (conta, extrato, cartão) is recognised from its header row,
// which may sit below a few lines of account metadata. A "cgd" bank preset can
// rename any of the columns.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Provider() importer.Provider { return importer.ProviderCGD }

func (p *Parser) Parse(_ context.Context, src importer.Source) (*importer.Result, error) {
	if err := importer.CheckAccount(src, importer.ProviderCGD); err != nil {
		return nil, err
	}

	f, err := os.Open(src.Path)
	if err != nil {
		return nil, fmt.Errorf("open statement: %w", err)
	}
	defer f.Close()

	return p.ParseReader(f, src)
}

// ParseReader parses an export already opened by the caller.
func (p *Parser) ParseReader(r io.Reader, src importer.Source) (*importer.Result, error) {
	rows, err := importer.ReadCSV(r, ';')
	if err != nil {
		return nil, err
	}

	l, header, headerIdx, err := findHeader(rows, src.Preset)
	if err != nil {
		return nil, err
	}

	return parseRows(src, l, header, rows[headerIdx+1:], headerIdx+1), nil
}

// findHeader returns the first row that carries every column of some layout,
// with the preset applied. When no row does, the error lists what the closest
// layout was missing.
func findHeader(rows [][]string, preset *config.BankPreset) (layout, importer.Header, int, error) {
	candidates := make([]layout, len(layouts))
	for i, l := range layouts {
		candidates[i] = layout{name: l.name, cols: importer.ResolveColumns(l.cols, preset)}
	}

	var closest []string

	for rowIdx, row := range rows {
		header := importer.NewHeader(row)

		for _, l := range candidates {
			missing := header.Missing(l.required()...)
			if len(missing) == 0 {
				return l, header, rowIdx, nil
			}

			if closest == nil || len(missing) < len(closest) {
				closest = missing
			}
		}
	}

	if closest == nil {
		closest = candidates[len(candidates)-1].required()
	}

	return layout{}, nil, 0, &importer.MissingColumnsError{Columns: closest}
}

// parseRows turns the data rows below the header into outcomes. Line numbers
// are 1-based positions in the original file.
func parseRows(src importer.Source, l layout, header importer.Header, rows [][]string, headerRowNum int) *importer.Result {
	var (
		dateIdx    = header.Index(l.cols.Date)
		descIdx    = header.Index(l.cols.Description)
		balanceIdx = header.Index(l.cols.Balance)
	)

	res := &importer.Result{}
	seen := make(map[string]int)

	for i, row := range rows {
		line := headerRowNum + i + 1

		date, ok := parseDate(row, dateIdx)
		if !ok {
			res.Add(importer.RowSkipped(line, "no date"))
			continue
		}

		desc := importer.Cell(row, descIdx)
		if desc == "" {
			res.Add(importer.RowSkipped(line, "missing description"))
			continue
		}

		amount, ok := rowAmount(l, header, row)
		if !ok {
			res.Add(importer.RowSkipped(line, "no amount"))
			continue
		}

		txn := &transaction.Parsed{
			ChartAccountID: src.Account.ID,
			PostedAt:       date,
			AmountMinor:    amount,
			Currency:       currency,
			RawDescription: desc,
			SourceFile:     src.Path,
		}

		balance := importer.Cell(row, balanceIdx)
		if balance != "" {
			if cents, err := normalize.ParseEuropeanAmountMinor(balance); err == nil {
				txn.BalanceMinor = &cents
			}
		}

		// CGD exports carry no movement id. Identical rows on the same day are
		// told apart by their position among each other.
		key := date.Format(time.DateOnly) + "|" + desc + "|" + strconv.FormatInt(amount, 10) + "|" + balance
		seen[key]++
		txn.ProviderTxnID = new(importer.SyntheticID("cgd-", key, strconv.Itoa(seen[key])))

		res.Add(importer.RowParsed(line, txn))
	}

	return res
}

// parseDate tries to parse a date from the given cell index.
// Returns false for empty cells or unparseable values (footer rows, etc).
func parseDate(row []string, idx int) (time.Time, bool) {
	s := importer.Cell(row, idx)
	if s == "" {
		return time.Time{}, false
	}

	t, err := time.Parse("02-01-2006", s)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

func rowAmount(l layout, header importer.Header, row []string) (int64, bool) {
	if l.split() {
		return parseSplitAmount(row, header.Index(l.cols.MoneyOut), header.Index(l.cols.MoneyIn))
	}

	return parseSingleAmount(row, header.Index(l.cols.Amount))
}

// parseSingleAmount handles a single signed amount column.
func parseSingleAmount(row []string, idx int) (int64, bool) {
	cents, err := normalize.ParseEuropeanAmountMinor(importer.Cell(row, idx))
	if err != nil || cents == 0 {
		return 0, false
	}

	return cents, true
}

// parseSplitAmount handles separate debit/credit columns. Debits are outflows.
func parseSplitAmount(row []string, debitIdx, creditIdx int) (int64, bool) {
	if s := importer.Cell(row, debitIdx); s != "" {
		cents, err := normalize.ParseEuropeanAmountMinor(s)
		if err == nil && cents != 0 {
			return -abs(cents), true
		}
	}

	if s := importer.Cell(row, creditIdx); s != "" {
		cents, err := normalize.ParseEuropeanAmountMinor(s)
		if err == nil && cents != 0 {
			return abs(cents), true
		}
	}

	return 0, false
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}

	return n
}
