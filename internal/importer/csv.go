package importer

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/MrJamesThe3rd/tally/internal/config"
	enc "github.com/MrJamesThe3rd/tally/internal/encoding"
)

// ReadCSVFile reads every record of a CSV export, decoding it to UTF-8 first.
func ReadCSVFile(path string, comma rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open statement: %w", err)
	}
	defer f.Close()

	return ReadCSV(f, comma)
}

// ReadCSV reads every record from r. Bank exports are sloppy: rows have varying
// field counts and unbalanced quotes.
func ReadCSV(r io.Reader, comma rune) ([][]string, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	return rows, nil
}

// Header maps trimmed, lower-cased column names to their index in a row.
type Header map[string]int

func NewHeader(row []string) Header {
	h := make(Header, len(row))

	for i, cell := range row {
		name := normalizeColumn(cell)
		if _, dup := h[name]; name != "" && !dup {
			h[name] = i
		}
	}

	return h
}

// Index returns the position of column name, or -1 when absent or unconfigured.
func (h Header) Index(name string) int {
	if name == "" {
		return -1
	}

	if i, ok := h[normalizeColumn(name)]; ok {
		return i
	}

	return -1
}

// Has reports whether every named column is present.
func (h Header) Has(names ...string) bool {
	return len(h.Missing(names...)) == 0
}

// Missing lists the named columns absent from the header, in argument order.
// Empty names count as missing: a required field with no mapping cannot be read.
func (h Header) Missing(names ...string) []string {
	var out []string

	for _, n := range names {
		if h.Index(n) < 0 {
			out = append(out, n)
		}
	}

	return out
}

// Require fails with a MissingColumnsError listing absent columns.
func (h Header) Require(names ...string) error {
	if missing := h.Missing(names...); len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}

	return nil
}

// Cell safely gets a trimmed cell value from a row.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

// OptionalCell returns nil for an empty cell.
func OptionalCell(row []string, idx int) *string {
	if v := Cell(row, idx); v != "" {
		return &v
	}

	return nil
}

// ResolveColumns overlays the preset's configured column names on the
// provider defaults.
func ResolveColumns(defaults config.Columns, preset *config.BankPreset) config.Columns {
	if preset == nil {
		return defaults
	}

	c := defaults
	o := preset.Columns

	for _, f := range []struct {
		dst *string
		src string
	}{
		{&c.Date, o.Date},
		{&c.Time, o.Time},
		{&c.DateTime, o.DateTime},
		{&c.Description, o.Description},
		{&c.Amount, o.Amount},
		{&c.MoneyIn, o.MoneyIn},
		{&c.MoneyOut, o.MoneyOut},
		{&c.Counterparty, o.Counterparty},
		{&c.Category, o.Category},
		{&c.Balance, o.Balance},
		{&c.ID, o.ID},
		{&c.Currency, o.Currency},
	} {
		if f.src != "" {
			*f.dst = f.src
		}
	}

	return c
}

// SyntheticID derives a deterministic provider id for rows the provider
// exports without one.
func SyntheticID(prefix string, parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return prefix + hex.EncodeToString(sum[:])[:16]
}

// Currency picks the row currency, then the preset's, then the account's.
func Currency(rowValue string, src Source) string {
	switch {
	case rowValue != "":
		return strings.ToUpper(rowValue)
	case src.Preset != nil && src.Preset.Currency != "":
		return strings.ToUpper(src.Preset.Currency)
	}

	return strings.ToUpper(src.Account.Currency)
}

func normalizeColumn(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "\ufeff")))
}
