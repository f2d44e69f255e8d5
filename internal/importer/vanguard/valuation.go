package vanguard

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/normalize"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

// CategoryValuation marks a zero-amount balance checkpoint.
const CategoryValuation = "valuation"

// TextExtractor turns a document into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// PdfToText shells out to poppler's pdftotext.
type PdfToText struct {
	Path string
}

func (p PdfToText) Extract(ctx context.Context, path string) (string, error) {
	bin := p.Path
	if bin == "" {
		bin = "pdftotext"
	}

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, bin, "-layout", path, "-")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

var (
	statementDate = regexp.MustCompile(`(?i)(?:valuation date|statement date|as at|as of)\s*:?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{4}|\d{1,2}\s+[A-Za-z]{3,9}\s+\d{4})`)
	totalValue    = regexp.MustCompile(`(?i)total\s+(?:portfolio\s+|account\s+)?value\s*:?\s*[£€$]?\s*(-?[\d,]+(?:\.\d{1,2})?)`)
)

var longDateLayouts = []string{"2 January 2006", "2 Jan 2006"}

func (p *Parser) parseValuation(ctx context.Context, src importer.Source) (*importer.Result, error) {
	if p.extractor == nil {
		return nil, fmt.Errorf("%w: no text extractor configured", importer.ErrInvalidStatement)
	}

	text, err := p.extractor.Extract(ctx, src.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", importer.ErrInvalidStatement, err)
	}

	date, total, err := ParseValuation(text)
	if err != nil {
		return nil, err
	}

	txn := &transaction.Parsed{
		ChartAccountID:   src.Account.ID,
		PostedAt:         date,
		Currency:         importer.Currency("", src),
		RawDescription:   "Portfolio valuation " + date.Format(time.DateOnly),
		ProviderCategory: new(CategoryValuation),
		ProviderTxnID:    new("vg-valuation-" + date.Format(time.DateOnly)),
		BalanceMinor:     &total,
		SourceFile:       src.Path,
	}

	return &importer.Result{Rows: []importer.RowOutcome{importer.RowParsed(1, txn)}}, nil
}

// ParseValuation extracts the statement date and total portfolio value from
// the text of a valuation statement.
func ParseValuation(text string) (time.Time, int64, error) {
	m := statementDate.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, 0, fmt.Errorf("%w: no statement date", importer.ErrInvalidStatement)
	}

	date, err := parseStatementDate(m[1])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("%w: %w", importer.ErrInvalidStatement, err)
	}

	v := totalValue.FindStringSubmatch(text)
	if v == nil {
		return time.Time{}, 0, fmt.Errorf("%w: no total value", importer.ErrInvalidStatement)
	}

	total, err := normalize.ParseAmountMinor(v[1])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("%w: %w", importer.ErrInvalidStatement, err)
	}

	return date, total, nil
}

func parseStatementDate(s string) (time.Time, error) {
	s = strings.Join(strings.Fields(s), " ")
	for _, layout := range longDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return normalize.ParseLocalDateTime(s, "")
}
