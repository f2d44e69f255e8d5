package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"

	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/logger"
	"github.com/MrJamesThe3rd/tally/internal/normalize"
)

// Settings is the slice of the settings collaborator the importer reads.
type Settings interface {
	Account(id ledger.AccountID) (config.Account, bool)
	BankPreset(name string) (*config.BankPreset, bool)
}

type Service struct {
	settings Settings
	parsers  map[Provider]Parser
	fallback Parser
}

// NewService registers the built-in parsers. fallback, when set, parses any
// provider that has a bank preset but no dedicated parser.
func NewService(settings Settings, fallback Parser, parsers ...Parser) *Service {
	s := &Service{
		settings: settings,
		parsers:  make(map[Provider]Parser, len(parsers)),
		fallback: fallback,
	}

	for _, p := range parsers {
		s.parsers[p.Provider()] = p
	}

	return s
}

// ParseFile parses one inbox file. Configuration and format problems skip the
// file with a reason; only I/O failures are returned as errors.
func (s *Service) ParseFile(ctx context.Context, file File) (FileOutcome, error) {
	log := logger.FromContext(ctx)
	out := FileOutcome{File: file}

	src, parser, err := s.resolve(file)
	if err == nil {
		var res *Result

		res, err = parser.Parse(ctx, src)
		if err == nil {
			out.Transactions = res.Transactions()
			out.SkippedRows = res.SkippedRows()

			for _, row := range out.SkippedRows {
				log.Debug().Str("file", file.Path).Int("line", row.Line).Str("reason", row.Reason).Msg("row skipped")
			}

			return out, nil
		}
	}

	if isFatal(err) {
		return out, fmt.Errorf("parse %s: %w", file.Path, err)
	}

	out.SkipReason = err.Error()
	log.Warn().Str("file", file.Path).Str("reason", out.SkipReason).Msg("file skipped")

	return out, nil
}

func (s *Service) resolve(file File) (Source, Parser, error) {
	account, ok := s.settings.Account(file.AccountID)
	if !ok {
		return Source{}, nil, fmt.Errorf("%w: %s", ErrUnknownAccount, file.AccountID)
	}

	src := Source{Path: file.Path, Provider: file.Provider, Account: account}
	if preset, ok := s.settings.BankPreset(string(file.Provider)); ok {
		src.Preset = preset
	}

	if parser, ok := s.parsers[file.Provider]; ok {
		return src, parser, nil
	}

	if s.fallback == nil {
		return src, nil, fmt.Errorf("%w: %s", ErrUnknownProvider, file.Provider)
	}

	if src.Preset == nil {
		return src, nil, fmt.Errorf("%w: %s", ErrMissingBankPreset, file.Provider)
	}

	return src, s.fallback, nil
}

// isFatal separates filesystem failures from per-file format and configuration problems.
func isFatal(err error) bool {
	var pathErr *fs.PathError

	var parseErr *csv.ParseError

	var missing *MissingColumnsError

	switch {
	case errors.As(err, &parseErr), errors.As(err, &missing):
		return false
	case errors.Is(err, ErrWrongProviderForAccount),
		errors.Is(err, ErrMissingBankPreset),
		errors.Is(err, ErrUnknownProvider),
		errors.Is(err, ErrUnknownAccount),
		errors.Is(err, ErrInvalidStatement),
		errors.Is(err, normalize.ErrInvalidAmount),
		errors.Is(err, normalize.ErrInvalidDate):
		return false
	}

	return errors.As(err, &pathErr)
}
