package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/archive"
	"github.com/MrJamesThe3rd/tally/internal/canonical"
	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/database"
	"github.com/MrJamesThe3rd/tally/internal/events"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/importer/cgd"
	"github.com/MrJamesThe3rd/tally/internal/importer/generic"
	"github.com/MrJamesThe3rd/tally/internal/importer/monzo"
	"github.com/MrJamesThe3rd/tally/internal/importer/vanguard"
	"github.com/MrJamesThe3rd/tally/internal/journal"
	"github.com/MrJamesThe3rd/tally/internal/journal/store"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/logger"
	"github.com/MrJamesThe3rd/tally/internal/sanitize"
	"github.com/MrJamesThe3rd/tally/internal/scanner"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
	"github.com/MrJamesThe3rd/tally/internal/transfer"
)

var ErrSchemaOutdated = errors.New("database schema is outdated")

type Options struct {
	InboxDir   string
	ArchiveDir string
	DBPath     string
	// Migrate applies pending schema migrations before importing. Without
	// it an outdated database fails the run.
	Migrate            bool
	TransferWindowDays int
}

type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

type Result struct {
	ProcessedFiles          []string      `json:"processed_files"`
	ArchivedFiles           []string      `json:"archived_files"`
	SkippedFiles            []SkippedFile `json:"skipped_files"`
	TotalTransactions       int           `json:"total_transactions"`
	UniqueTransactions      int           `json:"unique_transactions"`
	DuplicateTransactions   int           `json:"duplicate_transactions"`
	JournalEntriesAttempted int           `json:"journal_entries_attempted"`
	JournalEntriesCreated   int           `json:"journal_entries_created"`
	TransferPairsCreated    int           `json:"transfer_pairs_created"`
	EntryErrors             []string      `json:"entry_errors"`
	AccountsTouched         []string      `json:"accounts_touched"`
	UnmappedDescriptions    []string      `json:"unmapped_descriptions"`
}

// Pipeline runs inbox imports. The settings and rules it holds are read-only
// for the duration of a run.
type Pipeline struct {
	settings  *config.Settings
	importer  *importer.Service
	rules     *sanitize.Service
	publisher events.Publisher
	now       func() time.Time
}

func New(settings *config.Settings, imp *importer.Service, rules *sanitize.Service, publisher events.Publisher) *Pipeline {
	if publisher == nil {
		publisher = events.Nop{}
	}

	return &Pipeline{
		settings:  settings,
		importer:  imp,
		rules:     rules,
		publisher: publisher,
		now:       time.Now,
	}
}

// NewImporter wires the built-in provider parsers, with the preset-driven
// generic parser as fallback.
func NewImporter(settings importer.Settings, extractor vanguard.TextExtractor) *importer.Service {
	return importer.NewService(settings, generic.NewParser(),
		monzo.NewParser(),
		cgd.NewParser(),
		vanguard.NewParser(extractor),
	)
}

// FromSettings wires a pipeline for settings, with vanguard PDFs read through
// the pdftotext binary at pdfToText.
func FromSettings(settings *config.Settings, pdfToText string, publisher events.Publisher) *Pipeline {
	imp := NewImporter(settings, vanguard.PdfToText{Path: pdfToText})
	return New(settings, imp, sanitize.NewService(settings.RulesPath()), publisher)
}

// OptionsFrom maps the environment config onto run options.
func OptionsFrom(cfg *config.Config) Options {
	return Options{
		InboxDir:           cfg.Import.InboxDir,
		ArchiveDir:         cfg.Import.ArchiveDir,
		DBPath:             cfg.DB.Path,
		Migrate:            cfg.DB.Migrate,
		TransferWindowDays: cfg.Import.TransferWindowDays,
	}
}

func (p *Pipeline) Settings() *config.Settings { return p.settings }

func (p *Pipeline) Rules() *sanitize.Service { return p.rules }

// ImportInbox scans the inbox, journals every new transaction in one database
// transaction and moves the processed files to the archive.
//
// Skipped files, skipped rows and per-entry failures are reported in the
// result. An error means the run failed: before the ledger commit nothing has
// changed; an archive failure after it leaves the ledger committed and the
// source files in the inbox, where the next run will see them as duplicates.
func (p *Pipeline) ImportInbox(ctx context.Context, opts Options) (*Result, error) {
	log := logger.FromContext(ctx)
	res := &Result{}

	scan, err := scanner.Scan(ctx, opts.InboxDir, p.settings)
	if err != nil {
		return nil, err
	}

	for _, r := range scan.Rejected {
		res.SkippedFiles = append(res.SkippedFiles, SkippedFile{Path: r.Path, Reason: r.Reason})
	}

	db, err := database.Open(opts.DBPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := p.ensureSchema(ctx, db, opts.Migrate); err != nil {
		return nil, err
	}

	journals := journal.NewService(store.New(db))

	chart, err := ledger.BuildChart(p.settings.Currency, p.settings.ChartLeaves())
	if err != nil {
		return nil, fmt.Errorf("building chart: %w", err)
	}

	if _, err := journals.SeedChart(ctx, chart); err != nil {
		return nil, fmt.Errorf("seeding chart: %w", err)
	}

	var (
		parsed  []*transaction.Parsed
		sources []archive.Source
	)

	for _, f := range scan.Files {
		out, err := p.importer.ParseFile(ctx, f)
		if err != nil {
			return nil, err
		}

		if out.Skipped() {
			res.SkippedFiles = append(res.SkippedFiles, SkippedFile{Path: f.Path, Reason: out.SkipReason})
			continue
		}

		res.ProcessedFiles = append(res.ProcessedFiles, f.Path)
		parsed = append(parsed, out.Transactions...)
		sources = append(sources, archive.Source{
			Path:      f.Path,
			Provider:  string(f.Provider),
			AccountID: f.AccountID.String(),
		})
	}

	if len(sources) == 0 {
		log.Info().Int("skipped", len(res.SkippedFiles)).Msg("nothing to import")
		return res, nil
	}

	rules, err := p.rules.RuleSet(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}

	canon := canonical.Canonicalize(ctx, parsed, rules)
	res.UnmappedDescriptions = canon.UnmappedDescriptions
	res.AccountsTouched = accountsTouched(parsed)

	detected := transfer.NewDetector(opts.TransferWindowDays).Detect(canon.Transactions)

	plan, err := archive.Prepare(opts.ArchiveDir, sources, p.now())
	if err != nil {
		return nil, err
	}

	posted, err := journals.Post(ctx, detected)
	if err != nil {
		plan.Rollback(ctx)
		return nil, err
	}

	res.TotalTransactions = posted.TotalTransactions
	res.UniqueTransactions = posted.UniqueTransactions
	res.DuplicateTransactions = posted.DuplicateTransactions
	res.JournalEntriesAttempted = posted.EntriesAttempted
	res.JournalEntriesCreated = posted.EntriesCreated
	res.TransferPairsCreated = posted.TransferPairsCreated

	for _, e := range posted.EntryErrors {
		res.EntryErrors = append(res.EntryErrors, e.String())
	}

	if err := plan.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ledger committed but archiving failed: %w", err)
	}

	res.ArchivedFiles = plan.Archived()

	log.Info().
		Int("files", len(res.ProcessedFiles)).
		Int("skipped", len(res.SkippedFiles)).
		Int("created", res.JournalEntriesCreated).
		Int("duplicates", res.DuplicateTransactions).
		Msg("import finished")

	if err := p.publisher.PublishImportCompleted(ctx, p.event(res)); err != nil {
		log.Warn().Err(err).Msg("import event not published")
	}

	return res, nil
}

func (p *Pipeline) ensureSchema(ctx context.Context, db *sql.DB, migrate bool) error {
	if migrate {
		n, err := database.Migrate(ctx, db)
		if err != nil {
			return fmt.Errorf("migrating: %w", err)
		}

		if n > 0 {
			log := logger.FromContext(ctx)
			log.Info().Int("applied", n).Msg("schema migrated")
		}

		return nil
	}

	v, err := database.Version(ctx, db)
	if err != nil {
		return err
	}

	if v < database.Latest() {
		return fmt.Errorf("%w: at version %d, want %d", ErrSchemaOutdated, v, database.Latest())
	}

	return nil
}

func (p *Pipeline) event(res *Result) events.ImportCompleted {
	return events.ImportCompleted{
		RunID:                 uuid.New(),
		CompletedAt:           p.now().UTC(),
		ProcessedFiles:        len(res.ProcessedFiles),
		ArchivedFiles:         len(res.ArchivedFiles),
		SkippedFiles:          len(res.SkippedFiles),
		TotalTransactions:     res.TotalTransactions,
		UniqueTransactions:    res.UniqueTransactions,
		DuplicateTransactions: res.DuplicateTransactions,
		EntriesCreated:        res.JournalEntriesCreated,
		TransferPairsCreated:  res.TransferPairsCreated,
		EntryErrors:           len(res.EntryErrors),
		AccountsTouched:       res.AccountsTouched,
	}
}

func accountsTouched(parsed []*transaction.Parsed) []string {
	var out []string

	for _, t := range parsed {
		out = append(out, t.ChartAccountID.String())
	}

	slices.Sort(out)

	return slices.Compact(out)
}
