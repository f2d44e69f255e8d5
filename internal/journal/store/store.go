package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/journal"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

const (
	postedAtLayout = "2006-01-02T15:04:05"
	stampLayout    = time.RFC3339Nano
	// lookupChunk keeps IN lists under SQLite's bound-parameter limit.
	lookupChunk = 500
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) SeedAccounts(ctx context.Context, accounts []*ledger.ChartAccount) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning seed: %w", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT OR IGNORE INTO chart_of_accounts
			(id, name, account_type, parent_id, currency, is_placeholder, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	syncActive := `UPDATE chart_of_accounts SET active = ? WHERE id = ? AND active <> ?`

	now := time.Now().UTC().Format(stampLayout)
	created := 0

	for _, a := range accounts {
		res, err := tx.ExecContext(ctx, insert,
			a.ID, a.Name, string(a.Type), a.ParentID, a.Currency, a.IsPlaceholder, a.Active, now)
		if err != nil {
			return 0, fmt.Errorf("seeding account %s: %w", a.ID, err)
		}

		if n, _ := res.RowsAffected(); n > 0 {
			created++
			continue
		}

		if _, err := tx.ExecContext(ctx, syncActive, a.Active, a.ID, a.Active); err != nil {
			return 0, fmt.Errorf("syncing account %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing seed: %w", err)
	}

	return created, nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]*ledger.ChartAccount, error) {
	query := `
		SELECT id, name, account_type, parent_id, currency, is_placeholder, active, created_at
		FROM chart_of_accounts
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var out []*ledger.ChartAccount

	for rows.Next() {
		var (
			a         ledger.ChartAccount
			typ       string
			parent    sql.NullString
			createdAt string
		)

		if err := rows.Scan(&a.ID, &a.Name, &typ, &parent, &a.Currency, &a.IsPlaceholder, &a.Active, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}

		a.Type = ledger.AccountType(typ)
		a.CreatedAt = parseStamp(createdAt)

		if parent.Valid {
			a.ParentID = new(ledger.AccountID(parent.String))
		}

		out = append(out, &a)
	}

	return out, rows.Err()
}

func (s *Store) Balances(ctx context.Context) ([]journal.Balance, error) {
	query := `
		SELECT id, name, account_type, currency, is_placeholder, active,
		       balance_minor, posting_count, reported_balance_minor
		FROM account_balances
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing balances: %w", err)
	}
	defer rows.Close()

	var out []journal.Balance

	for rows.Next() {
		var (
			b        journal.Balance
			typ      string
			reported sql.NullInt64
		)

		if err := rows.Scan(&b.AccountID, &b.Name, &typ, &b.Currency, &b.IsPlaceholder, &b.Active,
			&b.BalanceMinor, &b.Postings, &reported); err != nil {
			return nil, fmt.Errorf("scanning balance: %w", err)
		}

		b.Type = ledger.AccountType(typ)

		if reported.Valid {
			b.ReportedMinor = &reported.Int64
		}

		out = append(out, b)
	}

	return out, rows.Err()
}

const selectEntryColumns = `
	e.id, e.posted_at, e.is_transfer, e.description, e.raw_description, e.clean_description,
	e.counterparty, e.source_file, e.created_at, e.updated_at
`

// scanEntry reads an entry header. Expected column order matches selectEntryColumns.
func scanEntry(s scanner) (*ledger.JournalEntry, error) {
	var (
		e                    ledger.JournalEntry
		postedAt             string
		raw, clean, cp, file sql.NullString
		createdAt, updatedAt string
	)

	if err := s.Scan(&e.ID, &postedAt, &e.IsTransfer, &e.Description, &raw, &clean,
		&cp, &file, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	t, err := time.Parse(postedAtLayout, postedAt)
	if err != nil {
		return nil, fmt.Errorf("entry %s: bad posted_at %q: %w", e.ID, postedAt, err)
	}

	e.PostedAt = t
	e.RawDescription = raw.String
	e.CleanDescription = clean.String
	e.SourceFile = file.String
	e.CreatedAt = parseStamp(createdAt)
	e.UpdatedAt = parseStamp(updatedAt)

	if cp.Valid {
		e.Counterparty = &cp.String
	}

	return &e, nil
}

func (s *Store) GetEntry(ctx context.Context, id uuid.UUID) (*ledger.JournalEntry, error) {
	query := `SELECT ` + selectEntryColumns + ` FROM journal_entries e WHERE e.id = ?`

	e, err := scanEntry(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, journal.ErrNotFound
		}

		return nil, fmt.Errorf("getting entry: %w", err)
	}

	if err := loadPostings(ctx, s.db, []*ledger.JournalEntry{e}); err != nil {
		return nil, err
	}

	return e, nil
}

// ListEntries returns matching entries newest first, postings included.
func (s *Store) ListEntries(ctx context.Context, filter journal.ListFilter) ([]*ledger.JournalEntry, error) {
	query := `SELECT ` + selectEntryColumns + ` FROM journal_entries e WHERE 1 = 1`

	var args []any

	if filter.AccountID != nil {
		prefix := filter.AccountID.String() + ":"
		query += ` AND e.id IN (
			SELECT journal_entry_id FROM postings
			WHERE account_id = ? OR substr(account_id, 1, ?) = ?)`

		args = append(args, *filter.AccountID, len(prefix), prefix)
	}

	if filter.StartDate != nil {
		query += " AND e.posted_date >= ?"

		args = append(args, filter.StartDate.Format(time.DateOnly))
	}

	if filter.EndDate != nil {
		query += " AND e.posted_date <= ?"

		args = append(args, filter.EndDate.Format(time.DateOnly))
	}

	query += " ORDER BY e.posted_at DESC, e.id"

	if filter.Limit > 0 {
		query += " LIMIT ?"

		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var entries []*ledger.JournalEntry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	if err := loadPostings(ctx, s.db, entries); err != nil {
		return nil, err
	}

	return entries, nil
}

func loadPostings(ctx context.Context, q queryer, entries []*ledger.JournalEntry) error {
	byID := make(map[uuid.UUID]*ledger.JournalEntry, len(entries))
	ids := make([]any, 0, len(entries))

	for _, e := range entries {
		byID[e.ID] = e
		ids = append(ids, e.ID)
	}

	for chunk := range slices.Chunk(ids, lookupChunk) {
		query := `
			SELECT id, journal_entry_id, account_id, amount_minor, currency, memo,
			       provider_txn_id, provider_balance_minor, created_at
			FROM postings
			WHERE journal_entry_id IN (` + placeholders(len(chunk)) + `)
			ORDER BY rowid`

		rows, err := q.QueryContext(ctx, query, chunk...)
		if err != nil {
			return fmt.Errorf("loading postings: %w", err)
		}

		for rows.Next() {
			var (
				p         ledger.Posting
				memo, pid sql.NullString
				bal       sql.NullInt64
				createdAt string
			)

			if err := rows.Scan(&p.ID, &p.JournalEntryID, &p.AccountID, &p.AmountMinor, &p.Currency,
				&memo, &pid, &bal, &createdAt); err != nil {
				rows.Close()
				return fmt.Errorf("scanning posting: %w", err)
			}

			p.Memo = memo.String
			p.CreatedAt = parseStamp(createdAt)

			if pid.Valid {
				p.ProviderTxnID = &pid.String
			}

			if bal.Valid {
				p.ProviderBalanceMinor = &bal.Int64
			}

			if e, ok := byID[p.JournalEntryID]; ok {
				e.Postings = append(e.Postings, &p)
			}
		}

		err = rows.Err()
		rows.Close()

		if err != nil {
			return fmt.Errorf("iterating postings: %w", err)
		}
	}

	return nil
}

func (s *Store) UnbalancedEntries(ctx context.Context) ([]uuid.UUID, error) {
	query := `
		SELECT e.id
		FROM journal_entries e
		LEFT JOIN postings p ON p.journal_entry_id = e.id
		GROUP BY e.id
		HAVING COUNT(p.id) < 2 OR COALESCE(SUM(p.amount_minor), 0) <> 0
		ORDER BY e.id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("finding unbalanced entries: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning entry id: %w", err)
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}

type importTx struct {
	tx  *sql.Tx
	seq int
}

// BeginImport opens the import transaction. The connection takes SQLite's
// write lock immediately, so concurrent runs serialize here.
func (s *Store) BeginImport(ctx context.Context) (journal.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	return &importTx{tx: dbTx}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

func (itx *importTx) ExistingProviderKeys(ctx context.Context, keys []journal.ProviderKey) ([]journal.ProviderKey, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	wanted := make(map[journal.ProviderKey]bool, len(keys))
	ids := make([]any, 0, len(keys))

	for _, k := range keys {
		if !wanted[k] {
			wanted[k] = true
			ids = append(ids, k.ProviderTxnID)
		}
	}

	var found []journal.ProviderKey

	for chunk := range slices.Chunk(ids, lookupChunk) {
		query := `
			SELECT provider_txn_id, account_id
			FROM postings
			WHERE provider_txn_id IN (` + placeholders(len(chunk)) + `)`

		rows, err := itx.tx.QueryContext(ctx, query, chunk...)
		if err != nil {
			return nil, fmt.Errorf("finding existing postings: %w", err)
		}

		for rows.Next() {
			var k journal.ProviderKey
			if err := rows.Scan(&k.ProviderTxnID, &k.AccountID); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning provider key: %w", err)
			}

			if wanted[k] {
				found = append(found, k)
			}
		}

		err = rows.Err()
		rows.Close()

		if err != nil {
			return nil, fmt.Errorf("iterating provider keys: %w", err)
		}
	}

	return found, nil
}

// InsertEntry writes e under its own savepoint. On failure the savepoint is
// rolled back, leaving the outer transaction as it was.
func (itx *importTx) InsertEntry(ctx context.Context, e *ledger.JournalEntry) error {
	itx.seq++
	sp := fmt.Sprintf("entry_%d", itx.seq)

	if _, err := itx.tx.ExecContext(ctx, "SAVEPOINT "+sp); err != nil {
		return fmt.Errorf("opening savepoint: %w", err)
	}

	if err := itx.insert(ctx, e); err != nil {
		if _, rbErr := itx.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+sp); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rolling back savepoint: %w", rbErr))
		}

		if _, relErr := itx.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+sp); relErr != nil {
			return errors.Join(err, fmt.Errorf("releasing savepoint: %w", relErr))
		}

		return err
	}

	if _, err := itx.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+sp); err != nil {
		return fmt.Errorf("releasing savepoint: %w", err)
	}

	return nil
}

func (itx *importTx) insert(ctx context.Context, e *ledger.JournalEntry) error {
	entryQuery := `
		INSERT INTO journal_entries
			(id, posted_at, posted_date, is_transfer, description, raw_description,
			 clean_description, counterparty, source_file, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := itx.tx.ExecContext(ctx, entryQuery,
		e.ID,
		e.PostedAt.Format(postedAtLayout),
		e.PostedDate(),
		e.IsTransfer,
		e.Description,
		nullable(e.RawDescription),
		nullable(e.CleanDescription),
		e.Counterparty,
		nullable(e.SourceFile),
		e.CreatedAt.UTC().Format(stampLayout),
		e.UpdatedAt.UTC().Format(stampLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting entry: %w", err)
	}

	postingQuery := `
		INSERT INTO postings
			(id, journal_entry_id, account_id, amount_minor, currency, memo,
			 provider_txn_id, provider_balance_minor, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, p := range e.Postings {
		_, err := itx.tx.ExecContext(ctx, postingQuery,
			p.ID,
			e.ID,
			p.AccountID,
			p.AmountMinor,
			p.Currency,
			nullable(p.Memo),
			p.ProviderTxnID,
			p.ProviderBalanceMinor,
			p.CreatedAt.UTC().Format(stampLayout),
		)
		if err != nil {
			return fmt.Errorf("inserting posting on %s: %w", p.AccountID, err)
		}
	}

	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func parseStamp(s string) time.Time {
	t, err := time.Parse(stampLayout, s)
	if err != nil {
		return time.Time{}
	}

	return t
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
