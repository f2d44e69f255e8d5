package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ImportCompleted is emitted after an import run has committed and archived.
type ImportCompleted struct {
	RunID                 uuid.UUID `json:"run_id"`
	CompletedAt           time.Time `json:"completed_at"`
	ProcessedFiles        int       `json:"processed_files"`
	ArchivedFiles         int       `json:"archived_files"`
	SkippedFiles          int       `json:"skipped_files"`
	TotalTransactions     int       `json:"total_transactions"`
	UniqueTransactions    int       `json:"unique_transactions"`
	DuplicateTransactions int       `json:"duplicate_transactions"`
	EntriesCreated        int       `json:"entries_created"`
	TransferPairsCreated  int       `json:"transfer_pairs_created"`
	EntryErrors           int       `json:"entry_errors"`
	AccountsTouched       []string  `json:"accounts_touched"`
}

type Publisher interface {
	PublishImportCompleted(ctx context.Context, event ImportCompleted) error
}

// Nop discards events. It is used when no broker is configured.
type Nop struct{}

func (Nop) PublishImportCompleted(context.Context, ImportCompleted) error { return nil }
