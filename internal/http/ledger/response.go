package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/journal"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

type accountResponse struct {
	ID            ledger.AccountID   `json:"id"`
	Name          string             `json:"name"`
	Type          ledger.AccountType `json:"type"`
	Currency      string             `json:"currency"`
	Placeholder   bool               `json:"placeholder"`
	Active        bool               `json:"active"`
	BalanceMinor  int64              `json:"balance_minor"`
	Balance       string             `json:"balance"`
	Postings      int                `json:"postings"`
	ReportedMinor *int64             `json:"reported_balance_minor,omitempty"`
}

type postingResponse struct {
	ID                   uuid.UUID        `json:"id"`
	AccountID            ledger.AccountID `json:"account_id"`
	AmountMinor          int64            `json:"amount_minor"`
	Amount               string           `json:"amount"`
	Currency             string           `json:"currency"`
	Memo                 string           `json:"memo,omitempty"`
	ProviderTxnID        *string          `json:"provider_txn_id,omitempty"`
	ProviderBalanceMinor *int64           `json:"provider_balance_minor,omitempty"`
}

type entryResponse struct {
	ID               uuid.UUID         `json:"id"`
	PostedAt         string            `json:"posted_at"`
	IsTransfer       bool              `json:"is_transfer"`
	Description      string            `json:"description"`
	RawDescription   string            `json:"raw_description,omitempty"`
	CleanDescription string            `json:"clean_description,omitempty"`
	Counterparty     *string           `json:"counterparty,omitempty"`
	SourceFile       string            `json:"source_file,omitempty"`
	Postings         []postingResponse `json:"postings"`
	CreatedAt        time.Time         `json:"created_at"`
}

type integrityResponse struct {
	Unbalanced []uuid.UUID `json:"unbalanced"`
}

func toAccountResponse(b journal.Balance) accountResponse {
	return accountResponse{
		ID:            b.AccountID,
		Name:          b.Name,
		Type:          b.Type,
		Currency:      b.Currency,
		Placeholder:   b.IsPlaceholder,
		Active:        b.Active,
		BalanceMinor:  b.BalanceMinor,
		Balance:       ledger.FormatMinor(b.BalanceMinor, b.Currency),
		Postings:      b.Postings,
		ReportedMinor: b.ReportedMinor,
	}
}

func toEntryResponse(e *ledger.JournalEntry) entryResponse {
	resp := entryResponse{
		ID:               e.ID,
		PostedAt:         e.PostedAt.Format("2006-01-02T15:04:05"),
		IsTransfer:       e.IsTransfer,
		Description:      e.Description,
		RawDescription:   e.RawDescription,
		CleanDescription: e.CleanDescription,
		Counterparty:     e.Counterparty,
		SourceFile:       e.SourceFile,
		Postings:         make([]postingResponse, 0, len(e.Postings)),
		CreatedAt:        e.CreatedAt,
	}

	for _, p := range e.Postings {
		resp.Postings = append(resp.Postings, postingResponse{
			ID:                   p.ID,
			AccountID:            p.AccountID,
			AmountMinor:          p.AmountMinor,
			Amount:               ledger.FormatMinor(p.AmountMinor, p.Currency),
			Currency:             p.Currency,
			Memo:                 p.Memo,
			ProviderTxnID:        p.ProviderTxnID,
			ProviderBalanceMinor: p.ProviderBalanceMinor,
		})
	}

	return resp
}

func toEntryResponseList(entries []*ledger.JournalEntry) []entryResponse {
	resp := make([]entryResponse, len(entries))
	for i, e := range entries {
		resp[i] = toEntryResponse(e)
	}

	return resp
}
